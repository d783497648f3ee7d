package billing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvoiceNumber(t *testing.T) {
	at := time.Date(2026, 9, 1, 14, 32, 12, 0, time.UTC)

	number := GenerateInvoiceNumber(at)

	assert.True(t, strings.HasPrefix(number, "INV-20260901-143212-"))
	parts := strings.Split(number, "-")
	require.Len(t, parts, 4)
	assert.Len(t, parts[3], 4)
	for _, c := range parts[3] {
		assert.Contains(t, numberSuffixAlphabet, string(c))
	}
}

func TestGenerateStatementNumber(t *testing.T) {
	at := time.Date(2026, 9, 1, 14, 32, 12, 0, time.UTC)

	number := GenerateStatementNumber(at)
	assert.True(t, strings.HasPrefix(number, "STM-20260901-143212-"))
}

func TestGenerateInvoiceNumber_SuffixVaries(t *testing.T) {
	at := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateInvoiceNumber(at)] = true
	}
	// 50 draws from a 32^4 space colliding down to one value is not credible
	assert.Greater(t, len(seen), 1)
}
