package billing

import (
	"crypto/rand"
	"fmt"
	"time"
)

const numberSuffixAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateInvoiceNumber produces a time-ordered, human-displayable invoice
// number with a random suffix, e.g. "INV-20260901-143212-K7QF". Collisions
// are negligible but not impossible, so the database enforces a unique
// constraint on the column rather than trusting the generator.
func GenerateInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102-150405"), randomSuffix(4))
}

// GenerateStatementNumber produces a settlement statement number in the same
// shape, e.g. "STM-20260901-143212-M2XR".
func GenerateStatementNumber(now time.Time) string {
	return fmt.Sprintf("STM-%s-%s", now.UTC().Format("20060102-150405"), randomSuffix(4))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	// rand.Read never returns an error on supported platforms
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = numberSuffixAlphabet[int(buf[i])%len(numberSuffixAlphabet)]
	}
	return string(buf)
}
