package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AttemptMethod distinguishes how a reconciliation try approached the gateway
type AttemptMethod string

const (
	AttemptMethodAutoCharge AttemptMethod = "AUTO_CHARGE"
	AttemptMethodPayLink    AttemptMethod = "PAY_LINK"
)

// AttemptOutcome is the result of one reconciliation try
type AttemptOutcome string

const (
	AttemptOutcomeSuccess    AttemptOutcome = "SUCCESS"
	AttemptOutcomeFailed     AttemptOutcome = "FAILED"
	AttemptOutcomeLinkIssued AttemptOutcome = "LINK_ISSUED"
)

// PaymentAttempt is the audit record of one reconciliation try against the
// gateway. Attempts are append-only; they exist for idempotency checks and
// manual follow-up, not for balance computation.
type PaymentAttempt struct {
	ID         uuid.UUID
	InvoiceID  uuid.UUID
	Method     AttemptMethod
	Outcome    AttemptOutcome
	GatewayRef string
	Detail     string
	CreatedAt  time.Time
}

// NewPaymentAttempt records one reconciliation try
func NewPaymentAttempt(invoiceID uuid.UUID, method AttemptMethod, outcome AttemptOutcome, gatewayRef, detail string) *PaymentAttempt {
	return &PaymentAttempt{
		ID:         uuid.New(),
		InvoiceID:  invoiceID,
		Method:     method,
		Outcome:    outcome,
		GatewayRef: gatewayRef,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
}

// PaymentAttemptRepository persists reconciliation attempts
type PaymentAttemptRepository interface {
	Save(ctx context.Context, attempt *PaymentAttempt) error
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]PaymentAttempt, error)
}
