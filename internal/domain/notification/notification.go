package notification

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Kind classifies a notification for routing and display
type Kind string

const (
	KindInvoiceCreated   Kind = "INVOICE_CREATED"
	KindInvoiceSent      Kind = "INVOICE_SENT"
	KindInvoicePaid      Kind = "INVOICE_PAID"
	KindInvoiceCancelled Kind = "INVOICE_CANCELLED"
	KindStatementReady   Kind = "STATEMENT_READY"
	KindStatementPaid    Kind = "STATEMENT_PAID"
	KindDispatchReport   Kind = "DISPATCH_REPORT"
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	switch k {
	case KindInvoiceCreated, KindInvoiceSent, KindInvoicePaid, KindInvoiceCancelled,
		KindStatementReady, KindStatementPaid, KindDispatchReport:
		return true
	}
	return false
}

// Payload is the structured body of a notification, stored as JSONB
type Payload map[string]any

// Value implements driver.Valuer
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *Payload) Scan(value interface{}) error {
	if value == nil {
		*p = Payload{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Payload: unsupported type")
	}
	if len(bytes) == 0 {
		*p = Payload{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// Notification is one durable record for one recipient. The persisted row
// is the source of truth; any real-time push on top of it is a best-effort
// UX accelerant.
type Notification struct {
	shared.BaseEntity
	RecipientID uuid.UUID
	Kind        Kind
	Title       string
	Payload     Payload
	ReadAt      *time.Time
}

// New creates a notification for one recipient
func New(recipientID uuid.UUID, kind Kind, title string, payload Payload) (*Notification, error) {
	if recipientID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_RECIPIENT", "Recipient ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("INVALID_KIND", "Unknown notification kind")
	}
	if payload == nil {
		payload = Payload{}
	}
	return &Notification{
		BaseEntity:  shared.NewBaseEntity(),
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Payload:     payload,
	}, nil
}

// MarkRead records when the recipient read the notification
func (n *Notification) MarkRead() {
	if n.ReadAt != nil {
		return
	}
	now := time.Now()
	n.ReadAt = &now
	n.UpdatedAt = now
}

// Repository persists notifications
type Repository interface {
	Save(ctx context.Context, notifications ...*Notification) error
	FindByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// Publisher pushes a best-effort real-time event to a channel. Failures are
// logged and swallowed; delivery is never allowed to fail the financial
// operation that produced the notification.
type Publisher interface {
	Publish(ctx context.Context, channel, eventName string, payload any) error
}
