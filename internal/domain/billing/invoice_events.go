package billing

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	AuctionID     uuid.UUID `json:"auction_id"`
	TotalAmount   int64     `json:"total_amount"`
	LineCount     int       `json:"line_count"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		BuyerID:         inv.BuyerID,
		AuctionID:       inv.AuctionID,
		TotalAmount:     inv.TotalAmount,
		LineCount:       len(inv.LineItems),
	}
}

// InvoicePaidEvent is raised when an invoice transitions to Paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	AuctionID     uuid.UUID `json:"auction_id"`
	TotalAmount   int64     `json:"total_amount"`
	GatewayRef    string    `json:"gateway_ref"`
	PaidAt        time.Time `json:"paid_at"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	paidAt := time.Now()
	if inv.PaidAt != nil {
		paidAt = *inv.PaidAt
	}
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		BuyerID:         inv.BuyerID,
		AuctionID:       inv.AuctionID,
		TotalAmount:     inv.TotalAmount,
		GatewayRef:      inv.AutomaticChargeRef,
		PaidAt:          paidAt,
	}
}

// InvoiceSentEvent is raised the first time an invoice is dispatched
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID `json:"invoice_id"`
	InvoiceNumber  string    `json:"invoice_number"`
	BuyerID        uuid.UUID `json:"buyer_id"`
	AuctionID      uuid.UUID `json:"auction_id"`
	TotalAmount    int64     `json:"total_amount"`
	PaymentLinkRef string    `json:"payment_link_ref,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return "InvoiceSent"
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSent", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		BuyerID:         inv.BuyerID,
		AuctionID:       inv.AuctionID,
		TotalAmount:     inv.TotalAmount,
		PaymentLinkRef:  inv.PaymentLinkRef,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	BuyerID       uuid.UUID `json:"buyer_id"`
	Reason        string    `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return "InvoiceCancelled"
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCancelled", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		BuyerID:         inv.BuyerID,
		Reason:          inv.CancelReason,
	}
}
