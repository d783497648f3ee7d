package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceStatus represents the status of a buyer invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "UNPAID"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state.
// No transition leaves Paid or Cancelled.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// LineItem is one won lot inside an invoice. Amounts are pence.
// It is a value object within the Invoice aggregate, stored as JSONB.
type LineItem struct {
	AuctionItemID      uuid.UUID `json:"auction_item_id"`
	LotNumber          int       `json:"lot_number"`
	Description        string    `json:"description"`
	HammerPrice        int64     `json:"hammer_price"`
	BuyersPremiumShare int64     `json:"buyers_premium_share"`
	TaxShare           int64     `json:"tax_share"`
	LineTotal          int64     `json:"line_total"`
}

// NewLineItem builds a line item from a computed buyer cost
func NewLineItem(auctionItemID uuid.UUID, lotNumber int, description string, cost BuyerCost) LineItem {
	return LineItem{
		AuctionItemID:      auctionItemID,
		LotNumber:          lotNumber,
		Description:        description,
		HammerPrice:        cost.HammerPrice.Pence(),
		BuyersPremiumShare: cost.BuyersPremium.Pence(),
		TaxShare:           cost.TaxAmount.Pence(),
		LineTotal:          cost.Total.Pence(),
	}
}

// LineItems is a slice of LineItem that implements GORM Scanner/Valuer for JSONB storage
type LineItems []LineItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*l = LineItems{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Invoice is the aggregate root for one financial document raised against
// one buyer for one auction. It is created Unpaid and transitions exactly
// once to Paid or Cancelled.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber      string
	BuyerID            uuid.UUID
	AuctionID          uuid.UUID
	Status             InvoiceStatus
	Subtotal           int64 // sum of hammer prices, pence
	BuyersPremium      int64
	TaxAmount          int64
	TotalAmount        int64
	LineItems          LineItems
	SentAt             *time.Time
	PaidAt             *time.Time
	PaymentLinkRef     string
	AutomaticChargeRef string
	Notes              string
	CancelledAt        *time.Time
	CancelReason       string
}

// NewInvoice creates a new unpaid invoice from priced line items
func NewInvoice(invoiceNumber string, buyerID, auctionID uuid.UUID, lines []LineItem) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewValidationError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if buyerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	if auctionID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_AUCTION", "Auction ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_INVOICE", "Invoice requires at least one line item")
	}

	var subtotal, premium, tax, total int64
	for _, line := range lines {
		if line.LineTotal != line.HammerPrice+line.BuyersPremiumShare+line.TaxShare {
			return nil, shared.NewValidationError("INCONSISTENT_LINE",
				fmt.Sprintf("Line for item %s does not sum to its line total", line.AuctionItemID))
		}
		subtotal += line.HammerPrice
		premium += line.BuyersPremiumShare
		tax += line.TaxShare
		total += line.LineTotal
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		BuyerID:           buyerID,
		AuctionID:         auctionID,
		Status:            InvoiceStatusUnpaid,
		Subtotal:          subtotal,
		BuyersPremium:     premium,
		TaxAmount:         tax,
		TotalAmount:       total,
		LineItems:         lines,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// MarkPaid transitions the invoice to Paid. Calling it on an already-paid
// invoice is a no-op success preserving the original paidAt, because the
// gateway may deliver duplicate confirmations.
func (inv *Invoice) MarkPaid(gatewayRef string) error {
	if inv.Status == InvoiceStatusPaid {
		return nil
	}
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot pay a cancelled invoice")
	}
	if gatewayRef == "" {
		return shared.NewValidationError("INVALID_GATEWAY_REF", "Gateway reference cannot be empty")
	}

	now := time.Now()
	inv.Status = InvoiceStatusPaid
	inv.PaidAt = &now
	inv.AutomaticChargeRef = gatewayRef
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaidEvent(inv))

	return nil
}

// MarkSent records that the invoice was dispatched to the buyer. sentAt is
// set at most once; re-sending is a no-op, not a duplicate.
func (inv *Invoice) MarkSent(linkOrConfirmation string) error {
	if inv.SentAt != nil {
		return nil
	}

	now := time.Now()
	inv.SentAt = &now
	if linkOrConfirmation != "" && inv.PaymentLinkRef == "" {
		inv.PaymentLinkRef = linkOrConfirmation
	}
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceSentEvent(inv))

	return nil
}

// AttachPaymentLink records the pay-link issued for this invoice
func (inv *Invoice) AttachPaymentLink(linkRef string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot attach payment link to %s invoice", inv.Status))
	}
	if linkRef == "" {
		return shared.NewValidationError("INVALID_LINK_REF", "Payment link reference cannot be empty")
	}
	inv.PaymentLinkRef = linkRef
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// Cancel cancels an unpaid invoice. The trigger is a manual admin action.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status == InvoiceStatusCancelled {
		return nil
	}
	if inv.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a paid invoice")
	}
	if reason == "" {
		return shared.NewValidationError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// SetNotes sets free-form notes on the invoice
func (inv *Invoice) SetNotes(notes string) {
	inv.Notes = notes
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// Helper methods

// GetTotalAmountMoney returns the total as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyGBP(inv.TotalAmount)
}

// GetSubtotalMoney returns the hammer subtotal as Money
func (inv *Invoice) GetSubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyGBP(inv.Subtotal)
}

// IsUnpaid returns true if the invoice is awaiting payment
func (inv *Invoice) IsUnpaid() bool {
	return inv.Status == InvoiceStatusUnpaid
}

// IsPaid returns true if the invoice is paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsSent returns true if the invoice was already dispatched
func (inv *Invoice) IsSent() bool {
	return inv.SentAt != nil
}

// ContainsItem reports whether the invoice already covers an auction item
func (inv *Invoice) ContainsItem(auctionItemID uuid.UUID) bool {
	for _, line := range inv.LineItems {
		if line.AuctionItemID == auctionItemID {
			return true
		}
	}
	return false
}
