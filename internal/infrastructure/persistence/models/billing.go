package models

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// InvoiceModel is the persistence model for buyer invoices.
// Line items live in a JSONB column because they are value objects that are
// only ever read or written through the aggregate.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber      string                `gorm:"type:varchar(40);not null;uniqueIndex"`
	BuyerID            uuid.UUID             `gorm:"type:uuid;not null;index:idx_invoices_buyer_auction,priority:1"`
	AuctionID          uuid.UUID             `gorm:"type:uuid;not null;index:idx_invoices_buyer_auction,priority:2;index:idx_invoices_auction_status,priority:1"`
	Status             billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:UNPAID;index:idx_invoices_auction_status,priority:2"`
	Subtotal           int64                 `gorm:"not null"`
	BuyersPremium      int64                 `gorm:"not null"`
	TaxAmount          int64                 `gorm:"not null"`
	TotalAmount        int64                 `gorm:"not null"`
	LineItems          billing.LineItems     `gorm:"type:jsonb;not null"`
	SentAt             *time.Time            `gorm:"index"`
	PaidAt             *time.Time
	PaymentLinkRef     string `gorm:"type:varchar(255)"`
	AutomaticChargeRef string `gorm:"type:varchar(255)"`
	Notes              string `gorm:"type:text"`
	CancelledAt        *time.Time
	CancelReason       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		InvoiceNumber:      m.InvoiceNumber,
		BuyerID:            m.BuyerID,
		AuctionID:          m.AuctionID,
		Status:             m.Status,
		Subtotal:           m.Subtotal,
		BuyersPremium:      m.BuyersPremium,
		TaxAmount:          m.TaxAmount,
		TotalAmount:        m.TotalAmount,
		LineItems:          m.LineItems,
		SentAt:             m.SentAt,
		PaidAt:             m.PaidAt,
		PaymentLinkRef:     m.PaymentLinkRef,
		AutomaticChargeRef: m.AutomaticChargeRef,
		Notes:              m.Notes,
		CancelledAt:        m.CancelledAt,
		CancelReason:       m.CancelReason,
	}
	m.PopulateAggregateRoot(&inv.BaseAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.BuyerID = inv.BuyerID
	m.AuctionID = inv.AuctionID
	m.Status = inv.Status
	m.Subtotal = inv.Subtotal
	m.BuyersPremium = inv.BuyersPremium
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.LineItems = inv.LineItems
	m.SentAt = inv.SentAt
	m.PaidAt = inv.PaidAt
	m.PaymentLinkRef = inv.PaymentLinkRef
	m.AutomaticChargeRef = inv.AutomaticChargeRef
	m.Notes = inv.Notes
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoicedItemModel claims an auction item for exactly one live invoice. The
// primary key on auction_item_id is the database-level guard against two
// invoices covering the same item; cancellation releases the claim.
type InvoicedItemModel struct {
	AuctionItemID uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID     uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (InvoicedItemModel) TableName() string {
	return "invoiced_items"
}

// PaymentAttemptModel is the append-only audit record of reconciliation tries
type PaymentAttemptModel struct {
	ID         uuid.UUID              `gorm:"type:uuid;primaryKey"`
	InvoiceID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	Method     billing.AttemptMethod  `gorm:"type:varchar(20);not null"`
	Outcome    billing.AttemptOutcome `gorm:"type:varchar(20);not null"`
	GatewayRef string                 `gorm:"type:varchar(255)"`
	Detail     string                 `gorm:"type:text"`
	CreatedAt  time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PaymentAttemptModel) TableName() string {
	return "payment_attempts"
}

// ToDomain converts the persistence model to a domain PaymentAttempt
func (m *PaymentAttemptModel) ToDomain() *billing.PaymentAttempt {
	return &billing.PaymentAttempt{
		ID:         m.ID,
		InvoiceID:  m.InvoiceID,
		Method:     m.Method,
		Outcome:    m.Outcome,
		GatewayRef: m.GatewayRef,
		Detail:     m.Detail,
		CreatedAt:  m.CreatedAt,
	}
}

// PaymentAttemptModelFromDomain creates a new persistence model from a domain PaymentAttempt
func PaymentAttemptModelFromDomain(a *billing.PaymentAttempt) *PaymentAttemptModel {
	return &PaymentAttemptModel{
		ID:         a.ID,
		InvoiceID:  a.InvoiceID,
		Method:     a.Method,
		Outcome:    a.Outcome,
		GatewayRef: a.GatewayRef,
		Detail:     a.Detail,
		CreatedAt:  a.CreatedAt,
	}
}
