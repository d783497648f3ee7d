package handler

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
)

// CreateInvoiceRequest is the payload for creating a buyer invoice
// @Description Invoice creation request covering a buyer's won lots
type CreateInvoiceRequest struct {
	BuyerID   string   `json:"buyer_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	AuctionID string   `json:"auction_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	ItemIDs   []string `json:"item_ids" binding:"required,min=1,dive,uuid"`
	Notes     string   `json:"notes" binding:"omitempty,max=1000"`
}

// CancelInvoiceRequest is the payload for cancelling an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"Buyer defaulted"`
}

// MarkInvoicePaidRequest records an out-of-band payment confirmation
type MarkInvoicePaidRequest struct {
	GatewayRef string `json:"gateway_ref" binding:"required,max=255" example:"pi_3MtwBwLkdIwHu7ix28a3tqPa"`
}

// MarkInvoiceSentRequest records a manual dispatch of the invoice
type MarkInvoiceSentRequest struct {
	Confirmation string `json:"confirmation" binding:"omitempty,max=500"`
}

// ListInvoicesRequest carries the invoice list filters
type ListInvoicesRequest struct {
	BuyerID   string `form:"buyer_id" binding:"omitempty,uuid"`
	AuctionID string `form:"auction_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=UNPAID PAID CANCELLED"`
	Unsent    bool   `form:"unsent"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// LineItemResponse is one invoiced lot in API responses
type LineItemResponse struct {
	AuctionItemID      string `json:"auction_item_id"`
	LotNumber          int    `json:"lot_number"`
	Description        string `json:"description"`
	HammerPrice        int64  `json:"hammer_price"`
	BuyersPremiumShare int64  `json:"buyers_premium_share"`
	TaxShare           int64  `json:"tax_share"`
	LineTotal          int64  `json:"line_total"`
}

// InvoiceResponse represents an invoice in API responses. Monetary amounts
// are integer pence; the display field is formatted major units.
type InvoiceResponse struct {
	ID                 string             `json:"id"`
	InvoiceNumber      string             `json:"invoice_number" example:"INV-2026-00042"`
	BuyerID            string             `json:"buyer_id"`
	AuctionID          string             `json:"auction_id"`
	Status             string             `json:"status" enums:"UNPAID,PAID,CANCELLED"`
	Subtotal           int64              `json:"subtotal"`
	BuyersPremium      int64              `json:"buyers_premium"`
	TaxAmount          int64              `json:"tax_amount"`
	TotalAmount        int64              `json:"total_amount"`
	TotalDisplay       string             `json:"total_display" example:"£132.00"`
	LineItems          []LineItemResponse `json:"line_items"`
	SentAt             *time.Time         `json:"sent_at,omitempty"`
	PaidAt             *time.Time         `json:"paid_at,omitempty"`
	PaymentLinkRef     string             `json:"payment_link_ref,omitempty"`
	AutomaticChargeRef string             `json:"automatic_charge_ref,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason       string             `json:"cancel_reason,omitempty"`
	Version            int                `json:"version"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// toInvoiceResponse converts a domain invoice to its API shape
func toInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	lines := make([]LineItemResponse, 0, len(invoice.LineItems))
	for _, line := range invoice.LineItems {
		lines = append(lines, LineItemResponse{
			AuctionItemID:      line.AuctionItemID.String(),
			LotNumber:          line.LotNumber,
			Description:        line.Description,
			HammerPrice:        line.HammerPrice,
			BuyersPremiumShare: line.BuyersPremiumShare,
			TaxShare:           line.TaxShare,
			LineTotal:          line.LineTotal,
		})
	}

	return InvoiceResponse{
		ID:                 invoice.ID.String(),
		InvoiceNumber:      invoice.InvoiceNumber,
		BuyerID:            invoice.BuyerID.String(),
		AuctionID:          invoice.AuctionID.String(),
		Status:             invoice.Status.String(),
		Subtotal:           invoice.Subtotal,
		BuyersPremium:      invoice.BuyersPremium,
		TaxAmount:          invoice.TaxAmount,
		TotalAmount:        invoice.TotalAmount,
		TotalDisplay:       valueobject.NewMoneyGBP(invoice.TotalAmount).Format(),
		LineItems:          lines,
		SentAt:             invoice.SentAt,
		PaidAt:             invoice.PaidAt,
		PaymentLinkRef:     invoice.PaymentLinkRef,
		AutomaticChargeRef: invoice.AutomaticChargeRef,
		Notes:              invoice.Notes,
		CancelledAt:        invoice.CancelledAt,
		CancelReason:       invoice.CancelReason,
		Version:            invoice.Version,
		CreatedAt:          invoice.CreatedAt,
		UpdatedAt:          invoice.UpdatedAt,
	}
}

// toInvoiceListResponse converts a slice of invoices
func toInvoiceListResponse(invoices []billing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, toInvoiceResponse(&invoices[i]))
	}
	return out
}
