package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceFilter represents query filter options for invoices
type InvoiceFilter struct {
	BuyerID   *uuid.UUID
	AuctionID *uuid.UUID
	Status    *InvoiceStatus
	Unsent    bool
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// InvoiceRepository persists invoices.
//
// Status transitions must be serialized per invoice: Save writes the whole
// aggregate, while SaveTransition performs a compare-and-swap on the status
// column so two concurrent reconcilers cannot both move the same invoice out
// of Unpaid. The guard lives in the database because it must survive process
// restarts.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	// FindByBuyerAndAuction returns the buyer's invoice for an auction, or
	// shared.ErrNotFound.
	FindByBuyerAndAuction(ctx context.Context, buyerID, auctionID uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	// FindUnsentUnpaidByAuction returns invoices eligible for batch dispatch:
	// status Unpaid and never sent.
	FindUnsentUnpaidByAuction(ctx context.Context, auctionID uuid.UUID) ([]Invoice, error)
	// ExistsForItem reports whether any non-cancelled invoice already covers
	// the auction item.
	ExistsForItem(ctx context.Context, auctionItemID uuid.UUID) (bool, error)

	// Save creates the invoice or updates non-status fields.
	Save(ctx context.Context, invoice *Invoice) error
	// SaveTransition persists a status transition guarded by the previous
	// status. Returns shared.ErrConcurrencyConflict when the row no longer
	// holds fromStatus; callers treat that as an idempotent no-op.
	SaveTransition(ctx context.Context, invoice *Invoice, fromStatus InvoiceStatus) error
}
