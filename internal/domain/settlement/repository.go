package settlement

import (
	"context"

	"github.com/google/uuid"
)

// StatementRepository persists settlement statements
type StatementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Statement, error)
	// FindBySellerAndAuction returns the statement for a seller/auction pair,
	// or shared.ErrNotFound.
	FindBySellerAndAuction(ctx context.Context, sellerID, auctionID uuid.UUID) (*Statement, error)
	FindByAuction(ctx context.Context, auctionID uuid.UUID) ([]Statement, error)
	Save(ctx context.Context, statement *Statement) error
}
