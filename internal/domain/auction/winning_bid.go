package auction

import (
	"context"
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// WinningBid is the accepted high bid for an item, supplied by the bidding
// subsystem. It is an immutable fact once it reaches the billing core: the
// bid-acceptance decision is not re-derived here.
type WinningBid struct {
	ID            uuid.UUID
	AuctionItemID uuid.UUID
	BuyerID       uuid.UUID
	Amount        valueobject.Money
	PlacedAt      time.Time
}

// WinningBidRepository provides read access to accepted winning bids
type WinningBidRepository interface {
	// FindForItem returns the winning bid for an item, or shared.ErrNotFound
	// when no bid exists.
	FindForItem(ctx context.Context, itemID uuid.UUID) (*WinningBid, error)
	// FindForItemAndBuyer returns the winning bid only if it belongs to the
	// given buyer, or shared.ErrNotFound.
	FindForItemAndBuyer(ctx context.Context, itemID, buyerID uuid.UUID) (*WinningBid, error)
	// FindForBuyerInAuction returns all of a buyer's winning bids in an auction.
	FindForBuyerInAuction(ctx context.Context, buyerID, auctionID uuid.UUID) ([]WinningBid, error)
}
