package auction

import (
	"context"
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AuctionStatus represents the lifecycle status of an auction
type AuctionStatus string

const (
	AuctionStatusScheduled AuctionStatus = "SCHEDULED"
	AuctionStatusLive      AuctionStatus = "LIVE"
	AuctionStatusClosed    AuctionStatus = "CLOSED"
)

// IsValid checks if the status is a valid AuctionStatus
func (s AuctionStatus) IsValid() bool {
	switch s {
	case AuctionStatusScheduled, AuctionStatusLive, AuctionStatusClosed:
		return true
	}
	return false
}

// Auction is a sale event containing many lots from many sellers.
// The billing core reads auctions and never mutates them.
type Auction struct {
	shared.BaseEntity
	Name     string
	Status   AuctionStatus
	ClosesAt *time.Time
}

// Item is a single lot offered in an auction. Reserve price is optional;
// a nil reserve means any winning bid constitutes a sale.
type Item struct {
	shared.BaseEntity
	AuctionID    uuid.UUID
	SellerID     uuid.UUID
	LotNumber    int
	Title        string
	Description  string
	ReservePrice *valueobject.Money
	Withdrawn    bool
}

// HasReserve returns true if the seller set a reserve price
func (i *Item) HasReserve() bool {
	return i.ReservePrice != nil && i.ReservePrice.IsPositive()
}

// MeetsReserve reports whether the given bid amount constitutes a sale for
// this item. Items without a reserve sell at any winning amount; a high bid
// below the reserve is not a sale even though a bid exists.
func (i *Item) MeetsReserve(amount valueobject.Money) bool {
	if !i.HasReserve() {
		return true
	}
	gte, err := amount.GreaterThanOrEqual(*i.ReservePrice)
	if err != nil {
		return false
	}
	return gte
}

// ItemRepository provides read access to auction items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByAuction(ctx context.Context, auctionID uuid.UUID) ([]Item, error)
	FindBySellerAndAuction(ctx context.Context, sellerID, auctionID uuid.UUID) ([]Item, error)
}

// AuctionRepository provides read access to auctions
type AuctionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Auction, error)
}
