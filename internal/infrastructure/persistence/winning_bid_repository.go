package persistence

import (
	"context"
	"errors"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWinningBidRepository implements auction.WinningBidRepository using GORM
type GormWinningBidRepository struct {
	db *gorm.DB
}

// NewGormWinningBidRepository creates a new GormWinningBidRepository
func NewGormWinningBidRepository(db *gorm.DB) *GormWinningBidRepository {
	return &GormWinningBidRepository{db: db}
}

// FindForItem returns the winning bid for an item
func (r *GormWinningBidRepository) FindForItem(ctx context.Context, itemID uuid.UUID) (*auction.WinningBid, error) {
	var model models.WinningBidModel
	if err := r.db.WithContext(ctx).
		Where("auction_item_id = ?", itemID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForItemAndBuyer returns the winning bid only when it belongs to the buyer
func (r *GormWinningBidRepository) FindForItemAndBuyer(ctx context.Context, itemID, buyerID uuid.UUID) (*auction.WinningBid, error) {
	var model models.WinningBidModel
	if err := r.db.WithContext(ctx).
		Where("auction_item_id = ? AND buyer_id = ?", itemID, buyerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForBuyerInAuction returns all of a buyer's winning bids in an auction.
// Bids join through auction_items because winning_bids carries no auction column.
func (r *GormWinningBidRepository) FindForBuyerInAuction(ctx context.Context, buyerID, auctionID uuid.UUID) ([]auction.WinningBid, error) {
	var bidModels []models.WinningBidModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN auction_items ON auction_items.id = winning_bids.auction_item_id").
		Where("winning_bids.buyer_id = ? AND auction_items.auction_id = ?", buyerID, auctionID).
		Order("auction_items.lot_number ASC").
		Find(&bidModels).Error; err != nil {
		return nil, err
	}

	bids := make([]auction.WinningBid, len(bidModels))
	for i, model := range bidModels {
		bids[i] = *model.ToDomain()
	}
	return bids, nil
}
