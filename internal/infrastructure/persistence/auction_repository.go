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

// GormAuctionRepository implements auction.AuctionRepository using GORM
type GormAuctionRepository struct {
	db *gorm.DB
}

// NewGormAuctionRepository creates a new GormAuctionRepository
func NewGormAuctionRepository(db *gorm.DB) *GormAuctionRepository {
	return &GormAuctionRepository{db: db}
}

// FindByID finds an auction by its ID
func (r *GormAuctionRepository) FindByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	var model models.AuctionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormAuctionItemRepository implements auction.ItemRepository using GORM
type GormAuctionItemRepository struct {
	db *gorm.DB
}

// NewGormAuctionItemRepository creates a new GormAuctionItemRepository
func NewGormAuctionItemRepository(db *gorm.DB) *GormAuctionItemRepository {
	return &GormAuctionItemRepository{db: db}
}

// FindByID finds an auction item by its ID
func (r *GormAuctionItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*auction.Item, error) {
	var model models.AuctionItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAuction returns all lots in an auction, ordered by lot number
func (r *GormAuctionItemRepository) FindByAuction(ctx context.Context, auctionID uuid.UUID) ([]auction.Item, error) {
	var itemModels []models.AuctionItemModel
	if err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("lot_number ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return itemModelsToDomain(itemModels), nil
}

// FindBySellerAndAuction returns a seller's lots in an auction, ordered by lot number
func (r *GormAuctionItemRepository) FindBySellerAndAuction(ctx context.Context, sellerID, auctionID uuid.UUID) ([]auction.Item, error) {
	var itemModels []models.AuctionItemModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND auction_id = ?", sellerID, auctionID).
		Order("lot_number ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return itemModelsToDomain(itemModels), nil
}

func itemModelsToDomain(itemModels []models.AuctionItemModel) []auction.Item {
	items := make([]auction.Item, len(itemModels))
	for i, model := range itemModels {
		items[i] = *model.ToDomain()
	}
	return items
}
