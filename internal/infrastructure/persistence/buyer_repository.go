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

// GormBuyerRepository implements auction.BuyerRepository using GORM
type GormBuyerRepository struct {
	db *gorm.DB
}

// NewGormBuyerRepository creates a new GormBuyerRepository
func NewGormBuyerRepository(db *gorm.DB) *GormBuyerRepository {
	return &GormBuyerRepository{db: db}
}

// FindByID finds a buyer by their ID
func (r *GormBuyerRepository) FindByID(ctx context.Context, id uuid.UUID) (*auction.Buyer, error) {
	var model models.BuyerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists buyer updates
func (r *GormBuyerRepository) Save(ctx context.Context, buyer *auction.Buyer) error {
	model, err := models.BuyerModelFromDomain(buyer)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}
