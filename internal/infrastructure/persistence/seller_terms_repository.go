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

// GormSellerTermsRepository implements auction.SellerTermsRepository using GORM
type GormSellerTermsRepository struct {
	db *gorm.DB
}

// NewGormSellerTermsRepository creates a new GormSellerTermsRepository
func NewGormSellerTermsRepository(db *gorm.DB) *GormSellerTermsRepository {
	return &GormSellerTermsRepository{db: db}
}

// FindBySeller returns the commercial terms agreed with a seller
func (r *GormSellerTermsRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID) (*auction.SellerTerms, error) {
	var model models.SellerTermsModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
