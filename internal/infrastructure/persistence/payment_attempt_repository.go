package persistence

import (
	"context"

	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentAttemptRepository implements billing.PaymentAttemptRepository using GORM
type GormPaymentAttemptRepository struct {
	db *gorm.DB
}

// NewGormPaymentAttemptRepository creates a new GormPaymentAttemptRepository
func NewGormPaymentAttemptRepository(db *gorm.DB) *GormPaymentAttemptRepository {
	return &GormPaymentAttemptRepository{db: db}
}

// Save appends an attempt record. Attempts are never updated.
func (r *GormPaymentAttemptRepository) Save(ctx context.Context, attempt *billing.PaymentAttempt) error {
	model := models.PaymentAttemptModelFromDomain(attempt)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByInvoice returns the attempt history for an invoice, oldest first
func (r *GormPaymentAttemptRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.PaymentAttempt, error) {
	var attemptModels []models.PaymentAttemptModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&attemptModels).Error; err != nil {
		return nil, err
	}

	attempts := make([]billing.PaymentAttempt, len(attemptModels))
	for i, model := range attemptModels {
		attempts[i] = *model.ToDomain()
	}
	return attempts, nil
}
