package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/auctionhouse/backend/internal/domain/settlement"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStatementRepository implements settlement.StatementRepository using GORM
type GormStatementRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormStatementRepository creates a new GormStatementRepository
func NewGormStatementRepository(db *gorm.DB) *GormStatementRepository {
	return &GormStatementRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormStatementRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a statement by its ID
func (r *GormStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Statement, error) {
	var model models.StatementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySellerAndAuction returns the seller's statement for an auction
func (r *GormStatementRepository) FindBySellerAndAuction(ctx context.Context, sellerID, auctionID uuid.UUID) (*settlement.Statement, error) {
	var model models.StatementModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND auction_id = ?", sellerID, auctionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAuction returns all statements drafted for an auction
func (r *GormStatementRepository) FindByAuction(ctx context.Context, auctionID uuid.UUID) ([]settlement.Statement, error) {
	var statementModels []models.StatementModel
	if err := r.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("statement_number ASC").
		Find(&statementModels).Error; err != nil {
		return nil, err
	}

	statements := make([]settlement.Statement, len(statementModels))
	for i, model := range statementModels {
		statements[i] = *model.ToDomain()
	}
	return statements, nil
}

// Save persists the statement and writes any pending domain events to the
// outbox within the same transaction.
func (r *GormStatementRepository) Save(ctx context.Context, statement *settlement.Statement) error {
	events := statement.GetDomainEvents()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.StatementModelFromDomain(statement)
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	statement.ClearDomainEvents()
	return nil
}
