package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormInvoiceRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNumber finds an invoice by its document number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuyerAndAuction returns the buyer's invoice for an auction
func (r *GormInvoiceRepository) FindByBuyerAndAuction(ctx context.Context, buyerID, auctionID uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND auction_id = ?", buyerID, auctionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel

	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})

	if filter.BuyerID != nil {
		query = query.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.AuctionID != nil {
		query = query.Where("auction_id = ?", *filter.AuctionID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Unsent {
		query = query.Where("sent_at IS NULL")
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.SortBy, InvoiceSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.SortOrder)
	if err := query.Order(sortField + " " + sortOrder).Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindUnsentUnpaidByAuction returns invoices eligible for batch dispatch
func (r *GormInvoiceRepository) FindUnsentUnpaidByAuction(ctx context.Context, auctionID uuid.UUID) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("auction_id = ? AND status = ? AND sent_at IS NULL", auctionID, billing.InvoiceStatusUnpaid).
		Order("invoice_number ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// ExistsForItem reports whether any non-cancelled invoice covers the item.
// This reads the claims table; the authoritative guard is its primary key,
// enforced when Save claims the items.
func (r *GormInvoiceRepository) ExistsForItem(ctx context.Context, auctionItemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InvoicedItemModel{}).
		Where("auction_item_id = ?", auctionItemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates the invoice or updates non-status fields, writing any pending
// domain events to the outbox within the same transaction.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	events := invoice.GetDomainEvents()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.InvoiceModelFromDomain(invoice)
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		if err := r.claimItems(tx, invoice); err != nil {
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

	invoice.ClearDomainEvents()
	return nil
}

// claimItems records one claim row per invoiced item. The primary key on
// auction_item_id makes duplicate invoicing lose at the database even when
// two creations race past the ExistsForItem pre-check: the conflicting
// insert only updates rows this invoice already holds, so a shortfall in
// affected rows means another live invoice covers one of the items.
func (r *GormInvoiceRepository) claimItems(tx *gorm.DB, invoice *billing.Invoice) error {
	if invoice.Status == billing.InvoiceStatusCancelled || len(invoice.LineItems) == 0 {
		return nil
	}

	claims := make([]models.InvoicedItemModel, 0, len(invoice.LineItems))
	for _, line := range invoice.LineItems {
		claims = append(claims, models.InvoicedItemModel{
			AuctionItemID: line.AuctionItemID,
			InvoiceID:     invoice.ID,
		})
	}

	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "auction_item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"invoice_id": invoice.ID}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "invoiced_items", Name: "invoice_id"}, Value: invoice.ID},
		}},
	}).Create(&claims)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected < int64(len(claims)) {
		return shared.NewValidationError("ALREADY_INVOICED",
			"An item on this invoice is already covered by another invoice")
	}
	return nil
}

// SaveTransition persists a status transition guarded by the previous status.
// The WHERE clause on the old status is the serialization point: when two
// processes race, exactly one update matches and the loser gets
// shared.ErrConcurrencyConflict.
func (r *GormInvoiceRepository) SaveTransition(ctx context.Context, invoice *billing.Invoice, fromStatus billing.InvoiceStatus) error {
	events := invoice.GetDomainEvents()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND status = ?", invoice.ID, fromStatus).
			Updates(map[string]interface{}{
				"status":               invoice.Status,
				"sent_at":              invoice.SentAt,
				"paid_at":              invoice.PaidAt,
				"payment_link_ref":     invoice.PaymentLinkRef,
				"automatic_charge_ref": invoice.AutomaticChargeRef,
				"cancelled_at":         invoice.CancelledAt,
				"cancel_reason":        invoice.CancelReason,
				"version":              invoice.Version,
				"updated_at":           invoice.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// either the row is gone or another process moved it first
			var count int64
			if err := tx.Model(&models.InvoiceModel{}).
				Where("id = ?", invoice.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		// a cancelled invoice releases its item claims so the items can be
		// re-invoiced
		if invoice.Status == billing.InvoiceStatusCancelled {
			if err := tx.Where("invoice_id = ?", invoice.ID).
				Delete(&models.InvoicedItemModel{}).Error; err != nil {
				return err
			}
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

	invoice.ClearDomainEvents()
	return nil
}
