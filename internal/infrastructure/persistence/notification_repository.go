package persistence

import (
	"context"
	"time"

	"github.com/auctionhouse/backend/internal/domain/notification"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Save persists one or more notifications in a single transaction
func (r *GormNotificationRepository) Save(ctx context.Context, notifications ...*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	notificationModels := make([]*models.NotificationModel, len(notifications))
	for i, n := range notifications {
		notificationModels[i] = models.NotificationModelFromDomain(n)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range notificationModels {
			if err := tx.Save(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByRecipient returns the recipient's notifications, newest first
func (r *GormNotificationRepository) FindByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var notificationModels []models.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notificationModels).Error; err != nil {
		return nil, err
	}

	notifications := make([]notification.Notification, len(notificationModels))
	for i, model := range notificationModels {
		notifications[i] = *model.ToDomain()
	}
	return notifications, nil
}

// MarkRead stamps the read time on an unread notification. Re-reading an
// already-read notification keeps the original timestamp.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("id = ? AND read_at IS NULL", id).
		Updates(map[string]interface{}{
			"read_at":    time.Now(),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
	}
	return nil
}
