package models

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationModel is the persistence model for durable recipient notifications
type NotificationModel struct {
	BaseModel
	RecipientID uuid.UUID            `gorm:"type:uuid;not null;index:idx_notifications_recipient_created,priority:1"`
	Kind        notification.Kind    `gorm:"type:varchar(40);not null"`
	Title       string               `gorm:"type:varchar(255);not null"`
	Payload     notification.Payload `gorm:"type:jsonb;not null"`
	ReadAt      *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity:  m.BaseModel.ToDomain(),
		RecipientID: m.RecipientID,
		Kind:        m.Kind,
		Title:       m.Title,
		Payload:     m.Payload,
		ReadAt:      m.ReadAt,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		RecipientID: n.RecipientID,
		Kind:        n.Kind,
		Title:       n.Title,
		Payload:     n.Payload,
		ReadAt:      n.ReadAt,
	}
	m.FromDomainBaseEntity(n.BaseEntity)
	return m
}
