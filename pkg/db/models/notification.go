package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/propnest/pdc-engine/pkg/enums"
)

// Notification stores in-app notification payloads materialized by the
// notification worker from domain events.
type Notification struct {
	ID          uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Audience    enums.NotificationAudience `gorm:"column:audience;type:notification_audience;not null" json:"audience"`
	RecipientID uuid.UUID                  `gorm:"column:recipient_id;type:uuid;not null;index" json:"recipientId"`
	Type        enums.NotificationType     `gorm:"column:type;type:notification_type;not null" json:"type"`
	PDCID       *uuid.UUID                 `gorm:"column:pdc_id;type:uuid;index" json:"pdcId,omitempty"`
	Title       string                     `gorm:"column:title;type:text;not null" json:"title"`
	Message     string                     `gorm:"column:message;type:text;not null" json:"message"`
	ReadAt      *time.Time                 `gorm:"column:read_at;type:timestamptz" json:"readAt,omitempty"`
	CreatedAt   time.Time                  `gorm:"column:created_at;type:timestamptz;default:now()" json:"createdAt"`
}
