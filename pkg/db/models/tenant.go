package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a reference row owned by the tenancy service; this engine only
// checks existence so unknown ids fail closed instead of creating orphaned
// cheques.
type Tenant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	ManagerID uuid.UUID `gorm:"column:manager_id;type:uuid;not null" json:"managerId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
