package models

import (
	"time"

	"github.com/google/uuid"
)

// BankAccount is a deposit destination configured by the agency. Deposit
// requests referencing an unknown account are rejected.
type BankAccount struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Label         string    `gorm:"column:label;type:text;not null" json:"label"`
	BankName      string    `gorm:"column:bank_name;type:text;not null" json:"bankName"`
	AccountNumber string    `gorm:"column:account_number;type:text;not null" json:"accountNumber"`
	Active        bool      `gorm:"column:active;not null" json:"active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
