package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propnest/pdc-engine/pkg/enums"
)

// PDC represents a post-dated cheque tracked through its lifecycle. The
// status column only changes through the transition engine; rows are never
// hard-deleted so historical cheque numbers stay visible to the uniqueness
// check.
type PDC struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID  uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenantId"`
	LeaseID   *uuid.UUID `gorm:"column:lease_id;type:uuid" json:"leaseId,omitempty"`
	InvoiceID *uuid.UUID `gorm:"column:invoice_id;type:uuid" json:"invoiceId,omitempty"`

	ChequeNumber string          `gorm:"column:cheque_number;type:text;not null" json:"chequeNumber"`
	BankName     string          `gorm:"column:bank_name;type:text;not null" json:"bankName"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	ChequeDate   time.Time       `gorm:"column:cheque_date;type:date;not null;index" json:"chequeDate"`

	Status enums.PDCStatus `gorm:"column:status;type:pdc_status;not null;default:'received';index" json:"status"`

	DepositDate          *time.Time `gorm:"column:deposit_date;type:date" json:"depositDate,omitempty"`
	DepositBankAccountID *uuid.UUID `gorm:"column:deposit_bank_account_id;type:uuid" json:"depositBankAccountId,omitempty"`
	ClearedDate          *time.Time `gorm:"column:cleared_date;type:date" json:"clearedDate,omitempty"`
	BouncedDate          *time.Time `gorm:"column:bounced_date;type:date" json:"bouncedDate,omitempty"`
	BounceReason         *string    `gorm:"column:bounce_reason;type:text" json:"bounceReason,omitempty"`

	WithdrawalDate           *time.Time           `gorm:"column:withdrawal_date;type:date;index" json:"withdrawalDate,omitempty"`
	WithdrawalReason         *string              `gorm:"column:withdrawal_reason;type:text;index" json:"withdrawalReason,omitempty"`
	ReplacementPaymentMethod *enums.PaymentMethod `gorm:"column:replacement_payment_method;type:payment_method" json:"replacementPaymentMethod,omitempty"`

	OriginalChequeID    *uuid.UUID `gorm:"column:original_cheque_id;type:uuid" json:"originalChequeId,omitempty"`
	ReplacementChequeID *uuid.UUID `gorm:"column:replacement_cheque_id;type:uuid" json:"replacementChequeId,omitempty"`

	Version   int64     `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	History []PDCStatusHistory `gorm:"foreignKey:PDCID;constraint:OnDelete:CASCADE" json:"history,omitempty"`
}

// TableName overrides gorm's pluralization.
func (PDC) TableName() string { return "pdcs" }

// PDCStatusHistory is the append-only audit trail of status changes. Rows
// are never updated or deleted.
type PDCStatusHistory struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PDCID      uuid.UUID       `gorm:"column:pdc_id;type:uuid;not null;index" json:"pdcId"`
	FromStatus enums.PDCStatus `gorm:"column:from_status;type:pdc_status" json:"fromStatus"`
	ToStatus   enums.PDCStatus `gorm:"column:to_status;type:pdc_status;not null;index" json:"toStatus"`
	ActorID    uuid.UUID       `gorm:"column:actor_id;type:uuid;not null" json:"actorId"`
	Notes      *string         `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
}

// TableName overrides gorm's pluralization.
func (PDCStatusHistory) TableName() string { return "pdc_status_history" }
