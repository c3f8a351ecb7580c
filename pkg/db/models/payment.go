package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propnest/pdc-engine/pkg/enums"
)

// Payment is the audit record posted when a cheque clears against an
// invoice or when a withdrawal is settled through a substitute instrument.
// The (pdc_id, purpose) unique index guarantees a retried clear can never
// post a second settlement.
type Payment struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PDCID         uuid.UUID            `gorm:"column:pdc_id;type:uuid;not null;uniqueIndex:ux_payments_pdc_purpose" json:"pdcId"`
	TenantID      uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenantId"`
	InvoiceID     *uuid.UUID           `gorm:"column:invoice_id;type:uuid;index" json:"invoiceId,omitempty"`
	Purpose       enums.PaymentPurpose `gorm:"column:purpose;type:payment_purpose;not null;uniqueIndex:ux_payments_pdc_purpose" json:"purpose"`
	Method        enums.PaymentMethod  `gorm:"column:method;type:payment_method;not null" json:"method"`
	Amount        decimal.Decimal      `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	ExternalTxnID *string              `gorm:"column:external_txn_id;type:text" json:"externalTxnId,omitempty"`
	BankAccountID *uuid.UUID           `gorm:"column:bank_account_id;type:uuid" json:"bankAccountId,omitempty"`
	PostedAt      time.Time            `gorm:"column:posted_at;not null" json:"postedAt"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
