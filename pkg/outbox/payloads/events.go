package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChequeDueEvent is emitted when a cheque crosses its cheque date.
type ChequeDueEvent struct {
	PDCID        uuid.UUID       `json:"pdcId"`
	TenantID     uuid.UUID       `json:"tenantId"`
	ChequeNumber string          `json:"chequeNumber"`
	Amount       decimal.Decimal `json:"amount"`
	ChequeDate   time.Time       `json:"chequeDate"`
}

// ChequeClearedEvent surfaces the settlement fields once funds have landed.
type ChequeClearedEvent struct {
	PDCID        uuid.UUID       `json:"pdcId"`
	TenantID     uuid.UUID       `json:"tenantId"`
	InvoiceID    *uuid.UUID      `json:"invoiceId,omitempty"`
	PaymentID    uuid.UUID       `json:"paymentId"`
	ChequeNumber string          `json:"chequeNumber"`
	Amount       decimal.Decimal `json:"amount"`
	ClearedAt    time.Time       `json:"clearedAt"`
}

// ChequeBouncedEvent tells downstream systems a deposit failed.
type ChequeBouncedEvent struct {
	PDCID        uuid.UUID       `json:"pdcId"`
	TenantID     uuid.UUID       `json:"tenantId"`
	ChequeNumber string          `json:"chequeNumber"`
	Amount       decimal.Decimal `json:"amount"`
	BounceReason string          `json:"bounceReason"`
	BouncedAt    time.Time       `json:"bouncedAt"`
}

// ChequeReplacedEvent links a bounced cheque to its replacement.
type ChequeReplacedEvent struct {
	OriginalPDCID    uuid.UUID       `json:"originalPdcId"`
	ReplacementPDCID uuid.UUID       `json:"replacementPdcId"`
	TenantID         uuid.UUID       `json:"tenantId"`
	ChequeNumber     string          `json:"chequeNumber"`
	Amount           decimal.Decimal `json:"amount"`
}

// ChequeWithdrawnEvent is emitted when a cheque is pulled before deposit.
type ChequeWithdrawnEvent struct {
	PDCID               uuid.UUID  `json:"pdcId"`
	TenantID            uuid.UUID  `json:"tenantId"`
	ChequeNumber        string     `json:"chequeNumber"`
	WithdrawalReason    string     `json:"withdrawalReason"`
	SubstitutePaymentID *uuid.UUID `json:"substitutePaymentId,omitempty"`
	WithdrawnAt         time.Time  `json:"withdrawnAt"`
}
