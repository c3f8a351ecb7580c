package pdc

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propnest/pdc-engine/pkg/db/models"
	"github.com/propnest/pdc-engine/pkg/enums"
)

// Actor identifies the authenticated caller driving a lifecycle change.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// ChequeSpec is one cheque inside a create or bulk-create request.
type ChequeSpec struct {
	ChequeNumber string
	BankName     string
	Amount       decimal.Decimal
	ChequeDate   time.Time
}

// CreateInput carries the single-create request.
type CreateInput struct {
	TenantID  uuid.UUID
	LeaseID   *uuid.UUID
	InvoiceID *uuid.UUID
	Cheque    ChequeSpec
	Actor     Actor
}

// BulkCreateInput carries an atomic batch of cheques for one tenant/lease.
type BulkCreateInput struct {
	TenantID  uuid.UUID
	LeaseID   *uuid.UUID
	InvoiceID *uuid.UUID
	Cheques   []ChequeSpec
	Actor     Actor
}

// DepositInput moves a due cheque into the deposited state.
type DepositInput struct {
	PDCID           uuid.UUID
	DepositDate     time.Time
	BankAccountID   uuid.UUID
	ExpectedVersion int64
	Actor           Actor
}

// ClearInput settles a deposited cheque.
type ClearInput struct {
	PDCID           uuid.UUID
	ClearedDate     time.Time
	ExpectedVersion int64
	Actor           Actor
}

// BounceInput records a bank rejection of a deposited cheque.
type BounceInput struct {
	PDCID           uuid.UUID
	BouncedDate     time.Time
	BounceReason    string
	ExpectedVersion int64
	Actor           Actor
}

// ReplaceInput swaps a bounced cheque for a fresh instrument.
type ReplaceInput struct {
	PDCID           uuid.UUID
	Cheque          ChequeSpec
	ExpectedVersion int64
	Actor           Actor
}

// ReplaceResult returns both sides of the new chain link.
type ReplaceResult struct {
	Original    *models.PDC
	Replacement *models.PDC
}

// SubstitutePayment captures an alternate settlement supplied at withdrawal.
type SubstitutePayment struct {
	Method        enums.PaymentMethod
	Amount        decimal.Decimal
	ExternalTxnID *string
	BankAccountID *uuid.UUID
}

// WithdrawInput returns a cheque to the tenant before deposit.
type WithdrawInput struct {
	PDCID           uuid.UUID
	WithdrawalDate  time.Time
	Reason          string
	Substitute      *SubstitutePayment
	ExpectedVersion int64
	Actor           Actor
}

// CancelInput voids a cheque created in error.
type CancelInput struct {
	PDCID           uuid.UUID
	Notes           *string
	ExpectedVersion int64
	Actor           Actor
}

// ListFilters narrows the general cheque listing.
type ListFilters struct {
	Status   *enums.PDCStatus
	TenantID *uuid.UUID
	BankName *string
	DateFrom *time.Time
	DateTo   *time.Time
}

// WithdrawalFilters narrows the withdrawal history view.
type WithdrawalFilters struct {
	Reason   *string
	DateFrom *time.Time
	DateTo   *time.Time
}

// PDCList is one page of cheques plus the cursor for the next page.
type PDCList struct {
	Items      []models.PDC
	NextCursor string
}

// StatusTotals pairs a row count with the summed cheque amount.
type StatusTotals struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DashboardSnapshot is the KPI bundle computed in a single consistent read.
type DashboardSnapshot struct {
	DueThisWeek           StatusTotals    `json:"dueThisWeek"`
	Deposited             StatusTotals    `json:"deposited"`
	TotalOutstandingValue decimal.Decimal `json:"totalOutstandingValue"`
	RecentlyBouncedCount  int64           `json:"recentlyBouncedCount"`
	UpcomingDue           []models.PDC    `json:"upcomingDue"`
	RecentDeposits        []models.PDC    `json:"recentDeposits"`
	GeneratedAt           time.Time       `json:"generatedAt"`
}

// TenantHistory is the per-tenant listing plus the bounce rate KPI.
type TenantHistory struct {
	Items          []models.PDC    `json:"items"`
	NextCursor     string          `json:"nextCursor,omitempty"`
	TotalCheques   int64           `json:"totalCheques"`
	CancelledCount int64           `json:"cancelledCount"`
	BouncedCount   int64           `json:"bouncedCount"`
	BounceRate     decimal.Decimal `json:"bounceRate"`
}
