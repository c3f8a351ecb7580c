package pdc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/propnest/pdc-engine/pkg/db/models"
	"github.com/propnest/pdc-engine/pkg/pagination"
)

// Repository defines persistence operations for cheque lifecycle tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePDC(ctx context.Context, pdc *models.PDC) (*models.PDC, error)
	CreatePDCs(ctx context.Context, pdcs []*models.PDC) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PDC, error)
	FindByIDWithHistory(ctx context.Context, id uuid.UUID) (*models.PDC, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*PDCList, error)
	ListWithdrawals(ctx context.Context, params pagination.Params, filters WithdrawalFilters) (*PDCList, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*PDCList, error)

	ChequeNumberTaken(ctx context.Context, tenantID uuid.UUID, chequeNumber string) (bool, error)
	ChequeNumbersTaken(ctx context.Context, tenantID uuid.UUID, chequeNumbers []string) ([]string, error)

	// UpdatePDCGuarded applies updates only when the stored version still
	// matches expectedVersion, returning the number of rows touched.
	UpdatePDCGuarded(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error)
	AppendHistory(ctx context.Context, entry *models.PDCStatusHistory) error

	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)

	TenantExists(ctx context.Context, id uuid.UUID) (bool, error)
	BankAccountExists(ctx context.Context, id uuid.UUID) (bool, error)

	FindDuePromotionCandidates(ctx context.Context, asOf time.Time, limit int) ([]models.PDC, error)

	CountTenantCheques(ctx context.Context, tenantID uuid.UUID) (total int64, cancelled int64, err error)
	CountTenantBounces(ctx context.Context, tenantID uuid.UUID) (int64, error)

	DueTotalsBetween(ctx context.Context, from, to time.Time) (*StatusTotals, error)
	DepositedTotals(ctx context.Context) (*StatusTotals, error)
	OutstandingValue(ctx context.Context) (decimal.Decimal, error)
	BouncedCountSince(ctx context.Context, since time.Time) (int64, error)
	UpcomingDue(ctx context.Context, asOf time.Time, limit int) ([]models.PDC, error)
	RecentDeposits(ctx context.Context, limit int) ([]models.PDC, error)
}
