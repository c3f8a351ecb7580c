package pdc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/propnest/pdc-engine/pkg/db/models"
	"github.com/propnest/pdc-engine/pkg/enums"
	"github.com/propnest/pdc-engine/pkg/pagination"
)

func setupPDCTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// per-test shared-cache name so aggregate queries never see another test's rows
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	tenants := `
CREATE TABLE IF NOT EXISTS tenants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  manager_id TEXT NOT NULL,
  created_at DATETIME
);`
	bankAccounts := `
CREATE TABLE IF NOT EXISTS bank_accounts (
  id TEXT PRIMARY KEY,
  label TEXT NOT NULL,
  bank_name TEXT NOT NULL,
  account_number TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`
	pdcs := `
CREATE TABLE IF NOT EXISTS pdcs (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  lease_id TEXT,
  invoice_id TEXT,
  cheque_number TEXT NOT NULL,
  bank_name TEXT NOT NULL,
  amount TEXT NOT NULL,
  cheque_date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'received',
  deposit_date DATETIME,
  deposit_bank_account_id TEXT,
  cleared_date DATETIME,
  bounced_date DATETIME,
  bounce_reason TEXT,
  withdrawal_date DATETIME,
  withdrawal_reason TEXT,
  replacement_payment_method TEXT,
  original_cheque_id TEXT,
  replacement_cheque_id TEXT,
  version INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	history := `
CREATE TABLE IF NOT EXISTS pdc_status_history (
  id TEXT PRIMARY KEY,
  pdc_id TEXT NOT NULL,
  from_status TEXT NOT NULL,
  to_status TEXT NOT NULL,
  actor_id TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME
);`
	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  pdc_id TEXT NOT NULL,
  tenant_id TEXT NOT NULL,
  invoice_id TEXT,
  purpose TEXT NOT NULL,
  method TEXT NOT NULL,
  amount TEXT NOT NULL,
  external_txn_id TEXT,
  bank_account_id TEXT,
  posted_at DATETIME NOT NULL,
  created_at DATETIME,
  UNIQUE (pdc_id, purpose)
);`
	require.NoError(t, db.Exec(tenants).Error)
	require.NoError(t, db.Exec(bankAccounts).Error)
	require.NoError(t, db.Exec(pdcs).Error)
	require.NoError(t, db.Exec(history).Error)
	require.NoError(t, db.Exec(payments).Error)
	return db
}

func newTenantRow(t *testing.T, db *gorm.DB, name string) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      name,
		ManagerID: uuid.New(),
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func createChequeRow(t *testing.T, db *gorm.DB, tenantID uuid.UUID, number string, status enums.PDCStatus, chequeDate, created time.Time) *models.PDC {
	t.Helper()

	pdc := &models.PDC{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ChequeNumber: number,
		BankName:     "Mashreq",
		Amount:       decimal.NewFromInt(2500),
		ChequeDate:   chequeDate,
		Status:       status,
		Version:      1,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	require.NoError(t, db.Create(pdc).Error)
	return pdc
}

func TestRepositoryList_pagination(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenant := newTenantRow(t, db, "Tenant One")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createChequeRow(t, db, tenant.ID, fmt.Sprintf("CHQ-%03d", i), enums.PDCStatusReceived,
			base.AddDate(0, 1, 0), base.Add(time.Duration(i)*time.Hour))
	}

	page1, err := repo.List(context.Background(), pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.Equal(t, "CHQ-004", page1.Items[0].ChequeNumber)
	assert.Equal(t, "CHQ-003", page1.Items[1].ChequeNumber)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: page1.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "CHQ-002", page2.Items[0].ChequeNumber)
	assert.Equal(t, "CHQ-001", page2.Items[1].ChequeNumber)
	require.NotEmpty(t, page2.NextCursor)

	page3, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: page2.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.Equal(t, "CHQ-000", page3.Items[0].ChequeNumber)
	assert.Empty(t, page3.NextCursor)
}

func TestRepositoryList_filters(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenantA := newTenantRow(t, db, "Tenant A")
	tenantB := newTenantRow(t, db, "Tenant B")

	now := time.Now()
	deposited := createChequeRow(t, db, tenantA.ID, "CHQ-001", enums.PDCStatusDeposited, now, now)
	createChequeRow(t, db, tenantA.ID, "CHQ-002", enums.PDCStatusReceived, now, now.Add(time.Minute))
	createChequeRow(t, db, tenantB.ID, "CHQ-003", enums.PDCStatusDeposited, now, now.Add(2*time.Minute))

	status := enums.PDCStatusDeposited
	list, err := repo.List(context.Background(), pagination.Params{}, ListFilters{Status: &status, TenantID: &tenantA.ID})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, deposited.ID, list.Items[0].ID)
}

func TestRepositoryChequeNumberTaken_ignoresCancelled(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenant := newTenantRow(t, db, "Tenant One")

	now := time.Now()
	createChequeRow(t, db, tenant.ID, "CHQ-001", enums.PDCStatusCancelled, now, now)
	createChequeRow(t, db, tenant.ID, "CHQ-002", enums.PDCStatusCleared, now, now)

	taken, err := repo.ChequeNumberTaken(context.Background(), tenant.ID, "CHQ-001")
	require.NoError(t, err)
	assert.False(t, taken, "cancelled cheque should release its number")

	taken, err = repo.ChequeNumberTaken(context.Background(), tenant.ID, "CHQ-002")
	require.NoError(t, err)
	assert.True(t, taken, "cleared cheque keeps its number reserved")

	hits, err := repo.ChequeNumbersTaken(context.Background(), tenant.ID, []string{"CHQ-001", "CHQ-002", "CHQ-003"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CHQ-002"}, hits)
}

func TestRepositoryChequeNumberTaken_scopedToTenant(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenantA := newTenantRow(t, db, "Tenant A")
	tenantB := newTenantRow(t, db, "Tenant B")

	now := time.Now()
	createChequeRow(t, db, tenantA.ID, "CHQ-001", enums.PDCStatusReceived, now, now)

	taken, err := repo.ChequeNumberTaken(context.Background(), tenantB.ID, "CHQ-001")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestRepositoryUpdatePDCGuarded(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenant := newTenantRow(t, db, "Tenant One")

	now := time.Now()
	pdc := createChequeRow(t, db, tenant.ID, "CHQ-001", enums.PDCStatusReceived, now, now)

	rows, err := repo.UpdatePDCGuarded(context.Background(), pdc.ID, 1, map[string]any{
		"status": enums.PDCStatusDue,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	updated, err := repo.FindByID(context.Background(), pdc.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PDCStatusDue, updated.Status)
	assert.Equal(t, int64(2), updated.Version)

	// same token again: the row moved on, the write must not land
	rows, err = repo.UpdatePDCGuarded(context.Background(), pdc.ID, 1, map[string]any{
		"status": enums.PDCStatusDeposited,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	unchanged, err := repo.FindByID(context.Background(), pdc.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PDCStatusDue, unchanged.Status)
	assert.Equal(t, int64(2), unchanged.Version)
}

func TestRepositoryHistoryRoundTrip(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenant := newTenantRow(t, db, "Tenant One")

	now := time.Now()
	pdc := createChequeRow(t, db, tenant.ID, "CHQ-001", enums.PDCStatusDeposited, now, now)

	actor := uuid.New()
	first := &models.PDCStatusHistory{
		ID:         uuid.New(),
		PDCID:      pdc.ID,
		FromStatus: enums.PDCStatusReceived,
		ToStatus:   enums.PDCStatusDue,
		ActorID:    actor,
		CreatedAt:  now.Add(-time.Hour),
	}
	second := &models.PDCStatusHistory{
		ID:         uuid.New(),
		PDCID:      pdc.ID,
		FromStatus: enums.PDCStatusDue,
		ToStatus:   enums.PDCStatusDeposited,
		ActorID:    actor,
		CreatedAt:  now,
	}
	// insert newest first to prove the read path orders by time
	require.NoError(t, repo.AppendHistory(context.Background(), second))
	require.NoError(t, repo.AppendHistory(context.Background(), first))

	loaded, err := repo.FindByIDWithHistory(context.Background(), pdc.ID)
	require.NoError(t, err)
	require.Len(t, loaded.History, 2)
	assert.Equal(t, enums.PDCStatusDue, loaded.History[0].ToStatus)
	assert.Equal(t, enums.PDCStatusDeposited, loaded.History[1].ToStatus)
}

func TestRepositoryCreatePaymentEnforcesOnePerPurpose(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenant := newTenantRow(t, db, "Tenant One")

	now := time.Now()
	pdc := createChequeRow(t, db, tenant.ID, "CHQ-001", enums.PDCStatusDeposited, now, now)

	payment := &models.Payment{
		ID:       uuid.New(),
		PDCID:    pdc.ID,
		TenantID: tenant.ID,
		Purpose:  enums.PaymentPurposeInvoiceSettlement,
		Method:   enums.PaymentMethodCheque,
		Amount:   pdc.Amount,
		PostedAt: now,
	}
	_, err := repo.CreatePayment(context.Background(), payment)
	require.NoError(t, err)

	duplicate := &models.Payment{
		ID:       uuid.New(),
		PDCID:    pdc.ID,
		TenantID: tenant.ID,
		Purpose:  enums.PaymentPurposeInvoiceSettlement,
		Method:   enums.PaymentMethodCheque,
		Amount:   pdc.Amount,
		PostedAt: now,
	}
	_, err = repo.CreatePayment(context.Background(), duplicate)
	require.Error(t, err)
}

func TestRepositoryCountTenantBounces(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenantA := newTenantRow(t, db, "Tenant A")
	tenantB := newTenantRow(t, db, "Tenant B")

	now := time.Now()
	bounced := createChequeRow(t, db, tenantA.ID, "CHQ-001", enums.PDCStatusReplaced, now, now)
	other := createChequeRow(t, db, tenantB.ID, "CHQ-002", enums.PDCStatusBounced, now, now)

	require.NoError(t, repo.AppendHistory(context.Background(), &models.PDCStatusHistory{
		ID: uuid.New(), PDCID: bounced.ID,
		FromStatus: enums.PDCStatusDeposited, ToStatus: enums.PDCStatusBounced,
		ActorID: uuid.New(), CreatedAt: now,
	}))
	require.NoError(t, repo.AppendHistory(context.Background(), &models.PDCStatusHistory{
		ID: uuid.New(), PDCID: bounced.ID,
		FromStatus: enums.PDCStatusBounced, ToStatus: enums.PDCStatusReplaced,
		ActorID: uuid.New(), CreatedAt: now,
	}))
	require.NoError(t, repo.AppendHistory(context.Background(), &models.PDCStatusHistory{
		ID: uuid.New(), PDCID: other.ID,
		FromStatus: enums.PDCStatusDeposited, ToStatus: enums.PDCStatusBounced,
		ActorID: uuid.New(), CreatedAt: now,
	}))

	count, err := repo.CountTenantBounces(context.Background(), tenantA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	total, cancelled, err := repo.CountTenantCheques(context.Background(), tenantA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(0), cancelled)
}

func TestRepositoryDashboardAggregates(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenant := newTenantRow(t, db, "Tenant One")

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	createChequeRow(t, db, tenant.ID, "CHQ-001", enums.PDCStatusDue, now.AddDate(0, 0, 2), now)
	createChequeRow(t, db, tenant.ID, "CHQ-002", enums.PDCStatusDue, now.AddDate(0, 0, 30), now)
	deposited := createChequeRow(t, db, tenant.ID, "CHQ-003", enums.PDCStatusDeposited, now, now)
	createChequeRow(t, db, tenant.ID, "CHQ-004", enums.PDCStatusCleared, now, now)
	createChequeRow(t, db, tenant.ID, "CHQ-005", enums.PDCStatusReceived, now.AddDate(0, 1, 0), now)

	due, err := repo.DueTotalsBetween(context.Background(), now, now.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, int64(1), due.Count)
	assert.True(t, due.Amount.Equal(decimal.NewFromInt(2500)), "got %s", due.Amount)

	dep, err := repo.DepositedTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), dep.Count)
	assert.True(t, dep.Amount.Equal(decimal.NewFromInt(2500)))

	// received + due + deposited, cleared excluded
	outstanding, err := repo.OutstandingValue(context.Background())
	require.NoError(t, err)
	assert.True(t, outstanding.Equal(decimal.NewFromInt(10000)), "got %s", outstanding)

	require.NoError(t, repo.AppendHistory(context.Background(), &models.PDCStatusHistory{
		ID: uuid.New(), PDCID: deposited.ID,
		FromStatus: enums.PDCStatusDeposited, ToStatus: enums.PDCStatusBounced,
		ActorID: uuid.New(), CreatedAt: now,
	}))
	bouncedCount, err := repo.BouncedCountSince(context.Background(), now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(1), bouncedCount)

	upcoming, err := repo.UpcomingDue(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.Equal(t, "CHQ-001", upcoming[0].ChequeNumber)

	deposits, err := repo.RecentDeposits(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, deposited.ID, deposits[0].ID)
}

func TestRepositoryListWithdrawals(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenant := newTenantRow(t, db, "Tenant One")

	now := time.Now()
	withdrawn := createChequeRow(t, db, tenant.ID, "CHQ-001", enums.PDCStatusWithdrawn, now, now)
	reason := "lease terminated early"
	date := now.AddDate(0, 0, -1)
	require.NoError(t, db.Model(withdrawn).Updates(map[string]any{
		"withdrawal_reason": reason,
		"withdrawal_date":   date,
	}).Error)
	createChequeRow(t, db, tenant.ID, "CHQ-002", enums.PDCStatusReceived, now, now)

	list, err := repo.ListWithdrawals(context.Background(), pagination.Params{}, WithdrawalFilters{Reason: &reason})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, withdrawn.ID, list.Items[0].ID)

	from := now.Add(time.Hour)
	list, err = repo.ListWithdrawals(context.Background(), pagination.Params{}, WithdrawalFilters{DateFrom: &from})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestRepositoryReferenceChecks(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenant := newTenantRow(t, db, "Tenant One")

	exists, err := repo.TenantExists(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.TenantExists(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)

	account := &models.BankAccount{
		ID:            uuid.New(),
		Label:         "Operations",
		BankName:      "Mashreq",
		AccountNumber: "AE12 3456",
		Active:        true,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(account).Error)
	inactive := &models.BankAccount{
		ID:            uuid.New(),
		Label:         "Closed",
		BankName:      "Mashreq",
		AccountNumber: "AE99 9999",
		Active:        false,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(inactive).Error)

	exists, err = repo.BankAccountExists(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.BankAccountExists(context.Background(), inactive.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositoryFindDuePromotionCandidates(t *testing.T) {
	db := setupPDCTestDB(t)
	repo := NewRepository(db)
	tenant := newTenantRow(t, db, "Tenant One")

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mature := createChequeRow(t, db, tenant.ID, "CHQ-001", enums.PDCStatusReceived, now.AddDate(0, 0, -3), now)
	createChequeRow(t, db, tenant.ID, "CHQ-002", enums.PDCStatusReceived, now.AddDate(0, 0, 3), now)
	createChequeRow(t, db, tenant.ID, "CHQ-003", enums.PDCStatusDue, now.AddDate(0, 0, -3), now)

	candidates, err := repo.FindDuePromotionCandidates(context.Background(), now, 50)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, mature.ID, candidates[0].ID)
}
