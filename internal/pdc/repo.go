package pdc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/propnest/pdc-engine/pkg/db/models"
	"github.com/propnest/pdc-engine/pkg/enums"
	"github.com/propnest/pdc-engine/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cheque repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePDC(ctx context.Context, pdc *models.PDC) (*models.PDC, error) {
	if err := r.db.WithContext(ctx).Create(pdc).Error; err != nil {
		return nil, err
	}
	return pdc, nil
}

func (r *repository) CreatePDCs(ctx context.Context, pdcs []*models.PDC) error {
	if len(pdcs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&pdcs).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PDC, error) {
	var pdc models.PDC
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&pdc).Error
	if err != nil {
		return nil, err
	}
	return &pdc, nil
}

func (r *repository) FindByIDWithHistory(ctx context.Context, id uuid.UUID) (*models.PDC, error) {
	var pdc models.PDC
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&pdc).Error
	if err != nil {
		return nil, err
	}
	return &pdc, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*PDCList, error) {
	query := r.db.WithContext(ctx).Model(&models.PDC{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.TenantID != nil {
		query = query.Where("tenant_id = ?", *filters.TenantID)
	}
	if filters.BankName != nil {
		query = query.Where("bank_name LIKE ?", "%"+*filters.BankName+"%")
	}
	if filters.DateFrom != nil {
		query = query.Where("cheque_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("cheque_date <= ?", *filters.DateTo)
	}
	return r.paginate(query, params)
}

func (r *repository) ListWithdrawals(ctx context.Context, params pagination.Params, filters WithdrawalFilters) (*PDCList, error) {
	query := r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("status = ?", enums.PDCStatusWithdrawn)
	if filters.Reason != nil {
		query = query.Where("withdrawal_reason = ?", *filters.Reason)
	}
	if filters.DateFrom != nil {
		query = query.Where("withdrawal_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("withdrawal_date <= ?", *filters.DateTo)
	}
	return r.paginate(query, params)
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*PDCList, error) {
	query := r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("tenant_id = ?", tenantID)
	return r.paginate(query, params)
}

func (r *repository) paginate(query *gorm.DB, params pagination.Params) (*PDCList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.PDC
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &PDCList{Items: rows}
	if len(rows) > limit {
		list.Items = rows[:limit]
		last := list.Items[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) ChequeNumberTaken(ctx context.Context, tenantID uuid.UUID, chequeNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("tenant_id = ? AND cheque_number = ? AND status <> ?", tenantID, chequeNumber, enums.PDCStatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ChequeNumbersTaken(ctx context.Context, tenantID uuid.UUID, chequeNumbers []string) ([]string, error) {
	if len(chequeNumbers) == 0 {
		return nil, nil
	}
	var taken []string
	err := r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("tenant_id = ? AND cheque_number IN ? AND status <> ?", tenantID, chequeNumbers, enums.PDCStatusCancelled).
		Pluck("cheque_number", &taken).Error
	if err != nil {
		return nil, err
	}
	return taken, nil
}

func (r *repository) UpdatePDCGuarded(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error) {
	updates["version"] = gorm.Expr("version + 1")
	res := r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.PDCStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) TenantExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) BankAccountExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BankAccount{}).
		Where("id = ? AND active = ?", id, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindDuePromotionCandidates(ctx context.Context, asOf time.Time, limit int) ([]models.PDC, error) {
	var rows []models.PDC
	err := r.db.WithContext(ctx).
		Where("status = ? AND cheque_date <= ?", enums.PDCStatusReceived, asOf).
		Order("cheque_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountTenantCheques(ctx context.Context, tenantID uuid.UUID) (int64, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	var cancelled int64
	err = r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("tenant_id = ? AND status = ?", tenantID, enums.PDCStatusCancelled).
		Count(&cancelled).Error
	if err != nil {
		return 0, 0, err
	}
	return total, cancelled, nil
}

func (r *repository) CountTenantBounces(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PDCStatusHistory{}).
		Joins("JOIN pdcs ON pdcs.id = pdc_status_history.pdc_id").
		Where("pdcs.tenant_id = ? AND pdc_status_history.to_status = ?", tenantID, enums.PDCStatusBounced).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) DueTotalsBetween(ctx context.Context, from, to time.Time) (*StatusTotals, error) {
	return r.statusTotals(ctx, r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("status = ? AND cheque_date >= ? AND cheque_date <= ?", enums.PDCStatusDue, from, to))
}

func (r *repository) DepositedTotals(ctx context.Context) (*StatusTotals, error) {
	return r.statusTotals(ctx, r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("status = ?", enums.PDCStatusDeposited))
}

func (r *repository) statusTotals(ctx context.Context, query *gorm.DB) (*StatusTotals, error) {
	var row struct {
		Count  int64
		Amount decimal.Decimal
	}
	err := query.
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &StatusTotals{Count: row.Count, Amount: row.Amount}, nil
}

func (r *repository) OutstandingValue(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Amount decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.PDC{}).
		Where("status IN ?", enums.OutstandingStatuses()).
		Select("COALESCE(SUM(amount), 0) AS amount").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Amount, nil
}

func (r *repository) BouncedCountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PDCStatusHistory{}).
		Where("to_status = ? AND created_at >= ?", enums.PDCStatusBounced, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) UpcomingDue(ctx context.Context, asOf time.Time, limit int) ([]models.PDC, error) {
	var rows []models.PDC
	err := r.db.WithContext(ctx).
		Where("status IN ? AND cheque_date >= ?", []enums.PDCStatus{enums.PDCStatusReceived, enums.PDCStatusDue}, asOf).
		Order("cheque_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) RecentDeposits(ctx context.Context, limit int) ([]models.PDC, error) {
	var rows []models.PDC
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.PDCStatusDeposited).
		Order("deposit_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
