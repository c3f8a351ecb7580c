package pdc

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/propnest/pdc-engine/pkg/errors"
)

// Dashboard computes every KPI inside one transaction so the numbers all
// describe the same instant.
func (s *service) Dashboard(ctx context.Context) (*DashboardSnapshot, error) {
	now := s.now()
	// cheque_date is a date, so the window opens at today's midnight or
	// cheques due today would fall below the current instant.
	windowStart := startOfDay(now)
	dueWindow := time.Duration(s.dashboard.DueWindowDays) * 24 * time.Hour
	bounceWindow := time.Duration(s.dashboard.BounceWindowDays) * 24 * time.Hour

	// every KPI query must read the same snapshot; READ COMMITTED
	// re-snapshots per statement
	snapshotOpts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

	var snapshot *DashboardSnapshot
	err := s.tx.WithTxOptions(ctx, snapshotOpts, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		dueThisWeek, err := repo.DueTotalsBetween(ctx, windowStart, now.Add(dueWindow))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "due totals")
		}
		deposited, err := repo.DepositedTotals(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deposited totals")
		}
		outstanding, err := repo.OutstandingValue(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "outstanding value")
		}
		recentlyBounced, err := repo.BouncedCountSince(ctx, now.Add(-bounceWindow))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recently bounced count")
		}
		upcoming, err := repo.UpcomingDue(ctx, windowStart, s.dashboard.UpcomingListLimit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upcoming list")
		}
		deposits, err := repo.RecentDeposits(ctx, s.dashboard.DepositListLimit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recent deposits")
		}

		snapshot = &DashboardSnapshot{
			DueThisWeek:           *dueThisWeek,
			Deposited:             *deposited,
			TotalOutstandingValue: outstanding,
			RecentlyBouncedCount:  recentlyBounced,
			UpcomingDue:           upcoming,
			RecentDeposits:        deposits,
			GeneratedAt:           now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// bounceRate is bounced / (total - cancelled) as a percentage with two
// decimal places. A tenant with no countable cheques has a zero rate.
func bounceRate(bounced, total, cancelled int64) decimal.Decimal {
	denominator := total - cancelled
	if denominator <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(bounced * 100).
		DivRound(decimal.NewFromInt(denominator), 2)
}
