package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/propnest/pdc-engine/pkg/logger"
	"github.com/propnest/pdc-engine/pkg/metrics"
)

const (
	defaultSweepBatch = 500
	maxSweepRounds    = 50
)

// DuePromotionJobParams configure the cheque maturity sweep.
type DuePromotionJobParams struct {
	Logger        *logger.Logger
	Promoter      duePromoter
	Metrics       *metrics.CronJobMetrics
	SweepBatch    int
	DueWindowDays int
}

type duePromoter interface {
	PromoteDue(ctx context.Context, asOf time.Time, batchSize int) (int, error)
}

// NewDuePromotionJob builds the cron job that moves matured cheques from
// received to due.
func NewDuePromotionJob(params DuePromotionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Promoter == nil {
		return nil, fmt.Errorf("cheque promoter required")
	}
	batch := params.SweepBatch
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	return &duePromotionJob{
		logg:      params.Logger,
		promoter:  params.Promoter,
		metrics:   params.Metrics,
		batch:     batch,
		dueWindow: params.DueWindowDays,
		now:       time.Now,
	}, nil
}

type duePromotionJob struct {
	logg      *logger.Logger
	promoter  duePromoter
	metrics   *metrics.CronJobMetrics
	batch     int
	dueWindow int
	now       func() time.Time
}

func (j *duePromotionJob) Name() string { return "due-promotion" }

func (j *duePromotionJob) Run(ctx context.Context) error {
	// dueWindow > 0 promotes cheques maturing within the next N days so
	// agencies can see them early; zero promotes on the cheque date itself.
	asOf := j.now().UTC().Add(time.Duration(j.dueWindow) * 24 * time.Hour)

	total := 0
	for round := 0; round < maxSweepRounds; round++ {
		promoted, err := j.promoter.PromoteDue(ctx, asOf, j.batch)
		if err != nil {
			return fmt.Errorf("due promotion sweep: %w", err)
		}
		total += promoted
		if promoted < j.batch {
			break
		}
	}

	if j.metrics != nil {
		j.metrics.AddProcessed(j.Name(), total)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"as_of":    asOf,
		"promoted": total,
	})
	j.logg.Info(logCtx, "due promotion sweep complete")
	return nil
}
