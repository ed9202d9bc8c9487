package analysis

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gaen-tech/leadscout/internal/model"
)

// CompanyAnalyzer is the single-company entry point consumed by the
// batch runner.
type CompanyAnalyzer interface {
	Analyze(ctx context.Context, company model.Company) (*model.Lead, error)
}

// ProgressFunc receives a snapshot of the running totals after each
// company finishes (or fails).
type ProgressFunc func(progress model.BatchProgress)

// Runner sequences single-company analyses over a list of companies with
// rate limiting and partial-failure accounting. Items are processed
// strictly sequentially; one bad company never aborts the batch.
type Runner struct {
	analyzer CompanyAnalyzer
	limiter  *rate.Limiter
}

// NewRunner creates a Runner that leaves at least delay between
// successive analyses.
func NewRunner(analyzer CompanyAnalyzer, delay time.Duration) *Runner {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Runner{
		analyzer: analyzer,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Run analyzes every company in order. onProgress may be nil. The
// returned progress always reflects every item attempted; the error is
// non-nil only when the context was canceled mid-batch.
func (r *Runner) Run(ctx context.Context, companies []model.Company, onProgress ProgressFunc) (*model.BatchProgress, error) {
	progress := &model.BatchProgress{Total: len(companies)}

	report := func() {
		if onProgress != nil {
			onProgress(snapshot(progress))
		}
	}

	for _, company := range companies {
		if err := r.limiter.Wait(ctx); err != nil {
			return progress, eris.Wrap(err, "batch: canceled")
		}

		lead, err := r.analyzer.Analyze(ctx, company)
		if err != nil {
			if ctx.Err() != nil {
				return progress, eris.Wrap(ctx.Err(), "batch: canceled")
			}
			progress.Failed++
			progress.Errors = append(progress.Errors, model.BatchError{
				Company: company,
				Error:   err.Error(),
			})
			zap.L().Warn("batch: company failed",
				zap.String("company", company.Name),
				zap.Error(err),
			)
			report()
			continue
		}

		progress.Results = append(progress.Results, lead)
		progress.Completed++
		report()
	}

	zap.L().Info("batch: finished",
		zap.Int("total", progress.Total),
		zap.Int("completed", progress.Completed),
		zap.Int("failed", progress.Failed),
	)
	return progress, nil
}

// snapshot copies the progress so callbacks never observe later
// mutation of the slices.
func snapshot(p *model.BatchProgress) model.BatchProgress {
	out := model.BatchProgress{
		Total:     p.Total,
		Completed: p.Completed,
		Failed:    p.Failed,
		Results:   make([]*model.Lead, len(p.Results)),
		Errors:    make([]model.BatchError, len(p.Errors)),
	}
	copy(out.Results, p.Results)
	copy(out.Errors, p.Errors)
	return out
}
