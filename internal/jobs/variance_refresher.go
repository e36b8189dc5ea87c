// Package jobs contains background workers that run alongside the HTTP server.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
)

// refresherActor is recorded as the acting user on snapshots the job writes.
const refresherActor = "variance-refresher"

// VarianceRefresher periodically recomputes monthly variance snapshots for
// every approved or active budget, so dashboards read fresh data without
// paying the computation cost on request.
type VarianceRefresher struct {
	budgetRepo  portsrepo.BudgetReader
	varianceSvc portssvc.VarianceSvc
	interval    time.Duration
	logger      *slog.Logger
}

// NewVarianceRefresher creates a refresher. A non-positive interval produces a
// refresher whose Run returns immediately.
func NewVarianceRefresher(budgetRepo portsrepo.BudgetReader, varianceSvc portssvc.VarianceSvc, interval time.Duration, logger *slog.Logger) *VarianceRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &VarianceRefresher{
		budgetRepo:  budgetRepo,
		varianceSvc: varianceSvc,
		interval:    interval,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled, refreshing on every tick. It is intended
// to be launched in its own goroutine.
func (r *VarianceRefresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("Variance refresher disabled")
		return
	}

	r.logger.Info("Variance refresher started", "interval", r.interval.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Variance refresher stopped")
			return
		case <-ticker.C:
			r.refreshAll(ctx)
		}
	}
}

// refreshAll recomputes variance for each eligible budget. A failure on one
// budget is logged and does not stop the sweep.
func (r *VarianceRefresher) refreshAll(ctx context.Context) {
	started := time.Now()

	ids, err := r.budgetRepo.ListBudgetIDs(ctx, []domain.BudgetStatus{domain.BudgetApproved, domain.BudgetActive})
	if err != nil {
		r.logger.Error("Variance refresh: listing budgets failed", "error", err)
		return
	}

	req := dto.ComputeVarianceRequest{
		Period: domain.PeriodMonthly,
		AsOf:   started.UTC().Truncate(24 * time.Hour),
	}

	refreshed := 0
	failed := 0
	for _, budgetID := range ids {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.varianceSvc.ComputeVariance(ctx, budgetID, req, refresherActor); err != nil {
			// Budgets deleted between the listing and the compute are expected.
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			failed++
			r.logger.Warn("Variance refresh failed for budget", "budget_id", budgetID, "error", err)
			continue
		}
		refreshed++
	}

	r.logger.Info("Variance refresh sweep complete",
		"budgets", len(ids),
		"refreshed", refreshed,
		"failed", failed,
		"duration", time.Since(started).String(),
	)
}
