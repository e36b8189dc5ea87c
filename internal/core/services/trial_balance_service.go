package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// trialBalanceService generates the trial balance report.
type trialBalanceService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewTrialBalanceService creates a new TrialBalanceService.
func NewTrialBalanceService(reportingRepo portsrepo.ReportingRepository) portssvc.TrialBalanceSvc {
	return &trialBalanceService{reportingRepo: reportingRepo}
}

// Ensure trialBalanceService implements the portssvc.TrialBalanceSvc interface
var _ portssvc.TrialBalanceSvc = (*trialBalanceService)(nil)

// TrialBalance builds the report as of a date. Every balance is normalized to
// its account's natural side, so the debit and credit columns must sum equal;
// a mismatch means the books hold a consistency defect and fails the report
// with a TrialBalanceMismatchError carrying both totals.
func (s *trialBalanceService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	snapshots, err := s.reportingRepo.GetLedgerBalancesAsOf(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch ledger balances for trial balance")
		return nil, fmt.Errorf("failed to retrieve ledger balances: %w", err)
	}

	report := &domain.TrialBalanceReport{
		AsOf:        asOf,
		Rows:        make([]domain.TrialBalanceRow, len(snapshots)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for i, snap := range snapshots {
		debit, credit := accounting.NormalizeToNaturalSide(snap.Balance, snap.Nature)
		report.Rows[i] = domain.TrialBalanceRow{
			LedgerID:  snap.LedgerID,
			Code:      snap.Code,
			Name:      snap.Name,
			GroupType: snap.GroupType,
			GroupName: snap.GroupName,
			Debit:     debit,
			Credit:    credit,
		}
		report.TotalDebit = report.TotalDebit.Add(debit)
		report.TotalCredit = report.TotalCredit.Add(credit)
	}

	report.Balanced = report.TotalDebit.Equal(report.TotalCredit)
	if !report.Balanced {
		mismatch := &apperrors.TrialBalanceMismatchError{
			TotalDebit:  report.TotalDebit,
			TotalCredit: report.TotalCredit,
		}
		s.LogError(ctx, mismatch, "Trial balance does not balance",
			slog.String("total_debit", report.TotalDebit.String()),
			slog.String("total_credit", report.TotalCredit.String()),
		)
		return nil, mismatch
	}

	s.LogInfo(ctx, "Trial balance generated",
		slog.Int("rows", len(report.Rows)),
		slog.Bool("balanced", report.Balanced),
	)
	return report, nil
}
