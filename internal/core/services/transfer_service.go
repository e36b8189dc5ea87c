package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portsrepo "github.com/fincore-erp/gl_budget_engine/internal/core/ports/repositories"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/utils/accounting"
)

var (
	ErrTransferSameBudget     = errors.New("source and destination budgets must differ")
	ErrTransferFiscalYear     = errors.New("budgets must share a fiscal year")
	ErrTransferCurrency       = errors.New("budgets must share a currency")
	ErrTransferNotPositive    = errors.New("transfer amount must be positive")
	ErrTransferNotPending     = errors.New("transfer is not pending")
	ErrTransferBudgetMissing  = errors.New("transfer references a missing budget")
	ErrTransferSelfDecision   = errors.New("a transfer cannot be decided by its requester")
)

// transferService runs the budget transfer workflow. Approval moves funds
// inside one database transaction with both budgets locked, so concurrent
// approvals against the same source can never overdraw it.
type transferService struct {
	BaseService
	budgetRepo   portsrepo.BudgetRepositoryWithTx
	transferRepo portsrepo.TransferRepositoryFacade
}

// NewTransferService creates a new TransferService.
func NewTransferService(budgetRepo portsrepo.BudgetRepositoryWithTx, transferRepo portsrepo.TransferRepositoryFacade) portssvc.TransferSvc {
	return &transferService{
		budgetRepo:   budgetRepo,
		transferRepo: transferRepo,
	}
}

// Ensure transferService implements the portssvc.TransferSvc interface
var _ portssvc.TransferSvc = (*transferService)(nil)

// RequestTransfer creates a pending transfer after validating both budgets.
// The remaining-funds check here is advisory; approval re-checks under lock.
func (s *transferService) RequestTransfer(ctx context.Context, req dto.CreateTransferRequest, userID string) (*domain.BudgetTransfer, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrTransferNotPositive)
	}
	if req.FromBudgetID == req.ToBudgetID {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrTransferSameBudget)
	}

	from, err := s.budgetRepo.FindBudgetByID(ctx, req.FromBudgetID)
	if err != nil {
		return nil, err
	}
	to, err := s.budgetRepo.FindBudgetByID(ctx, req.ToBudgetID)
	if err != nil {
		return nil, err
	}

	if from.FiscalYear != to.FiscalYear {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrTransferFiscalYear)
	}
	if from.CurrencyCode != to.CurrencyCode {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrTransferCurrency)
	}

	amount := accounting.Round(req.Amount)
	if from.Remaining.LessThan(amount) {
		return nil, &apperrors.InsufficientBudgetError{
			BudgetID:  from.BudgetID,
			Requested: amount,
			Remaining: from.Remaining,
		}
	}

	now := time.Now().UTC()
	transfer := domain.BudgetTransfer{
		TransferID:   uuid.NewString(),
		FromBudgetID: req.FromBudgetID,
		ToBudgetID:   req.ToBudgetID,
		Amount:       amount,
		FiscalYear:   from.FiscalYear,
		Reason:       req.Reason,
		Status:       domain.TransferPending,
		RequestedBy:  userID,
		AuditFields:  domain.NewAuditFields(userID, now),
	}

	transferNumber, err := s.transferRepo.SaveTransfer(ctx, transfer)
	if err != nil {
		s.LogError(ctx, err, "Failed to save transfer request", slog.String("from", req.FromBudgetID), slog.String("to", req.ToBudgetID))
		return nil, fmt.Errorf("failed to save transfer: %w", err)
	}
	transfer.TransferNumber = transferNumber

	s.LogInfo(ctx, "Budget transfer requested",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("transfer_number", transferNumber),
		slog.String("amount", amount.String()),
	)
	return &transfer, nil
}

// ApproveTransfer moves the amount between the budgets atomically. Both
// budgets are locked for update in ID order and the source's remaining funds
// are re-checked under that lock, since they may have shrunk since the
// request.
func (s *transferService) ApproveTransfer(ctx context.Context, transferID string, userID string) (*domain.BudgetTransfer, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != domain.TransferPending {
		return nil, fmt.Errorf("%w: %w: status is %s", apperrors.ErrWorkflow, ErrTransferNotPending, transfer.Status)
	}
	if transfer.RequestedBy == userID {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrWorkflow, ErrTransferSelfDecision)
	}

	tx, err := s.budgetRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin transfer approval transaction", slog.String("transfer_id", transferID))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.budgetRepo.Rollback(ctx, tx)
	}()

	budgets, err := s.budgetRepo.FindBudgetsByIDsForUpdate(ctx, tx, []string{transfer.FromBudgetID, transfer.ToBudgetID})
	if err != nil {
		s.LogError(ctx, err, "Failed to lock budgets for approval", slog.String("transfer_id", transferID))
		return nil, fmt.Errorf("failed to lock budgets: %w", err)
	}

	from, ok := budgets[transfer.FromBudgetID]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrNotFound, ErrTransferBudgetMissing, transfer.FromBudgetID)
	}
	to, ok := budgets[transfer.ToBudgetID]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", apperrors.ErrNotFound, ErrTransferBudgetMissing, transfer.ToBudgetID)
	}

	if from.Remaining.LessThan(transfer.Amount) {
		return nil, &apperrors.InsufficientBudgetError{
			BudgetID:  from.BudgetID,
			Requested: transfer.Amount,
			Remaining: from.Remaining,
		}
	}

	now := time.Now().UTC()
	from.TotalBudget = from.TotalBudget.Sub(transfer.Amount)
	to.TotalBudget = to.TotalBudget.Add(transfer.Amount)
	from.Recalculate()
	to.Recalculate()
	from.Touch(userID, now)
	to.Touch(userID, now)

	if err := s.budgetRepo.UpdateBudgetsInTx(ctx, tx, []domain.Budget{from, to}); err != nil {
		s.LogError(ctx, err, "Failed to move funds between budgets", slog.String("transfer_id", transferID))
		return nil, fmt.Errorf("failed to update budgets: %w", err)
	}

	transfer.Status = domain.TransferApproved
	transfer.DecidedBy = userID
	transfer.DecidedAt = &now
	transfer.Touch(userID, now)
	if err := s.transferRepo.UpdateTransferInTx(ctx, tx, *transfer); err != nil {
		s.LogError(ctx, err, "Failed to mark transfer approved", slog.String("transfer_id", transferID))
		return nil, fmt.Errorf("failed to update transfer: %w", err)
	}

	if err := s.budgetRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit transfer approval", slog.String("transfer_id", transferID))
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	s.LogInfo(ctx, "Budget transfer approved",
		slog.String("transfer_id", transferID),
		slog.String("transfer_number", transfer.TransferNumber),
		slog.String("amount", transfer.Amount.String()),
	)
	return transfer, nil
}

// RejectTransfer marks a pending transfer rejected. No funds move, so no
// budget lock is needed.
func (s *transferService) RejectTransfer(ctx context.Context, transferID string, req dto.RejectTransferRequest, userID string) (*domain.BudgetTransfer, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.Status != domain.TransferPending {
		return nil, fmt.Errorf("%w: %w: status is %s", apperrors.ErrWorkflow, ErrTransferNotPending, transfer.Status)
	}

	now := time.Now().UTC()
	transfer.Status = domain.TransferRejected
	transfer.DecidedBy = userID
	transfer.DecidedAt = &now
	transfer.RejectionReason = req.Reason
	transfer.Touch(userID, now)

	if err := s.transferRepo.UpdateTransfer(ctx, *transfer); err != nil {
		s.LogError(ctx, err, "Failed to mark transfer rejected", slog.String("transfer_id", transferID))
		return nil, fmt.Errorf("failed to update transfer: %w", err)
	}

	s.LogInfo(ctx, "Budget transfer rejected", slog.String("transfer_id", transferID))
	return transfer, nil
}

// GetTransferByID retrieves a specific transfer.
func (s *transferService) GetTransferByID(ctx context.Context, transferID string) (*domain.BudgetTransfer, error) {
	transfer, err := s.transferRepo.FindTransferByID(ctx, transferID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transfer", slog.String("transfer_id", transferID))
		}
		return nil, err
	}
	return transfer, nil
}

// ListTransfersByBudget retrieves transfers touching a budget on either side.
func (s *transferService) ListTransfersByBudget(ctx context.Context, budgetID string, limit, offset int) ([]domain.BudgetTransfer, error) {
	if limit <= 0 {
		limit = 20
	}
	transfers, err := s.transferRepo.ListTransfersByBudgetID(ctx, budgetID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transfers", slog.String("budget_id", budgetID))
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}
