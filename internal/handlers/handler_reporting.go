package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/middleware"
)

// reportingHandler handles HTTP requests for balances and the trial balance.
type reportingHandler struct {
	balanceService      portssvc.BalanceSvc
	trialBalanceService portssvc.TrialBalanceSvc
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(bs portssvc.BalanceSvc, tbs portssvc.TrialBalanceSvc) *reportingHandler {
	return &reportingHandler{
		balanceService:      bs,
		trialBalanceService: tbs,
	}
}

// registerReportingRoutes registers balance queries and report generation routes.
func registerReportingRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvc, trialBalanceService portssvc.TrialBalanceSvc) {
	h := newReportingHandler(balanceService, trialBalanceService)

	ledgers := rg.Group("/ledgers")
	{
		ledgers.GET("/:id/balance", h.getBalance)
		ledgers.POST("/:id/recompute-balance", h.recomputeBalance)
	}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
	}
}

func (h *reportingHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ledgerID := c.Param("id")

	// An absent asOf means the stored current balance; a date means a replay of
	// the posting history up to that date.
	var asOf *time.Time
	if asOfStr := c.Query("asOf"); asOfStr != "" {
		parsed, err := time.Parse("2006-01-02", asOfStr)
		if err != nil {
			logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return
		}
		asOf = &parsed
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), ledgerID, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Ledger not found for balance query", slog.String("ledger_id", ledgerID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
		} else {
			logger.Error("Failed to get ledger balance", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceResponse(balance))
}

func (h *reportingHandler) recomputeBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ledgerID := c.Param("id")
	repair := c.DefaultQuery("repair", "false") == "true"

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("ledger_id", ledgerID), slog.Bool("repair", repair))
	logger.Info("Received request to recompute ledger balance")

	resp, err := h.balanceService.RecomputeBalance(c.Request.Context(), ledgerID, repair, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Ledger not found for recompute")
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
		} else {
			logger.Error("Failed to recompute ledger balance", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to recompute balance"})
		}
		return
	}

	if resp.Drifted {
		logger.Warn("Ledger balance drift detected",
			slog.String("stored", resp.Stored.String()),
			slog.String("replayed", resp.Replayed.String()),
			slog.Bool("repaired", resp.Repaired))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOfStr := c.DefaultQuery("asOf", time.Now().Format("2006-01-02"))
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("asOf", asOfStr))
	logger.Info("Received request to generate trial balance report")

	report, err := h.trialBalanceService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		var mismatch *apperrors.TrialBalanceMismatchError
		if errors.As(err, &mismatch) {
			logger.Error("Trial balance does not balance",
				slog.String("total_debit", mismatch.TotalDebit.String()),
				slog.String("total_credit", mismatch.TotalCredit.String()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":       mismatch.Error(),
				"totalDebit":  mismatch.TotalDebit,
				"totalCredit": mismatch.TotalCredit,
			})
			return
		}
		logger.Error("Failed to generate trial balance report", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate trial balance report"})
		return
	}

	logger.Info("Trial balance report generated successfully", slog.Int("row_count", len(report.Rows)))
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}
