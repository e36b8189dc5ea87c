package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/middleware"
)

// transferHandler handles HTTP requests for budget transfers.
type transferHandler struct {
	transferService portssvc.TransferSvc
}

// newTransferHandler creates a new transferHandler.
func newTransferHandler(ts portssvc.TransferSvc) *transferHandler {
	return &transferHandler{
		transferService: ts,
	}
}

// registerTransferRoutes registers routes for the transfer workflow.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvc) {
	h := newTransferHandler(transferService)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.requestTransfer)
		transfers.GET("/:id", h.getTransfer)
		transfers.POST("/:id/approve", h.approveTransfer)
		transfers.POST("/:id/reject", h.rejectTransfer)
	}

	budgets := rg.Group("/budgets")
	{
		budgets.GET("/:id/transfers", h.listTransfersByBudget)
	}
}

func (h *transferHandler) requestTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RequestTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(
		slog.String("from_budget_id", req.FromBudgetID),
		slog.String("to_budget_id", req.ToBudgetID),
		slog.String("requester", userID),
	)
	logger.Info("Received request for budget transfer", slog.String("amount", req.Amount.String()))

	transfer, err := h.transferService.RequestTransfer(c.Request.Context(), req, userID)
	if err != nil {
		var insufficient *apperrors.InsufficientBudgetError
		if errors.As(err, &insufficient) {
			logger.Warn("Transfer exceeds remaining funds",
				slog.String("requested", insufficient.Requested.String()),
				slog.String("remaining", insufficient.Remaining.String()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrWorkflow) {
			logger.Warn("Transfer request rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to request transfer in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request transfer"})
		}
		return
	}

	logger.Info("Transfer requested successfully",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("transfer_number", transfer.TransferNumber))
	c.JSON(http.StatusCreated, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) getTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("id")

	transfer, err := h.transferService.GetTransferByID(c.Request.Context(), transferID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transfer not found", slog.String("transfer_id", transferID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		} else {
			logger.Error("Failed to get transfer from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transfer"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) approveTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("transfer_id", transferID), slog.String("approver", userID))
	logger.Info("Received request to approve transfer")

	transfer, err := h.transferService.ApproveTransfer(c.Request.Context(), transferID, userID)
	if err != nil {
		var insufficient *apperrors.InsufficientBudgetError
		if errors.As(err, &insufficient) {
			// The source was drained between request and approval.
			logger.Warn("Transfer no longer covered by remaining funds",
				slog.String("requested", insufficient.Requested.String()),
				slog.String("remaining", insufficient.Remaining.String()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transfer not found for approval")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		} else if errors.Is(err, apperrors.ErrWorkflow) {
			// Not pending, or requester approving their own transfer.
			logger.Warn("Transfer not approvable", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to approve transfer in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve transfer"})
		}
		return
	}

	logger.Info("Transfer approved successfully")
	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) rejectTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transferID := c.Param("id")
	var req dto.RejectTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RejectTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("transfer_id", transferID), slog.String("rejecter", userID))
	logger.Info("Received request to reject transfer")

	transfer, err := h.transferService.RejectTransfer(c.Request.Context(), transferID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Transfer not found for rejection")
			c.JSON(http.StatusNotFound, gin.H{"error": "Transfer not found"})
		} else if errors.Is(err, apperrors.ErrWorkflow) {
			logger.Warn("Transfer not rejectable", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reject transfer in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject transfer"})
		}
		return
	}

	logger.Info("Transfer rejected successfully")
	c.JSON(http.StatusOK, dto.ToTransferResponse(transfer))
}

func (h *transferHandler) listTransfersByBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	transfers, err := h.transferService.ListTransfersByBudget(c.Request.Context(), budgetID, limit, offset)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for transfer listing", slog.String("budget_id", budgetID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else {
			logger.Error("Failed to list transfers from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transfers"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"transfers": dto.ToListTransferResponse(transfers)})
}
