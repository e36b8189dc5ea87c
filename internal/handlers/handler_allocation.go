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

// allocationHandler handles HTTP requests for cost allocations.
type allocationHandler struct {
	allocationService portssvc.AllocationSvc
}

// newAllocationHandler creates a new allocationHandler.
func newAllocationHandler(as portssvc.AllocationSvc) *allocationHandler {
	return &allocationHandler{
		allocationService: as,
	}
}

// registerAllocationRoutes registers routes for the cost allocation workflow.
func registerAllocationRoutes(rg *gin.RouterGroup, allocationService portssvc.AllocationSvc) {
	h := newAllocationHandler(allocationService)

	allocations := rg.Group("/allocations")
	{
		allocations.POST("", h.createAllocation)
		allocations.GET("", h.listAllocationsBySource)
		allocations.GET("/:id", h.getAllocation)
		allocations.POST("/:id/complete", h.completeAllocation)
		allocations.POST("/:id/cancel", h.cancelAllocation)
	}
}

func (h *allocationHandler) createAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAllocation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("source_cost_center_id", req.SourceCostCenterID))
	logger.Info("Received request to create cost allocation",
		slog.String("amount", req.Amount.String()),
		slog.Int("rule_count", len(req.Rules)))

	allocation, err := h.allocationService.CreateAllocation(c.Request.Context(), req, userID)
	if err != nil {
		var over *apperrors.OverAllocationError
		if errors.As(err, &over) {
			logger.Warn("Allocation rules exceed 100 percent", slog.String("total_percent", over.TotalPercent.String()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Validation error creating allocation", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create allocation in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create allocation"})
		}
		return
	}

	logger.Info("Cost allocation created successfully", slog.String("allocation_id", allocation.AllocationID))
	c.JSON(http.StatusCreated, dto.ToAllocationResponse(allocation))
}

func (h *allocationHandler) getAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	allocationID := c.Param("id")

	allocation, err := h.allocationService.GetAllocationByID(c.Request.Context(), allocationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Allocation not found", slog.String("allocation_id", allocationID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Allocation not found"})
		} else {
			logger.Error("Failed to get allocation from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve allocation"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAllocationResponse(allocation))
}

func (h *allocationHandler) listAllocationsBySource(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	sourceID := c.Query("sourceCostCenterID")
	if sourceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourceCostCenterID query parameter is required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	allocations, err := h.allocationService.ListAllocationsBySource(c.Request.Context(), sourceID, limit, offset)
	if err != nil {
		logger.Error("Failed to list allocations from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list allocations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocations": dto.ToListAllocationResponse(allocations)})
}

func (h *allocationHandler) completeAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	allocationID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("allocation_id", allocationID))
	logger.Info("Received request to complete allocation")

	allocation, err := h.allocationService.CompleteAllocation(c.Request.Context(), allocationID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Allocation not found for completion")
			c.JSON(http.StatusNotFound, gin.H{"error": "Allocation not found"})
		} else if errors.Is(err, apperrors.ErrWorkflow) {
			logger.Warn("Allocation not pending", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to complete allocation in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete allocation"})
		}
		return
	}

	logger.Info("Allocation completed successfully")
	c.JSON(http.StatusOK, dto.ToAllocationResponse(allocation))
}

func (h *allocationHandler) cancelAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	allocationID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("allocation_id", allocationID))
	logger.Info("Received request to cancel allocation")

	allocation, err := h.allocationService.CancelAllocation(c.Request.Context(), allocationID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Allocation not found for cancellation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Allocation not found"})
		} else if errors.Is(err, apperrors.ErrWorkflow) {
			logger.Warn("Allocation not pending", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to cancel allocation in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel allocation"})
		}
		return
	}

	logger.Info("Allocation cancelled successfully")
	c.JSON(http.StatusOK, dto.ToAllocationResponse(allocation))
}
