package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/middleware"
)

// chartHandler handles HTTP requests for the chart of accounts.
type chartHandler struct {
	chartService portssvc.ChartSvcFacade
}

// newChartHandler creates a new chartHandler.
func newChartHandler(cs portssvc.ChartSvcFacade) *chartHandler {
	return &chartHandler{
		chartService: cs,
	}
}

// registerChartRoutes registers routes for groups, sub-groups and ledgers.
func registerChartRoutes(rg *gin.RouterGroup, chartService portssvc.ChartSvcFacade) {
	h := newChartHandler(chartService)

	groups := rg.Group("/groups")
	{
		groups.POST("", h.createGroup)
		groups.GET("", h.listGroups)
		groups.GET("/:id", h.getGroup)
		groups.GET("/:id/subgroups", h.listSubGroups)
		groups.PUT("/:id", h.updateGroup)
		groups.DELETE("/:id", h.deactivateGroup)
	}

	subGroups := rg.Group("/subgroups")
	{
		subGroups.POST("", h.createSubGroup)
		subGroups.GET("/:id", h.getSubGroup)
		subGroups.PUT("/:id", h.updateSubGroup)
		subGroups.DELETE("/:id", h.deactivateSubGroup)
	}

	ledgers := rg.Group("/ledgers")
	{
		ledgers.POST("", h.createLedger)
		ledgers.GET("", h.listLedgers)
		ledgers.GET("/:id", h.getLedger)
		ledgers.GET("/:id/hierarchy", h.getLedgerHierarchy)
		ledgers.PUT("/:id", h.updateLedger)
		ledgers.DELETE("/:id", h.deactivateLedger)
	}
}

func (h *chartHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received request to create account group", slog.String("code", req.Code))

	group, err := h.chartService.CreateGroup(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate group code", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating group", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create group in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		}
		return
	}

	logger.Info("Account group created successfully", slog.String("group_id", group.GroupID))
	c.JSON(http.StatusCreated, dto.ToGroupResponse(group))
}

func (h *chartHandler) getGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("id")

	group, err := h.chartService.GetGroupByID(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Group not found", slog.String("group_id", groupID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		} else {
			logger.Error("Failed to get group from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve group"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

func (h *chartHandler) listGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	includeInactive := c.DefaultQuery("includeInactive", "false") == "true"

	groups, err := h.chartService.ListGroups(c.Request.Context(), includeInactive)
	if err != nil {
		logger.Error("Failed to list groups from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": dto.ToListGroupResponse(groups)})
}

func (h *chartHandler) updateGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("id")
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	group, err := h.chartService.UpdateGroup(c.Request.Context(), groupID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Group not found for update", slog.String("group_id", groupID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating group", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update group in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		}
		return
	}

	logger.Info("Account group updated successfully", slog.String("group_id", groupID))
	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

func (h *chartHandler) deactivateGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.chartService.DeactivateGroup(c.Request.Context(), groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Group not found for deactivation", slog.String("group_id", groupID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			// Sub-groups still reference this group.
			logger.Warn("Group has dependents", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to deactivate group in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate group"})
		}
		return
	}

	logger.Info("Account group deactivated successfully", slog.String("group_id", groupID))
	c.Status(http.StatusNoContent)
}

func (h *chartHandler) createSubGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSubGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSubGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received request to create sub-group", slog.String("code", req.Code), slog.String("group_id", req.GroupID))

	subGroup, err := h.chartService.CreateSubGroup(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate sub-group code", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Dependency not found creating sub-group", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating sub-group", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create sub-group in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sub-group"})
		}
		return
	}

	logger.Info("Sub-group created successfully", slog.String("sub_group_id", subGroup.SubGroupID))
	c.JSON(http.StatusCreated, dto.ToSubGroupResponse(subGroup))
}

func (h *chartHandler) getSubGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	subGroupID := c.Param("id")

	subGroup, err := h.chartService.GetSubGroupByID(c.Request.Context(), subGroupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Sub-group not found", slog.String("sub_group_id", subGroupID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Sub-group not found"})
		} else {
			logger.Error("Failed to get sub-group from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sub-group"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSubGroupResponse(subGroup))
}

func (h *chartHandler) listSubGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("id")

	subGroups, err := h.chartService.ListSubGroups(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Group not found for sub-group listing", slog.String("group_id", groupID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		} else {
			logger.Error("Failed to list sub-groups from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sub-groups"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"subGroups": dto.ToListSubGroupResponse(subGroups)})
}

func (h *chartHandler) updateSubGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	subGroupID := c.Param("id")
	var req dto.UpdateSubGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateSubGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	subGroup, err := h.chartService.UpdateSubGroup(c.Request.Context(), subGroupID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Sub-group not found for update", slog.String("sub_group_id", subGroupID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Sub-group not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			// Includes re-parenting cycles.
			logger.Warn("Validation error updating sub-group", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update sub-group in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sub-group"})
		}
		return
	}

	logger.Info("Sub-group updated successfully", slog.String("sub_group_id", subGroupID))
	c.JSON(http.StatusOK, dto.ToSubGroupResponse(subGroup))
}

func (h *chartHandler) deactivateSubGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	subGroupID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.chartService.DeactivateSubGroup(c.Request.Context(), subGroupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Sub-group not found for deactivation", slog.String("sub_group_id", subGroupID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Sub-group not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Sub-group has dependents", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to deactivate sub-group in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate sub-group"})
		}
		return
	}

	logger.Info("Sub-group deactivated successfully", slog.String("sub_group_id", subGroupID))
	c.Status(http.StatusNoContent)
}

func (h *chartHandler) createLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received request to create ledger", slog.String("code", req.Code), slog.String("sub_group_id", req.SubGroupID))

	ledger, err := h.chartService.CreateLedger(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate ledger code", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Dependency not found creating ledger", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrWorkflow) {
			logger.Warn("Validation error creating ledger", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create ledger in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ledger"})
		}
		return
	}

	logger.Info("Ledger created successfully", slog.String("ledger_id", ledger.LedgerID))
	c.JSON(http.StatusCreated, dto.ToLedgerResponse(ledger))
}

func (h *chartHandler) getLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ledgerID := c.Param("id")

	ledger, err := h.chartService.GetLedgerByID(c.Request.Context(), ledgerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Ledger not found", slog.String("ledger_id", ledgerID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
		} else {
			logger.Error("Failed to get ledger from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ledger"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerResponse(ledger))
}

func (h *chartHandler) getLedgerHierarchy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ledgerID := c.Param("id")

	hierarchy, err := h.chartService.GetLedgerHierarchy(c.Request.Context(), ledgerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Ledger not found for hierarchy", slog.String("ledger_id", ledgerID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
		} else {
			logger.Error("Failed to resolve ledger hierarchy", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve ledger hierarchy"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerHierarchyResponse(hierarchy))
}

func (h *chartHandler) listLedgers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListLedgersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListLedgers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	ledgers, err := h.chartService.ListLedgers(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list ledgers from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ledgers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ledgers": dto.ToListLedgerResponse(ledgers)})
}

func (h *chartHandler) updateLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ledgerID := c.Param("id")
	var req dto.UpdateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ledger, err := h.chartService.UpdateLedger(c.Request.Context(), ledgerID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Ledger not found for update", slog.String("ledger_id", ledgerID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error updating ledger", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update ledger in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ledger"})
		}
		return
	}

	logger.Info("Ledger updated successfully", slog.String("ledger_id", ledgerID))
	c.JSON(http.StatusOK, dto.ToLedgerResponse(ledger))
}

func (h *chartHandler) deactivateLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ledgerID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.chartService.DeactivateLedger(c.Request.Context(), ledgerID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Ledger not found for deactivation", slog.String("ledger_id", ledgerID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
		} else if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrWorkflow) {
			logger.Warn("Ledger cannot be deactivated", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to deactivate ledger in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate ledger"})
		}
		return
	}

	logger.Info("Ledger deactivated successfully", slog.String("ledger_id", ledgerID))
	c.Status(http.StatusNoContent)
}
