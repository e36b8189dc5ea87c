package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fincore-erp/gl_budget_engine/internal/apperrors"
	"github.com/fincore-erp/gl_budget_engine/internal/core/domain"
	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/dto"
	"github.com/fincore-erp/gl_budget_engine/internal/middleware"
)

// analysisHandler handles HTTP requests for variance and forecast analysis.
type analysisHandler struct {
	varianceService portssvc.VarianceSvc
	forecastService portssvc.ForecastSvc
}

// newAnalysisHandler creates a new analysisHandler.
func newAnalysisHandler(vs portssvc.VarianceSvc, fs portssvc.ForecastSvc) *analysisHandler {
	return &analysisHandler{
		varianceService: vs,
		forecastService: fs,
	}
}

// registerAnalysisRoutes registers variance and forecast routes under budgets.
func registerAnalysisRoutes(rg *gin.RouterGroup, varianceService portssvc.VarianceSvc, forecastService portssvc.ForecastSvc) {
	h := newAnalysisHandler(varianceService, forecastService)

	budgets := rg.Group("/budgets")
	{
		budgets.POST("/:id/variance", h.computeVariance)
		budgets.GET("/:id/variance", h.getVariance)
		budgets.GET("/:id/variance/trend", h.getVarianceTrend)
		budgets.POST("/:id/forecasts", h.generateForecast)
		budgets.GET("/:id/forecasts/latest", h.getLatestForecast)
	}

	forecasts := rg.Group("/forecasts")
	{
		forecasts.GET("/:id", h.getForecast)
		forecasts.GET("/:id/accuracy", h.getForecastAccuracy)
	}
}

func (h *analysisHandler) computeVariance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("id")
	var req dto.ComputeVarianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ComputeVariance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("budget_id", budgetID), slog.String("period", string(req.Period)))
	logger.Info("Received request to compute budget variance")

	snapshot, err := h.varianceService.ComputeVariance(c.Request.Context(), budgetID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for variance computation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error computing variance", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to compute variance in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute variance"})
		}
		return
	}

	logger.Info("Budget variance computed successfully", slog.String("status", string(snapshot.Status)))
	c.JSON(http.StatusOK, dto.ToVarianceResponse(snapshot))
}

func (h *analysisHandler) getVariance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("id")

	period := domain.VariancePeriod(c.DefaultQuery("period", string(domain.PeriodMonthly)))

	asOfStr := c.DefaultQuery("asOf", time.Now().Format("2006-01-02"))
	asOf, err := time.Parse("2006-01-02", asOfStr)
	if err != nil {
		logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	snapshot, err := h.varianceService.GetVariance(c.Request.Context(), budgetID, period, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Variance snapshot not found", slog.String("budget_id", budgetID), slog.String("asOf", asOfStr))
			c.JSON(http.StatusNotFound, gin.H{"error": "Variance snapshot not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid variance query", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get variance from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve variance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToVarianceResponse(snapshot))
}

func (h *analysisHandler) getVarianceTrend(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("id")

	var params dto.VarianceTrendParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for VarianceTrend", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	points, err := h.varianceService.VarianceTrend(c.Request.Context(), budgetID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for variance trend", slog.String("budget_id", budgetID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid variance trend query", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get variance trend from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve variance trend"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": dto.ToVarianceTrendResponse(points)})
}

func (h *analysisHandler) generateForecast(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("id")
	var req dto.GenerateForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for GenerateForecast", slog.String("error", err.Error()))
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
		slog.String("budget_id", budgetID),
		slog.String("algorithm", string(req.Algorithm)),
		slog.Int("horizon", req.Horizon),
	)
	logger.Info("Received request to generate spending forecast")

	forecast, err := h.forecastService.GenerateForecast(c.Request.Context(), budgetID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Budget not found for forecast generation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			// Includes too little spending history for the algorithm.
			logger.Warn("Forecast request rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to generate forecast in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate forecast"})
		}
		return
	}

	logger.Info("Forecast generated successfully",
		slog.String("forecast_id", forecast.ForecastID),
		slog.Bool("low_confidence", forecast.LowConfidence))
	c.JSON(http.StatusCreated, dto.ToForecastResponse(forecast))
}

func (h *analysisHandler) getForecast(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	forecastID := c.Param("id")

	forecast, err := h.forecastService.GetForecastByID(c.Request.Context(), forecastID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Forecast not found", slog.String("forecast_id", forecastID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Forecast not found"})
		} else {
			logger.Error("Failed to get forecast from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve forecast"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToForecastResponse(forecast))
}

func (h *analysisHandler) getForecastAccuracy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	forecastID := c.Param("id")

	evaluation, err := h.forecastService.CalculateAccuracy(c.Request.Context(), forecastID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Forecast not found for accuracy check", slog.String("forecast_id", forecastID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Forecast not found"})
		} else if errors.Is(err, apperrors.ErrWorkflow) {
			// None of the predicted periods has realized spending yet.
			logger.Warn("Forecast cannot be evaluated yet", slog.String("forecast_id", forecastID))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to calculate forecast accuracy", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate forecast accuracy"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToForecastEvaluationResponse(evaluation))
}

func (h *analysisHandler) getLatestForecast(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	budgetID := c.Param("id")
	algorithm := domain.ForecastAlgorithm(c.DefaultQuery("algorithm", string(domain.ForecastLinear)))

	forecast, err := h.forecastService.GetLatestForecast(c.Request.Context(), budgetID, algorithm)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("No forecast found for budget",
				slog.String("budget_id", budgetID),
				slog.String("algorithm", string(algorithm)))
			c.JSON(http.StatusNotFound, gin.H{"error": "Forecast not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid forecast query", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get latest forecast from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve forecast"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToForecastResponse(forecast))
}
