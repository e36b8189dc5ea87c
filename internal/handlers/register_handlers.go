package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/fincore-erp/gl_budget_engine/internal/core/ports/services"
	"github.com/fincore-erp/gl_budget_engine/internal/middleware"
	"github.com/fincore-erp/gl_budget_engine/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	// Caller identity comes from a header for audit attribution; there is no
	// authentication layer in front of this API.
	v1 := r.Group("/api/v1", middleware.ActingUserMiddleware())

	registerChartRoutes(v1, services.Chart)
	registerJournalRoutes(v1, services.Journal)
	registerReportingRoutes(v1, services.Balance, services.TrialBalance)
	registerBudgetRoutes(v1, services.Budget)
	registerTransferRoutes(v1, services.Transfer)
	registerAllocationRoutes(v1, services.Allocation)
	registerAnalysisRoutes(v1, services.Variance, services.Forecast)
}
