package server

import (
	"net/http"

	handler "auction-settlement/services/settlement/handler"
	"auction-settlement/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the router exposes over HTTP
type Dependencies struct {
	Runner     handler.JobRunner
	Ledger     handler.LedgerReporter
	CronSecret string
	// Gatherer backs /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"status": "ok"}, "healthy")
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	settlementHandler := handler.NewSettlementHandler(deps.Runner, deps.Ledger)
	methods := []string{http.MethodGet, http.MethodPost}

	cron := router.Group("/cron", CronAuthMiddleware(deps.CronSecret))
	{
		cron.Match(methods, "/ended-auctions", settlementHandler.RunEndedAuctionsHandler)
		cron.Match(methods, "/verify-commissions", settlementHandler.RunCommissionVerificationHandler)
	}

	admin := router.Group("/admin", CronAuthMiddleware(deps.CronSecret))
	{
		admin.GET("/commissions/monthly", settlementHandler.MonthlyCommissionsHandler)
	}

	return router
}
