package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	settlement "auction-settlement/internal/settlementService"
	"auction-settlement/services/settlement/helpers"
	"auction-settlement/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=trigger_handler.go -destination=mock_trigger_handler.go -package=handler

type JobRunner interface {
	RunNow(ctx context.Context, name string) (settlement.RunResult, error)
}

type LedgerReporter interface {
	MonthlyCommissionTotals(ctx context.Context, year int) ([12]decimal.Decimal, error)
}

type SettlementHandler struct {
	runner JobRunner
	ledger LedgerReporter
	now    func() time.Time
}

func NewSettlementHandler(runner JobRunner, ledger LedgerReporter) *SettlementHandler {
	return &SettlementHandler{runner: runner, ledger: ledger, now: time.Now}
}

// RunEndedAuctionsHandler handles GET|POST /cron/ended-auctions
func (h *SettlementHandler) RunEndedAuctionsHandler(c *gin.Context) {
	h.runJob(c, "RunEndedAuctionsHandler", settlement.AuctionJobName)
}

// RunCommissionVerificationHandler handles GET|POST /cron/verify-commissions
func (h *SettlementHandler) RunCommissionVerificationHandler(c *gin.Context) {
	h.runJob(c, "RunCommissionVerificationHandler", settlement.CommissionJobName)
}

func (h *SettlementHandler) runJob(c *gin.Context, handlerName, job string) {
	// a client disconnect must not abandon a batch halfway
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.runner.RunNow(ctx, job)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error(handlerName+": run failed", map[string]any{
			"handler": handlerName,
			"job":     job,
			"status":  status,
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewRunResponse(result), job+" completed")
	helpers.LogSuccess(handlerName, "run completed", map[string]any{
		"job":      job,
		"selected": result.Selected,
		"settled":  result.Settled,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	})
}

// MonthlyCommissionsHandler handles GET /admin/commissions/monthly
func (h *SettlementHandler) MonthlyCommissionsHandler(c *gin.Context) {
	var req helpers.MonthlyCommissionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		helpers.HandleBindError(c, "MonthlyCommissionsHandler", err)
		return
	}
	if req.Year == 0 {
		req.Year = h.now().UTC().Year()
	}

	totals, err := h.ledger.MonthlyCommissionTotals(c.Request.Context(), req.Year)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("MonthlyCommissionsHandler: failed to load ledger totals", map[string]any{
			"handler": "MonthlyCommissionsHandler",
			"year":    req.Year,
			"error":   err.Error(),
		})
		return
	}

	resp := helpers.NewMonthlyCommissionsResponse(req.Year, totals)
	utils.JSONResponse(c, http.StatusOK, resp, "monthly commissions retrieved successfully")
	helpers.LogSuccess("MonthlyCommissionsHandler", "monthly commissions retrieved successfully", map[string]any{
		"year":  req.Year,
		"total": resp.Total,
	})
}
