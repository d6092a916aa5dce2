package helpers

import (
	"time"

	settlement "auction-settlement/internal/settlementService"

	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type CronKeyRequest struct {
	CronKey string `json:"cron_key"`
}

type MonthlyCommissionsRequest struct {
	Year int `form:"year" binding:"omitempty,gte=1970,lte=9999"`
}

type RunResponse struct {
	Job        string `json:"job"`
	Selected   int    `json:"selected"`
	Settled    int    `json:"settled"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	DurationMS int64  `json:"duration_ms"`
}

type MonthlyCommissionsResponse struct {
	Year   int      `json:"year"`
	Months []string `json:"months"`
	Total  string   `json:"total"`
}

// NewRunResponse converts a batch summary to its wire form
func NewRunResponse(r settlement.RunResult) RunResponse {
	return RunResponse{
		Job:        r.Job,
		Selected:   r.Selected,
		Settled:    r.Settled,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: r.FinishedAt.UTC().Format(time.RFC3339),
		DurationMS: r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
	}
}

// NewMonthlyCommissionsResponse formats ledger totals with two decimal places
func NewMonthlyCommissionsResponse(year int, totals [12]decimal.Decimal) MonthlyCommissionsResponse {
	resp := MonthlyCommissionsResponse{Year: year, Months: make([]string, 0, len(totals))}
	sum := decimal.Zero
	for _, total := range totals {
		resp.Months = append(resp.Months, total.StringFixed(2))
		sum = sum.Add(total)
	}
	resp.Total = sum.StringFixed(2)
	return resp
}
