package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"auction-settlement/internal/commission"
	"auction-settlement/internal/metrics"
	model "auction-settlement/internal/models"
	"auction-settlement/internal/notify"
	"auction-settlement/internal/repository"
	"auction-settlement/internal/scheduler"
	"auction-settlement/internal/server"
	settlement "auction-settlement/internal/settlementService"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const cronKey = "integration-key"

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// recordingNotifier keeps every notice it is asked to send
type recordingNotifier struct {
	mu          sync.Mutex
	winners     []notify.WinnerNotice
	settlements []notify.SettlementNotice
}

func (n *recordingNotifier) SendWinnerNotice(_ context.Context, notice notify.WinnerNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.winners = append(n.winners, notice)
	return nil
}

func (n *recordingNotifier) SendSettlementNotice(_ context.Context, notice notify.SettlementNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settlements = append(n.settlements, notice)
	return nil
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.winners), len(n.settlements)
}

// testEnv is the full settlement stack over an in-memory repository
type testEnv struct {
	Router    *gin.Engine
	Repo      *repository.MemoryRepo
	Scheduler *scheduler.Scheduler
	Notifier  *recordingNotifier
	Metrics   *metrics.Metrics
}

// SetupTestEnv wires the repository, jobs, scheduler and router the way main does
func SetupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	policy, err := commission.NewRatePolicy(repo, commission.DefaultRate)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	notifier := &recordingNotifier{}
	opts := []settlement.Option{
		settlement.WithClock(func() time.Time { return testNow }),
		settlement.WithMetrics(m),
		settlement.WithRetryPolicy(settlement.RetryPolicy{Attempts: 1}),
	}

	auctionJob, err := settlement.NewAuctionJob(repo, policy, notifier, opts...)
	require.NoError(t, err)
	commissionJob, err := settlement.NewCommissionJob(repo, notifier, opts...)
	require.NoError(t, err)

	sched := scheduler.New(scheduler.WithMetrics(m))
	require.NoError(t, sched.Register(auctionJob, time.Minute))
	require.NoError(t, sched.Register(commissionJob, time.Minute))

	router := server.SetupRouter(server.Dependencies{
		Runner:     sched,
		Ledger:     repo,
		CronSecret: cronKey,
		Gatherer:   reg,
	})
	return &testEnv{Router: router, Repo: repo, Scheduler: sched, Notifier: notifier, Metrics: m}
}

// SeedMarketplace adds two bidders, an auctioneer and the given auctions
func (e *testEnv) SeedMarketplace(t *testing.T, auctions ...model.Auction) {
	t.Helper()
	e.Repo.AddUser(model.User{UserID: "bidder1", UserName: "bidder1", Email: "bidder1@example.com", Role: model.RoleBidder})
	e.Repo.AddUser(model.User{UserID: "bidder2", UserName: "bidder2", Email: "bidder2@example.com", Role: model.RoleBidder})
	e.Repo.AddUser(model.User{
		UserID:           "seller",
		UserName:         "seller",
		Email:            "seller@example.com",
		Role:             model.RoleAuctioneer,
		UnpaidCommission: decimal.NewFromInt(300),
		PaymentMethods:   model.PaymentMethods{PayPalEmail: "seller@paypal.example"},
	})
	for _, a := range auctions {
		require.NoError(t, e.Repo.SaveAuction(context.Background(), a))
	}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, key string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Cron-Key", key)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		if data, ok := resp["data"].(map[string]any); ok {
			resp = data
		}
	}
	return resp, w
}
