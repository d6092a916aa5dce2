package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"auction-settlement/internal/commission"
	"auction-settlement/internal/config"
	"auction-settlement/internal/metrics"
	model "auction-settlement/internal/models"
	"auction-settlement/internal/notify"
	"auction-settlement/internal/repository"
	"auction-settlement/internal/scheduler"
	"auction-settlement/internal/server"
	settlement "auction-settlement/internal/settlementService"
	"auction-settlement/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("invalid configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		utils.Warn("invalid log settings, keeping defaults", map[string]any{"log_level": cfg.LogLevel, "log_format": cfg.LogFormat, "error": err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, pool, err := openStore(ctx, cfg)
	if err != nil {
		utils.Fatal("failed to open store", map[string]any{"driver": cfg.Store.Driver, "error": err.Error()})
	}
	if pool != nil {
		defer pool.Close()
	}

	rate, err := cfg.Rate()
	if err != nil {
		utils.Fatal("invalid commission rate", map[string]any{"error": err.Error()})
	}
	policy, err := commission.NewRatePolicy(store, rate)
	if err != nil {
		utils.Fatal("failed to create commission policy", map[string]any{"error": err.Error()})
	}

	jobMetrics := metrics.New(prometheus.DefaultRegisterer)
	jobOpts := []settlement.Option{
		settlement.WithMetrics(jobMetrics),
		settlement.WithRetryPolicy(settlement.RetryPolicy{Attempts: cfg.Notify.Attempts, Backoff: cfg.Notify.Backoff}),
	}

	notifier := newNotifier(cfg)
	auctionJob, err := settlement.NewAuctionJob(store, policy, notifier, jobOpts...)
	if err != nil {
		utils.Fatal("failed to create auction job", map[string]any{"error": err.Error()})
	}
	commissionJob, err := settlement.NewCommissionJob(store, notifier, jobOpts...)
	if err != nil {
		utils.Fatal("failed to create commission job", map[string]any{"error": err.Error()})
	}

	schedOpts := []scheduler.Option{scheduler.WithMetrics(jobMetrics)}
	if cfg.Jobs.Lease && pool != nil {
		schedOpts = append(schedOpts, scheduler.WithLease(repository.NewAdvisoryLease(pool)))
	}
	sched := scheduler.New(schedOpts...)
	if err := sched.Register(auctionJob, cfg.Jobs.AuctionInterval); err != nil {
		utils.Fatal("failed to register auction job", map[string]any{"error": err.Error()})
	}
	if err := sched.Register(commissionJob, cfg.Jobs.CommissionInterval); err != nil {
		utils.Fatal("failed to register commission job", map[string]any{"error": err.Error()})
	}

	router := server.SetupRouter(server.Dependencies{
		Runner:     sched,
		Ledger:     store,
		CronSecret: cfg.CronSecret,
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		sched.Start(ctx)
	}()

	go func() {
		utils.Info("starting settlement server", map[string]any{"addr": srv.Addr, "store": cfg.Store.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("server stopped unexpectedly", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server shutdown failed", map[string]any{"error": err.Error()})
	}
	<-schedDone
}

// openStore returns the configured store. The pool is nil for the memory store.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, *pgxpool.Pool, error) {
	if cfg.Store.Driver != config.DriverPostgres {
		repo := repository.NewMemoryRepo()
		prepopulate(ctx, repo)
		return repo, nil, nil
	}

	pool, err := repository.ConnectDB(ctx, cfg.Store.DatabaseURL, repository.DefaultPoolOptions())
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		utils.Info("database schema applied", nil)
	}
	return repository.NewPostgresRepo(pool), pool, nil
}

func newNotifier(cfg config.Config) notify.Notifier {
	if cfg.Notify.WebhookURL == "" {
		utils.Warn("no notification relay configured, notices are logged only", nil)
		return notify.LogNotifier{}
	}
	return notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
}

// prepopulate adds sample accounts, an ended auction and an approved proof to the in-memory repo
func prepopulate(ctx context.Context, repo *repository.MemoryRepo) {
	users := []model.User{
		{UserID: "bidder1", UserName: "bidder1", Email: "bidder1@example.com", Role: model.RoleBidder},
		{UserID: "bidder2", UserName: "bidder2", Email: "bidder2@example.com", Role: model.RoleBidder},
		{
			UserID:           "auctioneer1",
			UserName:         "auctioneer1",
			Email:            "auctioneer1@example.com",
			Role:             model.RoleAuctioneer,
			UnpaidCommission: decimal.NewFromInt(40),
			PaymentMethods: model.PaymentMethods{
				BankTransfer: model.BankTransfer{BankAccountNumber: "000123456", BankAccountName: "Auctioneer One", BankName: "Example Bank"},
				PayPalEmail:  "auctioneer1@example.com",
			},
		},
	}
	for _, user := range users {
		repo.AddUser(user)
	}

	now := time.Now().UTC()
	auctions := []model.Auction{
		{
			AuctionID: "auction1",
			Title:     "Vintage Camera",
			CreatedBy: "auctioneer1",
			EndTime:   now.Add(-time.Minute),
			Bids: []model.Bid{
				{UserID: "bidder1", Amount: decimal.NewFromInt(120), Timestamp: now.Add(-time.Hour)},
				{UserID: "bidder2", Amount: decimal.NewFromInt(150), Timestamp: now.Add(-30 * time.Minute)},
			},
		},
		{AuctionID: "auction2", Title: "Oak Desk", CreatedBy: "auctioneer1", EndTime: now.Add(24 * time.Hour)},
	}
	for _, auction := range auctions {
		if err := repo.SaveAuction(ctx, auction); err != nil {
			utils.Warn("failed to seed auction", map[string]any{"auction_id": auction.AuctionID, "error": err.Error()})
		}
	}

	repo.AddProof(model.PaymentProof{ProofID: "proof1", UserID: "auctioneer1", Amount: decimal.NewFromInt(25), Status: model.ProofApproved})
}
