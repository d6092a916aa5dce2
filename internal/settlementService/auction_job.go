package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-settlement/internal/models"
	"auction-settlement/internal/notify"
	"auction-settlement/internal/repository"
	"auction-settlement/internal/settlementerrors"
	"auction-settlement/utils"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=auction_job.go -destination=mock_auction_job.go -package=settlement

// CommissionPolicy computes the commission owed for an auction
type CommissionPolicy interface {
	ComputeCommission(ctx context.Context, auctionID string) (decimal.Decimal, error)
}

// AuctionRepository is the store surface the auction job needs
type AuctionRepository interface {
	FindEndedUnsettled(ctx context.Context, now time.Time) ([]models.Auction, error)
	FindUserByID(ctx context.Context, userID string) (models.User, error)
	SettleAuction(ctx context.Context, settlement repository.AuctionSettlement) error
}

// AuctionJob closes ended auctions and credits the resulting balances
type AuctionJob struct {
	repo     AuctionRepository
	policy   CommissionPolicy
	notifier notify.Notifier
	opts     options
}

// NewAuctionJob creates an AuctionJob
func NewAuctionJob(repo AuctionRepository, policy CommissionPolicy, notifier notify.Notifier, opts ...Option) (*AuctionJob, error) {
	if repo == nil || policy == nil || notifier == nil {
		return nil, fmt.Errorf("auction job: %w - repository, policy and notifier are required", settlementerrors.ErrMissingReference)
	}
	return &AuctionJob{
		repo:     repo,
		policy:   policy,
		notifier: notifier,
		opts:     buildOptions(opts),
	}, nil
}

// Name returns the job name
func (j *AuctionJob) Name() string {
	return AuctionJobName
}

// Run settles every ended, unsettled auction. Items are independent: a failed
// auction is logged and left for the next run. Only the eligibility query
// failing aborts the batch.
func (j *AuctionJob) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{Job: AuctionJobName, StartedAt: j.opts.now().UTC()}

	auctions, err := j.repo.FindEndedUnsettled(ctx, j.opts.now())
	if err != nil {
		result.FinishedAt = j.opts.now().UTC()
		return result, fmt.Errorf("auction job: failed to load ended auctions: %w", err)
	}
	result.Selected = len(auctions)

	for _, auction := range auctions {
		o, err := guard(AuctionJobName, auction.AuctionID, func() (outcome, error) {
			return j.settle(ctx, auction)
		})
		if err != nil {
			utils.Warn("auction not settled", map[string]any{
				"job":        AuctionJobName,
				"auction_id": auction.AuctionID,
				"outcome":    o.label(),
				"error":      err.Error(),
			})
		}
		result.record(o)
		j.opts.metrics.ObserveItem(AuctionJobName, o.label())
	}

	result.FinishedAt = j.opts.now().UTC()
	utils.Info("auction job finished", map[string]any{
		"job":      AuctionJobName,
		"selected": result.Selected,
		"settled":  result.Settled,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	})
	return result, nil
}

func (j *AuctionJob) settle(ctx context.Context, auction models.Auction) (outcome, error) {
	commission, err := j.policy.ComputeCommission(ctx, auction.AuctionID)
	if err != nil {
		return outcomeFailed, fmt.Errorf("failed to compute commission: %w", err)
	}

	winning, ok := auction.WinningBid()
	if !ok {
		err := j.repo.SettleAuction(ctx, repository.AuctionSettlement{
			AuctionID:    auction.AuctionID,
			AuctioneerID: auction.CreatedBy,
			Commission:   decimal.Zero,
		})
		return settleOutcome(err)
	}

	bidder, err := j.repo.FindUserByID(ctx, winning.UserID)
	if err != nil {
		return lookupOutcome("bidder", winning.UserID, err)
	}
	auctioneer, err := j.repo.FindUserByID(ctx, auction.CreatedBy)
	if err != nil {
		return lookupOutcome("auctioneer", auction.CreatedBy, err)
	}

	err = j.repo.SettleAuction(ctx, repository.AuctionSettlement{
		AuctionID:    auction.AuctionID,
		Winner:       &winning,
		AuctioneerID: auctioneer.UserID,
		Commission:   commission,
	})
	if o, err := settleOutcome(err); o != outcomeSettled {
		return o, err
	}

	utils.Info("auction settled", map[string]any{
		"job":        AuctionJobName,
		"auction_id": auction.AuctionID,
		"user_id":    bidder.UserID,
		"amount":     winning.Amount.String(),
		"commission": commission.String(),
	})

	notice := notify.WinnerNotice{
		Winner:         bidder,
		AuctionID:      auction.AuctionID,
		AuctionTitle:   auction.Title,
		Amount:         winning.Amount,
		EndTime:        auction.EndTime,
		PaymentMethods: auctioneer.PaymentMethods,
	}
	err = j.opts.retry.Do(ctx, func(ctx context.Context) error {
		return j.notifier.SendWinnerNotice(ctx, notice)
	})
	j.opts.metrics.ObserveNotification("winner", err)
	if err != nil {
		utils.Error("failed to send winner notice", map[string]any{
			"job":        AuctionJobName,
			"auction_id": auction.AuctionID,
			"user_id":    bidder.UserID,
			"error":      err.Error(),
		})
	}
	return outcomeSettled, nil
}

// settleOutcome classifies the result of a gated settlement write
func settleOutcome(err error) (outcome, error) {
	switch {
	case err == nil:
		return outcomeSettled, nil
	case errors.Is(err, settlementerrors.ErrAlreadySettled),
		errors.Is(err, settlementerrors.ErrUserNotFound),
		errors.Is(err, settlementerrors.ErrProofNotFound),
		errors.Is(err, settlementerrors.ErrAuctionNotFound),
		errors.Is(err, settlementerrors.ErrInvalidTransition):
		return outcomeSkipped, err
	default:
		return outcomeFailed, fmt.Errorf("failed to persist settlement: %w", err)
	}
}

// lookupOutcome classifies a failed account lookup; missing accounts are skipped
func lookupOutcome(role, userID string, err error) (outcome, error) {
	if errors.Is(err, settlementerrors.ErrUserNotFound) {
		return outcomeSkipped, fmt.Errorf("%s %s: %w", role, userID, err)
	}
	return outcomeFailed, fmt.Errorf("failed to load %s %s: %w", role, userID, err)
}
