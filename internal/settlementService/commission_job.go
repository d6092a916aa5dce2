package settlement

import (
	"context"
	"fmt"

	"auction-settlement/internal/models"
	"auction-settlement/internal/notify"
	"auction-settlement/internal/repository"
	"auction-settlement/internal/settlementerrors"
	"auction-settlement/utils"
)

//go:generate mockgen -source=commission_job.go -destination=mock_commission_job.go -package=settlement

// ProofRepository is the store surface the commission job needs
type ProofRepository interface {
	FindApprovedProofs(ctx context.Context) ([]models.PaymentProof, error)
	FindUserByID(ctx context.Context, userID string) (models.User, error)
	SettleProof(ctx context.Context, settlement repository.ProofSettlement) (repository.ProofSettlementResult, error)
}

// CommissionJob reconciles approved commission payment proofs
type CommissionJob struct {
	repo     ProofRepository
	notifier notify.Notifier
	opts     options
}

// NewCommissionJob creates a CommissionJob
func NewCommissionJob(repo ProofRepository, notifier notify.Notifier, opts ...Option) (*CommissionJob, error) {
	if repo == nil || notifier == nil {
		return nil, fmt.Errorf("commission job: %w - repository and notifier are required", settlementerrors.ErrMissingReference)
	}
	return &CommissionJob{
		repo:     repo,
		notifier: notifier,
		opts:     buildOptions(opts),
	}, nil
}

// Name returns the job name
func (j *CommissionJob) Name() string {
	return CommissionJobName
}

// Run settles every approved proof
func (j *CommissionJob) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{Job: CommissionJobName, StartedAt: j.opts.now().UTC()}

	proofs, err := j.repo.FindApprovedProofs(ctx)
	if err != nil {
		result.FinishedAt = j.opts.now().UTC()
		return result, fmt.Errorf("commission job: failed to load approved proofs: %w", err)
	}
	result.Selected = len(proofs)

	for _, proof := range proofs {
		o, err := guard(CommissionJobName, proof.ProofID, func() (outcome, error) {
			return j.settle(ctx, proof)
		})
		if err != nil {
			utils.Warn("payment proof not settled", map[string]any{
				"job":      CommissionJobName,
				"proof_id": proof.ProofID,
				"user_id":  proof.UserID,
				"outcome":  o.label(),
				"error":    err.Error(),
			})
		}
		result.record(o)
		j.opts.metrics.ObserveItem(CommissionJobName, o.label())
	}

	result.FinishedAt = j.opts.now().UTC()
	utils.Info("commission job finished", map[string]any{
		"job":      CommissionJobName,
		"selected": result.Selected,
		"settled":  result.Settled,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	})
	return result, nil
}

func (j *CommissionJob) settle(ctx context.Context, proof models.PaymentProof) (outcome, error) {
	user, err := j.repo.FindUserByID(ctx, proof.UserID)
	if err != nil {
		return lookupOutcome("proof owner", proof.UserID, err)
	}

	settledAt := j.opts.now().UTC()
	res, err := j.repo.SettleProof(ctx, repository.ProofSettlement{
		ProofID:   proof.ProofID,
		SettledAt: settledAt,
	})
	if o, err := settleOutcome(err); o != outcomeSettled {
		return o, err
	}

	utils.Info("payment proof settled", map[string]any{
		"job":           CommissionJobName,
		"proof_id":      proof.ProofID,
		"user_id":       user.UserID,
		"amount":        res.Record.Amount.String(),
		"remaining":     res.Remaining.String(),
		"commission_id": res.Record.CommissionID,
	})

	notice := notify.SettlementNotice{
		User:          user,
		ProofID:       proof.ProofID,
		AmountSettled: res.Record.Amount,
		Remaining:     res.Remaining,
		SettledAt:     settledAt,
	}
	err = j.opts.retry.Do(ctx, func(ctx context.Context) error {
		return j.notifier.SendSettlementNotice(ctx, notice)
	})
	j.opts.metrics.ObserveNotification("settlement", err)
	if err != nil {
		utils.Error("failed to send settlement notice", map[string]any{
			"job":      CommissionJobName,
			"proof_id": proof.ProofID,
			"user_id":  user.UserID,
			"error":    err.Error(),
		})
	}
	return outcomeSettled, nil
}
