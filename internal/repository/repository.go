package repository

import (
	"context"
	"time"

	"auction-settlement/internal/models"

	"github.com/shopspring/decimal"
)

// AccountDelta is an atomic increment applied to a user's balances.
// UnpaidCommission never drops below zero after the delta is applied.
type AccountDelta struct {
	MoneySpent       decimal.Decimal
	AuctionsWon      int
	UnpaidCommission decimal.Decimal
}

// AuctionSettlement is the single write that closes an auction.
// Winner is nil when the auction ended without bids.
type AuctionSettlement struct {
	AuctionID    string
	Winner       *models.Bid
	AuctioneerID string
	Commission   decimal.Decimal
}

// ProofSettlement is the single write that reconciles a payment proof.
// The proof's stored amount and owner are authoritative.
type ProofSettlement struct {
	ProofID   string
	SettledAt time.Time
}

// ProofSettlementResult reports the outcome of a proof settlement
type ProofSettlementResult struct {
	Remaining decimal.Decimal
	Record    models.Commission
}

// AccountStore reads users and applies atomic balance deltas
type AccountStore interface {
	FindUserByID(ctx context.Context, userID string) (models.User, error)
	IncrementAccount(ctx context.Context, userID string, delta AccountDelta) (models.User, error)
}

// AuctionStore reads and writes auctions with their embedded bids
type AuctionStore interface {
	FindEndedUnsettled(ctx context.Context, now time.Time) ([]models.Auction, error)
	FindAuctionByID(ctx context.Context, auctionID string) (models.Auction, error)
	SaveAuction(ctx context.Context, auction models.Auction) error
}

// ProofStore reads payment proofs and moves them through their lifecycle
type ProofStore interface {
	FindApprovedProofs(ctx context.Context) ([]models.PaymentProof, error)
	UpdateProofStatus(ctx context.Context, proofID string, from, to models.ProofStatus) error
}

// LedgerStore is the append-only commission ledger
type LedgerStore interface {
	AppendCommission(ctx context.Context, record models.Commission) (models.Commission, error)
	MonthlyCommissionTotals(ctx context.Context, year int) ([12]decimal.Decimal, error)
}

// SettlementStore applies each settlement as one atomic, conditionally gated unit.
// Both methods return settlementerrors.ErrAlreadySettled when the gate was already passed.
type SettlementStore interface {
	SettleAuction(ctx context.Context, settlement AuctionSettlement) error
	SettleProof(ctx context.Context, settlement ProofSettlement) (ProofSettlementResult, error)
}

// Store is the full persistence surface used by the process entry point
type Store interface {
	AccountStore
	AuctionStore
	ProofStore
	LedgerStore
	SettlementStore
}

// validTransition reports whether a proof may move from one status to another
func validTransition(from, to models.ProofStatus) bool {
	switch {
	case from == models.ProofPending && to == models.ProofApproved:
		return true
	case from == models.ProofApproved && to == models.ProofSettled:
		return true
	default:
		return false
	}
}

// floorZero clamps negative balances to zero
func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
