package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-settlement/internal/models"
	"auction-settlement/internal/settlementerrors"
	"auction-settlement/utils"

	"github.com/shopspring/decimal"
)

var _ Store = (*MemoryRepo)(nil)

// MemoryRepo is a concurrency-safe in-memory implementation of Store
type MemoryRepo struct {
	mu          sync.RWMutex
	users       map[string]models.User         // key: userID -> value: user
	auctions    map[string]models.Auction      // key: auctionID -> value: auction
	proofs      map[string]models.PaymentProof // key: proofID -> value: proof
	commissions []models.Commission            // append-only ledger
	now         func() time.Time
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:    make(map[string]models.User),
		auctions: make(map[string]models.Auction),
		proofs:   make(map[string]models.PaymentProof),
		now:      time.Now,
	}
}

// FindUserByID returns a user by id
func (r *MemoryRepo) FindUserByID(_ context.Context, userID string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("find user %s: %w", userID, settlementerrors.ErrUserNotFound)
	}
	return user, nil
}

// IncrementAccount applies delta to the user's balances
func (r *MemoryRepo) IncrementAccount(_ context.Context, userID string, delta AccountDelta) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.incrementLocked(userID, delta)
}

func (r *MemoryRepo) incrementLocked(userID string, delta AccountDelta) (models.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("increment account %s: %w", userID, settlementerrors.ErrUserNotFound)
	}
	user.MoneySpent = user.MoneySpent.Add(delta.MoneySpent)
	user.AuctionsWon += delta.AuctionsWon
	user.UnpaidCommission = floorZero(user.UnpaidCommission.Add(delta.UnpaidCommission))
	r.users[userID] = user
	return user, nil
}

// FindEndedUnsettled returns auctions that ended before now and are not reconciled, oldest first
func (r *MemoryRepo) FindEndedUnsettled(_ context.Context, now time.Time) ([]models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.Auction
	for _, auction := range r.auctions {
		if auction.Ended(now) && !auction.CommissionCalculated {
			result = append(result, copyAuction(auction))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EndTime.Equal(result[j].EndTime) {
			return result[i].AuctionID < result[j].AuctionID
		}
		return result[i].EndTime.Before(result[j].EndTime)
	})
	return result, nil
}

// FindAuctionByID returns an auction by id
func (r *MemoryRepo) FindAuctionByID(_ context.Context, auctionID string) (models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return models.Auction{}, fmt.Errorf("find auction %s: %w", auctionID, settlementerrors.ErrAuctionNotFound)
	}
	return copyAuction(auction), nil
}

// SaveAuction creates or replaces an auction. Settled auctions are immutable.
func (r *MemoryRepo) SaveAuction(_ context.Context, auction models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.AuctionID == "" {
		return fmt.Errorf("save auction: %w - empty auction ID", settlementerrors.ErrAuctionNotFound)
	}
	if existing, ok := r.auctions[auction.AuctionID]; ok && existing.CommissionCalculated {
		return fmt.Errorf("save auction %s: %w", auction.AuctionID, settlementerrors.ErrAlreadySettled)
	}
	r.auctions[auction.AuctionID] = copyAuction(auction)
	return nil
}

// FindApprovedProofs returns proofs awaiting reconciliation ordered by id
func (r *MemoryRepo) FindApprovedProofs(_ context.Context) ([]models.PaymentProof, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.PaymentProof
	for _, proof := range r.proofs {
		if proof.Status == models.ProofApproved {
			result = append(result, proof)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ProofID < result[j].ProofID })
	return result, nil
}

// UpdateProofStatus moves a proof from one status to the next
func (r *MemoryRepo) UpdateProofStatus(_ context.Context, proofID string, from, to models.ProofStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.transitionLocked(proofID, from, to)
}

func (r *MemoryRepo) transitionLocked(proofID string, from, to models.ProofStatus) error {
	if !validTransition(from, to) {
		return fmt.Errorf("proof %s %s -> %s: %w", proofID, from, to, settlementerrors.ErrInvalidTransition)
	}
	proof, ok := r.proofs[proofID]
	if !ok {
		return fmt.Errorf("update proof %s: %w", proofID, settlementerrors.ErrProofNotFound)
	}
	if proof.Status == to {
		return fmt.Errorf("update proof %s: %w", proofID, settlementerrors.ErrAlreadySettled)
	}
	if proof.Status != from {
		return fmt.Errorf("proof %s is %s, not %s: %w", proofID, proof.Status, from, settlementerrors.ErrInvalidTransition)
	}
	proof.Status = to
	r.proofs[proofID] = proof
	return nil
}

// AppendCommission adds a record to the ledger
func (r *MemoryRepo) AppendCommission(_ context.Context, record models.Commission) (models.Commission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.appendLocked(record)
}

func (r *MemoryRepo) appendLocked(record models.Commission) (models.Commission, error) {
	if !record.Amount.IsPositive() {
		return models.Commission{}, fmt.Errorf("append commission for user %s: %w", record.UserID, settlementerrors.ErrInvalidAmount)
	}
	if record.CommissionID == "" {
		record.CommissionID = utils.NewLedgerID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now().UTC()
	}
	r.commissions = append(r.commissions, record)
	return record, nil
}

// MonthlyCommissionTotals sums ledger amounts per calendar month of year
func (r *MemoryRepo) MonthlyCommissionTotals(_ context.Context, year int) ([12]decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var totals [12]decimal.Decimal
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, c := range r.commissions {
		created := c.CreatedAt.UTC()
		if created.Year() != year {
			continue
		}
		totals[created.Month()-1] = totals[created.Month()-1].Add(c.Amount)
	}
	return totals, nil
}

// SettleAuction marks the auction reconciled and applies both balance
// increments under a single lock acquisition
func (r *MemoryRepo) SettleAuction(_ context.Context, s AuctionSettlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[s.AuctionID]
	if !ok {
		return fmt.Errorf("settle auction %s: %w", s.AuctionID, settlementerrors.ErrAuctionNotFound)
	}
	if auction.CommissionCalculated {
		return fmt.Errorf("settle auction %s: %w", s.AuctionID, settlementerrors.ErrAlreadySettled)
	}

	if s.Winner != nil {
		if _, ok := r.users[s.Winner.UserID]; !ok {
			return fmt.Errorf("settle auction %s bidder %s: %w", s.AuctionID, s.Winner.UserID, settlementerrors.ErrUserNotFound)
		}
		if _, ok := r.users[s.AuctioneerID]; !ok {
			return fmt.Errorf("settle auction %s auctioneer %s: %w", s.AuctionID, s.AuctioneerID, settlementerrors.ErrUserNotFound)
		}

		bidder := s.Winner.UserID
		amount := s.Winner.Amount
		auction.HighestBidder = &bidder
		auction.CurrentBid = &amount

		if _, err := r.incrementLocked(bidder, AccountDelta{MoneySpent: amount, AuctionsWon: 1}); err != nil {
			return err
		}
		if _, err := r.incrementLocked(s.AuctioneerID, AccountDelta{UnpaidCommission: s.Commission}); err != nil {
			return err
		}
	}

	auction.CommissionCalculated = true
	r.auctions[s.AuctionID] = auction
	return nil
}

// SettleProof clamps the owner's unpaid commission, settles the proof and
// appends the ledger record under a single lock acquisition
func (r *MemoryRepo) SettleProof(_ context.Context, s ProofSettlement) (ProofSettlementResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	proof, ok := r.proofs[s.ProofID]
	if !ok {
		return ProofSettlementResult{}, fmt.Errorf("settle proof %s: %w", s.ProofID, settlementerrors.ErrProofNotFound)
	}
	if proof.Status == models.ProofSettled {
		return ProofSettlementResult{}, fmt.Errorf("settle proof %s: %w", s.ProofID, settlementerrors.ErrAlreadySettled)
	}
	if proof.Status != models.ProofApproved {
		return ProofSettlementResult{}, fmt.Errorf("settle proof %s in status %s: %w", s.ProofID, proof.Status, settlementerrors.ErrInvalidTransition)
	}
	if _, ok := r.users[proof.UserID]; !ok {
		return ProofSettlementResult{}, fmt.Errorf("settle proof %s owner %s: %w", s.ProofID, proof.UserID, settlementerrors.ErrUserNotFound)
	}
	if !proof.Amount.IsPositive() {
		return ProofSettlementResult{}, fmt.Errorf("settle proof %s: %w", s.ProofID, settlementerrors.ErrInvalidAmount)
	}

	user, err := r.incrementLocked(proof.UserID, AccountDelta{UnpaidCommission: proof.Amount.Neg()})
	if err != nil {
		return ProofSettlementResult{}, err
	}
	proof.Status = models.ProofSettled
	r.proofs[s.ProofID] = proof

	record, err := r.appendLocked(models.Commission{
		Amount:    proof.Amount,
		UserID:    proof.UserID,
		ProofID:   proof.ProofID,
		CreatedAt: s.SettledAt.UTC(),
	})
	if err != nil {
		return ProofSettlementResult{}, err
	}

	return ProofSettlementResult{Remaining: user.UnpaidCommission, Record: record}, nil
}

// AddUser adds or replaces a user. This method is intended for seeding and tests.
func (r *MemoryRepo) AddUser(user models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
}

// AddProof adds or replaces a payment proof. This method is intended for seeding and tests.
func (r *MemoryRepo) AddProof(proof models.PaymentProof) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proofs[proof.ProofID] = proof
}

// Commissions returns a copy of the ledger. This method is intended for tests.
func (r *MemoryRepo) Commissions() []models.Commission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Commission(nil), r.commissions...)
}

// Proof returns a payment proof by id. This method is intended for tests.
func (r *MemoryRepo) Proof(proofID string) (models.PaymentProof, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	proof, ok := r.proofs[proofID]
	return proof, ok
}

func copyAuction(a models.Auction) models.Auction {
	a.Bids = append([]models.Bid(nil), a.Bids...)
	if a.HighestBidder != nil {
		bidder := *a.HighestBidder
		a.HighestBidder = &bidder
	}
	if a.CurrentBid != nil {
		bid := *a.CurrentBid
		a.CurrentBid = &bid
	}
	return a
}
