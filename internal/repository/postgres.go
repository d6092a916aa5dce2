package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auction-settlement/internal/models"
	"auction-settlement/internal/settlementerrors"
	"auction-settlement/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var _ Store = (*PostgresRepo)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepo implements Store on PostgreSQL
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo creates a repository over an open pool. The caller owns the pool.
func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{pool: pool}
}

const userColumns = `id, user_name, email, role, unpaid_commission, money_spent, auctions_won, payment_methods`

// FindUserByID returns a user by id
func (r *PostgresRepo) FindUserByID(ctx context.Context, userID string) (models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, fmt.Errorf("find user %s: %w", userID, settlementerrors.ErrUserNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user %s: %w", userID, err)
	}
	return user, nil
}

// IncrementAccount applies delta to the user's balances in one statement
func (r *PostgresRepo) IncrementAccount(ctx context.Context, userID string, delta AccountDelta) (models.User, error) {
	return incrementAccount(ctx, r.pool, userID, delta)
}

func incrementAccount(ctx context.Context, q querier, userID string, delta AccountDelta) (models.User, error) {
	row := q.QueryRow(ctx, `
UPDATE users
SET money_spent = money_spent + $2::numeric,
	auctions_won = auctions_won + $3,
	unpaid_commission = GREATEST(unpaid_commission + $4::numeric, 0)
WHERE id = $1
RETURNING `+userColumns, userID, delta.MoneySpent, delta.AuctionsWon, delta.UnpaidCommission)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, fmt.Errorf("increment account %s: %w", userID, settlementerrors.ErrUserNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("increment account %s: %w", userID, err)
	}
	return user, nil
}

const auctionColumns = `id, title, created_by, end_time, commission_calculated, highest_bidder, current_bid`

// FindEndedUnsettled returns auctions that ended before now and are not reconciled, oldest first
func (r *PostgresRepo) FindEndedUnsettled(ctx context.Context, now time.Time) ([]models.Auction, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+auctionColumns+`
FROM auctions
WHERE end_time < $1 AND commission_calculated = FALSE
ORDER BY end_time ASC, id ASC`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("find ended auctions: %w", err)
	}
	defer rows.Close()

	var auctions []models.Auction
	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("find ended auctions: %w", err)
		}
		auctions = append(auctions, auction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find ended auctions: %w", err)
	}
	if len(auctions) == 0 {
		return nil, nil
	}

	if err := r.loadBids(ctx, auctions); err != nil {
		return nil, fmt.Errorf("find ended auctions: %w", err)
	}
	return auctions, nil
}

// FindAuctionByID returns an auction with its bids
func (r *PostgresRepo) FindAuctionByID(ctx context.Context, auctionID string) (models.Auction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, auctionID)
	auction, err := scanAuction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Auction{}, fmt.Errorf("find auction %s: %w", auctionID, settlementerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return models.Auction{}, fmt.Errorf("find auction %s: %w", auctionID, err)
	}

	auctions := []models.Auction{auction}
	if err := r.loadBids(ctx, auctions); err != nil {
		return models.Auction{}, fmt.Errorf("find auction %s: %w", auctionID, err)
	}
	return auctions[0], nil
}

// loadBids fills the bid lists in insertion order
func (r *PostgresRepo) loadBids(ctx context.Context, auctions []models.Auction) error {
	ids := make([]string, len(auctions))
	index := make(map[string]int, len(auctions))
	for i, a := range auctions {
		ids[i] = a.AuctionID
		index[a.AuctionID] = i
	}

	rows, err := r.pool.Query(ctx, `
SELECT auction_id, user_id, amount, placed_at
FROM auction_bids
WHERE auction_id = ANY($1)
ORDER BY auction_id, id`, ids)
	if err != nil {
		return fmt.Errorf("load bids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var auctionID string
		var bid models.Bid
		if err := rows.Scan(&auctionID, &bid.UserID, &bid.Amount, &bid.Timestamp); err != nil {
			return fmt.Errorf("load bids: %w", err)
		}
		bid.Timestamp = bid.Timestamp.UTC()
		i := index[auctionID]
		auctions[i].Bids = append(auctions[i].Bids, bid)
	}
	return rows.Err()
}

// SaveAuction upserts an auction and replaces its bids. Settled auctions are immutable.
func (r *PostgresRepo) SaveAuction(ctx context.Context, auction models.Auction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save auction %s: %w", auction.AuctionID, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
INSERT INTO auctions (id, title, created_by, end_time, commission_calculated, highest_bidder, current_bid)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)
ON CONFLICT (id) DO UPDATE
SET title = EXCLUDED.title,
	created_by = EXCLUDED.created_by,
	end_time = EXCLUDED.end_time,
	commission_calculated = EXCLUDED.commission_calculated,
	highest_bidder = EXCLUDED.highest_bidder,
	current_bid = EXCLUDED.current_bid
WHERE auctions.commission_calculated = FALSE`,
		auction.AuctionID, auction.Title, auction.CreatedBy, auction.EndTime.UTC(),
		auction.CommissionCalculated, auction.HighestBidder, auction.CurrentBid)
	if err != nil {
		return fmt.Errorf("save auction %s: %w", auction.AuctionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save auction %s: %w", auction.AuctionID, settlementerrors.ErrAlreadySettled)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM auction_bids WHERE auction_id = $1`, auction.AuctionID); err != nil {
		return fmt.Errorf("save auction %s bids: %w", auction.AuctionID, err)
	}
	for _, bid := range auction.Bids {
		if _, err := tx.Exec(ctx, `
INSERT INTO auction_bids (auction_id, user_id, amount, placed_at)
VALUES ($1, $2, $3::numeric, $4)`, auction.AuctionID, bid.UserID, bid.Amount, bid.Timestamp.UTC()); err != nil {
			return fmt.Errorf("save auction %s bids: %w", auction.AuctionID, err)
		}
	}

	return tx.Commit(ctx)
}

// FindApprovedProofs returns proofs awaiting reconciliation ordered by id
func (r *PostgresRepo) FindApprovedProofs(ctx context.Context) ([]models.PaymentProof, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, amount, status
FROM payment_proofs
WHERE status = $1
ORDER BY id`, models.ProofApproved)
	if err != nil {
		return nil, fmt.Errorf("find approved proofs: %w", err)
	}
	defer rows.Close()

	var proofs []models.PaymentProof
	for rows.Next() {
		var proof models.PaymentProof
		if err := rows.Scan(&proof.ProofID, &proof.UserID, &proof.Amount, &proof.Status); err != nil {
			return nil, fmt.Errorf("find approved proofs: %w", err)
		}
		proofs = append(proofs, proof)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find approved proofs: %w", err)
	}
	return proofs, nil
}

// UpdateProofStatus moves a proof from one status to the next
func (r *PostgresRepo) UpdateProofStatus(ctx context.Context, proofID string, from, to models.ProofStatus) error {
	if !validTransition(from, to) {
		return fmt.Errorf("proof %s %s -> %s: %w", proofID, from, to, settlementerrors.ErrInvalidTransition)
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE payment_proofs SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2`, proofID, from, to)
	if err != nil {
		return fmt.Errorf("update proof %s: %w", proofID, err)
	}
	if tag.RowsAffected() == 0 {
		return proofGateError(ctx, r.pool, proofID, to)
	}
	return nil
}

// proofGateError explains why a conditional proof update matched no rows
func proofGateError(ctx context.Context, q querier, proofID string, target models.ProofStatus) error {
	var status models.ProofStatus
	err := q.QueryRow(ctx, `SELECT status FROM payment_proofs WHERE id = $1`, proofID).Scan(&status)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("proof %s: %w", proofID, settlementerrors.ErrProofNotFound)
	case err != nil:
		return fmt.Errorf("proof %s: %w", proofID, err)
	case status == target:
		return fmt.Errorf("proof %s: %w", proofID, settlementerrors.ErrAlreadySettled)
	default:
		return fmt.Errorf("proof %s is %s: %w", proofID, status, settlementerrors.ErrInvalidTransition)
	}
}

// AppendCommission inserts a ledger record
func (r *PostgresRepo) AppendCommission(ctx context.Context, record models.Commission) (models.Commission, error) {
	return appendCommission(ctx, r.pool, record)
}

func appendCommission(ctx context.Context, q querier, record models.Commission) (models.Commission, error) {
	if !record.Amount.IsPositive() {
		return models.Commission{}, fmt.Errorf("append commission for user %s: %w", record.UserID, settlementerrors.ErrInvalidAmount)
	}
	if record.CommissionID == "" {
		record.CommissionID = utils.NewLedgerID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := q.Exec(ctx, `
INSERT INTO commissions (id, amount, user_id, proof_id, created_at)
VALUES ($1, $2::numeric, $3, $4, $5)`,
		record.CommissionID, record.Amount, record.UserID, record.ProofID, record.CreatedAt.UTC())
	if err != nil {
		return models.Commission{}, fmt.Errorf("append commission for proof %s: %w", record.ProofID, err)
	}
	return record, nil
}

// MonthlyCommissionTotals sums ledger amounts per calendar month of year
func (r *PostgresRepo) MonthlyCommissionTotals(ctx context.Context, year int) ([12]decimal.Decimal, error) {
	var totals [12]decimal.Decimal
	for i := range totals {
		totals[i] = decimal.Zero
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.pool.Query(ctx, `
SELECT EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS month, SUM(amount)
FROM commissions
WHERE created_at >= $1 AND created_at < $2
GROUP BY month
ORDER BY month`, start, start.AddDate(1, 0, 0))
	if err != nil {
		return totals, fmt.Errorf("monthly commission totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var month int
		var total decimal.Decimal
		if err := rows.Scan(&month, &total); err != nil {
			return totals, fmt.Errorf("monthly commission totals: %w", err)
		}
		if month >= 1 && month <= 12 {
			totals[month-1] = total
		}
	}
	return totals, rows.Err()
}

// SettleAuction marks the auction reconciled and applies both balance
// increments in one transaction, gated on commission_calculated = FALSE
func (r *PostgresRepo) SettleAuction(ctx context.Context, s AuctionSettlement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("settle auction %s: %w", s.AuctionID, err)
	}
	defer tx.Rollback(ctx)

	var bidder *string
	var amount *decimal.Decimal
	if s.Winner != nil {
		bidder = &s.Winner.UserID
		amount = &s.Winner.Amount
	}

	tag, err := tx.Exec(ctx, `
UPDATE auctions
SET highest_bidder = $2, current_bid = $3::numeric, commission_calculated = TRUE
WHERE id = $1 AND commission_calculated = FALSE`, s.AuctionID, bidder, amount)
	if err != nil {
		return fmt.Errorf("settle auction %s: %w", s.AuctionID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM auctions WHERE id = $1)`, s.AuctionID).Scan(&exists); err != nil {
			return fmt.Errorf("settle auction %s: %w", s.AuctionID, err)
		}
		if !exists {
			return fmt.Errorf("settle auction %s: %w", s.AuctionID, settlementerrors.ErrAuctionNotFound)
		}
		return fmt.Errorf("settle auction %s: %w", s.AuctionID, settlementerrors.ErrAlreadySettled)
	}

	if s.Winner != nil {
		if _, err := incrementAccount(ctx, tx, s.Winner.UserID, AccountDelta{MoneySpent: s.Winner.Amount, AuctionsWon: 1}); err != nil {
			return fmt.Errorf("settle auction %s bidder: %w", s.AuctionID, err)
		}
		if _, err := incrementAccount(ctx, tx, s.AuctioneerID, AccountDelta{UnpaidCommission: s.Commission}); err != nil {
			return fmt.Errorf("settle auction %s auctioneer: %w", s.AuctionID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("settle auction %s: %w", s.AuctionID, err)
	}
	return nil
}

// SettleProof settles the proof, clamps the owner's unpaid commission and
// appends the ledger record in one transaction, gated on status = Approved
func (r *PostgresRepo) SettleProof(ctx context.Context, s ProofSettlement) (ProofSettlementResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ProofSettlementResult{}, fmt.Errorf("settle proof %s: %w", s.ProofID, err)
	}
	defer tx.Rollback(ctx)

	settledAt := s.SettledAt.UTC()
	if settledAt.IsZero() {
		settledAt = time.Now().UTC()
	}

	var userID string
	var amount decimal.Decimal
	err = tx.QueryRow(ctx, `
UPDATE payment_proofs SET status = $2, updated_at = $4
WHERE id = $1 AND status = $3
RETURNING user_id, amount`, s.ProofID, models.ProofSettled, models.ProofApproved, settledAt).Scan(&userID, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProofSettlementResult{}, proofGateError(ctx, tx, s.ProofID, models.ProofSettled)
	}
	if err != nil {
		return ProofSettlementResult{}, fmt.Errorf("settle proof %s: %w", s.ProofID, err)
	}

	user, err := incrementAccount(ctx, tx, userID, AccountDelta{UnpaidCommission: amount.Neg()})
	if err != nil {
		return ProofSettlementResult{}, fmt.Errorf("settle proof %s owner: %w", s.ProofID, err)
	}

	record, err := appendCommission(ctx, tx, models.Commission{
		Amount:    amount,
		UserID:    userID,
		ProofID:   s.ProofID,
		CreatedAt: settledAt,
	})
	if err != nil {
		return ProofSettlementResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ProofSettlementResult{}, fmt.Errorf("settle proof %s: %w", s.ProofID, err)
	}
	return ProofSettlementResult{Remaining: user.UnpaidCommission, Record: record}, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var methods []byte
	err := row.Scan(
		&user.UserID,
		&user.UserName,
		&user.Email,
		&user.Role,
		&user.UnpaidCommission,
		&user.MoneySpent,
		&user.AuctionsWon,
		&methods,
	)
	if err != nil {
		return models.User{}, err
	}
	if len(methods) > 0 {
		if err := json.Unmarshal(methods, &user.PaymentMethods); err != nil {
			return models.User{}, fmt.Errorf("decode payment methods for user %s: %w", user.UserID, err)
		}
	}
	return user, nil
}

func scanAuction(row pgx.Row) (models.Auction, error) {
	var auction models.Auction
	var currentBid decimal.NullDecimal
	err := row.Scan(
		&auction.AuctionID,
		&auction.Title,
		&auction.CreatedBy,
		&auction.EndTime,
		&auction.CommissionCalculated,
		&auction.HighestBidder,
		&currentBid,
	)
	if err != nil {
		return models.Auction{}, err
	}
	auction.EndTime = auction.EndTime.UTC()
	if currentBid.Valid {
		bid := currentBid.Decimal
		auction.CurrentBid = &bid
	}
	return auction, nil
}

// UpsertUser creates or replaces a user row. Balances are written as given.
func (r *PostgresRepo) UpsertUser(ctx context.Context, user models.User) error {
	methods, err := json.Marshal(user.PaymentMethods)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", user.UserID, err)
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO users (id, user_name, email, role, unpaid_commission, money_spent, auctions_won, payment_methods)
VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8)
ON CONFLICT (id) DO UPDATE
SET user_name = EXCLUDED.user_name,
	email = EXCLUDED.email,
	role = EXCLUDED.role,
	unpaid_commission = EXCLUDED.unpaid_commission,
	money_spent = EXCLUDED.money_spent,
	auctions_won = EXCLUDED.auctions_won,
	payment_methods = EXCLUDED.payment_methods`,
		user.UserID, user.UserName, user.Email, user.Role,
		user.UnpaidCommission, user.MoneySpent, user.AuctionsWon, methods)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", user.UserID, err)
	}
	return nil
}

// InsertProof records a new payment proof
func (r *PostgresRepo) InsertProof(ctx context.Context, proof models.PaymentProof) error {
	status := proof.Status
	if status == "" {
		status = models.ProofPending
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO payment_proofs (id, user_id, amount, status)
VALUES ($1, $2, $3::numeric, $4)`, proof.ProofID, proof.UserID, proof.Amount, status)
	if err != nil {
		return fmt.Errorf("insert proof %s: %w", proof.ProofID, err)
	}
	return nil
}
