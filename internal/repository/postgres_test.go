package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"auction-settlement/internal/models"
	"auction-settlement/internal/settlementerrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// newPostgresRepo connects to PG_DSN and applies the schema. Tests are
// skipped when no database is configured.
func newPostgresRepo(t *testing.T) (*PostgresRepo, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	ctx := context.Background()
	opts := DefaultPoolOptions()
	opts.ConnectAttempts = 1
	pool, err := ConnectDB(ctx, dsn, opts)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	return NewPostgresRepo(pool), pool
}

func uniqueID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func TestPostgresRepo_SettleAuction(t *testing.T) {
	repo, _ := newPostgresRepo(t)
	ctx := context.Background()

	bidderID, sellerID, auctionID := uniqueID("bidder"), uniqueID("seller"), uniqueID("auction")
	require.NoError(t, repo.UpsertUser(ctx, models.User{UserID: bidderID, Role: models.RoleBidder}))
	require.NoError(t, repo.UpsertUser(ctx, models.User{
		UserID:         sellerID,
		Role:           models.RoleAuctioneer,
		PaymentMethods: models.PaymentMethods{PayPalEmail: "seller@example.com"},
	}))

	now := time.Now().UTC().Truncate(time.Second)
	bids := []models.Bid{
		{UserID: bidderID, Amount: dec("100"), Timestamp: now.Add(-3 * time.Hour)},
		{UserID: bidderID, Amount: dec("150"), Timestamp: now.Add(-2 * time.Hour)},
	}
	require.NoError(t, repo.SaveAuction(ctx, models.Auction{
		AuctionID: auctionID,
		Title:     "lot",
		CreatedBy: sellerID,
		EndTime:   now.Add(-time.Hour),
		Bids:      bids,
	}))

	ended, err := repo.FindEndedUnsettled(ctx, now)
	require.NoError(t, err)
	var found *models.Auction
	for i := range ended {
		if ended[i].AuctionID == auctionID {
			found = &ended[i]
		}
	}
	require.NotNil(t, found)
	require.Len(t, found.Bids, 2)

	winner, ok := found.WinningBid()
	require.True(t, ok)

	settlement := AuctionSettlement{AuctionID: auctionID, Winner: &winner, AuctioneerID: sellerID, Commission: dec("7.5")}
	require.NoError(t, repo.SettleAuction(ctx, settlement))
	require.ErrorIs(t, repo.SettleAuction(ctx, settlement), settlementerrors.ErrAlreadySettled)
	require.ErrorIs(t, repo.SaveAuction(ctx, *found), settlementerrors.ErrAlreadySettled)

	bidder, err := repo.FindUserByID(ctx, bidderID)
	require.NoError(t, err)
	require.True(t, dec("150").Equal(bidder.MoneySpent))
	require.Equal(t, 1, bidder.AuctionsWon)

	seller, err := repo.FindUserByID(ctx, sellerID)
	require.NoError(t, err)
	require.True(t, dec("7.5").Equal(seller.UnpaidCommission))
	require.Equal(t, "seller@example.com", seller.PaymentMethods.PayPalEmail)

	settled, err := repo.FindAuctionByID(ctx, auctionID)
	require.NoError(t, err)
	require.True(t, settled.CommissionCalculated)
	require.Equal(t, bidderID, *settled.HighestBidder)
}

func TestPostgresRepo_SettleProof(t *testing.T) {
	repo, _ := newPostgresRepo(t)
	ctx := context.Background()

	sellerID, proofID := uniqueID("seller"), uniqueID("proof")
	require.NoError(t, repo.UpsertUser(ctx, models.User{UserID: sellerID, Role: models.RoleAuctioneer, UnpaidCommission: dec("300")}))
	require.NoError(t, repo.InsertProof(ctx, models.PaymentProof{ProofID: proofID, UserID: sellerID, Amount: dec("500")}))

	_, err := repo.SettleProof(ctx, ProofSettlement{ProofID: proofID, SettledAt: time.Now()})
	require.ErrorIs(t, err, settlementerrors.ErrInvalidTransition)

	require.NoError(t, repo.UpdateProofStatus(ctx, proofID, models.ProofPending, models.ProofApproved))

	settledAt := time.Date(2031, time.April, 2, 10, 0, 0, 0, time.UTC)
	res, err := repo.SettleProof(ctx, ProofSettlement{ProofID: proofID, SettledAt: settledAt})
	require.NoError(t, err)
	require.True(t, res.Remaining.IsZero())
	require.True(t, dec("500").Equal(res.Record.Amount))

	_, err = repo.SettleProof(ctx, ProofSettlement{ProofID: proofID, SettledAt: settledAt})
	require.ErrorIs(t, err, settlementerrors.ErrAlreadySettled)

	totals, err := repo.MonthlyCommissionTotals(ctx, 2031)
	require.NoError(t, err)
	require.True(t, totals[3].GreaterThanOrEqual(dec("500")))
}

func TestAdvisoryLease_Exclusive(t *testing.T) {
	_, pool := newPostgresRepo(t)
	ctx := context.Background()
	lease := NewAdvisoryLease(pool)
	name := uniqueID("lease")

	release, ok, err := lease.TryAcquire(ctx, name)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = lease.TryAcquire(ctx, name)
	require.NoError(t, err)
	require.False(t, ok)

	release()

	release, ok, err = lease.TryAcquire(ctx, name)
	require.NoError(t, err)
	require.True(t, ok)
	release()
}
