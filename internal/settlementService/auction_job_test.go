package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-settlement/internal/commission"
	"auction-settlement/internal/models"
	"auction-settlement/internal/notify"
	"auction-settlement/internal/repository"
	"auction-settlement/internal/settlementerrors"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func noRetry() Option {
	return WithRetryPolicy(RetryPolicy{Attempts: 1})
}

// newSeededRepo returns a repo with bidders u1, u2 and auctioneer seller
func newSeededRepo(t *testing.T) *repository.MemoryRepo {
	t.Helper()

	repo := repository.NewMemoryRepo()
	repo.AddUser(models.User{UserID: "u1", UserName: "alice", Email: "alice@example.com", Role: models.RoleBidder})
	repo.AddUser(models.User{UserID: "u2", UserName: "bob", Email: "bob@example.com", Role: models.RoleBidder})
	repo.AddUser(models.User{
		UserID:   "seller",
		UserName: "carol",
		Email:    "carol@example.com",
		Role:     models.RoleAuctioneer,
		PaymentMethods: models.PaymentMethods{
			BankTransfer: models.BankTransfer{BankAccountNumber: "123", BankAccountName: "Carol", BankName: "First Bank"},
			PayPalEmail:  "carol@paypal.example",
		},
	})
	return repo
}

func saveAuction(t *testing.T, repo *repository.MemoryRepo, auctionID string, bids ...models.Bid) {
	t.Helper()
	require.NoError(t, repo.SaveAuction(context.Background(), models.Auction{
		AuctionID: auctionID,
		Title:     "Lot " + auctionID,
		CreatedBy: "seller",
		EndTime:   fixedNow.Add(-time.Hour),
		Bids:      bids,
	}))
}

func user(t *testing.T, repo *repository.MemoryRepo, userID string) models.User {
	t.Helper()
	u, err := repo.FindUserByID(context.Background(), userID)
	require.NoError(t, err)
	return u
}

func TestAuctionJob_SettlesEndedAuction(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newSeededRepo(t)
	saveAuction(t, repo, "a1", models.Bid{UserID: "u1", Amount: dec("200"), Timestamp: fixedNow.Add(-2 * time.Hour)})

	policy := NewMockCommissionPolicy(ctrl)
	policy.EXPECT().ComputeCommission(gomock.Any(), "a1").Return(dec("20"), nil)

	notifier := notify.NewMockNotifier(ctrl)
	notifier.EXPECT().SendWinnerNotice(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, notice notify.WinnerNotice) error {
			require.Equal(t, "u1", notice.Winner.UserID)
			require.Equal(t, "a1", notice.AuctionID)
			require.True(t, dec("200").Equal(notice.Amount))
			require.Equal(t, "First Bank", notice.PaymentMethods.BankTransfer.BankName)
			return nil
		}).Times(1)

	job, err := NewAuctionJob(repo, policy, notifier, WithClock(fixedClock), noRetry())
	require.NoError(t, err)

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, AuctionJobName, result.Job)
	require.Equal(t, 1, result.Selected)
	require.Equal(t, 1, result.Settled)

	auction, err := repo.FindAuctionByID(context.Background(), "a1")
	require.NoError(t, err)
	require.True(t, auction.CommissionCalculated)
	require.NotNil(t, auction.HighestBidder)
	require.Equal(t, "u1", *auction.HighestBidder)
	require.True(t, dec("200").Equal(*auction.CurrentBid))

	bidder := user(t, repo, "u1")
	require.True(t, dec("200").Equal(bidder.MoneySpent))
	require.Equal(t, 1, bidder.AuctionsWon)
	require.True(t, dec("20").Equal(user(t, repo, "seller").UnpaidCommission))
}

func TestAuctionJob_NoBidsMarksReconciled(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newSeededRepo(t)
	saveAuction(t, repo, "empty")

	policy, err := commission.NewRatePolicy(repo, commission.DefaultRate)
	require.NoError(t, err)
	notifier := notify.NewMockNotifier(ctrl)

	job, err := NewAuctionJob(repo, policy, notifier, WithClock(fixedClock))
	require.NoError(t, err)

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Settled)

	auction, err := repo.FindAuctionByID(context.Background(), "empty")
	require.NoError(t, err)
	require.True(t, auction.CommissionCalculated)
	require.Nil(t, auction.HighestBidder)
	require.Nil(t, auction.CurrentBid)
	require.True(t, user(t, repo, "seller").UnpaidCommission.IsZero())
}

func TestAuctionJob_Idempotent(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo(t)
	saveAuction(t, repo, "a1",
		models.Bid{UserID: "u1", Amount: dec("100"), Timestamp: fixedNow.Add(-3 * time.Hour)},
		models.Bid{UserID: "u2", Amount: dec("300"), Timestamp: fixedNow.Add(-2 * time.Hour)},
	)

	policy, err := commission.NewRatePolicy(repo, commission.DefaultRate)
	require.NoError(t, err)
	job, err := NewAuctionJob(repo, policy, notify.LogNotifier{}, WithClock(fixedClock))
	require.NoError(t, err)

	first, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Settled)

	second, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, second.Selected)

	winner := user(t, repo, "u2")
	require.True(t, dec("300").Equal(winner.MoneySpent))
	require.Equal(t, 1, winner.AuctionsWon)
	require.True(t, dec("15").Equal(user(t, repo, "seller").UnpaidCommission))

	auction, err := repo.FindAuctionByID(context.Background(), "a1")
	require.NoError(t, err)
	require.Equal(t, "u2", *auction.HighestBidder)
	require.True(t, dec("300").Equal(*auction.CurrentBid))
}

func TestAuctionJob_TieGoesToEarliestBid(t *testing.T) {
	t.Parallel()

	repo := newSeededRepo(t)
	t1 := fixedNow.Add(-3 * time.Hour)
	t2 := fixedNow.Add(-2 * time.Hour)
	t3 := fixedNow.Add(-1 * time.Hour)
	saveAuction(t, repo, "a1",
		models.Bid{UserID: "u1", Amount: dec("100"), Timestamp: t1},
		models.Bid{UserID: "u1", Amount: dec("150"), Timestamp: t3},
		models.Bid{UserID: "u2", Amount: dec("150"), Timestamp: t2},
	)

	policy, err := commission.NewRatePolicy(repo, commission.DefaultRate)
	require.NoError(t, err)
	job, err := NewAuctionJob(repo, policy, notify.LogNotifier{}, WithClock(fixedClock))
	require.NoError(t, err)

	_, err = job.Run(context.Background())
	require.NoError(t, err)

	auction, err := repo.FindAuctionByID(context.Background(), "a1")
	require.NoError(t, err)
	require.Equal(t, "u2", *auction.HighestBidder)
	require.True(t, dec("150").Equal(*auction.CurrentBid))
	require.Equal(t, 0, user(t, repo, "u1").AuctionsWon)
}

func TestAuctionJob_ItemFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newSeededRepo(t)
	saveAuction(t, repo, "a", models.Bid{UserID: "u1", Amount: dec("100"), Timestamp: fixedNow.Add(-2 * time.Hour)})
	saveAuction(t, repo, "b", models.Bid{UserID: "u2", Amount: dec("200"), Timestamp: fixedNow.Add(-2 * time.Hour)})
	saveAuction(t, repo, "c", models.Bid{UserID: "u1", Amount: dec("50"), Timestamp: fixedNow.Add(-2 * time.Hour)})

	policy := NewMockCommissionPolicy(ctrl)
	policy.EXPECT().ComputeCommission(gomock.Any(), "a").Return(decimal.Zero, errors.New("rate service unavailable"))
	policy.EXPECT().ComputeCommission(gomock.Any(), "b").Return(dec("10"), nil)
	policy.EXPECT().ComputeCommission(gomock.Any(), "c").DoAndReturn(
		func(context.Context, string) (decimal.Decimal, error) {
			panic("unexpected nil rate")
		})

	notifier := notify.NewMockNotifier(ctrl)
	notifier.EXPECT().SendWinnerNotice(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	job, err := NewAuctionJob(repo, policy, notifier, WithClock(fixedClock), noRetry())
	require.NoError(t, err)

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, result.Selected)
	require.Equal(t, 1, result.Settled)
	require.Equal(t, 2, result.Failed)

	a, err := repo.FindAuctionByID(context.Background(), "a")
	require.NoError(t, err)
	require.False(t, a.CommissionCalculated)

	b, err := repo.FindAuctionByID(context.Background(), "b")
	require.NoError(t, err)
	require.True(t, b.CommissionCalculated)
	require.True(t, dec("200").Equal(user(t, repo, "u2").MoneySpent))
}

func TestAuctionJob_MissingAccountIsSkipped(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newSeededRepo(t)
	saveAuction(t, repo, "ghost", models.Bid{UserID: "deleted", Amount: dec("80"), Timestamp: fixedNow.Add(-2 * time.Hour)})

	policy, err := commission.NewRatePolicy(repo, commission.DefaultRate)
	require.NoError(t, err)
	notifier := notify.NewMockNotifier(ctrl)

	job, err := NewAuctionJob(repo, policy, notifier, WithClock(fixedClock))
	require.NoError(t, err)

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Skipped)

	auction, err := repo.FindAuctionByID(context.Background(), "ghost")
	require.NoError(t, err)
	require.False(t, auction.CommissionCalculated)
	require.True(t, user(t, repo, "seller").UnpaidCommission.IsZero())
}

func TestAuctionJob_NotificationFailureDoesNotUndoSettlement(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newSeededRepo(t)
	saveAuction(t, repo, "a1", models.Bid{UserID: "u1", Amount: dec("40"), Timestamp: fixedNow.Add(-2 * time.Hour)})

	policy, err := commission.NewRatePolicy(repo, commission.DefaultRate)
	require.NoError(t, err)
	notifier := notify.NewMockNotifier(ctrl)
	notifier.EXPECT().SendWinnerNotice(gomock.Any(), gomock.Any()).Return(errors.New("smtp relay down")).Times(2)

	job, err := NewAuctionJob(repo, policy, notifier, WithClock(fixedClock), WithRetryPolicy(RetryPolicy{Attempts: 2}))
	require.NoError(t, err)

	result, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Settled)
	require.True(t, dec("2").Equal(user(t, repo, "seller").UnpaidCommission))
}

func TestAuctionJob_RepositoryOutcomes(t *testing.T) {
	t.Parallel()

	bid := models.Bid{UserID: "u1", Amount: dec("100"), Timestamp: fixedNow.Add(-2 * time.Hour)}
	ended := models.Auction{AuctionID: "a1", CreatedBy: "seller", EndTime: fixedNow.Add(-time.Hour), Bids: []models.Bid{bid}}

	tests := []struct {
		name        string
		mockSetup   func(repo *MockAuctionRepository)
		wantErr     bool
		wantSkipped int
		wantFailed  int
	}{
		{
			name: "eligibility_query_fails",
			mockSetup: func(repo *MockAuctionRepository) {
				repo.EXPECT().FindEndedUnsettled(gomock.Any(), fixedNow).Return(nil, errors.New("connection reset"))
			},
			wantErr: true,
		},
		{
			name: "settled_by_another_run",
			mockSetup: func(repo *MockAuctionRepository) {
				repo.EXPECT().FindEndedUnsettled(gomock.Any(), fixedNow).Return([]models.Auction{ended}, nil)
				repo.EXPECT().FindUserByID(gomock.Any(), "u1").Return(models.User{UserID: "u1"}, nil)
				repo.EXPECT().FindUserByID(gomock.Any(), "seller").Return(models.User{UserID: "seller"}, nil)
				repo.EXPECT().SettleAuction(gomock.Any(), gomock.Any()).Return(settlementerrors.ErrAlreadySettled)
			},
			wantSkipped: 1,
		},
		{
			name: "transient_write_failure",
			mockSetup: func(repo *MockAuctionRepository) {
				repo.EXPECT().FindEndedUnsettled(gomock.Any(), fixedNow).Return([]models.Auction{ended}, nil)
				repo.EXPECT().FindUserByID(gomock.Any(), "u1").Return(models.User{UserID: "u1"}, nil)
				repo.EXPECT().FindUserByID(gomock.Any(), "seller").Return(models.User{UserID: "seller"}, nil)
				repo.EXPECT().SettleAuction(gomock.Any(), gomock.Any()).Return(errors.New("deadlock detected"))
			},
			wantFailed: 1,
		},
		{
			name: "auctioneer_lookup_fails",
			mockSetup: func(repo *MockAuctionRepository) {
				repo.EXPECT().FindEndedUnsettled(gomock.Any(), fixedNow).Return([]models.Auction{ended}, nil)
				repo.EXPECT().FindUserByID(gomock.Any(), "u1").Return(models.User{UserID: "u1"}, nil)
				repo.EXPECT().FindUserByID(gomock.Any(), "seller").Return(models.User{}, errors.New("timeout"))
			},
			wantFailed: 1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockAuctionRepository(ctrl)
			policy := NewMockCommissionPolicy(ctrl)
			policy.EXPECT().ComputeCommission(gomock.Any(), gomock.Any()).Return(dec("5"), nil).AnyTimes()
			notifier := notify.NewMockNotifier(ctrl)
			tc.mockSetup(repo)

			job, err := NewAuctionJob(repo, policy, notifier, WithClock(fixedClock))
			require.NoError(t, err)

			result, err := job.Run(context.Background())
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantSkipped, result.Skipped)
			require.Equal(t, tc.wantFailed, result.Failed)
			require.Equal(t, 0, result.Settled)
		})
	}
}

func TestNewAuctionJob_RequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewAuctionJob(nil, nil, nil)
	require.ErrorIs(t, err, settlementerrors.ErrMissingReference)
}
