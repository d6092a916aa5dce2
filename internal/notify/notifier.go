package notify

import (
	"context"
	"time"

	"auction-settlement/internal/models"

	"github.com/shopspring/decimal"
)

// WinnerNotice tells a bidder they won an auction and how to pay the auctioneer
type WinnerNotice struct {
	Winner         models.User
	AuctionID      string
	AuctionTitle   string
	Amount         decimal.Decimal
	EndTime        time.Time
	PaymentMethods models.PaymentMethods
}

// SettlementNotice tells an auctioneer a commission payment was reconciled
type SettlementNotice struct {
	User          models.User
	ProofID       string
	AmountSettled decimal.Decimal
	Remaining     decimal.Decimal
	SettledAt     time.Time
}

// Message is a rendered notification ready for a transport
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

//go:generate mockgen -source=notifier.go -destination=mock_notifier.go -package=notify

// Notifier delivers settlement notifications. Callers treat failures as non-fatal.
type Notifier interface {
	SendWinnerNotice(ctx context.Context, notice WinnerNotice) error
	SendSettlementNotice(ctx context.Context, notice SettlementNotice) error
}
