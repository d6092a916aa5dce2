package commission

import (
	"context"
	"errors"
	"fmt"

	"auction-settlement/internal/models"
	"auction-settlement/internal/settlementerrors"

	"github.com/shopspring/decimal"
)

// DefaultRate is the share of the winning bid owed by the auctioneer
var DefaultRate = decimal.RequireFromString("0.05")

// AuctionReader loads an auction by id
type AuctionReader interface {
	FindAuctionByID(ctx context.Context, auctionID string) (models.Auction, error)
}

// RatePolicy charges a fixed rate of the winning bid, rounded to cents
type RatePolicy struct {
	auctions AuctionReader
	rate     decimal.Decimal
}

// NewRatePolicy creates a RatePolicy. The rate must be within [0, 1].
func NewRatePolicy(auctions AuctionReader, rate decimal.Decimal) (*RatePolicy, error) {
	if auctions == nil {
		return nil, errors.New("commission policy: nil auction reader")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("commission policy: %w - rate %s outside [0, 1]", settlementerrors.ErrInvalidAmount, rate)
	}
	return &RatePolicy{auctions: auctions, rate: rate}, nil
}

// ComputeCommission returns the commission owed for the auction. Auctions
// without bids owe nothing.
func (p *RatePolicy) ComputeCommission(ctx context.Context, auctionID string) (decimal.Decimal, error) {
	auction, err := p.auctions.FindAuctionByID(ctx, auctionID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("commission policy: %w", err)
	}

	winning, ok := auction.WinningBid()
	if !ok {
		return decimal.Zero, nil
	}
	return winning.Amount.Mul(p.rate).Round(2), nil
}
