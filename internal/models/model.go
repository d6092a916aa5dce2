package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the account type of a user
type Role string

const (
	RoleBidder     Role = "Bidder"
	RoleAuctioneer Role = "Auctioneer"
	RoleSuperAdmin Role = "Super Admin"
)

// ProofStatus is the lifecycle state of a commission payment proof
type ProofStatus string

const (
	ProofPending  ProofStatus = "Pending"
	ProofApproved ProofStatus = "Approved"
	ProofSettled  ProofStatus = "Settled"
)

// BankTransfer holds an auctioneer's bank account details
type BankTransfer struct {
	BankAccountNumber string `json:"bank_account_number"`
	BankAccountName   string `json:"bank_account_name"`
	BankName          string `json:"bank_name"`
}

// PaymentMethods are the payment instructions an auctioneer gives to winners
type PaymentMethods struct {
	BankTransfer    BankTransfer `json:"bank_transfer"`
	GooglePayNumber string       `json:"googlepay_number"`
	PayPalEmail     string       `json:"paypal_email"`
}

// User represents an account on the platform. Balance fields start at zero.
type User struct {
	UserID           string          `json:"user_id"`
	UserName         string          `json:"user_name"`
	Email            string          `json:"email"`
	Role             Role            `json:"role"`
	UnpaidCommission decimal.Decimal `json:"unpaid_commission"`
	MoneySpent       decimal.Decimal `json:"money_spent"`
	AuctionsWon      int             `json:"auctions_won"`
	PaymentMethods   PaymentMethods  `json:"payment_methods"`
}

// Bid represents a user's bid on an auction
type Bid struct {
	UserID    string          `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// Auction represents a time-boxed listing and its bids.
// HighestBidder and CurrentBid are fixed once CommissionCalculated is true.
type Auction struct {
	AuctionID            string           `json:"auction_id"`
	Title                string           `json:"title"`
	CreatedBy            string           `json:"created_by"`
	EndTime              time.Time        `json:"end_time"`
	Bids                 []Bid            `json:"bids"`
	CommissionCalculated bool             `json:"commission_calculated"`
	HighestBidder        *string          `json:"highest_bidder,omitempty"`
	CurrentBid           *decimal.Decimal `json:"current_bid,omitempty"`
}

// PaymentProof is an auctioneer's claim of having paid commission
type PaymentProof struct {
	ProofID string          `json:"proof_id"`
	UserID  string          `json:"user_id"`
	Amount  decimal.Decimal `json:"amount"`
	Status  ProofStatus     `json:"status"`
}

// Commission is an append-only ledger record of reconciled commission
type Commission struct {
	CommissionID string          `json:"commission_id"`
	Amount       decimal.Decimal `json:"amount"`
	UserID       string          `json:"user_id"`
	ProofID      string          `json:"proof_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

// WinningBid returns the highest bid of the auction. Equal amounts are
// resolved by the earliest timestamp, then by list order.
func (a Auction) WinningBid() (Bid, bool) {
	if len(a.Bids) == 0 {
		return Bid{}, false
	}

	winning := a.Bids[0]
	for _, b := range a.Bids[1:] {
		if b.Amount.GreaterThan(winning.Amount) || (b.Amount.Equal(winning.Amount) && b.Timestamp.Before(winning.Timestamp)) {
			winning = b
		}
	}
	return winning, true
}

// Ended reports whether the auction end time is strictly before now
func (a Auction) Ended(now time.Time) bool {
	return a.EndTime.Before(now)
}
