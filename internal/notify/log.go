package notify

import (
	"context"

	"auction-settlement/utils"
)

// LogNotifier writes rendered messages to the application log instead of
// delivering them. Used when no relay is configured.
type LogNotifier struct{}

func (LogNotifier) SendWinnerNotice(_ context.Context, notice WinnerNotice) error {
	msg, err := RenderWinner(notice)
	if err != nil {
		return err
	}
	utils.Info("notification (log only)", map[string]any{
		"to":         msg.To,
		"subject":    msg.Subject,
		"auction_id": notice.AuctionID,
	})
	return nil
}

func (LogNotifier) SendSettlementNotice(_ context.Context, notice SettlementNotice) error {
	msg, err := RenderSettlement(notice)
	if err != nil {
		return err
	}
	utils.Info("notification (log only)", map[string]any{
		"to":       msg.To,
		"subject":  msg.Subject,
		"proof_id": notice.ProofID,
	})
	return nil
}
