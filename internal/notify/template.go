package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const (
	WinnerSubject     = "Congratulations! You Won the Auction"
	SettlementSubject = "Payment Verification and Settlement Confirmation"
)

const winnerTemplate = `Congratulations {{.Winner.UserName}}!

You have successfully won the auction for: {{.AuctionTitle}}
Winning Bid: {{.Amount.StringFixed 2}}
Auction End Date: {{.EndTime.Format "2006-01-02"}}

Payment Information
{{- with .PaymentMethods.BankTransfer}}{{if .BankName}}
Bank Transfer
  Bank Name: {{.BankName}}
  Account Name: {{.BankAccountName}}
  Account Number: {{.BankAccountNumber}}
{{- end}}{{end}}
{{- if .PaymentMethods.GooglePayNumber}}
Google Pay: {{.PaymentMethods.GooglePayNumber}}
{{- end}}
{{- if .PaymentMethods.PayPalEmail}}
PayPal: {{.PaymentMethods.PayPalEmail}}
{{- end}}

Please complete the payment using any of the methods above.`

const settlementTemplate = `Dear {{.User.UserName}},

Your payment has been successfully verified and settled.

Payment Details:
- Amount Settled: {{.AmountSettled.StringFixed 2}}
- Remaining Unpaid Commission: {{.Remaining.StringFixed 2}}
- Settlement Date: {{.SettledAt.Format "2006-01-02"}}

You can now continue using our platform without restrictions.`

var (
	winnerTpl     = template.Must(template.New("winner-notice").Parse(winnerTemplate))
	settlementTpl = template.Must(template.New("settlement-notice").Parse(settlementTemplate))
)

// RenderWinner builds the winner message
func RenderWinner(notice WinnerNotice) (Message, error) {
	body, err := render(winnerTpl, notice)
	if err != nil {
		return Message{}, fmt.Errorf("render winner notice for auction %s: %w", notice.AuctionID, err)
	}
	return Message{To: notice.Winner.Email, Subject: WinnerSubject, Body: body}, nil
}

// RenderSettlement builds the settlement message
func RenderSettlement(notice SettlementNotice) (Message, error) {
	body, err := render(settlementTpl, notice)
	if err != nil {
		return Message{}, fmt.Errorf("render settlement notice for proof %s: %w", notice.ProofID, err)
	}
	return Message{To: notice.User.Email, Subject: SettlementSubject, Body: body}, nil
}

func render(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
