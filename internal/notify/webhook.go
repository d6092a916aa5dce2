package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier posts rendered messages to a mail relay endpoint
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier with a bounded request timeout
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// SendWinnerNotice renders and posts the winner message
func (n *WebhookNotifier) SendWinnerNotice(ctx context.Context, notice WinnerNotice) error {
	msg, err := RenderWinner(notice)
	if err != nil {
		return err
	}
	return n.post(ctx, msg)
}

// SendSettlementNotice renders and posts the settlement message
func (n *WebhookNotifier) SendSettlementNotice(ctx context.Context, notice SettlementNotice) error {
	msg, err := RenderSettlement(notice)
	if err != nil {
		return err
	}
	return n.post(ctx, msg)
}

func (n *WebhookNotifier) post(ctx context.Context, msg Message) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	if msg.To == "" {
		return errors.New("webhook notifier: empty recipient")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "auction-settlement/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook notifier: relay returned %d", resp.StatusCode)
	}
	return nil
}
