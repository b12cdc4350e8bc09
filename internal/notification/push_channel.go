package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"empathic-credit/internal/domain"
)

// PushChannel entrega notificaciones push a traves de un webhook HTTP del
// proveedor de mensajeria movil.
type PushChannel struct {
	webhookURL string
	client     *http.Client
}

func NewPushChannel(webhookURL string) (*PushChannel, error) {
	if strings.TrimSpace(webhookURL) == "" {
		return nil, fmt.Errorf("push webhook url is required")
	}
	return &PushChannel{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *PushChannel) Send(ctx context.Context, user domain.User, subject, body string) error {
	payload, err := json.Marshal(pushMessage{
		UserID: user.ID,
		Title:  subject,
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push webhook error: status=%d", resp.StatusCode)
	}
	return nil
}

type pushMessage struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}
