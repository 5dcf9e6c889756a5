package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"medassist/internal/service"

	"github.com/sirupsen/logrus"
)

// providerChannel posts to an external messaging provider over a single
// webhook endpoint. The provider handles the actual SMS/WhatsApp/email
// delivery; its transport protocol is not this service's concern.
type providerChannel struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

func NewProviderChannel(url string, client *http.Client, log *logrus.Logger) service.Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &providerChannel{
		url:    url,
		client: client,
		log:    log,
	}
}

func (c *providerChannel) Send(ctx context.Context, channel service.Channel, target string, n *service.Notification) error {
	body, err := json.Marshal(map[string]string{
		"channel": string(channel),
		"to":      target,
		"subject": n.Subject,
		"body":    n.Message,
		"ref":     n.CaseID.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal provider payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("provider responded %d for channel %s", resp.StatusCode, channel)
	}
	return nil
}
