// Package notify delivers scan alerts to the owner's configured chat
// webhooks. Delivery is at-most-once and best-effort: no retry, no queue,
// and one endpoint's failure never suppresses delivery to another.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ca-risken/common/pkg/logging"
	"github.com/shipsafe/cyberwatch/pkg/common"
)

const notifierUsername = "ShipSafe Cyber-Watch"

type Notifier interface {
	Notify(ctx context.Context, settings *common.UserSettings, repoFullName string, issueCount int)
}

type discordPayload struct {
	Content   string `json:"content"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type slackPayload struct {
	Text string `json:"text"`
}

type webhookNotifier struct {
	httpClient *http.Client
	appURL     string
	avatarURL  string
	logger     logging.Logger
}

func NewNotifier(appURL, avatarURL string, timeout time.Duration, logger logging.Logger) Notifier {
	return &webhookNotifier{
		httpClient: &http.Client{Timeout: timeout},
		appURL:     appURL,
		avatarURL:  avatarURL,
		logger:     logger,
	}
}

func (n *webhookNotifier) Notify(ctx context.Context, settings *common.UserSettings, repoFullName string, issueCount int) {
	if settings == nil {
		return
	}
	message := fmt.Sprintf("🚨 **Cyber-Watch Alert** 🚨\n\nSecurity breach detected in **%s**.\n**%d** new vulnerabilities found.\n\nView full report: %s/history",
		repoFullName, issueCount, n.appURL)

	if settings.DiscordWebhook != "" {
		payload := discordPayload{Content: message, Username: notifierUsername, AvatarURL: n.avatarURL}
		if err := n.post(ctx, settings.DiscordWebhook, payload); err != nil {
			n.logger.Errorf(ctx, "Failed to send discord notification: repository=%s, err=%+v", repoFullName, err)
		}
	}
	if settings.SlackWebhook != "" {
		payload := slackPayload{Text: message}
		if err := n.post(ctx, settings.SlackWebhook, payload); err != nil {
			n.logger.Errorf(ctx, "Failed to send slack notification: repository=%s, err=%+v", repoFullName, err)
		}
	}
}

func (n *webhookNotifier) post(ctx context.Context, webhookURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: err=%w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: err=%w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
