package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/config"
)

const (
	colorGreen  = 0x2ecc71
	colorBlue   = 0x3498db
	colorOrange = 0xe67e22
	colorRed    = 0xe74c3c
)

// discordMessage is the webhook payload
type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title  string         `json:"title"`
	Color  int            `json:"color"`
	Fields []discordField `json:"fields,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordNotifier implements the billing.Notifier interface by posting embeds
// to a Discord webhook. Delivery is best-effort; callers log and move on.
type DiscordNotifier struct {
	cfg        config.DiscordConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDiscordNotifier creates a new Discord webhook notifier
func NewDiscordNotifier(cfg config.DiscordConfig, logger *zap.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// SendNewSubscriptionNotification announces a new subscription
func (n *DiscordNotifier) SendNewSubscriptionNotification(ctx context.Context, payload billing.NotificationPayload) error {
	return n.send(ctx, "Nova assinatura", colorGreen, payload)
}

// SendRenewalNotification announces a successful renewal charge
func (n *DiscordNotifier) SendRenewalNotification(ctx context.Context, payload billing.NotificationPayload) error {
	return n.send(ctx, "Assinatura renovada", colorBlue, payload)
}

// SendPlanChangeNotification announces a plan change
func (n *DiscordNotifier) SendPlanChangeNotification(ctx context.Context, payload billing.NotificationPayload) error {
	return n.send(ctx, "Mudança de plano", colorBlue, payload)
}

// SendCancellationNotification announces a cancellation
func (n *DiscordNotifier) SendCancellationNotification(ctx context.Context, payload billing.NotificationPayload) error {
	return n.send(ctx, "Assinatura cancelada", colorOrange, payload)
}

// SendFailureNotification announces a failed charge
func (n *DiscordNotifier) SendFailureNotification(ctx context.Context, payload billing.NotificationPayload) error {
	return n.send(ctx, "Falha de pagamento", colorRed, payload)
}

func (n *DiscordNotifier) send(ctx context.Context, title string, color int, payload billing.NotificationPayload) error {
	if n.cfg.WebhookURL == "" {
		n.logger.Debug("discord webhook not configured, dropping notification",
			zap.String("title", title))
		return nil
	}

	msg := discordMessage{
		Embeds: []discordEmbed{{
			Title:  title,
			Color:  color,
			Fields: fieldsFromPayload(payload),
		}},
	}

	bodyBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("discord: failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("discord: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord: request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord: webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// fieldsFromPayload converts the payload map into embed fields in a stable order
func fieldsFromPayload(payload billing.NotificationPayload) []discordField {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]discordField, len(keys))
	for i, k := range keys {
		fields[i] = discordField{Name: k, Value: payload[k], Inline: true}
	}
	return fields
}

// Ensure DiscordNotifier implements the interface
var _ billing.Notifier = (*DiscordNotifier)(nil)
