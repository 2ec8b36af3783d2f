package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for the SMS gateway.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SMSNotifier delivers messages through an HTTP SMS gateway. Any transport
// failure or non-2xx response surfaces as domain.ErrNotifierUnavailable so
// callers can abort and retry.
type SMSNotifier struct {
	cfg    Config
	httpc  *http.Client
	logger zerolog.Logger
}

func NewSMSNotifier(cfg Config, logger zerolog.Logger) *SMSNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SMSNotifier{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type smsRequest struct {
	MessageID string `json:"message_id"`
	To        string `json:"to"`
	Body      string `json:"body"`
}

func (n *SMSNotifier) Deliver(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(smsRequest{
		MessageID: uuid.NewString(),
		To:        phone,
		Body:      message,
	})
	if err != nil {
		return fmt.Errorf("marshal sms: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)

	resp, err := n.httpc.Do(req)
	if err != nil {
		n.logger.Warn().Err(err).Str("phone", phone).Msg("sms delivery failed")
		return fmt.Errorf("%w: %v", domain.ErrNotifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warn().Int("status", resp.StatusCode).Str("phone", phone).Msg("sms gateway rejected message")
		return fmt.Errorf("%w: gateway returned %d", domain.ErrNotifierUnavailable, resp.StatusCode)
	}

	return nil
}

// LogNotifier writes messages to the structured logger instead of sending
// them. Used in development mode and tests.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Deliver(_ context.Context, phone, message string) error {
	n.logger.Info().Str("phone", phone).Str("message", message).Msg("notification")
	return nil
}
