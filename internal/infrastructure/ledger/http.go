package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for reaching the remote ledger service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the HTTP implementation of the ledger interface. All numeric
// fields cross the wire as decimal strings of unbounded precision and are
// converted through checked big.Int parsing; values that do not fit are
// rejected, never truncated.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Wire types. Result mirrors the ledger's ok/err variant: exactly one field
// is populated.
type wireResult struct {
	OK  *string `json:"ok,omitempty"`
	Err *string `json:"err,omitempty"`
}

type wireTransaction struct {
	From      *string   `json:"from,omitempty"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
	NewPrice  *string   `json:"new_price,omitempty"`
}

type wireProduce struct {
	ID             string            `json:"id"`
	ProduceType    string            `json:"produce_type"`
	Origin         string            `json:"origin"`
	Quality        string            `json:"quality"`
	Price          string            `json:"price"`
	CurrentOwner   string            `json:"current_owner"`
	RegisteredTime time.Time         `json:"registered_time"`
	History        []wireTransaction `json:"history"`
}

type registerRequest struct {
	ProduceType string `json:"produce_type"`
	Origin      string `json:"origin"`
	Quality     string `json:"quality"`
	Price       string `json:"price"`
	Owner       string `json:"owner"`
}

type transferRequest struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Details  string `json:"details"`
	NewPrice string `json:"new_price"`
}

func (c *Client) RegisterProduce(ctx context.Context, produceType, origin, quality string, price uint64, owner string) (uint64, error) {
	req := registerRequest{
		ProduceType: produceType,
		Origin:      origin,
		Quality:     quality,
		Price:       domain.FormatLedgerUint(price),
		Owner:       owner,
	}

	var res wireResult
	if err := c.post(ctx, "/produces", req, &res); err != nil {
		return 0, err
	}
	if res.Err != nil {
		return 0, &domain.LedgerRejectedError{Reason: *res.Err}
	}
	if res.OK == nil {
		return 0, fmt.Errorf("ledger register: %w", domain.ErrLedgerUnavailable)
	}
	return domain.ParseLedgerUint(*res.OK)
}

func (c *Client) TransferProduce(ctx context.Context, id uint64, from, to, details string, newPrice uint64) error {
	req := transferRequest{
		ID:       domain.FormatLedgerUint(id),
		From:     from,
		To:       to,
		Details:  details,
		NewPrice: domain.FormatLedgerUint(newPrice),
	}

	var res wireResult
	if err := c.post(ctx, "/produces/transfer", req, &res); err != nil {
		return err
	}
	if res.Err != nil {
		return &domain.LedgerRejectedError{Reason: *res.Err}
	}
	return nil
}

func (c *Client) ProducesByOwner(ctx context.Context, owner string) ([]domain.Produce, error) {
	var wire []wireProduce
	if err := c.get(ctx, "/produces?owner="+url.QueryEscape(owner), &wire); err != nil {
		return nil, err
	}
	return decodeProduces(wire)
}

func (c *Client) Trace(ctx context.Context, id uint64) (*domain.Produce, error) {
	var wire wireProduce
	err := c.get(ctx, "/produces/"+domain.FormatLedgerUint(id)+"/trace", &wire)
	if err != nil {
		return nil, err
	}
	produce, err := decodeProduce(wire)
	if err != nil {
		return nil, err
	}
	return &produce, nil
}

func (c *Client) AllProduces(ctx context.Context) ([]domain.Produce, error) {
	var wire []wireProduce
	if err := c.get(ctx, "/produces", &wire); err != nil {
		return nil, err
	}
	return decodeProduces(wire)
}

func (c *Client) VerifyStakeholderInTrace(ctx context.Context, id uint64, phone string) (bool, error) {
	var res struct {
		Present bool `json:"present"`
	}
	path := "/produces/" + domain.FormatLedgerUint(id) + "/stakeholders/" + url.PathEscape(phone)
	if err := c.get(ctx, path, &res); err != nil {
		return false, err
	}
	return res.Present, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

// do executes the request and maps failures onto the error taxonomy:
// transport errors and timeouts become ErrLedgerUnavailable, a 404
// becomes ErrProduceNotFound, other non-2xx statuses carry the ledger's own
// message verbatim.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", req.URL.String()).Msg("ledger call failed")
		return fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", domain.ErrLedgerUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrProduceNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: ledger returned %d", domain.ErrLedgerUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		var res wireResult
		if json.Unmarshal(raw, &res) == nil && res.Err != nil {
			return &domain.LedgerRejectedError{Reason: *res.Err}
		}
		return &domain.LedgerRejectedError{Reason: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode ledger response: %w", err)
	}
	return nil
}

func decodeProduces(wire []wireProduce) ([]domain.Produce, error) {
	out := make([]domain.Produce, 0, len(wire))
	for _, w := range wire {
		p, err := decodeProduce(w)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeProduce(w wireProduce) (domain.Produce, error) {
	id, err := domain.ParseLedgerUint(w.ID)
	if err != nil {
		return domain.Produce{}, fmt.Errorf("produce id %q: %w", w.ID, err)
	}
	price, err := domain.ParseLedgerUint(w.Price)
	if err != nil {
		return domain.Produce{}, fmt.Errorf("produce price %q: %w", w.Price, err)
	}

	history := make([]domain.Transaction, len(w.History))
	for i, tx := range w.History {
		history[i] = domain.Transaction{
			From:      tx.From,
			To:        tx.To,
			Timestamp: tx.Timestamp,
			Details:   tx.Details,
		}
		if tx.NewPrice != nil {
			newPrice, err := domain.ParseLedgerUint(*tx.NewPrice)
			if err != nil {
				return domain.Produce{}, fmt.Errorf("transaction price %q: %w", *tx.NewPrice, err)
			}
			history[i].NewPrice = &newPrice
		}
	}

	return domain.Produce{
		ID:             id,
		ProduceType:    w.ProduceType,
		Origin:         w.Origin,
		Quality:        w.Quality,
		Price:          price,
		CurrentOwner:   w.CurrentOwner,
		RegisteredTime: w.RegisteredTime,
		History:        history,
	}, nil
}
