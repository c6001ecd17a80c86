package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	walletdto "github.com/radieske/varsity-predictions/internal/wallet-service/dto"
)

var (
	ErrInsufficientFunds = errors.New("insufficient coins")
	ErrNotFound          = errors.New("wallet or reservation not found")
)

// Client chama o wallet-service via HTTP
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Reserve bloqueia coins para a aposta (externalRef = predictionId)
func (c *Client) Reserve(ctx context.Context, userID string, coins int64, externalRef string) (string, error) {
	var out walletdto.ReservationResponse
	err := c.post(ctx, "/wallet/reserve", walletdto.ReserveRequest{UserID: userID, Coins: coins, ExternalRef: externalRef}, &out)
	if err != nil {
		return "", err
	}
	return out.ReservationID, nil
}

func (c *Client) Commit(ctx context.Context, userID, externalRef string) error {
	return c.post(ctx, "/wallet/commit", walletdto.CommitRequest{UserID: userID, ExternalRef: externalRef}, nil)
}

func (c *Client) Refund(ctx context.Context, userID, externalRef string) error {
	return c.post(ctx, "/wallet/refund", walletdto.RefundRequest{UserID: userID, ExternalRef: externalRef}, nil)
}

func (c *Client) Payout(ctx context.Context, userID, externalRef string, coins int64) error {
	return c.post(ctx, "/wallet/payout", walletdto.PayoutRequest{UserID: userID, ExternalRef: externalRef, Coins: coins}, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusConflict:
		return ErrInsufficientFunds
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode >= 300:
		return fmt.Errorf("wallet %s http %d", path, res.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
