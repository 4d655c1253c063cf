package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"smartsales/internal/money"
)

// Client reads the shopper's stored-value balance from the wallet service.
// The balance is input only: any debit happens on the remote side, as a
// confirmed consequence of settlement, never from here.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Balance fetches the current balance for a shopper session. A shopper with
// no wallet yet reads as zero, matching how the storefront treats a 404 from
// the wallet service.
func (c *Client) Balance(ctx context.Context, sessionID string) (money.Money, error) {
	url := fmt.Sprintf("%s/wallets/%s/balance", c.baseURL, sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return money.Money{}, fmt.Errorf("build balance request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return money.Money{}, fmt.Errorf("wallet balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return money.Zero(), nil
	}

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return money.Money{}, fmt.Errorf("wallet balance failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var res struct {
		Balance money.Money `json:"balance"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return money.Money{}, fmt.Errorf("decode balance: %w body=%s", err, string(raw))
	}

	return res.Balance, nil
}
