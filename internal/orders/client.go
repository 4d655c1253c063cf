package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartsales/internal/domain/cart"
	"smartsales/internal/money"
)

// CreateRequest is the payload the remote order collaborator accepts. The
// wallet and gateway amounts always sum to Total; sending both legs lets the
// remote side re-check the wallet balance when it actually debits.
type CreateRequest struct {
	Reference     string             `json:"reference"`
	Items         []cart.LineRequest `json:"items"`
	Total         money.Money        `json:"total"`
	WalletAmount  money.Money        `json:"wallet_amount"`
	GatewayAmount money.Money        `json:"gateway_amount"`
}

// Order is the created-order record the collaborator returns.
type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

// Client talks to the remote order service. It owns no order state; failures
// surface verbatim so the caller can leave the cart untouched and retry.
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

func (c *Client) Create(ctx context.Context, req CreateRequest) (Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Order{}, fmt.Errorf("encode order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	// One key per call: the remote side dedupes retries of the same submission.
	httpReq.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return Order{}, fmt.Errorf("create order failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return Order{}, fmt.Errorf("decode order: %w body=%s", err, string(raw))
	}
	if order.ID == "" {
		return Order{}, fmt.Errorf("order response missing id: body=%s", string(raw))
	}

	return order, nil
}
