package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const stripeAPIBase = "https://api.stripe.com"

// StripeAdapter opens Stripe Checkout sessions. The whole gateway charge goes
// through as a single line item; the wallet leg travels in session metadata so
// the webhook side can reconcile the split.
type StripeAdapter struct {
	SecretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewStripeAdapter(secretKey string) *StripeAdapter {
	return &StripeAdapter{
		SecretKey:  secretKey,
		baseURL:    stripeAPIBase,
		httpClient: http.DefaultClient,
	}
}

// NewStripeAdapterWithBaseURL exists for tests pointed at a local server.
func NewStripeAdapterWithBaseURL(secretKey, baseURL string) *StripeAdapter {
	a := NewStripeAdapter(secretKey)
	a.baseURL = strings.TrimRight(baseURL, "/")
	return a
}

func (s *StripeAdapter) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", req.Reference)
	form.Set("success_url", withSessionPlaceholder(req.SuccessURL))
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	endpoint := s.baseURL + "/v1/checkout/sessions"

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	httpReq.Header.Set("Authorization", "Bearer "+s.SecretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return Session{}, fmt.Errorf("stripe session request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("stripe session failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var res struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return Session{}, fmt.Errorf("stripe session decode: %w body=%s", err, string(raw))
	}
	if res.URL == "" {
		return Session{}, fmt.Errorf("stripe session missing url: body=%s", string(raw))
	}

	return Session{ID: res.ID, URL: res.URL}, nil
}

// withSessionPlaceholder appends Stripe's literal {CHECKOUT_SESSION_ID}
// template to the success URL. Stripe substitutes it on redirect, so the
// return handler can match the redirect against the session it opened.
func withSessionPlaceholder(successURL string) string {
	sep := "?"
	if strings.Contains(successURL, "?") {
		sep = "&"
	}
	return successURL + sep + "gs={CHECKOUT_SESSION_ID}"
}

// VerifySession fetches the session from Stripe's status API. payment_status
// "paid" is the only state treated as settled.
func (s *StripeAdapter) VerifySession(ctx context.Context, sessionID string) (SessionStatus, error) {
	endpoint := s.baseURL + "/v1/checkout/sessions/" + url.PathEscape(sessionID)

	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	httpReq.Header.Set("Authorization", "Bearer "+s.SecretKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("stripe session lookup: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return SessionStatus{}, fmt.Errorf("stripe session lookup failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var res struct {
		ID            string `json:"id"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return SessionStatus{}, fmt.Errorf("stripe session lookup decode: %w body=%s", err, string(raw))
	}

	return SessionStatus{ID: res.ID, Paid: res.PaymentStatus == "paid"}, nil
}
