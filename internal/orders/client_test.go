package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smartsales/internal/domain/cart"
	"smartsales/internal/money"
)

func amount(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.FromString(s)
	require.NoError(t, err)
	return m
}

func TestCreateOrder(t *testing.T) {
	var gotBody map[string]any
	var gotIdemKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		require.Equal(t, "Bearer svc-key", r.Header.Get("Authorization"))
		gotIdemKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"ord_8821","order_number":"SS-7KX2","status":"pending"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "svc-key", 5*time.Second)

	order, err := c.Create(context.Background(), CreateRequest{
		Reference:     "SS-7KX2",
		Items:         []cart.LineRequest{{ProductID: "A", Quantity: 2}},
		Total:         amount(t, "113.00"),
		WalletAmount:  amount(t, "50.00"),
		GatewayAmount: amount(t, "63.00"),
	})
	require.NoError(t, err)
	require.Equal(t, "ord_8821", order.ID)
	require.Equal(t, "SS-7KX2", order.OrderNumber)

	require.NotEmpty(t, gotIdemKey)
	require.Equal(t, "113.00", gotBody["total"])
	require.Equal(t, "50.00", gotBody["wallet_amount"])
	require.Equal(t, "63.00", gotBody["gateway_amount"])

	items := gotBody["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	require.Equal(t, "A", first["product_id"])
	require.Equal(t, float64(2), first["quantity"])
}

func TestCreateOrderRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"product out of stock"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "svc-key", 5*time.Second)

	_, err := c.Create(context.Background(), CreateRequest{Reference: "SS-1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "http=422")
	require.Contains(t, err.Error(), "out of stock")
}
