package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"smartsales/internal/domain/cart"
	"smartsales/internal/orders"
	"smartsales/internal/payments"
)

type fakeOrders struct {
	err  error
	last orders.CreateRequest
}

func (f *fakeOrders) Create(_ context.Context, req orders.CreateRequest) (orders.Order, error) {
	f.last = req
	if f.err != nil {
		return orders.Order{}, f.err
	}
	return orders.Order{ID: "ord_1", OrderNumber: "SS-0001", Status: "pending"}, nil
}

type fakeGateway struct {
	err  error
	last payments.SessionRequest
}

func (f *fakeGateway) CreateSession(_ context.Context, _ string, req payments.SessionRequest) (payments.Session, error) {
	f.last = req
	if f.err != nil {
		return payments.Session{}, f.err
	}
	return payments.Session{ID: "cs_1", URL: "https://gateway.example/cs_1"}, nil
}

func testCart(t *testing.T) *cart.Aggregate {
	t.Helper()
	a := cart.New()
	a.AddItem("A", amount(t, "50.00"))
	a.AddItem("A", amount(t, "50.00"))
	return a
}

func testParams() SubmitParams {
	return SubmitParams{
		Reference:  "SS-TEST",
		Method:     "stripe",
		Currency:   "usd",
		SuccessURL: "https://shop.example/payment-success",
		CancelURL:  "https://shop.example/payment-cancelled",
	}
}

func TestSubmitOpensGatewayForRemainder(t *testing.T) {
	agg := testCart(t)
	oc := &fakeOrders{}
	gw := &fakeGateway{}
	flow := NewFlow()

	q, err := NewQuote(agg.TotalAmount(), Policy{TaxRate: rate("0.13")})
	require.NoError(t, err)
	alloc, err := Allocate(q, amount(t, "50.00"), amount(t, "80.00"))
	require.NoError(t, err)

	res, err := flow.Submit(context.Background(), agg, alloc, oc, gw, testParams())
	require.NoError(t, err)

	require.Equal(t, StateAwaitingGateway, flow.State())
	require.False(t, res.Settled)
	require.Equal(t, "ord_1", res.OrderID)
	require.Equal(t, "https://gateway.example/cs_1", res.PaymentURL)

	// 100.00 + 13.00 tax, 50.00 from the wallet: the gateway charges 63.00.
	require.Equal(t, int64(6300), gw.last.AmountCents)
	require.Equal(t, "50.00", gw.last.Metadata["wallet_charge"])

	// The order payload carries both legs and the full line snapshot.
	require.Equal(t, "113.00", oc.last.Total.String())
	require.Equal(t, "50.00", oc.last.WalletAmount.String())
	require.Equal(t, "63.00", oc.last.GatewayAmount.String())
	require.Len(t, oc.last.Items, 1)
	require.Equal(t, 2, oc.last.Items[0].Quantity)

	// Awaiting the gateway: the cart must still be intact.
	require.Equal(t, 2, agg.TotalItems())
}

func TestSubmitFullyCoveredSettlesWithoutGateway(t *testing.T) {
	agg := cart.New()
	agg.AddItem("B", amount(t, "40.00"))
	oc := &fakeOrders{}
	gw := &fakeGateway{}
	flow := NewFlow()

	alloc, err := Allocate(Quote{GrandTotal: amount(t, "40.00")}, amount(t, "100.00"), amount(t, "40.00"))
	require.NoError(t, err)
	require.True(t, alloc.FullyCoveredByWallet)

	res, err := flow.Submit(context.Background(), agg, alloc, oc, gw, testParams())
	require.NoError(t, err)

	require.True(t, res.Settled)
	require.Empty(t, res.PaymentURL)
	require.Equal(t, StateSettled, flow.State())
	require.Zero(t, gw.last.AmountCents, "gateway must not be contacted")
	require.Equal(t, 0, agg.Len(), "cart clears on settlement")
}

func TestSubmitOrderFailureLeavesCartIntact(t *testing.T) {
	agg := testCart(t)
	oc := &fakeOrders{err: errors.New("order service unavailable")}
	gw := &fakeGateway{}
	flow := NewFlow()

	alloc, err := Allocate(Quote{GrandTotal: amount(t, "100.00")}, amount(t, "0.00"), amount(t, "0.00"))
	require.NoError(t, err)

	_, err = flow.Submit(context.Background(), agg, alloc, oc, gw, testParams())
	require.ErrorContains(t, err, "order service unavailable")

	require.Equal(t, StateReviewing, flow.State())
	require.Equal(t, 2, agg.TotalItems())

	// Retry succeeds: quote and allocation are pure, nothing was consumed.
	oc.err = nil
	_, err = flow.Submit(context.Background(), agg, alloc, oc, gw, testParams())
	require.NoError(t, err)
}

func TestSubmitGatewayFailureLeavesCartIntact(t *testing.T) {
	agg := testCart(t)
	oc := &fakeOrders{}
	gw := &fakeGateway{err: errors.New("gateway timeout")}
	flow := NewFlow()

	alloc, err := Allocate(Quote{GrandTotal: amount(t, "100.00")}, amount(t, "0.00"), amount(t, "0.00"))
	require.NoError(t, err)

	_, err = flow.Submit(context.Background(), agg, alloc, oc, gw, testParams())
	require.ErrorContains(t, err, "gateway timeout")

	require.Equal(t, StateReviewing, flow.State())
	require.Equal(t, 2, agg.TotalItems())
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	flow := NewFlow()

	_, err := flow.Submit(context.Background(), cart.New(), Allocation{}, &fakeOrders{}, &fakeGateway{}, testParams())
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmitWhileAwaitingGatewayRejected(t *testing.T) {
	agg := testCart(t)
	oc := &fakeOrders{}
	gw := &fakeGateway{}
	flow := NewFlow()

	alloc, err := Allocate(Quote{GrandTotal: amount(t, "100.00")}, amount(t, "0.00"), amount(t, "0.00"))
	require.NoError(t, err)

	_, err = flow.Submit(context.Background(), agg, alloc, oc, gw, testParams())
	require.NoError(t, err)

	_, err = flow.Submit(context.Background(), agg, alloc, oc, gw, testParams())
	require.ErrorIs(t, err, ErrCheckoutInProgress)
}

func TestConfirmGatewaySettlesAndClears(t *testing.T) {
	agg := testCart(t)
	flow := NewFlow()

	alloc, err := Allocate(Quote{GrandTotal: amount(t, "100.00")}, amount(t, "0.00"), amount(t, "0.00"))
	require.NoError(t, err)
	_, err = flow.Submit(context.Background(), agg, alloc, &fakeOrders{}, &fakeGateway{}, testParams())
	require.NoError(t, err)

	require.NoError(t, flow.ConfirmGateway(agg, "cs_1"))
	require.Equal(t, StateSettled, flow.State())
	require.Equal(t, 0, agg.Len())
}

func TestConfirmGatewayRejectsWrongSession(t *testing.T) {
	agg := testCart(t)
	flow := NewFlow()

	alloc, err := Allocate(Quote{GrandTotal: amount(t, "100.00")}, amount(t, "0.00"), amount(t, "0.00"))
	require.NoError(t, err)
	_, err = flow.Submit(context.Background(), agg, alloc, &fakeOrders{}, &fakeGateway{}, testParams())
	require.NoError(t, err)

	// A forged or stale session ID must not settle anything.
	require.ErrorIs(t, flow.ConfirmGateway(agg, "cs_forged"), ErrSessionMismatch)
	require.ErrorIs(t, flow.ConfirmGateway(agg, ""), ErrSessionMismatch)
	require.Equal(t, StateAwaitingGateway, flow.State())
	require.Equal(t, 2, agg.TotalItems(), "cart must survive a rejected confirm")

	// The genuine session still settles afterwards.
	require.NoError(t, flow.ConfirmGateway(agg, "cs_1"))
	require.Equal(t, 0, agg.Len())
}

func TestResubmitAfterWalletSettlement(t *testing.T) {
	agg := cart.New()
	agg.AddItem("B", amount(t, "40.00"))
	flow := NewFlow()

	alloc, err := Allocate(Quote{GrandTotal: amount(t, "40.00")}, amount(t, "100.00"), amount(t, "40.00"))
	require.NoError(t, err)
	res, err := flow.Submit(context.Background(), agg, alloc, &fakeOrders{}, &fakeGateway{}, testParams())
	require.NoError(t, err)
	require.True(t, res.Settled)

	// Refill the cart; the same session supports a second purchase.
	agg.AddItem("C", amount(t, "15.00"))
	alloc2, err := Allocate(Quote{GrandTotal: amount(t, "15.00")}, amount(t, "100.00"), amount(t, "15.00"))
	require.NoError(t, err)

	res2, err := flow.Submit(context.Background(), agg, alloc2, &fakeOrders{}, &fakeGateway{}, testParams())
	require.NoError(t, err)
	require.True(t, res2.Settled)
	require.Equal(t, 0, agg.Len())
}

func TestResubmitAfterGatewaySettlement(t *testing.T) {
	agg := testCart(t)
	flow := NewFlow()

	alloc, err := Allocate(Quote{GrandTotal: amount(t, "100.00")}, amount(t, "0.00"), amount(t, "0.00"))
	require.NoError(t, err)
	_, err = flow.Submit(context.Background(), agg, alloc, &fakeOrders{}, &fakeGateway{}, testParams())
	require.NoError(t, err)
	require.NoError(t, flow.ConfirmGateway(agg, "cs_1"))

	agg.AddItem("D", amount(t, "20.00"))
	alloc2, err := Allocate(Quote{GrandTotal: amount(t, "20.00")}, amount(t, "0.00"), amount(t, "0.00"))
	require.NoError(t, err)

	res, err := flow.Submit(context.Background(), agg, alloc2, &fakeOrders{}, &fakeGateway{}, testParams())
	require.NoError(t, err)
	require.False(t, res.Settled)
	require.Equal(t, StateAwaitingGateway, flow.State())
}

func TestCancelGatewayReturnsToReviewing(t *testing.T) {
	agg := testCart(t)
	flow := NewFlow()

	alloc, err := Allocate(Quote{GrandTotal: amount(t, "100.00")}, amount(t, "0.00"), amount(t, "0.00"))
	require.NoError(t, err)
	_, err = flow.Submit(context.Background(), agg, alloc, &fakeOrders{}, &fakeGateway{}, testParams())
	require.NoError(t, err)

	require.NoError(t, flow.CancelGateway())
	require.Equal(t, StateReviewing, flow.State())
	require.Equal(t, 2, agg.TotalItems(), "cancel must not clear the cart")

	// After a cancel the shopper can submit again.
	_, err = flow.Submit(context.Background(), agg, alloc, &fakeOrders{}, &fakeGateway{}, testParams())
	require.NoError(t, err)
}

func TestConfirmGatewayWrongState(t *testing.T) {
	flow := NewFlow()
	require.ErrorIs(t, flow.ConfirmGateway(cart.New(), "cs_1"), ErrNotAwaitingGateway)
	require.ErrorIs(t, flow.CancelGateway(), ErrNotAwaitingGateway)
}
