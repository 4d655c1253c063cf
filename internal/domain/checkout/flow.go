package checkout

import (
	"context"
	"errors"
	"fmt"

	"smartsales/internal/domain/cart"
	"smartsales/internal/orders"
	"smartsales/internal/payments"
)

// State tracks where a checkout attempt is. The cart itself never leaves the
// session; only Settled clears it.
type State int

const (
	// StateReviewing: allocation is recomputed live as the shopper moves the
	// wallet slider. Pure, no side effects; always safe to re-enter.
	StateReviewing State = iota
	// StateSubmitting: the remote order is being created. Not cancellable;
	// order creation and gateway-session creation run as one sequential step.
	StateSubmitting
	// StateAwaitingGateway: a gateway session is open; the gateway's own
	// success/cancel callback decides what happens next.
	StateAwaitingGateway
	// StateSettled: the purchase is done and the cart has been cleared.
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateReviewing:
		return "reviewing"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingGateway:
		return "awaiting_gateway"
	case StateSettled:
		return "settled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrNotAwaitingGateway = errors.New("no gateway session awaiting confirmation")
	ErrSessionMismatch    = errors.New("gateway session does not match the open checkout")
)

// OrderCreator is the remote order collaborator.
type OrderCreator interface {
	Create(ctx context.Context, req orders.CreateRequest) (orders.Order, error)
}

// GatewaySessions opens charge sessions on a named provider.
type GatewaySessions interface {
	CreateSession(ctx context.Context, method string, req payments.SessionRequest) (payments.Session, error)
}

// BuildGatewayRequest shapes the parameters for a remote charge of exactly the
// allocation's gateway leg. Returns nil when the wallet covers everything:
// no gateway session is needed at all.
func BuildGatewayRequest(a Allocation, reference, currency, description, successURL, cancelURL string) *payments.SessionRequest {
	if a.FullyCoveredByWallet {
		return nil
	}
	return &payments.SessionRequest{
		Reference:   reference,
		AmountCents: a.GatewayCharge.Round2().Cents(),
		Currency:    currency,
		Description: description,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		Metadata: map[string]string{
			"wallet_charge": a.WalletCharge.String(),
			"grand_total":   a.GrandTotal.String(),
		},
	}
}

// SubmitParams are the per-attempt inputs to Submit.
type SubmitParams struct {
	Reference  string
	Method     string
	Currency   string
	SuccessURL string
	CancelURL  string
}

// SubmitResult reports what Submit did. PaymentURL is empty when the wallet
// covered the whole bill.
type SubmitResult struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Settled     bool   `json:"settled"`
	SessionID   string `json:"session_id,omitempty"`
	PaymentURL  string `json:"payment_url,omitempty"`
}

// Flow is one checkout attempt's state machine. It belongs to a session and
// is serialized by it, like the cart.
type Flow struct {
	state      State
	orderID    string
	orderNum   string
	allocation Allocation
	session    payments.Session
}

func NewFlow() *Flow {
	return &Flow{state: StateReviewing}
}

func (f *Flow) State() State {
	return f.state
}

// GatewaySessionID is set only in StateAwaitingGateway.
func (f *Flow) GatewaySessionID() string {
	return f.session.ID
}

// Submit creates the remote order and, unless the wallet covers the whole
// grand total, opens a gateway session for the remainder. Any remote failure
// is returned verbatim and the flow drops back to Reviewing with the cart
// untouched, so nothing is lost and retrying is safe.
func (f *Flow) Submit(ctx context.Context, agg *cart.Aggregate, alloc Allocation, oc OrderCreator, gw GatewaySessions, p SubmitParams) (SubmitResult, error) {
	if f.state == StateSettled {
		// The previous purchase is done; this submit starts a fresh attempt.
		f.Reset()
	}
	if f.state != StateReviewing {
		return SubmitResult{}, ErrCheckoutInProgress
	}
	if agg.Len() == 0 {
		return SubmitResult{}, ErrEmptyCart
	}

	f.state = StateSubmitting
	f.allocation = alloc

	order, err := oc.Create(ctx, orders.CreateRequest{
		Reference:     p.Reference,
		Items:         agg.LineRequests(),
		Total:         alloc.GrandTotal,
		WalletAmount:  alloc.WalletCharge,
		GatewayAmount: alloc.GatewayCharge,
	})
	if err != nil {
		f.state = StateReviewing
		return SubmitResult{}, err
	}

	f.orderID = order.ID
	f.orderNum = order.OrderNumber

	req := BuildGatewayRequest(alloc, p.Reference, p.Currency,
		fmt.Sprintf("Order %s", order.OrderNumber), p.SuccessURL, p.CancelURL)
	if req == nil {
		// Fully wallet-covered: settle without ever contacting the gateway.
		f.state = StateSettled
		agg.Clear()
		return SubmitResult{OrderID: order.ID, OrderNumber: order.OrderNumber, Settled: true}, nil
	}

	sess, err := gw.CreateSession(ctx, p.Method, *req)
	if err != nil {
		// The remote order exists but no charge was opened; back to Reviewing
		// so the shopper can retry with the cart intact.
		f.state = StateReviewing
		return SubmitResult{}, err
	}

	f.session = sess
	f.state = StateAwaitingGateway

	return SubmitResult{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		SessionID:   sess.ID,
		PaymentURL:  sess.URL,
	}, nil
}

// ConfirmGateway settles the flow after the gateway reports success and
// clears the cart. The caller passes the gateway's session ID from the return
// redirect; it must match the session Submit opened, so a forged or stale
// redirect cannot settle someone else's checkout.
func (f *Flow) ConfirmGateway(agg *cart.Aggregate, sessionID string) error {
	if f.state != StateAwaitingGateway {
		return ErrNotAwaitingGateway
	}
	if sessionID == "" || sessionID != f.session.ID {
		return ErrSessionMismatch
	}
	f.state = StateSettled
	agg.Clear()
	return nil
}

// CancelGateway returns the flow to Reviewing after the shopper backs out on
// the gateway's page. The cart is left exactly as it was.
func (f *Flow) CancelGateway() error {
	if f.state != StateAwaitingGateway {
		return ErrNotAwaitingGateway
	}
	f.state = StateReviewing
	f.session = payments.Session{}
	return nil
}

// Reset prepares the flow for a fresh attempt after settlement.
func (f *Flow) Reset() {
	*f = Flow{state: StateReviewing}
}

// OrderID is set once Submit has created the remote order.
func (f *Flow) OrderID() string {
	return f.orderID
}

// Allocation returns the split captured at submit time.
func (f *Flow) Allocation() Allocation {
	return f.allocation
}
