package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"smartsales/internal/domain/cart"
	"smartsales/internal/domain/checkout"
	"smartsales/internal/money"
)

// addQuery appends a query parameter to a URL that may already carry some.
func addQuery(rawURL, key, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// GET /v1/checkout/quote
//
// Prices the current cart under the configured tax/shipping policy. Pure
// read; the shopper sees this refresh live while reviewing.
func (app *application) quoteHandler(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r)

	var subtotal money.Money
	s.Do(func(agg *cart.Aggregate, _ *checkout.Flow) {
		subtotal = agg.TotalAmount()
	})

	quote, err := checkout.NewQuote(subtotal, app.policy())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, quote)
}

type allocationInput struct {
	WalletUsage string `json:"wallet_usage" validate:"omitempty,money"`
}

func (in allocationInput) usage() (money.Money, error) {
	if in.WalletUsage == "" {
		return money.Zero(), nil
	}
	return money.FromString(in.WalletUsage)
}

// POST /v1/checkout/allocation  {wallet_usage}
//
// Recomputes the wallet/gateway split for the slider position. Pure function
// of current state; no side effects, call as often as the UI likes.
func (app *application) allocationHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s := getSessionFromContext(r)

	var in allocationInput
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	requested, err := in.usage()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	balance, err := app.wallet.Balance(ctx, s.ID)
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	var subtotal money.Money
	s.Do(func(agg *cart.Aggregate, _ *checkout.Flow) {
		subtotal = agg.TotalAmount()
	})

	quote, err := checkout.NewQuote(subtotal, app.policy())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	alloc, err := checkout.Allocate(quote, balance, requested)
	if err != nil {
		// A negative balance is the wallet collaborator breaking its
		// contract, not a user mistake.
		app.badGatewayResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, alloc)
}

// POST /v1/checkout  {wallet_usage}
//
// Creates the remote order and, unless the wallet covers the whole bill,
// opens a gateway session for the remainder. On any remote failure the cart
// is untouched and the shopper can retry.
func (app *application) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	s := getSessionFromContext(r)

	var in allocationInput
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	requested, err := in.usage()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	balance, err := app.wallet.Balance(ctx, s.ID)
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	params := checkout.SubmitParams{
		Reference:  app.refs.Next(),
		Method:     app.config.checkout.method,
		Currency:   app.config.checkout.currency,
		SuccessURL: addQuery(fmt.Sprintf("%s/v1/checkout/return/success", app.config.apiURL), "sid", s.ID),
		CancelURL:  addQuery(fmt.Sprintf("%s/v1/checkout/return/cancel", app.config.apiURL), "sid", s.ID),
	}

	var result checkout.SubmitResult
	var submitErr error

	// The whole submit runs under the session lock so no cart mutation can
	// slip in between quoting and order creation.
	s.Do(func(agg *cart.Aggregate, flow *checkout.Flow) {
		quote, qerr := checkout.NewQuote(agg.TotalAmount(), app.policy())
		if qerr != nil {
			submitErr = qerr
			return
		}
		alloc, aerr := checkout.Allocate(quote, balance, requested)
		if aerr != nil {
			submitErr = aerr
			return
		}
		result, submitErr = flow.Submit(ctx, agg, alloc, app.orders, app.gateways, params)
	})

	if submitErr != nil {
		switch {
		case errors.Is(submitErr, checkout.ErrEmptyCart):
			app.badRequestResponse(w, r, submitErr)
		case errors.Is(submitErr, checkout.ErrCheckoutInProgress):
			app.conflictResponse(w, r, submitErr)
		case errors.Is(submitErr, checkout.ErrInvalidRate):
			app.internalServerError(w, r, submitErr)
		case errors.Is(submitErr, checkout.ErrInvalidBalance):
			app.badGatewayResponse(w, r, submitErr)
		default:
			app.metrics.Checkouts.WithLabelValues("failed").Inc()
			app.badGatewayResponse(w, r, submitErr)
		}
		return
	}

	if result.Settled {
		app.metrics.Checkouts.WithLabelValues("settled").Inc()
		app.logger.Infow("checkout settled from wallet", "order_id", result.OrderID, "session", s.ID)
	} else {
		app.metrics.Checkouts.WithLabelValues("awaiting_gateway").Inc()
		app.metrics.GatewaySessions.Inc()
		app.logger.Infow("gateway session opened", "order_id", result.OrderID, "session", s.ID, "gateway_session", result.SessionID)
	}

	app.jsonResponse(w, http.StatusCreated, result)
}

// GET /v1/checkout/return/success?sid=&gs=
//
// The gateway redirects the shopper here after a charge, substituting its
// session ID into gs. A redirect on its own proves nothing: the gs must match
// the session this checkout opened, and the gateway's status API must report
// it paid, before anything settles.
func (app *application) checkoutSuccessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sid := r.URL.Query().Get("sid")
	gs := r.URL.Query().Get("gs")

	s, ok := app.sessions.Get(sid)
	if !ok {
		app.notFoundResponse(w, r, fmt.Errorf("unknown session"))
		return
	}

	var expected string
	s.Do(func(_ *cart.Aggregate, flow *checkout.Flow) {
		expected = flow.GatewaySessionID()
	})
	if gs == "" || gs != expected {
		app.logger.Warnw("gateway return with mismatched session", "session", sid, "gateway_session", gs)
		app.badRequestResponse(w, r, checkout.ErrSessionMismatch)
		return
	}

	status, err := app.gateways.VerifySession(ctx, app.config.checkout.method, gs)
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}
	if !status.Paid {
		// Unpaid on return: leave the flow awaiting so a later redirect or
		// retry can still resolve it, and send the shopper to the cancel page.
		app.logger.Warnw("gateway session not paid on return", "session", sid, "gateway_session", gs)
		http.Redirect(w, r, app.config.payment.cancelURL, http.StatusSeeOther)
		return
	}

	var confirmErr error
	var orderID string
	s.Do(func(agg *cart.Aggregate, flow *checkout.Flow) {
		orderID = flow.OrderID()
		confirmErr = flow.ConfirmGateway(agg, gs)
	})

	if confirmErr != nil {
		// Double redirect or stale tab; nothing to settle.
		app.logger.Warnw("gateway success with no open session", "session", sid, "error", confirmErr.Error())
	} else {
		app.metrics.Checkouts.WithLabelValues("settled").Inc()
		app.logger.Infow("gateway payment confirmed", "session", sid, "order_id", orderID)
	}

	http.Redirect(w, r, addQuery(app.config.payment.successURL, "order_id", orderID), http.StatusSeeOther)
}

// GET /v1/checkout/return/cancel?sid=
//
// The shopper backed out on the gateway's page. The flow returns to
// reviewing and the cart stays exactly as it was, ready for a retry.
func (app *application) checkoutCancelHandler(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("sid")

	s, ok := app.sessions.Get(sid)
	if !ok {
		app.notFoundResponse(w, r, fmt.Errorf("unknown session"))
		return
	}

	s.Do(func(_ *cart.Aggregate, flow *checkout.Flow) {
		if err := flow.CancelGateway(); err != nil {
			app.logger.Warnw("gateway cancel with no open session", "session", sid, "error", err.Error())
		}
	})

	app.metrics.Checkouts.WithLabelValues("cancelled").Inc()
	http.Redirect(w, r, app.config.payment.cancelURL, http.StatusSeeOther)
}
