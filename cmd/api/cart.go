package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"smartsales/internal/domain/cart"
	"smartsales/internal/domain/checkout"
	"smartsales/internal/money"
)

type cartLineView struct {
	ProductID string      `json:"product_id"`
	UnitPrice money.Money `json:"unit_price"`
	Quantity  int         `json:"quantity"`
	LineTotal money.Money `json:"line_total"`
}

type cartView struct {
	Items       []cartLineView `json:"items"`
	TotalItems  int            `json:"total_items"`
	TotalAmount money.Money    `json:"total_amount"`
}

func viewOf(agg *cart.Aggregate) cartView {
	lines := agg.Lines()
	items := make([]cartLineView, 0, len(lines))
	for _, l := range lines {
		items = append(items, cartLineView{
			ProductID: l.ProductID,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal(),
		})
	}
	return cartView{
		Items:       items,
		TotalItems:  agg.TotalItems(),
		TotalAmount: agg.TotalAmount(),
	}
}

// POST /v1/sessions
//
// Starts a fresh shopping session and returns the bearer token the client
// uses for every cart and checkout call.
func (app *application) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	s := app.sessions.Create()

	token, err := app.authenticator.GenerateSessionToken(s.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, map[string]string{
		"session_id": s.ID,
		"token":      token,
	})
}

// GET /v1/store/cart
func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r)

	var view cartView
	s.Do(func(agg *cart.Aggregate, _ *checkout.Flow) {
		view = viewOf(agg)
	})

	app.jsonResponse(w, http.StatusOK, view)
}

// POST /v1/store/cart/items  {product_id, unit_price}
//
// Adds one unit; repeating the call merges into the existing line. The
// catalog collaborator guarantees a positive price, but the boundary still
// refuses obviously broken payloads.
func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r)

	var in struct {
		ProductID string `json:"product_id" validate:"required"`
		UnitPrice string `json:"unit_price" validate:"required,money"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	price, err := money.FromString(in.UnitPrice)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if price.IsNegative() || price.IsZero() {
		app.badRequestResponse(w, r, fmt.Errorf("unit_price must be positive"))
		return
	}

	var view cartView
	s.Do(func(agg *cart.Aggregate, _ *checkout.Flow) {
		agg.Apply(cart.AddItem{ProductID: in.ProductID, UnitPrice: price})
		view = viewOf(agg)
	})

	app.metrics.CartOps.WithLabelValues("add").Inc()
	app.jsonResponse(w, http.StatusCreated, view)
}

// PATCH /v1/store/cart/items/{productID}  {qty}
//
// qty <= 0 removes the line. A product not in the cart is a defined no-op:
// the response is the unchanged cart, not an error.
func (app *application) updateCartItemQtyHandler(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r)
	productID := chi.URLParam(r, "productID")

	var in struct {
		Qty int `json:"qty"`
	}
	if err := readJSON(w, r, &in); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var view cartView
	s.Do(func(agg *cart.Aggregate, _ *checkout.Flow) {
		agg.Apply(cart.SetQuantity{ProductID: productID, Quantity: in.Qty})
		view = viewOf(agg)
	})

	app.metrics.CartOps.WithLabelValues("set_quantity").Inc()
	app.jsonResponse(w, http.StatusOK, view)
}

// DELETE /v1/store/cart/items/{productID}
func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r)
	productID := chi.URLParam(r, "productID")

	var view cartView
	s.Do(func(agg *cart.Aggregate, _ *checkout.Flow) {
		agg.Apply(cart.RemoveItem{ProductID: productID})
		view = viewOf(agg)
	})

	app.metrics.CartOps.WithLabelValues("remove").Inc()
	app.jsonResponse(w, http.StatusOK, view)
}

// DELETE /v1/store/cart
func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r)

	var view cartView
	s.Do(func(agg *cart.Aggregate, _ *checkout.Flow) {
		agg.Apply(cart.Clear{})
		view = viewOf(agg)
	})

	app.metrics.CartOps.WithLabelValues("clear").Inc()
	app.jsonResponse(w, http.StatusOK, view)
}
