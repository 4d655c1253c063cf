package main

import (
	"context"
	"net/http"
	"time"

	"smartsales/internal/money"
)

type walletBalanceView struct {
	Balance money.Money `json:"balance"`
}

// GET /v1/wallet/balance
//
// Read-through to the wallet service; the storefront never caches this.
func (app *application) walletBalanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s := getSessionFromContext(r)

	balance, err := app.wallet.Balance(ctx, s.ID)
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, walletBalanceView{Balance: balance})
}
