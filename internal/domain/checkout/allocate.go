package checkout

import "smartsales/internal/money"

// Allocation is the split of a grand total between the stored-value wallet and
// the external gateway. WalletCharge + GatewayCharge == GrandTotal exactly:
// GatewayCharge is derived by subtraction from the already-rounded total and
// is never rounded independently.
type Allocation struct {
	GrandTotal           money.Money `json:"grand_total"`
	WalletCap            money.Money `json:"wallet_cap"`
	WalletCharge         money.Money `json:"wallet_charge"`
	GatewayCharge        money.Money `json:"gateway_charge"`
	FullyCoveredByWallet bool        `json:"fully_covered_by_wallet"`
}

// Allocate partitions the quote's grand total given the wallet balance and the
// user-requested wallet usage. Out-of-range requests are clamped into
// [0, min(balance, grandTotal)], never rejected: asking for more than is
// available silently gets the maximum available. The only failure is a
// negative balance, which is a precondition violation by the wallet
// collaborator, not user input.
func Allocate(q Quote, walletBalance, requested money.Money) (Allocation, error) {
	if walletBalance.IsNegative() {
		return Allocation{}, ErrInvalidBalance
	}

	cap := money.Min(walletBalance, q.GrandTotal)
	charge := money.Max(money.Zero(), money.Min(requested, cap))
	remainder := q.GrandTotal.Sub(charge)

	return Allocation{
		GrandTotal:           q.GrandTotal,
		WalletCap:            cap,
		WalletCharge:         charge,
		GatewayCharge:        remainder,
		FullyCoveredByWallet: remainder.IsZero(),
	}, nil
}
