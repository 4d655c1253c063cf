package checkout

import (
	"errors"

	"github.com/shopspring/decimal"

	"smartsales/internal/money"
)

var (
	// ErrInvalidRate means the tax/shipping policy handed us a negative rate.
	ErrInvalidRate = errors.New("tax rate must not be negative")

	// ErrInvalidBalance means the wallet collaborator reported a negative
	// balance, which it guarantees never to do.
	ErrInvalidBalance = errors.New("wallet balance must not be negative")
)

// ShippingPolicy computes the shipping cost for a given subtotal. The current
// storefront ships free, but the quote contract takes the policy as input so a
// paid policy slots in without touching the allocator.
type ShippingPolicy func(subtotal money.Money) money.Money

// FreeShipping is the flat zero policy.
func FreeShipping(money.Money) money.Money {
	return money.Zero()
}

// Policy bundles the external tax/shipping inputs to a quote.
type Policy struct {
	TaxRate  decimal.Decimal
	Shipping ShippingPolicy
}

// Quote is the priced view of the cart at checkout. Derived, never stored.
type Quote struct {
	Subtotal   money.Money `json:"subtotal"`
	Shipping   money.Money `json:"shipping"`
	Tax        money.Money `json:"tax"`
	GrandTotal money.Money `json:"grand_total"`
}

// NewQuote prices the cart's subtotal under the policy. Tax is computed once,
// on the subtotal, and rounded half-up to the minor unit.
func NewQuote(subtotal money.Money, p Policy) (Quote, error) {
	if p.TaxRate.IsNegative() {
		return Quote{}, ErrInvalidRate
	}

	shipping := money.Zero()
	if p.Shipping != nil {
		shipping = p.Shipping(subtotal)
	}

	tax := subtotal.MulRate(p.TaxRate).Round2()

	return Quote{
		Subtotal:   subtotal,
		Shipping:   shipping,
		Tax:        tax,
		GrandTotal: subtotal.Add(shipping).Add(tax),
	}, nil
}
