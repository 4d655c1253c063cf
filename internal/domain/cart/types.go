package cart

import "smartsales/internal/money"

// Line is one product entry in the cart. UnitPrice is a snapshot captured when
// the product was first added; it does not track later catalog price changes.
type Line struct {
	ProductID string      `json:"product_id"`
	UnitPrice money.Money `json:"unit_price"`
	Quantity  int         `json:"quantity"`
}

func (l Line) LineTotal() money.Money {
	return l.UnitPrice.MulInt(int64(l.Quantity))
}

// LineRequest is the shape the remote order collaborator accepts.
type LineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
