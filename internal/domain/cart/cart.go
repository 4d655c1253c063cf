package cart

import "smartsales/internal/money"

// Aggregate holds what the shopper currently intends to buy, plus running
// totals. Every mutation adjusts the totals by a delta instead of re-summing
// the lines, so mutations stay O(1) regardless of cart size. The invariants
//
//	totalItems  == Σ line.Quantity
//	totalAmount == Σ line.LineTotal()
//
// hold after every operation, not just on a full recompute.
//
// An Aggregate is not safe for concurrent use; the owning session serializes
// access to it.
type Aggregate struct {
	lines       map[string]*Line
	order       []string
	totalItems  int
	totalAmount money.Money
}

func New() *Aggregate {
	return &Aggregate{lines: make(map[string]*Line)}
}

// AddItem records one unit of the product. A repeated add merges into the
// existing line instead of creating a duplicate.
func (a *Aggregate) AddItem(productID string, unitPrice money.Money) {
	if line, ok := a.lines[productID]; ok {
		line.Quantity++
		a.totalItems++
		a.totalAmount = a.totalAmount.Add(line.UnitPrice)
		return
	}

	a.lines[productID] = &Line{ProductID: productID, UnitPrice: unitPrice, Quantity: 1}
	a.order = append(a.order, productID)
	a.totalItems++
	a.totalAmount = a.totalAmount.Add(unitPrice)
}

// RemoveItem drops the whole line. Removing an absent product is a no-op, not
// an error.
func (a *Aggregate) RemoveItem(productID string) {
	line, ok := a.lines[productID]
	if !ok {
		return
	}

	a.totalItems -= line.Quantity
	a.totalAmount = a.totalAmount.Sub(line.LineTotal())
	delete(a.lines, productID)

	for i, id := range a.order {
		if id == productID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// SetQuantity overwrites the line's quantity. A quantity of zero or less is
// equivalent to RemoveItem; an absent product is a no-op.
func (a *Aggregate) SetQuantity(productID string, quantity int) {
	line, ok := a.lines[productID]
	if !ok {
		return
	}
	if quantity <= 0 {
		a.RemoveItem(productID)
		return
	}

	delta := quantity - line.Quantity
	a.totalItems += delta
	a.totalAmount = a.totalAmount.Add(line.UnitPrice.MulInt(int64(delta)))
	line.Quantity = quantity
}

// Clear resets to the empty aggregate. Issued once, after the remote order
// collaborator confirms a checkout.
func (a *Aggregate) Clear() {
	a.lines = make(map[string]*Line)
	a.order = nil
	a.totalItems = 0
	a.totalAmount = money.Zero()
}

// QuantityOf returns 0 for products not in the cart.
func (a *Aggregate) QuantityOf(productID string) int {
	if line, ok := a.lines[productID]; ok {
		return line.Quantity
	}
	return 0
}

func (a *Aggregate) TotalItems() int {
	return a.totalItems
}

func (a *Aggregate) TotalAmount() money.Money {
	return a.totalAmount
}

func (a *Aggregate) Len() int {
	return len(a.lines)
}

// Lines returns the line items in first-insertion order. The result is a copy;
// mutating it does not touch the aggregate.
func (a *Aggregate) Lines() []Line {
	out := make([]Line, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.lines[id])
	}
	return out
}

// LineRequests projects the cart into the payload the remote order
// collaborator accepts, in first-insertion order. Defensive copy, same as
// Lines.
func (a *Aggregate) LineRequests() []LineRequest {
	out := make([]LineRequest, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, LineRequest{ProductID: id, Quantity: a.lines[id].Quantity})
	}
	return out
}
