package cart

import "smartsales/internal/money"

// Action is the tagged-variant form of a cart mutation. UI events arrive as
// actions and are interpreted one at a time, in order, by Aggregate.Apply;
// each action depends on the totals left by the previous one.
type Action interface {
	isAction()
}

type AddItem struct {
	ProductID string
	UnitPrice money.Money
}

type RemoveItem struct {
	ProductID string
}

type SetQuantity struct {
	ProductID string
	Quantity  int
}

type Clear struct{}

func (AddItem) isAction()     {}
func (RemoveItem) isAction()  {}
func (SetQuantity) isAction() {}
func (Clear) isAction()       {}

// Apply is the single transition function over the action sum type.
func (a *Aggregate) Apply(action Action) {
	switch act := action.(type) {
	case AddItem:
		a.AddItem(act.ProductID, act.UnitPrice)
	case RemoveItem:
		a.RemoveItem(act.ProductID)
	case SetQuantity:
		a.SetQuantity(act.ProductID, act.Quantity)
	case Clear:
		a.Clear()
	}
}
