package engine

import "matchcore/src/numeric"

// PriceLevel is one price bucket: an ordered sequence of live orders in
// strict arrival order, a cached total_quantity, and an id->position index
// giving O(1) lookup by id. It is created lazily on first insertion at a
// new price and destroyed the moment its sequence becomes empty.
type PriceLevel struct {
	price    numeric.Price
	orders   []*Order
	position map[OrderID]int
	total    numeric.Quantity
}

// NewPriceLevel constructs an empty level at price.
func NewPriceLevel(price numeric.Price) *PriceLevel {
	return &PriceLevel{
		price:    price,
		orders:   make([]*Order, 0, 4),
		position: make(map[OrderID]int, 4),
	}
}

func (l *PriceLevel) Price() numeric.Price         { return l.price }
func (l *PriceLevel) TotalQuantity() numeric.Quantity { return l.total }
func (l *PriceLevel) Count() int                   { return len(l.orders) }
func (l *PriceLevel) IsEmpty() bool                { return len(l.orders) == 0 }

// Head returns the earliest-arriving live order at this level, or nil if
// the level is empty.
func (l *PriceLevel) Head() *Order {
	if len(l.orders) == 0 {
		return nil
	}
	return l.orders[0]
}

// Get returns the order at id if it is resting at this level.
func (l *PriceLevel) Get(id OrderID) *Order {
	pos, ok := l.position[id]
	if !ok {
		return nil
	}
	return l.orders[pos]
}

// AllOrders returns the level's orders in FIFO order. O(n); for snapshots
// and tests, not the hot path.
func (l *PriceLevel) AllOrders() []*Order {
	out := make([]*Order, len(l.orders))
	copy(out, l.orders)
	return out
}

// Add appends order at the tail of the queue. It is a silent no-op if the
// order's price does not match this level's price.
func (l *PriceLevel) Add(order *Order) {
	if order.Price() != l.price {
		return
	}
	l.position[order.ID()] = len(l.orders)
	l.orders = append(l.orders, order)
	l.total = l.total.Add(order.Remaining())
}

// Remove erases the order at id from the queue and index, leaving the
// relative order of everyone else intact, and subtracts its remaining
// quantity from the level total. The orders queued behind id shift forward
// one slot, so the cost is linear in their number.
func (l *PriceLevel) Remove(id OrderID) bool {
	pos, ok := l.position[id]
	if !ok {
		return false
	}

	removed := l.orders[pos]
	l.total = l.total.Sub(removed.Remaining())

	last := len(l.orders) - 1
	copy(l.orders[pos:], l.orders[pos+1:])
	l.orders[last] = nil
	l.orders = l.orders[:last]
	delete(l.position, id)
	for i := pos; i < last; i++ {
		l.position[l.orders[i].ID()] = i
	}
	return true
}

// ModifyQuantity updates order id's total quantity in place, preserving
// its queue position (priority). It fails if new_qty would make the
// order's remaining quantity negative (new_qty < executed).
func (l *PriceLevel) ModifyQuantity(id OrderID, newQty numeric.Quantity) bool {
	order := l.Get(id)
	if order == nil {
		return false
	}
	if newQty.Less(order.Executed()) {
		return false
	}

	oldRemaining := order.Remaining()
	order.setQuantity(newQty)
	newRemaining := order.Remaining()

	l.total = l.total.Add(newRemaining.Sub(oldRemaining))
	return true
}

// Fill describes one maker's contribution to satisfying a taker's
// request during Consume.
type Fill struct {
	Order    *Order
	Quantity numeric.Quantity
}

// Consume repeatedly takes the head order and fills it against
// requestQty, popping any order that becomes fully filled, until
// requestQty is exhausted or the level empties. now is stamped onto each
// maker's execution. The caller (the matching walk) is responsible for
// emitting Match records from the returned fills and for dropping the
// level from its side if it ends up empty.
func (l *PriceLevel) Consume(requestQty numeric.Quantity, now int64) []Fill {
	var fills []Fill

	for requestQty.IsPositive() && len(l.orders) > 0 {
		head := l.orders[0]
		fillQty := numeric.MinQuantity(requestQty, head.Remaining())
		if !fillQty.IsPositive() {
			break
		}

		head.execute(fillQty, now)
		fills = append(fills, Fill{Order: head, Quantity: fillQty})

		requestQty = requestQty.Sub(fillQty)
		l.total = l.total.Sub(fillQty)

		if head.IsFilled() {
			l.Remove(head.ID())
		}
	}

	return fills
}
