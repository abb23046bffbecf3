package engine

import "matchcore/src/numeric"

// Order is the unit of trading intent and accounting. Identity, side,
// type, time-in-force, creation timestamp and price are immutable after
// submission (a price modify replaces the Order with a fresh one);
// quantity changes only through an in-place quantity modify, and
// execution state as fills occur.
type Order struct {
	id     OrderID
	symbol string
	side   Side
	typ    OrderType
	tif    TimeInForce

	price    numeric.Price
	quantity numeric.Quantity
	executed numeric.Quantity
	status   OrderStatus

	createdAt   int64
	lastUpdated int64
}

// NewOrder constructs a freshly submitted order in status NEW. The
// matching engine transitions it to ACCEPTED as the first step of submit.
func NewOrder(id OrderID, symbol string, side Side, typ OrderType, tif TimeInForce, price numeric.Price, quantity numeric.Quantity, now int64) *Order {
	return &Order{
		id:          id,
		symbol:      symbol,
		side:        side,
		typ:         typ,
		tif:         tif,
		price:       price,
		quantity:    quantity,
		executed:    numeric.QuantityZero,
		status:      StatusNew,
		createdAt:   now,
		lastUpdated: now,
	}
}

func (o *Order) ID() OrderID              { return o.id }
func (o *Order) Symbol() string           { return o.symbol }
func (o *Order) Side() Side               { return o.side }
func (o *Order) Type() OrderType          { return o.typ }
func (o *Order) TimeInForce() TimeInForce { return o.tif }
func (o *Order) Price() numeric.Price     { return o.price }
func (o *Order) Quantity() numeric.Quantity { return o.quantity }
func (o *Order) Executed() numeric.Quantity { return o.executed }
func (o *Order) Status() OrderStatus      { return o.status }
func (o *Order) CreatedAt() int64         { return o.createdAt }
func (o *Order) LastUpdated() int64       { return o.lastUpdated }

// Remaining is quantity minus executed.
func (o *Order) Remaining() numeric.Quantity {
	return o.quantity.Sub(o.executed)
}

// IsActive reports whether the order can still receive fills or rest on
// the book.
func (o *Order) IsActive() bool {
	return o.status == StatusNew || o.status == StatusAccepted || o.status == StatusPartiallyFilled
}

// IsFilled reports whether the order's executed quantity has caught up
// with its total quantity, or its status already says so.
func (o *Order) IsFilled() bool {
	return o.executed.GreaterOrEqual(o.quantity) || o.status == StatusFilled
}

// setStatus transitions status and stamps last-update time. Callers are
// responsible for only requesting legal transitions; terminal states are
// never mutated again by the core.
func (o *Order) setStatus(status OrderStatus, now int64) {
	o.status = status
	o.lastUpdated = now
}

// execute records a fill of qty against this order's own accounting and
// advances its status to PARTIALLY_FILLED or FILLED accordingly.
func (o *Order) execute(qty numeric.Quantity, now int64) {
	o.executed = o.executed.Add(qty)
	if o.executed.GreaterOrEqual(o.quantity) {
		o.setStatus(StatusFilled, now)
	} else {
		o.setStatus(StatusPartiallyFilled, now)
	}
}

// setQuantity is used only by the in-place quantity-decrease modify path,
// which never touches price; price otherwise only changes via
// cancel-and-replace, which builds a fresh Order.
func (o *Order) setQuantity(q numeric.Quantity) {
	o.quantity = q
}

// Match is an immutable record of one fill between a resting maker and an
// incoming taker. Price is always the maker's limit price; quantity is
// strictly positive.
type Match struct {
	Symbol    string
	MakerID   OrderID
	TakerID   OrderID
	Price     numeric.Price
	Quantity  numeric.Quantity
	Timestamp int64
}
