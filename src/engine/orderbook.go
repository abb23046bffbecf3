package engine

import (
	"sort"

	"github.com/google/btree"

	"matchcore/src/numeric"
)

// bidItem orders bid levels descending (best bid first) inside the btree.
type bidItem struct {
	level *PriceLevel
}

func (b *bidItem) Less(than btree.Item) bool {
	return b.level.Price() > than.(*bidItem).level.Price()
}

// askItem orders ask levels ascending (best ask first) inside the btree.
type askItem struct {
	level *PriceLevel
}

func (a *askItem) Less(than btree.Item) bool {
	return a.level.Price() < than.(*askItem).level.Price()
}

// Book is the two-sided, single-symbol limit order book: an ordered map
// of Price -> PriceLevel per side (bids descending, asks ascending) plus
// an id -> Order index spanning both sides.
type Book struct {
	symbol string
	bids   *btree.BTree
	asks   *btree.BTree
	orders map[OrderID]*Order

	totalBidQuantity numeric.Quantity
	totalAskQuantity numeric.Quantity

	sequence uint64

	clock Clock
	sink  Sink
}

// NewBook constructs an empty book for symbol. clock and sink are the
// external collaborators described in the design notes: a nil clock
// defaults to SystemClock, a nil sink defaults to NoopSink, so the core
// never depends on either being supplied.
func NewBook(symbol string, clock Clock, sink Sink) *Book {
	if clock == nil {
		clock = SystemClock{}
	}
	if sink == nil {
		sink = NoopSink{}
	}
	return &Book{
		symbol: symbol,
		bids:   btree.New(32),
		asks:   btree.New(32),
		orders: make(map[OrderID]*Order),
		clock:  clock,
		sink:   sink,
	}
}

func (b *Book) Symbol() string { return b.symbol }

// Sequence is a monotonically increasing counter bumped by every accepted
// submit, cancel and modify (a cancel-and-replace modify bumps it twice:
// once for the cancel, once for the resubmit), used by feed consumers to
// detect stale or reordered snapshots.
func (b *Book) Sequence() uint64 { return b.sequence }

func (b *Book) bumpSequence() { b.sequence++ }

func (b *Book) levelAt(side Side, price numeric.Price) *PriceLevel {
	if side == SideBuy {
		if item := b.bids.Get(&bidItem{level: &PriceLevel{price: price}}); item != nil {
			return item.(*bidItem).level
		}
		return nil
	}
	if item := b.asks.Get(&askItem{level: &PriceLevel{price: price}}); item != nil {
		return item.(*askItem).level
	}
	return nil
}

// getOrCreateLevel returns the level at price on side, creating and
// inserting it into the ordered side if it does not already exist.
func (b *Book) getOrCreateLevel(side Side, price numeric.Price) *PriceLevel {
	if level := b.levelAt(side, price); level != nil {
		return level
	}
	level := NewPriceLevel(price)
	if side == SideBuy {
		b.bids.ReplaceOrInsert(&bidItem{level: level})
	} else {
		b.asks.ReplaceOrInsert(&askItem{level: level})
	}
	return level
}

func (b *Book) dropLevelIfEmpty(side Side, level *PriceLevel) {
	if !level.IsEmpty() {
		return
	}
	if side == SideBuy {
		b.bids.Delete(&bidItem{level: level})
	} else {
		b.asks.Delete(&askItem{level: level})
	}
}

// Rest places order on the book at its own price, adding its remaining
// quantity to the side total and indexing it by id.
func (b *Book) Rest(order *Order) {
	level := b.getOrCreateLevel(order.Side(), order.Price())
	level.Add(order)
	b.orders[order.ID()] = order
	b.addSideTotal(order.Side(), order.Remaining())
}

func (b *Book) addSideTotal(side Side, qty numeric.Quantity) {
	if side == SideBuy {
		b.totalBidQuantity = b.totalBidQuantity.Add(qty)
	} else {
		b.totalAskQuantity = b.totalAskQuantity.Add(qty)
	}
}

func (b *Book) subSideTotal(side Side, qty numeric.Quantity) {
	if side == SideBuy {
		b.totalBidQuantity = b.totalBidQuantity.Sub(qty)
	} else {
		b.totalAskQuantity = b.totalAskQuantity.Sub(qty)
	}
}

// Cancel removes order id from its level and the id index and transitions
// it to CANCELLED. Returns false if the id is not currently resting.
func (b *Book) Cancel(id OrderID) bool {
	order, ok := b.orders[id]
	if !ok {
		return false
	}

	level := b.levelAt(order.Side(), order.Price())
	if level != nil {
		remaining := order.Remaining()
		level.Remove(id)
		b.subSideTotal(order.Side(), remaining)
		b.dropLevelIfEmpty(order.Side(), level)
	}

	delete(b.orders, id)
	order.setStatus(StatusCancelled, b.clock.NowNanos())
	b.bumpSequence()
	b.sink.OnOrderCancelled(order)
	return true
}

// OrderByID returns the resting order at id, if any.
func (b *Book) OrderByID(id OrderID) (*Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

// OrderCount is the number of active resting orders indexed by id.
func (b *Book) OrderCount() int { return len(b.orders) }

func (b *Book) TotalBidQuantity() numeric.Quantity { return b.totalBidQuantity }
func (b *Book) TotalAskQuantity() numeric.Quantity { return b.totalAskQuantity }

func (b *Book) BidLevelCount() int { return b.bids.Len() }
func (b *Book) AskLevelCount() int { return b.asks.Len() }

// BestBid returns the highest resting bid price, if any.
func (b *Book) BestBid() (numeric.Price, bool) {
	item := b.bids.Min()
	if item == nil {
		return numeric.PriceZero, false
	}
	return item.(*bidItem).level.Price(), true
}

// BestAsk returns the lowest resting ask price, if any.
func (b *Book) BestAsk() (numeric.Price, bool) {
	item := b.asks.Min()
	if item == nil {
		return numeric.PriceZero, false
	}
	return item.(*askItem).level.Price(), true
}

// Spread is best_ask - best_bid. ok is false if either side is empty.
func (b *Book) Spread() (numeric.Price, bool) {
	bid, bidOK := b.BestBid()
	ask, askOK := b.BestAsk()
	if !bidOK || !askOK {
		return numeric.PriceZero, false
	}
	return ask.Sub(bid), true
}

// Midpoint is (best_bid + best_ask) / 2, integer division truncating
// toward zero on the raw scaled value. ok is false if either side is
// empty.
func (b *Book) Midpoint() (numeric.Price, bool) {
	bid, bidOK := b.BestBid()
	ask, askOK := b.BestAsk()
	if !bidOK || !askOK {
		return numeric.PriceZero, false
	}
	return bid.Add(ask).DivScalar(2), true
}

// OrdersAt returns the live orders resting at price on side, in FIFO
// order. Returns nil if there is no level at that price.
func (b *Book) OrdersAt(side Side, price numeric.Price) []*Order {
	level := b.levelAt(side, price)
	if level == nil {
		return nil
	}
	return level.AllOrders()
}

// QuantityAt returns the aggregate remaining quantity resting at price on
// side.
func (b *Book) QuantityAt(side Side, price numeric.Price) numeric.Quantity {
	level := b.levelAt(side, price)
	if level == nil {
		return numeric.QuantityZero
	}
	return level.TotalQuantity()
}

// BidPrices returns every bid price in descending (best-first) order.
func (b *Book) BidPrices() []numeric.Price {
	prices := make([]numeric.Price, 0, b.bids.Len())
	b.bids.Ascend(func(item btree.Item) bool {
		prices = append(prices, item.(*bidItem).level.Price())
		return true
	})
	return prices
}

// AskPrices returns every ask price in ascending (best-first) order.
func (b *Book) AskPrices() []numeric.Price {
	prices := make([]numeric.Price, 0, b.asks.Len())
	b.asks.Ascend(func(item btree.Item) bool {
		prices = append(prices, item.(*askItem).level.Price())
		return true
	})
	return prices
}

// PriceLevelSnapshot is one (price, aggregate quantity) pair.
type PriceLevelSnapshot struct {
	Price    numeric.Price
	Quantity numeric.Quantity
}

// BidsSnapshot returns every bid level's (price, total quantity) pair,
// best-first.
func (b *Book) BidsSnapshot() []PriceLevelSnapshot {
	out := make([]PriceLevelSnapshot, 0, b.bids.Len())
	b.bids.Ascend(func(item btree.Item) bool {
		level := item.(*bidItem).level
		out = append(out, PriceLevelSnapshot{Price: level.Price(), Quantity: level.TotalQuantity()})
		return true
	})
	return out
}

// AsksSnapshot returns every ask level's (price, total quantity) pair,
// best-first.
func (b *Book) AsksSnapshot() []PriceLevelSnapshot {
	out := make([]PriceLevelSnapshot, 0, b.asks.Len())
	b.asks.Ascend(func(item btree.Item) bool {
		level := item.(*askItem).level
		out = append(out, PriceLevelSnapshot{Price: level.Price(), Quantity: level.TotalQuantity()})
		return true
	})
	return out
}

// Depth returns up to n levels per side as a stable, sorted snapshot,
// suitable for wire responses. It never mutates the book.
func (b *Book) Depth(n int) (bids, asks []PriceLevelSnapshot) {
	bids = b.BidsSnapshot()
	asks = b.AsksSnapshot()
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price.Greater(bids[j].Price) })
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price.Less(asks[j].Price) })
	if n > 0 {
		if len(bids) > n {
			bids = bids[:n]
		}
		if len(asks) > n {
			asks = asks[:n]
		}
	}
	return bids, asks
}

// Clear atomically drops all state and resets totals to zero. It is an
// administrative reset: no order status is transitioned.
func (b *Book) Clear() {
	b.bids = btree.New(32)
	b.asks = btree.New(32)
	b.orders = make(map[OrderID]*Order)
	b.totalBidQuantity = numeric.QuantityZero
	b.totalAskQuantity = numeric.QuantityZero
}
