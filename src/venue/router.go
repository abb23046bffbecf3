// Package venue is the ambient, multi-symbol layer the HTTP driver talks
// to. The matching core (package engine) solves exactly one instrument;
// Router fans a symbol tag out to one single-writer engine.Book per
// symbol and serializes writers to each book, grounded on the teacher's
// Matcher type but kept out of the core itself since multi-symbol
// routing is explicitly a Non-goal of the matching engine.
package venue

import (
	"sync"

	"matchcore/src/engine"
	"matchcore/src/numeric"
)

type bookEntry struct {
	book *engine.Book
	mu   sync.Mutex
}

// Router owns one engine.Book per symbol, created lazily on first use.
type Router struct {
	mu     sync.RWMutex
	books  map[string]*bookEntry
	clock  engine.Clock
	sink   engine.Sink
}

// NewRouter constructs an empty router. A nil clock/sink defaults exactly
// as engine.NewBook does.
func NewRouter(clock engine.Clock, sink engine.Sink) *Router {
	return &Router{
		books: make(map[string]*bookEntry),
		clock: clock,
		sink:  sink,
	}
}

func (r *Router) entry(symbol string) *bookEntry {
	r.mu.RLock()
	if e, ok := r.books[symbol]; ok {
		r.mu.RUnlock()
		return e
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.books[symbol]; ok {
		return e
	}
	e := &bookEntry{book: engine.NewBook(symbol, r.clock, r.sink)}
	r.books[symbol] = e
	return e
}

// BookFor returns (creating if necessary) the book for symbol. Callers
// that only read should prefer Snapshot to avoid holding the per-symbol
// write path open.
func (r *Router) BookFor(symbol string) *engine.Book {
	return r.entry(symbol).book
}

// Snapshot returns a shallow copy of the symbol -> book table, grounded
// on the teacher's Matcher.GetOrderBooksSnapshot.
func (r *Router) Snapshot() map[string]*engine.Book {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*engine.Book, len(r.books))
	for symbol, e := range r.books {
		out[symbol] = e.book
	}
	return out
}

// Submit serializes order's submission against every other writer on the
// same symbol and returns the resulting matches.
func (r *Router) Submit(order *engine.Order) []engine.Match {
	e := r.entry(order.Symbol())
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Submit(order)
}

// FindOrder searches every known symbol for id, grounded on the
// teacher's handlers looping over GetOrderBooksSnapshot. Order ids are
// unique within one book's lifetime, not necessarily across symbols in
// a venue, so the first match wins.
func (r *Router) FindOrder(id engine.OrderID) (*engine.Order, string, bool) {
	for symbol, book := range r.Snapshot() {
		if order, ok := book.OrderByID(id); ok {
			return order, symbol, true
		}
	}
	return nil, "", false
}

// Cancel locates id's symbol and cancels it there.
func (r *Router) Cancel(id engine.OrderID) bool {
	_, symbol, ok := r.FindOrder(id)
	if !ok {
		return false
	}
	e := r.entry(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Cancel(id)
}

// Modify locates id's symbol and applies the modify there.
func (r *Router) Modify(id engine.OrderID, newPrice *numeric.Price, newQuantity *numeric.Quantity) []engine.Match {
	_, symbol, ok := r.FindOrder(id)
	if !ok {
		return nil
	}
	e := r.entry(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Modify(id, newPrice, newQuantity)
}
