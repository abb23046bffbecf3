package feed

import "matchcore/src/engine"

// Broadcaster is an engine.Sink that fans matches and book snapshots out
// over websocket-backed hubs. It never blocks a writer: Hub.Broadcast is
// non-blocking, so a stalled consumer only drops frames, never stalls
// matching.
type Broadcaster struct {
	Matches *Hub[MatchView]
	Books   *Hub[BookView]
	depth   int
	books   func(symbol string) *engine.Book
}

// NewBroadcaster constructs a Broadcaster. bookLookup resolves a symbol
// to its current book so OnOrderAccepted/OnOrderCancelled can broadcast a
// fresh BookView snapshot alongside the event.
func NewBroadcaster(depth int, bookLookup func(symbol string) *engine.Book) *Broadcaster {
	return &Broadcaster{
		Matches: NewHub[MatchView](),
		Books:   NewHub[BookView](),
		depth:   depth,
		books:   bookLookup,
	}
}

func (b *Broadcaster) broadcastBook(symbol string) {
	if b.books == nil {
		return
	}
	book := b.books(symbol)
	if book == nil {
		return
	}
	b.Books.Broadcast(NewBookView(book, b.depth))
}

func (b *Broadcaster) OnMatch(m engine.Match) {
	b.Matches.Broadcast(NewMatchView(m))
}

func (b *Broadcaster) OnOrderAccepted(o *engine.Order) {
	b.broadcastBook(o.Symbol())
}

func (b *Broadcaster) OnOrderCancelled(o *engine.Order) {
	b.broadcastBook(o.Symbol())
}

func (b *Broadcaster) OnOrderRejected(*engine.Order, string) {}

// DroppedFrames sums missed frames across both hubs, surfaced by the
// /metrics endpoint so operators can see when websocket consumers are
// falling behind the matching engine.
func (b *Broadcaster) DroppedFrames() int64 {
	return b.Matches.TotalDropped() + b.Books.TotalDropped()
}
