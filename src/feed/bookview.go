package feed

import (
	"matchcore/src/engine"
)

// LevelView is one wire-friendly (price, quantity) pair.
type LevelView struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

// BookView is a read-only snapshot broadcast after each valid submit and
// each cancel on a symbol's book (a killed FOK submit and an in-place
// quantity modify broadcast none), letting feed consumers detect stale or
// reordered frames via Sequence.
type BookView struct {
	Symbol   string      `json:"symbol"`
	Sequence uint64      `json:"sequence"`
	BestBid  *string     `json:"best_bid,omitempty"`
	BestAsk  *string     `json:"best_ask,omitempty"`
	Bids     []LevelView `json:"bids"`
	Asks     []LevelView `json:"asks"`
}

func levelViews(levels []engine.PriceLevelSnapshot) []LevelView {
	out := make([]LevelView, 0, len(levels))
	for _, l := range levels {
		out = append(out, LevelView{Price: l.Price.String(), Quantity: l.Quantity.String()})
	}
	return out
}

// NewBookView captures book's current state into a BookView, typically
// called right after a mutating engine call so Sequence matches what just
// happened.
func NewBookView(book *engine.Book, depth int) BookView {
	bids, asks := book.Depth(depth)

	view := BookView{
		Symbol:   book.Symbol(),
		Sequence: book.Sequence(),
		Bids:     levelViews(bids),
		Asks:     levelViews(asks),
	}
	if bid, ok := book.BestBid(); ok {
		s := bid.String()
		view.BestBid = &s
	}
	if ask, ok := book.BestAsk(); ok {
		s := ask.String()
		view.BestAsk = &s
	}
	return view
}

// MatchView is the wire-friendly projection of engine.Match.
type MatchView struct {
	Symbol    string `json:"symbol"`
	MakerID   uint64 `json:"maker_id"`
	TakerID   uint64 `json:"taker_id"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	Timestamp int64  `json:"timestamp"`
}

// NewMatchView converts an engine.Match into its wire form.
func NewMatchView(m engine.Match) MatchView {
	return MatchView{
		Symbol:    m.Symbol,
		MakerID:   uint64(m.MakerID),
		TakerID:   uint64(m.TakerID),
		Price:     m.Price.String(),
		Quantity:  m.Quantity.String(),
		Timestamp: m.Timestamp,
	}
}
