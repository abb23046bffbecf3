package engine

import (
	"testing"

	"matchcore/src/numeric"
)

func TestSubmitRestsUnmatchedGTCLimit(t *testing.T) {
	b := newTestBook()
	order := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "10"), 1)

	matches := b.Submit(order)
	if len(matches) != 0 {
		t.Fatalf("expected no matches against an empty book, got %d", len(matches))
	}
	if order.Status() != StatusAccepted {
		t.Fatalf("expected status ACCEPTED, got %s", order.Status())
	}
	if _, ok := b.OrderByID(1); !ok {
		t.Fatal("expected resting GTC order to be indexed")
	}
}

func TestSubmitMatchesAcrossMultipleMakers(t *testing.T) {
	b := newTestBook()
	m1 := NewOrder(1, "AAPL", SideSell, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "5"), 1)
	m2 := NewOrder(2, "AAPL", SideSell, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "10"), 1)
	b.Submit(m1)
	b.Submit(m2)

	taker := NewOrder(3, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "8"), 2)
	matches := b.Submit(taker)

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].MakerID != 1 || !matches[0].Quantity.Equal(mustQty(t, "5")) {
		t.Fatalf("expected first match to fully consume maker 1, got %+v", matches[0])
	}
	if matches[1].MakerID != 2 || !matches[1].Quantity.Equal(mustQty(t, "3")) {
		t.Fatalf("expected second match of 3 against maker 2, got %+v", matches[1])
	}
	if taker.Status() != StatusFilled {
		t.Fatalf("expected taker fully filled, got %s", taker.Status())
	}
	if m2.Status() != StatusPartiallyFilled {
		t.Fatalf("expected maker 2 partially filled, got %s", m2.Status())
	}
	if m1.Status() != StatusFilled {
		t.Fatalf("expected maker 1 filled, got %s", m1.Status())
	}
}

func TestMarketOrderNeverRests(t *testing.T) {
	b := newTestBook()
	b.Submit(NewOrder(1, "AAPL", SideSell, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "3"), 1))

	taker := NewOrder(2, "AAPL", SideBuy, TypeMarket, TIFGTC, numeric.PriceZero, mustQty(t, "10"), 2)
	matches := b.Submit(taker)

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if _, ok := b.OrderByID(2); ok {
		t.Fatal("a MARKET order must never rest regardless of remaining quantity")
	}
	if taker.Status() != StatusPartiallyFilled {
		t.Fatalf("expected taker status PARTIALLY_FILLED since no more liquidity existed, got %s", taker.Status())
	}
}

func TestIOCDiscardsUnfilledRemainder(t *testing.T) {
	b := newTestBook()
	b.Submit(NewOrder(1, "AAPL", SideSell, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "3"), 1))

	taker := NewOrder(2, "AAPL", SideBuy, TypeLimit, TIFIOC, mustPrice(t, "100.0000"), mustQty(t, "10"), 2)
	matches := b.Submit(taker)

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if _, ok := b.OrderByID(2); ok {
		t.Fatal("IOC remainder must never rest")
	}
	if taker.Status() != StatusPartiallyFilled {
		t.Fatalf("expected PARTIALLY_FILLED, got %s", taker.Status())
	}
}

func TestFOKAllOrNothingLeavesBookUntouchedWhenUnfillable(t *testing.T) {
	b := newTestBook()
	maker := NewOrder(1, "AAPL", SideSell, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "3"), 1)
	b.Submit(maker)

	taker := NewOrder(2, "AAPL", SideBuy, TypeLimit, TIFFOK, mustPrice(t, "100.0000"), mustQty(t, "10"), 2)
	matches := b.Submit(taker)

	if len(matches) != 0 {
		t.Fatalf("expected no matches when FOK cannot be fully satisfied, got %d", len(matches))
	}
	if taker.Status() != StatusCancelled {
		t.Fatalf("expected unfillable FOK to end CANCELLED, got %s", taker.Status())
	}
	if maker.Status() != StatusAccepted {
		t.Fatalf("expected maker untouched by a failed FOK, got %s", maker.Status())
	}
	if !maker.Remaining().Equal(mustQty(t, "3")) {
		t.Fatalf("expected maker's resting quantity unchanged, got %s", maker.Remaining())
	}
}

func TestFOKFillsCompletelyWhenDepthSuffices(t *testing.T) {
	b := newTestBook()
	b.Submit(NewOrder(1, "AAPL", SideSell, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "5"), 1))
	b.Submit(NewOrder(2, "AAPL", SideSell, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "5"), 1))

	taker := NewOrder(3, "AAPL", SideBuy, TypeLimit, TIFFOK, mustPrice(t, "100.0000"), mustQty(t, "8"), 2)
	matches := b.Submit(taker)

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if taker.Status() != StatusFilled {
		t.Fatalf("expected FOK taker fully filled, got %s", taker.Status())
	}
}

func TestSubmitRejectsDuplicateID(t *testing.T) {
	b := newTestBook()
	order := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "10"), 1)
	b.Submit(order)

	dup := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "99.0000"), mustQty(t, "1"), 2)
	matches := b.Submit(dup)

	if matches != nil {
		t.Fatal("expected duplicate id submission to be rejected")
	}
	if dup.Status() != StatusNew {
		t.Fatalf("expected rejected order to remain in status NEW, got %s", dup.Status())
	}
}

func TestModifyInPlaceQuantityDecreasePreservesQueuePosition(t *testing.T) {
	b := newTestBook()
	o1 := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "10"), 1)
	o2 := NewOrder(2, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "10"), 1)
	b.Submit(o1)
	b.Submit(o2)

	newQty := mustQty(t, "4")
	b.Modify(1, nil, &newQty)

	if !o1.Quantity().Equal(newQty) {
		t.Fatalf("expected quantity updated to 4, got %s", o1.Quantity())
	}
	if o1.Status() != StatusReplaced {
		t.Fatalf("expected status REPLACED after a real quantity change, got %s", o1.Status())
	}

	level := b.levelAt(SideBuy, mustPrice(t, "100.0000"))
	if level.Head().ID() != 1 {
		t.Fatal("in-place quantity decrease must preserve FIFO position")
	}
}

func TestModifySameQuantitySuppressesStatusChange(t *testing.T) {
	b := newTestBook()
	o1 := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "10"), 1)
	b.Submit(o1)

	same := mustQty(t, "10")
	b.Modify(1, nil, &same)

	if o1.Status() != StatusAccepted {
		t.Fatalf("expected no-op modify to leave status unchanged, got %s", o1.Status())
	}
}

func TestModifyPriceChangeLosesTimePriority(t *testing.T) {
	b := newTestBook()
	o1 := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "10"), 1)
	o2 := NewOrder(2, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "10"), 1)
	b.Submit(o1)
	b.Submit(o2)

	newPrice := mustPrice(t, "100.0000")
	b.Modify(1, &newPrice, nil)

	level := b.levelAt(SideBuy, mustPrice(t, "100.0000"))
	if level.Head().ID() != 2 {
		t.Fatal("cancel-and-replace modify must lose time priority to order 2")
	}
	if level.Count() != 2 {
		t.Fatalf("expected order 1 re-resting after replace, got count %d", level.Count())
	}
}

func TestCancelThenResubmitReusesFreedID(t *testing.T) {
	b := newTestBook()
	o1 := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "100.0000"), mustQty(t, "10"), 1)
	b.Submit(o1)
	b.Cancel(1)

	o2 := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "99.0000"), mustQty(t, "5"), 2)
	b.Submit(o2)
	if o2.Status() != StatusAccepted {
		t.Fatalf("expected freed id to be reusable, got status %s", o2.Status())
	}
}
