package engine

import (
	"testing"

	"matchcore/src/numeric"
)

func mustPrice(t *testing.T, s string) numeric.Price {
	p, err := numeric.ParsePrice(s)
	if err != nil {
		t.Fatalf("ParsePrice(%q): %v", s, err)
	}
	return p
}

func mustQty(t *testing.T, s string) numeric.Quantity {
	q, err := numeric.ParseQuantity(s)
	if err != nil {
		t.Fatalf("ParseQuantity(%q): %v", s, err)
	}
	return q
}

func TestPriceLevelAddPreservesFIFO(t *testing.T) {
	price := mustPrice(t, "100.0000")
	level := NewPriceLevel(price)

	o1 := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, price, mustQty(t, "10"), 1)
	o2 := NewOrder(2, "AAPL", SideBuy, TypeLimit, TIFGTC, price, mustQty(t, "5"), 2)

	level.Add(o1)
	level.Add(o2)

	if head := level.Head(); head.ID() != 1 {
		t.Fatalf("expected head order 1, got %d", head.ID())
	}
	if !level.TotalQuantity().Equal(mustQty(t, "15")) {
		t.Fatalf("expected total 15, got %s", level.TotalQuantity())
	}
}

func TestPriceLevelAddRejectsWrongPrice(t *testing.T) {
	level := NewPriceLevel(mustPrice(t, "100.0000"))
	wrong := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, mustPrice(t, "99.0000"), mustQty(t, "10"), 1)
	level.Add(wrong)
	if level.Count() != 0 {
		t.Fatalf("expected level to reject mismatched price, got count %d", level.Count())
	}
}

func TestPriceLevelRemovePreservesArrivalOrder(t *testing.T) {
	price := mustPrice(t, "100.0000")
	level := NewPriceLevel(price)
	for i := OrderID(1); i <= 3; i++ {
		level.Add(NewOrder(i, "AAPL", SideBuy, TypeLimit, TIFGTC, price, mustQty(t, "1"), 1))
	}

	if !level.Remove(2) {
		t.Fatal("expected removal of order 2 to succeed")
	}
	if level.Get(2) != nil {
		t.Fatal("order 2 should no longer be indexed")
	}
	if level.Count() != 2 {
		t.Fatalf("expected 2 remaining orders, got %d", level.Count())
	}
	if rest := level.AllOrders(); rest[0].ID() != 1 || rest[1].ID() != 3 {
		t.Fatalf("expected remaining orders 1 then 3, got %d then %d", rest[0].ID(), rest[1].ID())
	}
	if level.Remove(2) {
		t.Fatal("removing an absent id should report false")
	}
}

func TestPriceLevelModifyQuantityPreservesPosition(t *testing.T) {
	price := mustPrice(t, "100.0000")
	level := NewPriceLevel(price)
	o1 := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, price, mustQty(t, "10"), 1)
	o2 := NewOrder(2, "AAPL", SideBuy, TypeLimit, TIFGTC, price, mustQty(t, "10"), 1)
	level.Add(o1)
	level.Add(o2)

	if !level.ModifyQuantity(1, mustQty(t, "4")) {
		t.Fatal("expected in-place quantity decrease to succeed")
	}
	if level.Head().ID() != 1 {
		t.Fatal("modifying quantity must not change queue position")
	}
	if !level.TotalQuantity().Equal(mustQty(t, "14")) {
		t.Fatalf("expected total 14, got %s", level.TotalQuantity())
	}
}

func TestPriceLevelModifyQuantityRejectsBelowExecuted(t *testing.T) {
	price := mustPrice(t, "100.0000")
	level := NewPriceLevel(price)
	o1 := NewOrder(1, "AAPL", SideBuy, TypeLimit, TIFGTC, price, mustQty(t, "10"), 1)
	level.Add(o1)
	o1.execute(mustQty(t, "6"), 2)

	if level.ModifyQuantity(1, mustQty(t, "5")) {
		t.Fatal("expected new quantity below executed to be rejected")
	}
}

func TestPriceLevelConsumeFillsHeadFirst(t *testing.T) {
	price := mustPrice(t, "100.0000")
	level := NewPriceLevel(price)
	o1 := NewOrder(1, "AAPL", SideSell, TypeLimit, TIFGTC, price, mustQty(t, "5"), 1)
	o2 := NewOrder(2, "AAPL", SideSell, TypeLimit, TIFGTC, price, mustQty(t, "10"), 1)
	level.Add(o1)
	level.Add(o2)

	fills := level.Consume(mustQty(t, "8"), 5)
	if len(fills) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(fills))
	}
	if fills[0].Order.ID() != 1 || !fills[0].Quantity.Equal(mustQty(t, "5")) {
		t.Fatalf("expected first fill to fully consume order 1, got %+v", fills[0])
	}
	if fills[1].Order.ID() != 2 || !fills[1].Quantity.Equal(mustQty(t, "3")) {
		t.Fatalf("expected second fill of 3 against order 2, got %+v", fills[1])
	}
	if level.Count() != 1 {
		t.Fatalf("expected order 1 to be popped off, got count %d", level.Count())
	}
	if !level.TotalQuantity().Equal(mustQty(t, "7")) {
		t.Fatalf("expected remaining total 7, got %s", level.TotalQuantity())
	}
}
