package engine

import "matchcore/src/numeric"

// Submit accepts order, classifies it by type, and walks the opposite
// side best-first, emitting Match records as fills occur. A MARKET order
// is never added to the book regardless of remaining quantity. A LIMIT
// order's unfilled GTC remainder rests at order.Price(); an IOC
// remainder is discarded; an FOK order that cannot be filled in full
// produces no matches and leaves the book untouched.
//
// Preconditions enforced here: order.ID() != NoOrderID, the id is not
// already resting, quantity is positive, and a LIMIT order's price is
// positive. Any violation is an invalid submission: Submit returns an
// empty slice and does not touch the book.
func (b *Book) Submit(order *Order) []Match {
	if !b.validSubmission(order) {
		return nil
	}

	now := b.clock.NowNanos()
	order.setStatus(StatusAccepted, now)

	if order.TimeInForce() == TIFFOK {
		if !b.fokFillable(order) {
			order.setStatus(StatusCancelled, now)
			b.bumpSequence()
			return nil
		}
	}

	matches := b.walk(order)

	b.finalizeSubmit(order, matches)
	b.bumpSequence()

	b.sink.OnOrderAccepted(order)
	for _, m := range matches {
		b.sink.OnMatch(m)
	}
	return matches
}

func (b *Book) validSubmission(order *Order) bool {
	if order == nil || order.ID() == NoOrderID {
		return false
	}
	if _, exists := b.orders[order.ID()]; exists {
		return false
	}
	if !order.Quantity().IsPositive() {
		return false
	}
	if order.Type() == TypeLimit && !order.Price().IsPositive() {
		return false
	}
	return true
}

// oppositeSide returns the side this order consumes liquidity from.
func oppositeSide(side Side) Side {
	if side == SideBuy {
		return SideSell
	}
	return SideBuy
}

// marketable reports whether the best level on the opposite side can
// trade against a LIMIT taker at its limit price. MARKET takers are
// always marketable against anything resting.
func marketable(taker *Order, bestPrice numeric.Price) bool {
	if taker.Type() == TypeMarket {
		return true
	}
	if taker.Side() == SideBuy {
		return bestPrice.LessOrEqual(taker.Price())
	}
	return bestPrice.GreaterOrEqual(taker.Price())
}

// walk consumes opposing levels best-first against taker until the
// request is exhausted, the opposite side runs dry, or (for LIMIT
// takers) the best remaining opposite price is no longer marketable.
// Only makers are executed while the walk runs; taker's own accounting
// is advanced once at the end via taker.execute(filled), matching the
// matching-walk contract exactly.
func (b *Book) walk(taker *Order) []Match {
	var matches []Match
	opp := oppositeSide(taker.Side())
	now := b.clock.NowNanos()

	remaining := taker.Remaining()

	for remaining.IsPositive() {
		bestPrice, ok := b.bestPrice(opp)
		if !ok {
			break
		}
		if !marketable(taker, bestPrice) {
			break
		}

		level := b.levelAt(opp, bestPrice)
		if level == nil {
			break
		}

		fills := level.Consume(remaining, now)
		if len(fills) == 0 {
			break
		}

		for _, f := range fills {
			matches = append(matches, Match{
				Symbol:    b.symbol,
				MakerID:   f.Order.ID(),
				TakerID:   taker.ID(),
				Price:     level.Price(),
				Quantity:  f.Quantity,
				Timestamp: now,
			})
			remaining = remaining.Sub(f.Quantity)
			b.subSideTotal(opp, f.Quantity)
			if f.Order.IsFilled() {
				delete(b.orders, f.Order.ID())
			}
		}

		b.dropLevelIfEmpty(opp, level)
	}

	filled := taker.Quantity().Sub(remaining)
	if filled.IsPositive() {
		taker.execute(filled, now)
	}

	return matches
}

func (b *Book) bestPrice(side Side) (numeric.Price, bool) {
	if side == SideBuy {
		return b.BestBid()
	}
	return b.BestAsk()
}

// finalizeSubmit applies the post-walk disposition: MARKET orders never
// rest; LIMIT orders with a GTC remainder rest at their own price; IOC
// remainders are discarded; FOK has already been resolved by the
// pre-check in Submit.
func (b *Book) finalizeSubmit(order *Order, matches []Match) {
	if order.Type() == TypeMarket {
		return
	}

	if !order.Remaining().IsPositive() {
		return
	}

	switch order.TimeInForce() {
	case TIFIOC, TIFFOK:
		return
	default: // GTC
		b.Rest(order)
	}
}

// fokFillable performs the FOK pre-check required by the matching
// contract: it computes, without mutating any state, whether the
// opposite side currently holds enough marketable depth to fill order in
// full. This lets FOK honor an all-or-nothing contract without snapshot
// or rollback machinery, since nothing is touched unless the check
// passes.
func (b *Book) fokFillable(order *Order) bool {
	opp := oppositeSide(order.Side())
	need := order.Remaining()

	available := numeric.QuantityZero
	for _, price := range b.sidePrices(opp) {
		if !marketable(order, price) {
			break
		}
		available = available.Add(b.QuantityAt(opp, price))
		if available.GreaterOrEqual(need) {
			return true
		}
	}
	return available.GreaterOrEqual(need)
}

func (b *Book) sidePrices(side Side) []numeric.Price {
	if side == SideBuy {
		return b.BidPrices()
	}
	return b.AskPrices()
}

// Modify applies an in-place quantity-decrease when possible (preserving
// queue position) or falls back to cancel-and-replace, which loses time
// priority by design. A call with neither field set, or with an unknown
// id, is a no-op returning an empty match list.
func (b *Book) Modify(id OrderID, newPrice *numeric.Price, newQuantity *numeric.Quantity) []Match {
	if newPrice == nil && newQuantity == nil {
		return nil
	}

	order, ok := b.orders[id]
	if !ok {
		return nil
	}

	if newPrice == nil && newQuantity != nil && newQuantity.LessOrEqual(order.Quantity()) {
		level := b.levelAt(order.Side(), order.Price())
		if level == nil {
			return nil
		}
		oldQuantity := order.Quantity()
		oldRemaining := order.Remaining()
		if !level.ModifyQuantity(id, *newQuantity) {
			return nil
		}
		b.subSideTotal(order.Side(), oldRemaining.Sub(order.Remaining()))
		if *newQuantity != oldQuantity {
			order.setStatus(StatusReplaced, b.clock.NowNanos())
		}
		b.bumpSequence()
		return nil
	}

	side := order.Side()
	typ := order.Type()
	tif := order.TimeInForce()
	symbol := order.Symbol()
	price := order.Price()
	quantity := order.Quantity()

	if newPrice != nil {
		price = *newPrice
	}
	if newQuantity != nil {
		quantity = *newQuantity
	}

	b.Cancel(id)

	replacement := NewOrder(id, symbol, side, typ, tif, price, quantity, b.clock.NowNanos())
	return b.Submit(replacement)
}
