package handlers

import (
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"matchcore/src/engine"
	"matchcore/src/feed"
	"matchcore/src/models"
	"matchcore/src/numeric"
	"matchcore/src/venue"
)

type OrderHandler struct {
	Router      *venue.Router
	Broadcaster *feed.Broadcaster
	StartTime   time.Time

	OrdersReceived  int64
	OrdersMatched   int64
	OrdersCancelled int64
	MatchesExecuted int64

	latencies    []time.Duration
	latenciesMu  sync.RWMutex
	maxLatencies int
}

func NewOrderHandler(router *venue.Router, broadcaster *feed.Broadcaster) *OrderHandler {
	maxLatencies := 10000
	if envMax := os.Getenv("METRICS_MAX_LATENCIES"); envMax != "" {
		if parsed, err := strconv.Atoi(envMax); err == nil && parsed > 0 {
			maxLatencies = parsed
		}
	}

	return &OrderHandler{
		Router:       router,
		Broadcaster:  broadcaster,
		StartTime:    time.Now(),
		latencies:    make([]time.Duration, 0, maxLatencies),
		maxLatencies: maxLatencies,
	}
}

func matchesToInfo(matches []engine.Match) []models.MatchInfo {
	out := make([]models.MatchInfo, 0, len(matches))
	for _, m := range matches {
		out = append(out, models.MatchInfo{
			MakerID:   uint64(m.MakerID),
			TakerID:   uint64(m.TakerID),
			Price:     m.Price.String(),
			Quantity:  m.Quantity.String(),
			Timestamp: m.Timestamp,
		})
	}
	return out
}

func parseSide(s string) (engine.Side, bool) {
	switch s {
	case "BUY":
		return engine.SideBuy, true
	case "SELL":
		return engine.SideSell, true
	default:
		return engine.SideBuy, false
	}
}

func parseType(s string) (engine.OrderType, bool) {
	switch s {
	case "LIMIT":
		return engine.TypeLimit, true
	case "MARKET":
		return engine.TypeMarket, true
	default:
		return engine.TypeLimit, false
	}
}

func parseTIF(s string) (engine.TimeInForce, bool) {
	switch s {
	case "", "GTC":
		return engine.TIFGTC, true
	case "IOC":
		return engine.TIFIOC, true
	case "FOK":
		return engine.TIFFOK, true
	default:
		return engine.TIFGTC, false
	}
}

func (h *OrderHandler) SubmitOrder(c *fiber.Ctx) error {
	var req models.SubmitOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn().Err(err).Str("ip", c.IP()).Msg("invalid request: malformed JSON")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid request: malformed JSON"})
	}

	side, ok := parseSide(req.Side)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "side must be BUY or SELL"})
	}
	typ, ok := parseType(req.Type)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "type must be LIMIT or MARKET"})
	}
	tif, ok := parseTIF(req.TIF)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "tif must be GTC, IOC, or FOK"})
	}
	if req.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "id must be non-zero"})
	}
	if req.Symbol == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "symbol is required"})
	}

	quantity, err := numeric.ParseQuantity(req.Quantity)
	if err != nil || !quantity.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "quantity must be a positive decimal"})
	}

	price := numeric.PriceZero
	if typ == engine.TypeLimit {
		price, err = numeric.ParsePrice(req.Price)
		if err != nil || !price.IsPositive() {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "price must be a positive decimal for LIMIT orders"})
		}
	}

	order := engine.NewOrder(engine.OrderID(req.ID), req.Symbol, side, typ, tif, price, quantity, time.Now().UnixNano())

	start := time.Now()
	atomic.AddInt64(&h.OrdersReceived, 1)
	matches := h.Router.Submit(order)
	h.recordLatency(time.Since(start))

	if order.Status() == engine.StatusNew {
		log.Warn().
			Uint64("order_id", req.ID).
			Str("symbol", req.Symbol).
			Msg("order rejected: duplicate id or precondition violation")
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "duplicate order id or invalid submission"})
	}

	if len(matches) > 0 {
		atomic.AddInt64(&h.OrdersMatched, 1)
		atomic.AddInt64(&h.MatchesExecuted, int64(len(matches)))
	}

	log.Info().
		Uint64("order_id", req.ID).
		Str("symbol", req.Symbol).
		Str("side", side.String()).
		Str("type", typ.String()).
		Str("tif", tif.String()).
		Str("status", order.Status().String()).
		Int("matches", len(matches)).
		Msg("order processed")

	resp := models.SubmitOrderResponse{
		OrderID:   req.ID,
		Status:    order.Status().String(),
		Executed:  order.Executed().String(),
		Remaining: order.Remaining().String(),
		Matches:   matchesToInfo(matches),
	}

	switch order.Status() {
	case engine.StatusAccepted:
		resp.Message = "order added to book"
		return c.Status(fiber.StatusCreated).JSON(resp)
	case engine.StatusPartiallyFilled:
		return c.Status(fiber.StatusAccepted).JSON(resp)
	case engine.StatusCancelled:
		resp.Message = "fill-or-kill could not be satisfied"
		return c.Status(fiber.StatusOK).JSON(resp)
	default:
		return c.Status(fiber.StatusOK).JSON(resp)
	}
}

func (h *OrderHandler) ModifyOrder(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid order id"})
	}

	var req models.ModifyOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid request: malformed JSON"})
	}

	var pricePtr *numeric.Price
	if req.Price != nil {
		p, err := numeric.ParsePrice(*req.Price)
		if err != nil || !p.IsPositive() {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "price must be a positive decimal"})
		}
		pricePtr = &p
	}

	var qtyPtr *numeric.Quantity
	if req.Quantity != nil {
		q, err := numeric.ParseQuantity(*req.Quantity)
		if err != nil || !q.IsPositive() {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "quantity must be a positive decimal"})
		}
		qtyPtr = &q
	}

	orderID := engine.OrderID(id)
	matches := h.Router.Modify(orderID, pricePtr, qtyPtr)

	order, _, ok := h.Router.FindOrder(orderID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "order not found"})
	}

	log.Info().
		Uint64("order_id", id).
		Str("status", order.Status().String()).
		Int("matches", len(matches)).
		Msg("order modified")

	return c.Status(fiber.StatusOK).JSON(models.ModifyOrderResponse{
		OrderID: id,
		Status:  order.Status().String(),
		Matches: matchesToInfo(matches),
	})
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid order id"})
	}

	if !h.Router.Cancel(engine.OrderID(id)) {
		log.Warn().Uint64("order_id", id).Str("ip", c.IP()).Msg("cancel: order not found")
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "order not found"})
	}

	atomic.AddInt64(&h.OrdersCancelled, 1)
	log.Info().Uint64("order_id", id).Msg("order cancelled")

	return c.Status(fiber.StatusOK).JSON(models.CancelOrderResponse{
		OrderID: id,
		Status:  "CANCELLED",
	})
}

func (h *OrderHandler) GetOrderBook(c *fiber.Ctx) error {
	symbol := c.Params("symbol")

	defaultDepth := 10
	if envDepth := os.Getenv("ORDERBOOK_DEFAULT_DEPTH"); envDepth != "" {
		if parsed, err := strconv.Atoi(envDepth); err == nil && parsed > 0 {
			defaultDepth = parsed
		}
	}
	maxDepth := 1000
	if envMaxDepth := os.Getenv("ORDERBOOK_MAX_DEPTH"); envMaxDepth != "" {
		if parsed, err := strconv.Atoi(envMaxDepth); err == nil && parsed > 0 {
			maxDepth = parsed
		}
	}

	depth, err := strconv.Atoi(c.Query("depth", strconv.Itoa(defaultDepth)))
	if err != nil || depth <= 0 {
		depth = defaultDepth
	}
	if depth > maxDepth {
		depth = maxDepth
	}

	book := h.Router.BookFor(symbol)
	bidLevels, askLevels := book.Depth(depth)

	bids := make([]models.PriceLevelInfo, 0, len(bidLevels))
	for _, l := range bidLevels {
		bids = append(bids, models.PriceLevelInfo{Price: l.Price.String(), Quantity: l.Quantity.String()})
	}
	asks := make([]models.PriceLevelInfo, 0, len(askLevels))
	for _, l := range askLevels {
		asks = append(asks, models.PriceLevelInfo{Price: l.Price.String(), Quantity: l.Quantity.String()})
	}

	resp := models.OrderBookResponse{
		Symbol:    symbol,
		Timestamp: time.Now().UnixMilli(),
		Sequence:  book.Sequence(),
		Bids:      bids,
		Asks:      asks,
	}
	if bid, ok := book.BestBid(); ok {
		resp.BestBid = bid.String()
	}
	if ask, ok := book.BestAsk(); ok {
		resp.BestAsk = ask.String()
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *OrderHandler) GetOrderStatus(c *fiber.Ctx) error {
	idStr := c.Params("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid order id"})
	}

	order, symbol, ok := h.Router.FindOrder(engine.OrderID(id))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "order not found"})
	}

	return c.Status(fiber.StatusOK).JSON(models.OrderStatusResponse{
		OrderID:   id,
		Symbol:    symbol,
		Side:      order.Side().String(),
		Type:      order.Type().String(),
		TIF:       order.TimeInForce().String(),
		Price:     order.Price().String(),
		Quantity:  order.Quantity().String(),
		Executed:  order.Executed().String(),
		Status:    order.Status().String(),
		Timestamp: order.CreatedAt(),
	})
}

func (h *OrderHandler) HealthCheck(c *fiber.Ctx) error {
	uptime := time.Since(h.StartTime).Seconds()

	var ordersProcessed int64
	for _, book := range h.Router.Snapshot() {
		ordersProcessed += int64(book.OrderCount())
	}

	return c.Status(fiber.StatusOK).JSON(models.HealthResponse{
		Status:          "healthy",
		UptimeSeconds:   int64(uptime),
		OrdersProcessed: ordersProcessed,
	})
}

func (h *OrderHandler) Metrics(c *fiber.Ctx) error {
	var ordersInBook int64
	for _, book := range h.Router.Snapshot() {
		ordersInBook += int64(book.OrderCount())
	}

	p50, p99, p999 := h.calculateLatencyPercentiles()

	var feedDropped int64
	if h.Broadcaster != nil {
		feedDropped = h.Broadcaster.DroppedFrames()
	}

	return c.Status(fiber.StatusOK).JSON(models.MetricsResponse{
		OrdersReceived:         atomic.LoadInt64(&h.OrdersReceived),
		OrdersMatched:          atomic.LoadInt64(&h.OrdersMatched),
		OrdersCancelled:        atomic.LoadInt64(&h.OrdersCancelled),
		OrdersInBook:           ordersInBook,
		MatchesExecuted:        atomic.LoadInt64(&h.MatchesExecuted),
		LatencyP50Ms:           p50,
		LatencyP99Ms:           p99,
		LatencyP999Ms:          p999,
		ThroughputOrdersPerSec: h.calculateThroughput(),
		FeedDroppedFrames:      feedDropped,
	})
}

func (h *OrderHandler) recordLatency(latency time.Duration) {
	h.latenciesMu.Lock()
	defer h.latenciesMu.Unlock()

	h.latencies = append(h.latencies, latency)
	if len(h.latencies) > h.maxLatencies {
		h.latencies = h.latencies[len(h.latencies)-h.maxLatencies:]
	}
}

func (h *OrderHandler) calculateLatencyPercentiles() (p50, p99, p999 float64) {
	h.latenciesMu.RLock()
	defer h.latenciesMu.RUnlock()

	if len(h.latencies) == 0 {
		return 0, 0, 0
	}

	sorted := make([]time.Duration, len(h.latencies))
	copy(sorted, h.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	at := func(frac float64) float64 {
		idx := int(float64(len(sorted)) * frac)
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return float64(sorted[idx].Nanoseconds()) / 1e6
	}

	return at(0.50), at(0.99), at(0.999)
}

func (h *OrderHandler) calculateThroughput() float64 {
	uptime := time.Since(h.StartTime).Seconds()
	if uptime <= 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&h.OrdersReceived)) / uptime
}
