package models

// SubmitOrderRequest is the wire shape for POST /api/v1/orders. Price and
// Quantity are decimal strings ("103.0000"), never floats or cents, so
// the four-fractional-digit scale the core requires is never silently
// truncated on the wire.
type SubmitOrderRequest struct {
	ID       uint64 `json:"id"`
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Type     string `json:"type"`
	TIF      string `json:"tif,omitempty"` // GTC (default), IOC, FOK
	Price    string `json:"price"`         // required for LIMIT, ignored for MARKET
	Quantity string `json:"quantity"`
}

type ModifyOrderRequest struct {
	Price    *string `json:"price,omitempty"`
	Quantity *string `json:"quantity,omitempty"`
}

type MatchInfo struct {
	MakerID   uint64 `json:"maker_id"`
	TakerID   uint64 `json:"taker_id"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	Timestamp int64  `json:"timestamp"`
}

type SubmitOrderResponse struct {
	OrderID   uint64      `json:"order_id"`
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Executed  string      `json:"executed_quantity"`
	Remaining string      `json:"remaining_quantity"`
	Matches   []MatchInfo `json:"matches"`
}

type ModifyOrderResponse struct {
	OrderID uint64      `json:"order_id"`
	Status  string      `json:"status"`
	Matches []MatchInfo `json:"matches"`
}

type CancelOrderResponse struct {
	OrderID uint64 `json:"order_id"`
	Status  string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PriceLevelInfo struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type OrderBookResponse struct {
	Symbol    string           `json:"symbol"`
	Timestamp int64            `json:"timestamp"`
	Sequence  uint64           `json:"sequence"`
	BestBid   string           `json:"best_bid,omitempty"`
	BestAsk   string           `json:"best_ask,omitempty"`
	Bids      []PriceLevelInfo `json:"bids"`
	Asks      []PriceLevelInfo `json:"asks"`
}

type OrderStatusResponse struct {
	OrderID   uint64 `json:"order_id"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Type      string `json:"type"`
	TIF       string `json:"tif"`
	Price     string `json:"price"`
	Quantity  string `json:"quantity"`
	Executed  string `json:"executed_quantity"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	OrdersProcessed int64  `json:"orders_processed"`
}

type MetricsResponse struct {
	OrdersReceived         int64   `json:"orders_received"`
	OrdersMatched          int64   `json:"orders_matched"`
	OrdersCancelled        int64   `json:"orders_cancelled"`
	OrdersInBook           int64   `json:"orders_in_book"`
	MatchesExecuted        int64   `json:"matches_executed"`
	LatencyP50Ms           float64 `json:"latency_p50_ms"`
	LatencyP99Ms           float64 `json:"latency_p99_ms"`
	LatencyP999Ms          float64 `json:"latency_p999_ms"`
	ThroughputOrdersPerSec float64 `json:"throughput_orders_per_sec"`
	FeedDroppedFrames      int64   `json:"feed_dropped_frames"`
}
