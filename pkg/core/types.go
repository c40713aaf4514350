package core

import "fmt"

// OrderSide represents the direction of an order.
type OrderSide int

// Order side constants use the exchange's wire values: a bid buys, an ask sells.
const (
	// SideBid indicates an order to purchase the base asset.
	SideBid OrderSide = iota
	// SideAsk indicates an order to sell the base asset.
	SideAsk
)

// String returns the wire representation of the order side ("Bid" or "Ask").
func (s OrderSide) String() string {
	if !s.Valid() {
		return fmt.Sprintf("OrderSide(%d)", int(s))
	}
	return [...]string{"Bid", "Ask"}[s]
}

// Valid reports whether the side is a known value.
func (s OrderSide) Valid() bool {
	return s == SideBid || s == SideAsk
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
// It accepts both capitalized and lowercase forms.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Bid"`, `"bid"`:
		*s = SideBid
	case `"Ask"`, `"ask"`:
		*s = SideAsk
	}
	return nil
}

// OrderType represents the type of order to place on the exchange.
type OrderType int

// Order type constants define how an order is executed.
const (
	// TypeLimit executes at a specified price or better.
	TypeLimit OrderType = iota
	// TypeMarket executes immediately at the best available price.
	TypeMarket
	// TypeStopLimit triggers a limit order when price reaches the trigger price.
	TypeStopLimit
	// TypeStop triggers a market order when price reaches the trigger price.
	TypeStop
	// TypeTakeProfit triggers a market order when price reaches the target.
	TypeTakeProfit
)

// String returns the wire representation of the order type.
func (t OrderType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("OrderType(%d)", int(t))
	}
	return [...]string{"Limit", "Market", "Stop Limit", "Stop", "Take Profit"}[t]
}

// Valid reports whether the order type is a known value.
func (t OrderType) Valid() bool {
	return t >= TypeLimit && t <= TypeTakeProfit
}

// RequiresTrigger reports whether the order type needs a trigger price.
func (t OrderType) RequiresTrigger() bool {
	return t == TypeStopLimit || t == TypeStop || t == TypeTakeProfit
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Limit"`, `"limit"`:
		*t = TypeLimit
	case `"Market"`, `"market"`:
		*t = TypeMarket
	case `"Stop Limit"`, `"stop limit"`:
		*t = TypeStopLimit
	case `"Stop"`, `"stop"`:
		*t = TypeStop
	case `"Take Profit"`, `"take profit"`:
		*t = TypeTakeProfit
	}
	return nil
}

// TimeInForce defines how long an order remains active.
type TimeInForce int

// Time in force constants define order lifetime behavior.
const (
	// GTC (Good Till Cancelled) keeps the order active until filled or cancelled.
	GTC TimeInForce = iota
	// FOK (Fill Or Kill) requires complete immediate execution or cancellation.
	FOK
	// IOC (Immediate Or Cancel) executes immediately; the unfilled portion is cancelled.
	IOC
)

// String returns the wire representation of time in force.
func (t TimeInForce) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TimeInForce(%d)", int(t))
	}
	return [...]string{"GTC", "FOK", "IOC"}[t]
}

// Valid reports whether the time in force is a known value.
func (t TimeInForce) Valid() bool {
	return t >= GTC && t <= IOC
}

// MarshalJSON implements json.Marshaler for TimeInForce.
func (t TimeInForce) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for TimeInForce.
func (t *TimeInForce) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"GTC"`, `"gtc"`:
		*t = GTC
	case `"FOK"`, `"fok"`:
		*t = FOK
	case `"IOC"`, `"ioc"`:
		*t = IOC
	}
	return nil
}

// SelfTrade is the self-trade prevention setting for an order.
type SelfTrade int

// Self-trade constants define whether an order may match against the
// account's own resting orders.
const (
	// SelfTradePrevent rejects the incoming order instead of self-matching.
	SelfTradePrevent SelfTrade = iota
	// SelfTradeAllow permits self-matching.
	SelfTradeAllow
)

// String returns the wire representation ("P" or "A").
func (s SelfTrade) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SelfTrade(%d)", int(s))
	}
	return [...]string{"P", "A"}[s]
}

// Valid reports whether the setting is a known value.
func (s SelfTrade) Valid() bool {
	return s == SelfTradePrevent || s == SelfTradeAllow
}

// ParseSelfTrade converts a wire value to a SelfTrade setting.
// The exchange only documents "P" (prevent) and "A" (allow); anything else
// is rejected rather than forwarded.
func ParseSelfTrade(s string) (SelfTrade, error) {
	switch s {
	case "P", "p":
		return SelfTradePrevent, nil
	case "A", "a":
		return SelfTradeAllow, nil
	default:
		return SelfTradePrevent, fmt.Errorf("self trade must be either %q (prevent) or %q (allow), got %q", "P", "A", s)
	}
}

// MarshalJSON implements json.Marshaler for SelfTrade.
func (s SelfTrade) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for SelfTrade.
func (s *SelfTrade) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"P"`, `"p"`:
		*s = SelfTradePrevent
	case `"A"`, `"a"`:
		*s = SelfTradeAllow
	}
	return nil
}

// PriceLevel is a single order book level as a [price, volume] pair.
type PriceLevel [2]float64

// Price returns the limit price for this level.
func (l PriceLevel) Price() float64 { return l[0] }

// Volume returns the volume available at this price.
func (l PriceLevel) Volume() float64 { return l[1] }

// OrderBookSnapshot is a point-in-time view of a market's order book.
// SnapshotID changes every time the book changes.
type OrderBookSnapshot struct {
	// MarketID is the market identifier (e.g., "BTC-AUD").
	MarketID string `json:"marketId"`
	// SnapshotID uniquely identifies this book state.
	SnapshotID int64 `json:"snapshotId"`
	// Bids are buy levels sorted by price descending.
	Bids []PriceLevel `json:"bids"`
	// Asks are sell levels sorted by price ascending.
	Asks []PriceLevel `json:"asks"`
}
