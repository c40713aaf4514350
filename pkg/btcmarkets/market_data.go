package btcmarkets

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"bmkt/pkg/core"
	"bmkt/pkg/table"
)

var (
	marketFields = FieldSpec{
		Numeric: []string{"minOrderAmount", "maxOrderAmount", "amountDecimals", "priceDecimals"},
	}
	tickerFields = FieldSpec{
		Numeric: []string{
			"bestBid", "bestAsk", "lastPrice", "volume24h", "volumeQte24h",
			"price24h", "pricePct24h", "low24h", "high24h",
		},
		Temporal: []string{"timestamp"},
	}
	tradeFields = FieldSpec{
		Numeric:  []string{"price", "amount"},
		Temporal: []string{"timestamp"},
	}
)

// Paging carries the cursor parameters shared by list endpoints. Before and
// After are mutually exclusive record identifiers; Limit caps the page size.
type Paging struct {
	Before int64
	After  int64
	Limit  int
}

func (p *Paging) apply(query url.Values) {
	if p == nil {
		return
	}
	if p.Before > 0 {
		query.Set("before", strconv.FormatInt(p.Before, 10))
	}
	if p.After > 0 {
		query.Set("after", strconv.FormatInt(p.After, 10))
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
}

// Markets lists all active markets with their order size and precision
// constraints.
func (c *Client) Markets(ctx context.Context) (table.Table, error) {
	return c.getTable(ctx, "/v3/markets", nil, marketFields)
}

// Ticker returns the current ticker for one market.
func (c *Client) Ticker(ctx context.Context, marketID string) (table.Record, error) {
	if marketID == "" {
		return nil, core.NewValidationError("marketID is required")
	}
	path := fmt.Sprintf("/v3/markets/%s/ticker", marketID)
	return c.getRecord(ctx, path, nil, tickerFields)
}

// Tickers returns tickers for several markets in one call. The API expects
// one repeated marketId query parameter per market.
func (c *Client) Tickers(ctx context.Context, marketIDs []string) (table.Table, error) {
	if len(marketIDs) == 0 {
		return nil, core.NewValidationError("at least one marketID is required")
	}
	query := make(url.Values)
	for _, id := range marketIDs {
		query.Add("marketId", id)
	}
	return c.getTable(ctx, "/v3/markets/tickers", query, tickerFields)
}

// Trades returns recent public trades for a market, newest first. Each row
// gains a computed cost column, price multiplied by amount.
func (c *Client) Trades(ctx context.Context, marketID string, paging *Paging) (table.Table, error) {
	if marketID == "" {
		return nil, core.NewValidationError("marketID is required")
	}
	query := make(url.Values)
	paging.apply(query)
	path := fmt.Sprintf("/v3/markets/%s/trades", marketID)
	trades, err := c.getTable(ctx, path, query, tradeFields)
	if err != nil {
		return nil, err
	}
	for _, rec := range trades {
		price, perr := rec.Float("price")
		amount, aerr := rec.Float("amount")
		if perr == nil && aerr == nil {
			rec["cost"] = price * amount
		}
	}
	return trades, nil
}

// OrderBook returns an order book snapshot for a market. Level 1 returns
// top of book, level 2 the full depth.
func (c *Client) OrderBook(ctx context.Context, marketID string, level int) (*core.OrderBookSnapshot, error) {
	if marketID == "" {
		return nil, core.NewValidationError("marketID is required")
	}
	query := make(url.Values)
	if level > 0 {
		query.Set("level", strconv.Itoa(level))
	}
	path := fmt.Sprintf("/v3/markets/%s/orderbook", marketID)
	data, err := c.do(ctx, "GET", path, query, nil)
	if err != nil {
		return nil, err
	}
	var raw rawOrderBook
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse order book: %w", err)
	}
	return c.normalizer.OrderBook(&raw)
}

// OrderBooks returns snapshots for several markets in one call.
func (c *Client) OrderBooks(ctx context.Context, marketIDs []string) ([]*core.OrderBookSnapshot, error) {
	if len(marketIDs) == 0 {
		return nil, core.NewValidationError("at least one marketID is required")
	}
	query := make(url.Values)
	for _, id := range marketIDs {
		query.Add("marketId", id)
	}
	data, err := c.do(ctx, "GET", "/v3/markets/orderbooks", query, nil)
	if err != nil {
		return nil, err
	}
	var raw []rawOrderBook
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse order books: %w", err)
	}
	books := make([]*core.OrderBookSnapshot, 0, len(raw))
	for i := range raw {
		book, err := c.normalizer.OrderBook(&raw[i])
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// TopBid returns the best bid level for a market.
func (c *Client) TopBid(ctx context.Context, marketID string) (core.PriceLevel, error) {
	book, err := c.OrderBook(ctx, marketID, 1)
	if err != nil {
		return core.PriceLevel{}, err
	}
	if len(book.Bids) == 0 {
		return core.PriceLevel{}, core.NewAPIError(core.ErrorTypeNotFound, 0, "no bids in order book")
	}
	return book.Bids[0], nil
}

// TopAsk returns the best ask level for a market.
func (c *Client) TopAsk(ctx context.Context, marketID string) (core.PriceLevel, error) {
	book, err := c.OrderBook(ctx, marketID, 1)
	if err != nil {
		return core.PriceLevel{}, err
	}
	if len(book.Asks) == 0 {
		return core.PriceLevel{}, core.NewAPIError(core.ErrorTypeNotFound, 0, "no asks in order book")
	}
	return book.Asks[0], nil
}

// CandleOptions filters the candle endpoint. TimeWindow is one of the API
// window strings such as "1m", "1h" or "1d".
type CandleOptions struct {
	TimeWindow string
	From       time.Time
	To         time.Time
	Paging     *Paging
}

// Candles returns OHLCV candles for a market as a table with named columns.
func (c *Client) Candles(ctx context.Context, marketID string, opts *CandleOptions) (table.Table, error) {
	if marketID == "" {
		return nil, core.NewValidationError("marketID is required")
	}
	query := make(url.Values)
	if opts != nil {
		if opts.TimeWindow != "" {
			query.Set("timeWindow", opts.TimeWindow)
		}
		if !opts.From.IsZero() {
			query.Set("from", timeParam(opts.From))
		}
		if !opts.To.IsZero() {
			query.Set("to", timeParam(opts.To))
		}
		opts.Paging.apply(query)
	}
	path := fmt.Sprintf("/v3/markets/%s/candles", marketID)
	data, err := c.do(ctx, "GET", path, query, nil)
	if err != nil {
		return nil, err
	}
	var raw [][]string
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse candles: %w", err)
	}
	return c.normalizer.Candles(raw)
}

// RecentCandles returns candles covering the last daysAgo days at the given
// time window.
func (c *Client) RecentCandles(ctx context.Context, marketID string, daysAgo int, timeWindow string) (table.Table, error) {
	if daysAgo <= 0 {
		return nil, core.NewValidationError("daysAgo must be positive")
	}
	now := time.Now().UTC()
	return c.Candles(ctx, marketID, &CandleOptions{
		TimeWindow: timeWindow,
		From:       now.AddDate(0, 0, -daysAgo),
		To:         now,
	})
}

// ServerTime returns the exchange's current time.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	rec, err := c.getRecord(ctx, "/v3/time", nil, FieldSpec{Temporal: []string{"timestamp"}})
	if err != nil {
		return time.Time{}, err
	}
	return rec.Time("timestamp")
}
