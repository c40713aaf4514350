package btcmarkets

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"bmkt/pkg/core"
	"bmkt/pkg/table"
)

var (
	orderFields = FieldSpec{
		Numeric:  []string{"price", "amount", "openAmount"},
		Temporal: []string{"creationTime"},
	}
	myTradeFields = FieldSpec{
		Numeric:  []string{"price", "amount", "fee", "valueInQuoteAsset"},
		Temporal: []string{"creationTime"},
	}
)

// OrderParams describes a new order. Amount, Price, TriggerPrice and
// TargetAmount are decimal strings so precision survives the wire intact.
// Optional enums are pointers; nil means the field is omitted and the
// exchange default applies.
type OrderParams struct {
	MarketID     string `validate:"required"`
	Side         core.OrderSide
	Type         core.OrderType
	Amount       string `validate:"required,decimal"`
	Price        string `validate:"omitempty,decimal"`
	TriggerPrice string `validate:"omitempty,decimal"`
	TargetAmount string `validate:"omitempty,decimal"`

	TimeInForce   *core.TimeInForce
	PostOnly      *bool
	SelfTrade     *core.SelfTrade
	ClientOrderID string
}

func (p *OrderParams) validate(v *validator.Validate) error {
	if err := v.Struct(p); err != nil {
		return validationError(err)
	}
	if !p.Side.Valid() {
		return core.NewValidationError(fmt.Sprintf("unknown order side %d", int(p.Side)))
	}
	if !p.Type.Valid() {
		return core.NewValidationError(fmt.Sprintf("unknown order type %d", int(p.Type)))
	}
	if p.TimeInForce != nil && !p.TimeInForce.Valid() {
		return core.NewValidationError(fmt.Sprintf("unknown time in force %d", int(*p.TimeInForce)))
	}
	if p.SelfTrade != nil && !p.SelfTrade.Valid() {
		return core.NewValidationError(fmt.Sprintf("unknown self trade setting %d", int(*p.SelfTrade)))
	}
	if p.Type != core.TypeMarket && p.Price == "" {
		return core.NewValidationError(fmt.Sprintf("price is required for %s orders", p.Type))
	}
	if p.Type.RequiresTrigger() && p.TriggerPrice == "" {
		return core.NewValidationError(fmt.Sprintf("triggerPrice is required for %s orders", p.Type))
	}
	if !p.Type.RequiresTrigger() && p.TriggerPrice != "" {
		return core.NewValidationError(fmt.Sprintf("triggerPrice is not allowed for %s orders", p.Type))
	}
	return nil
}

// body renders the wire payload, omitting unset optional fields.
func (p *OrderParams) body() map[string]any {
	body := map[string]any{
		"marketId": p.MarketID,
		"amount":   p.Amount,
		"type":     p.Type.String(),
		"side":     p.Side.String(),
	}
	if p.Price != "" {
		body["price"] = p.Price
	}
	if p.TriggerPrice != "" {
		body["triggerPrice"] = p.TriggerPrice
	}
	if p.TargetAmount != "" {
		body["targetAmount"] = p.TargetAmount
	}
	if p.TimeInForce != nil {
		body["timeInForce"] = p.TimeInForce.String()
	}
	if p.PostOnly != nil {
		body["postOnly"] = *p.PostOnly
	}
	if p.SelfTrade != nil {
		body["selfTrade"] = p.SelfTrade.String()
	}
	if p.ClientOrderID != "" {
		body["clientOrderId"] = p.ClientOrderID
	}
	return body
}

// PlaceOrder submits a new order and returns the created order record.
func (c *Client) PlaceOrder(ctx context.Context, params *OrderParams) (table.Record, error) {
	if params == nil {
		return nil, core.NewValidationError("order params are required")
	}
	if err := params.validate(c.validate); err != nil {
		return nil, err
	}
	return c.postRecord(ctx, "/v3/orders", params.body(), orderFields)
}

// OrderListOptions filters the order list endpoint. Status is one of
// "open", "all" or a specific order status string.
type OrderListOptions struct {
	MarketID string
	Status   string
	Paging   *Paging
}

// Orders lists the account's orders, open orders by default.
func (c *Client) Orders(ctx context.Context, opts *OrderListOptions) (table.Table, error) {
	query := make(url.Values)
	if opts != nil {
		if opts.MarketID != "" {
			query.Set("marketId", opts.MarketID)
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
		opts.Paging.apply(query)
	}
	return c.getTable(ctx, "/v3/orders", query, orderFields)
}

// Order returns a single order by its exchange identifier.
func (c *Client) Order(ctx context.Context, orderID string) (table.Record, error) {
	if orderID == "" {
		return nil, core.NewValidationError("orderID is required")
	}
	return c.getRecord(ctx, "/v3/orders/"+orderID, nil, orderFields)
}

// CancelOrder cancels one order and returns the cancellation receipt.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (table.Record, error) {
	if orderID == "" {
		return nil, core.NewValidationError("orderID is required")
	}
	return c.deleteRecord(ctx, "/v3/orders/"+orderID, FieldSpec{})
}

// ReplaceOrder atomically cancels an order and places a new one at the given
// price and amount, keeping its place-time attributes.
func (c *Client) ReplaceOrder(ctx context.Context, orderID, price, amount, clientOrderID string) (table.Record, error) {
	if orderID == "" {
		return nil, core.NewValidationError("orderID is required")
	}
	if err := c.validate.Var(price, "required,decimal"); err != nil {
		return nil, core.NewValidationError("price must be a positive decimal string")
	}
	if err := c.validate.Var(amount, "required,decimal"); err != nil {
		return nil, core.NewValidationError("amount must be a positive decimal string")
	}
	body := map[string]any{
		"price":  price,
		"amount": amount,
	}
	if clientOrderID != "" {
		body["clientOrderId"] = clientOrderID
	}
	return c.putRecord(ctx, "/v3/orders/"+orderID, body, orderFields)
}

// CancelOpenOrders cancels all open orders, optionally limited to the given
// markets, and returns one receipt per cancelled order.
func (c *Client) CancelOpenOrders(ctx context.Context, marketIDs ...string) (table.Table, error) {
	query := make(url.Values)
	for _, id := range marketIDs {
		query.Add("marketId", id)
	}
	data, err := c.do(ctx, "DELETE", "/v3/orders", query, nil)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := sonic.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return c.normalizer.Table(rows, FieldSpec{})
}

// TradeListOptions filters the account trade history endpoint.
type TradeListOptions struct {
	MarketID string
	OrderID  string
	Paging   *Paging
}

// MyTrades lists the account's executed trades.
func (c *Client) MyTrades(ctx context.Context, opts *TradeListOptions) (table.Table, error) {
	query := make(url.Values)
	if opts != nil {
		if opts.MarketID != "" {
			query.Set("marketId", opts.MarketID)
		}
		if opts.OrderID != "" {
			query.Set("orderId", opts.OrderID)
		}
		opts.Paging.apply(query)
	}
	return c.getTable(ctx, "/v3/trades", query, myTradeFields)
}

// MyTrade returns a single executed trade by identifier.
func (c *Client) MyTrade(ctx context.Context, tradeID string) (table.Record, error) {
	if tradeID == "" {
		return nil, core.NewValidationError("tradeID is required")
	}
	return c.getRecord(ctx, "/v3/trades/"+tradeID, nil, myTradeFields)
}
