package btcmarkets

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"bmkt/pkg/core"
	"bmkt/pkg/table"
)

// CancelTarget identifies an order to cancel inside a batch. Exactly one of
// the identifiers must be set.
type CancelTarget struct {
	OrderID       string
	ClientOrderID string
}

// BatchInstruction is one entry of a batch request. Exactly one of
// PlaceOrder and CancelOrder must be set.
type BatchInstruction struct {
	PlaceOrder  *OrderParams
	CancelOrder *CancelTarget
}

// UnprocessedRequest reports a batch entry the exchange rejected.
type UnprocessedRequest struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

// BatchResult collects the typed outcomes of a batch call. Only the fields
// relevant to the call are populated.
type BatchResult struct {
	// PlaceOrders holds the orders created by a batch submission.
	PlaceOrders table.Table
	// CancelOrders holds the cancellation receipts.
	CancelOrders table.Table
	// Orders holds the order records returned by a batch lookup.
	Orders table.Table
	// Unprocessed lists the entries the exchange could not process.
	Unprocessed []UnprocessedRequest
}

// BatchOrders submits up to the exchange limit of place and cancel
// instructions in one call. Entries that fail server-side validation come
// back in Unprocessed rather than failing the whole batch.
func (c *Client) BatchOrders(ctx context.Context, instructions []BatchInstruction) (*BatchResult, error) {
	if len(instructions) == 0 {
		return nil, core.NewValidationError("at least one batch instruction is required")
	}

	body := make([]map[string]any, 0, len(instructions))
	for i, ins := range instructions {
		switch {
		case ins.PlaceOrder != nil && ins.CancelOrder != nil:
			return nil, core.NewValidationError(fmt.Sprintf("instruction %d sets both placeOrder and cancelOrder", i))
		case ins.PlaceOrder != nil:
			if err := ins.PlaceOrder.validate(c.validate); err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			body = append(body, map[string]any{"placeOrder": ins.PlaceOrder.body()})
		case ins.CancelOrder != nil:
			target, err := cancelBody(ins.CancelOrder)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			body = append(body, map[string]any{"cancelOrder": target})
		default:
			return nil, core.NewValidationError(fmt.Sprintf("instruction %d is empty", i))
		}
	}

	data, err := c.do(ctx, "POST", "/v3/batchorders", nil, body)
	if err != nil {
		return nil, err
	}
	return c.decodeBatchResult(data)
}

// BatchOrderDetails looks up several orders by identifier in one call.
func (c *Client) BatchOrderDetails(ctx context.Context, orderIDs ...string) (*BatchResult, error) {
	if len(orderIDs) == 0 {
		return nil, core.NewValidationError("at least one orderID is required")
	}
	path := "/v3/batchorders/" + strings.Join(orderIDs, ",")
	data, err := c.do(ctx, "GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeBatchResult(data)
}

// BatchCancelOrders cancels several orders by identifier in one call.
func (c *Client) BatchCancelOrders(ctx context.Context, orderIDs ...string) (*BatchResult, error) {
	if len(orderIDs) == 0 {
		return nil, core.NewValidationError("at least one orderID is required")
	}
	path := "/v3/batchorders/" + strings.Join(orderIDs, ",")
	data, err := c.do(ctx, "DELETE", path, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeBatchResult(data)
}

func cancelBody(target *CancelTarget) (map[string]any, error) {
	if target.OrderID != "" && target.ClientOrderID != "" {
		return nil, core.NewValidationError("set either orderId or clientOrderId, not both")
	}
	if target.OrderID != "" {
		return map[string]any{"orderId": target.OrderID}, nil
	}
	if target.ClientOrderID != "" {
		return map[string]any{"clientOrderId": target.ClientOrderID}, nil
	}
	return nil, core.NewValidationError("cancel target needs an orderId or clientOrderId")
}

func (c *Client) decodeBatchResult(data []byte) (*BatchResult, error) {
	var envelope struct {
		PlaceOrders  []map[string]any     `json:"placeOrders"`
		CancelOrders []map[string]any     `json:"cancelOrders"`
		Orders       []map[string]any     `json:"orders"`
		Unprocessed  []UnprocessedRequest `json:"unprocessedRequests"`
	}
	if err := sonic.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse batch response: %w", err)
	}

	result := &BatchResult{Unprocessed: envelope.Unprocessed}
	var err error
	if result.PlaceOrders, err = c.normalizer.Table(envelope.PlaceOrders, orderFields); err != nil {
		return nil, err
	}
	if result.CancelOrders, err = c.normalizer.Table(envelope.CancelOrders, FieldSpec{}); err != nil {
		return nil, err
	}
	if result.Orders, err = c.normalizer.Table(envelope.Orders, orderFields); err != nil {
		return nil, err
	}
	return result, nil
}
