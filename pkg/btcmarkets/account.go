package btcmarkets

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bytedance/sonic"

	"bmkt/pkg/core"
	"bmkt/pkg/table"
)

var (
	feeFields = FieldSpec{
		Numeric: []string{"makerFeeRate", "takerFeeRate"},
	}
	balanceFields = FieldSpec{
		Numeric: []string{"balance", "locked", "available"},
	}
	transactionFields = FieldSpec{
		Numeric:  []string{"amount", "balance"},
		Temporal: []string{"creationTime"},
	}
)

// TradingFees reports the account's 30 day volume and the fee rates per
// market.
type TradingFees struct {
	Volume30Day float64
	FeeByMarket table.Table
}

// GetTradingFees returns the account's current trading fee schedule.
func (c *Client) GetTradingFees(ctx context.Context) (*TradingFees, error) {
	data, err := c.do(ctx, "GET", "/v3/accounts/me/trading-fees", nil, nil)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Volume30Day  string           `json:"volume30Day"`
		FeeByMarkets []map[string]any `json:"feeByMarkets"`
	}
	if err := sonic.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse trading fees: %w", err)
	}
	volume, err := coerceFloat(envelope.Volume30Day)
	if err != nil {
		return nil, core.NewDataIntegrityError("volume30Day", err)
	}
	fees, err := c.normalizer.Table(envelope.FeeByMarkets, feeFields)
	if err != nil {
		return nil, err
	}
	return &TradingFees{Volume30Day: volume, FeeByMarket: fees}, nil
}

// FeeByMarket returns just the per-market fee rate table.
func (c *Client) FeeByMarket(ctx context.Context) (table.Table, error) {
	fees, err := c.GetTradingFees(ctx)
	if err != nil {
		return nil, err
	}
	return fees.FeeByMarket, nil
}

// WithdrawalLimits returns the account's remaining withdrawal limits.
func (c *Client) WithdrawalLimits(ctx context.Context) (table.Record, error) {
	return c.getRecord(ctx, "/v3/accounts/me/withdrawal-limits", nil, FieldSpec{})
}

// BalanceOptions shapes the balance listing. The zero value returns every
// asset unmodified.
type BalanceOptions struct {
	// HideEmpty drops assets whose total balance is zero.
	HideEmpty bool
	// LockedRatio adds a lockedRatio column, locked divided by balance,
	// zero when the balance is zero.
	LockedRatio bool
	// SortByBalance orders rows by descending balance.
	SortByBalance bool
}

// Balances lists the account's asset balances.
func (c *Client) Balances(ctx context.Context, opts *BalanceOptions) (table.Table, error) {
	balances, err := c.getTable(ctx, "/v3/accounts/me/balances", nil, balanceFields)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		return balances, nil
	}
	if opts.HideEmpty {
		balances = balances.Filter(func(rec table.Record) bool {
			return rec.MustFloat("balance") != 0
		})
	}
	if opts.LockedRatio {
		for _, rec := range balances {
			balance := rec.MustFloat("balance")
			if balance == 0 {
				rec["lockedRatio"] = 0.0
				continue
			}
			rec["lockedRatio"] = rec.MustFloat("locked") / balance
		}
	}
	if opts.SortByBalance {
		balances.SortByFloat("balance", true)
	}
	return balances, nil
}

// TransactionOptions filters the ledger endpoint.
type TransactionOptions struct {
	AssetName string
	Paging    *Paging
}

// Transactions lists the account's ledger entries.
func (c *Client) Transactions(ctx context.Context, opts *TransactionOptions) (table.Table, error) {
	query := make(url.Values)
	if opts != nil {
		if opts.AssetName != "" {
			query.Set("assetName", opts.AssetName)
		}
		opts.Paging.apply(query)
	}
	return c.getTable(ctx, "/v3/accounts/me/transactions", query, transactionFields)
}

// CreateReport requests an account report. Type is e.g. "TransactionReport"
// and format is "json" or "csv".
func (c *Client) CreateReport(ctx context.Context, reportType, format string) (table.Record, error) {
	if reportType == "" {
		return nil, core.NewValidationError("reportType is required")
	}
	if format == "" {
		format = "json"
	}
	body := map[string]any{
		"type":   reportType,
		"format": format,
	}
	return c.postRecord(ctx, "/v3/reports", body, FieldSpec{Temporal: []string{"creationTime"}})
}

// Report returns the status of a previously requested report.
func (c *Client) Report(ctx context.Context, reportID string) (table.Record, error) {
	if reportID == "" {
		return nil, core.NewValidationError("reportID is required")
	}
	return c.getRecord(ctx, "/v3/reports/"+reportID, nil, FieldSpec{Temporal: []string{"creationTime"}})
}
