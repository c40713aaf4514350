package btcmarkets

import (
	"context"
	"net/url"
	"regexp"

	"bmkt/pkg/core"
	"bmkt/pkg/table"
)

var (
	fundTransferFields = FieldSpec{
		Numeric:  []string{"amount", "fee"},
		Temporal: []string{"creationTime", "lastUpdate"},
	}
	assetFields = FieldSpec{
		Numeric: []string{
			"minDepositAmount", "maxDepositAmount", "depositFee", "depositDecimals",
			"minWithdrawalAmount", "maxWithdrawalAmount", "withdrawalFee", "withdrawalDecimals",
		},
	}
	withdrawalFeeFields = FieldSpec{
		Numeric: []string{"fee"},
	}
)

var paymentDescriptionRe = regexp.MustCompile(`^[A-Za-z0-9 ]{1,18}$`)

// WithdrawParams describes a withdrawal request. Crypto withdrawals set
// ToAddress; AUD withdrawals set the four bank fields all or none, and with
// none set the account's default bank details are used.
type WithdrawParams struct {
	AssetName string `validate:"required"`
	Amount    string `validate:"required,decimal"`

	// ToAddress is the destination for crypto withdrawals.
	ToAddress string

	// Bank details for AUD withdrawals.
	AccountName   string
	AccountNumber string
	BSBNumber     string
	BankName      string

	// PaymentDescription is an optional bank statement note, at most 18
	// alphanumeric characters.
	PaymentDescription string

	// ClientTransferID is an optional caller-supplied idempotency token.
	ClientTransferID string
}

func (p *WithdrawParams) bankFieldsSet() int {
	n := 0
	for _, f := range []string{p.AccountName, p.AccountNumber, p.BSBNumber, p.BankName} {
		if f != "" {
			n++
		}
	}
	return n
}

func (p *WithdrawParams) body() map[string]any {
	body := map[string]any{
		"assetName": p.AssetName,
		"amount":    p.Amount,
	}
	if p.ToAddress != "" {
		body["toAddress"] = p.ToAddress
	}
	if p.AccountName != "" {
		body["accountName"] = p.AccountName
		body["accountNumber"] = p.AccountNumber
		body["bsbNumber"] = p.BSBNumber
		body["bankName"] = p.BankName
	}
	if p.PaymentDescription != "" {
		body["paymentDescription"] = p.PaymentDescription
	}
	if p.ClientTransferID != "" {
		body["clientTransferId"] = p.ClientTransferID
	}
	return body
}

// Withdraw requests a withdrawal and returns the created transfer record.
func (c *Client) Withdraw(ctx context.Context, params *WithdrawParams) (table.Record, error) {
	if params == nil {
		return nil, core.NewValidationError("withdraw params are required")
	}
	if err := c.validate.Struct(params); err != nil {
		return nil, validationError(err)
	}
	if params.AssetName == "AUD" {
		if params.ToAddress != "" {
			return nil, core.NewValidationError("toAddress does not apply to AUD withdrawals")
		}
		// Zero bank fields means the account's default bank details are used.
		if bank := params.bankFieldsSet(); bank != 0 && bank != 4 {
			return nil, core.NewValidationError("bank details must be complete: accountName, accountNumber, bsbNumber and bankName")
		}
	} else {
		if params.ToAddress == "" {
			return nil, core.NewValidationError("toAddress is required for crypto withdrawals")
		}
		if params.bankFieldsSet() != 0 {
			return nil, core.NewValidationError("bank details only apply to AUD withdrawals")
		}
	}
	if params.PaymentDescription != "" && !paymentDescriptionRe.MatchString(params.PaymentDescription) {
		return nil, core.NewValidationError("paymentDescription must be at most 18 alphanumeric characters")
	}
	return c.postRecord(ctx, "/v3/withdrawals", params.body(), fundTransferFields)
}

// Withdrawals lists the account's withdrawal history.
func (c *Client) Withdrawals(ctx context.Context, paging *Paging) (table.Table, error) {
	query := make(url.Values)
	paging.apply(query)
	return c.getTable(ctx, "/v3/withdrawals", query, fundTransferFields)
}

// Withdrawal returns one withdrawal by identifier.
func (c *Client) Withdrawal(ctx context.Context, id string) (table.Record, error) {
	if id == "" {
		return nil, core.NewValidationError("withdrawal id is required")
	}
	return c.getRecord(ctx, "/v3/withdrawals/"+id, nil, fundTransferFields)
}

// Deposits lists the account's deposit history.
func (c *Client) Deposits(ctx context.Context, paging *Paging) (table.Table, error) {
	query := make(url.Values)
	paging.apply(query)
	return c.getTable(ctx, "/v3/deposits", query, fundTransferFields)
}

// Deposit returns one deposit by identifier.
func (c *Client) Deposit(ctx context.Context, id string) (table.Record, error) {
	if id == "" {
		return nil, core.NewValidationError("deposit id is required")
	}
	return c.getRecord(ctx, "/v3/deposits/"+id, nil, fundTransferFields)
}

// Transfers lists deposits and withdrawals together.
func (c *Client) Transfers(ctx context.Context, paging *Paging) (table.Table, error) {
	query := make(url.Values)
	paging.apply(query)
	return c.getTable(ctx, "/v3/transfers", query, fundTransferFields)
}

// Transfer returns one transfer by identifier.
func (c *Client) Transfer(ctx context.Context, id string) (table.Record, error) {
	if id == "" {
		return nil, core.NewValidationError("transfer id is required")
	}
	return c.getRecord(ctx, "/v3/transfers/"+id, nil, fundTransferFields)
}

// DepositAddress returns the deposit address for an asset.
func (c *Client) DepositAddress(ctx context.Context, assetName string) (table.Record, error) {
	if assetName == "" {
		return nil, core.NewValidationError("assetName is required")
	}
	query := make(url.Values)
	query.Set("assetName", assetName)
	return c.getRecord(ctx, "/v3/addresses", query, FieldSpec{})
}

// WithdrawalFees lists the current withdrawal fee per asset.
func (c *Client) WithdrawalFees(ctx context.Context) (table.Table, error) {
	return c.getTable(ctx, "/v3/withdrawal-fees", nil, withdrawalFeeFields)
}

// Assets lists all assets with their deposit and withdrawal constraints.
func (c *Client) Assets(ctx context.Context) (table.Table, error) {
	return c.getTable(ctx, "/v3/assets", nil, assetFields)
}
