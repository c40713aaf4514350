package btcmarkets

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmkt/pkg/core"
)

var testKeyBase64 = base64.StdEncoding.EncodeToString(testPrivateKey)

// verifyAuth recomputes the signature from what actually arrived on the
// wire and fails the test on any mismatch.
func verifyAuth(t *testing.T, r *http.Request) {
	t.Helper()

	assert.Equal(t, "api-key-id", r.Header.Get(HeaderAPIKey))
	assert.Equal(t, "application/json", r.Header.Get("Accept"))
	assert.Equal(t, "UTF-8", r.Header.Get("Accept-Charset"))

	ts := r.Header.Get(HeaderTimestamp)
	require.NotEmpty(t, ts)

	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	r.Body = io.NopCloser(bytes.NewReader(body))

	want := Sign(testPrivateKey, r.Method, r.URL.Path, ts, body)
	assert.Equal(t, want, r.Header.Get(HeaderSignature), "signature must cover method, bare path, timestamp and body")
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := core.DefaultConfig().
		WithCredentials("api-key-id", testKeyBase64).
		WithBaseURL(server.URL).
		WithLogLevel("error")

	client, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(core.DefaultConfig())
	assert.Error(t, err)

	cfg := core.DefaultConfig().WithCredentials("key", "not!!base64")
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestMarkets(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, "/v3/markets", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"marketId":"BTC-AUD","baseAssetName":"BTC","minOrderAmount":"0.0001","maxOrderAmount":"100","amountDecimals":"8","priceDecimals":"2"}
		]`))
	})

	markets, err := client.Markets(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, markets.Len())
	assert.Equal(t, 0.0001, markets[0].MustFloat("minOrderAmount"))
	assert.Equal(t, 8.0, markets[0].MustFloat("amountDecimals"))
}

func TestTicker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, "/v3/markets/BTC-AUD/ticker", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"marketId":"BTC-AUD","bestBid":"50990.00","bestAsk":"51010.00",
			"lastPrice":"51000.50","volume24h":"12.5","timestamp":"2024-03-01T12:00:00.000000Z"
		}`))
	})

	ticker, err := client.Ticker(context.Background(), "BTC-AUD")
	require.NoError(t, err)
	assert.Equal(t, 51000.50, ticker.MustFloat("lastPrice"))

	ts, err := ticker.Time("timestamp")
	require.NoError(t, err)
	assert.Equal(t, time.March, ts.Month())

	_, err = client.Ticker(context.Background(), "")
	assert.True(t, core.IsValidationError(err))
}

func TestTickersRepeatedMarketIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, []string{"BTC-AUD", "ETH-AUD"}, r.URL.Query()["marketId"])
		_, _ = w.Write([]byte(`[
			{"marketId":"BTC-AUD","lastPrice":"51000.50"},
			{"marketId":"ETH-AUD","lastPrice":"4000.25"}
		]`))
	})

	tickers, err := client.Tickers(context.Background(), []string{"BTC-AUD", "ETH-AUD"})
	require.NoError(t, err)
	assert.Equal(t, []float64{51000.50, 4000.25}, tickers.Floats("lastPrice"))
}

func TestTradesAddsCostColumn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		_, _ = w.Write([]byte(`[
			{"id":"1","price":"100.0","amount":"0.5","timestamp":"2024-03-01T12:00:00Z"}
		]`))
	})

	trades, err := client.Trades(context.Background(), "BTC-AUD", nil)
	require.NoError(t, err)
	require.Equal(t, 1, trades.Len())
	assert.Equal(t, 50.0, trades[0].MustFloat("cost"))
}

func TestOrderBook(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, "2", r.URL.Query().Get("level"))
		_, _ = w.Write([]byte(`{
			"marketId":"BTC-AUD","snapshotId":1567836801115000,
			"bids":[["50990.00","0.5"]],"asks":[["51010.00","1.5"]]
		}`))
	})

	book, err := client.OrderBook(context.Background(), "BTC-AUD", 2)
	require.NoError(t, err)
	assert.Equal(t, "BTC-AUD", book.MarketID)
	require.Len(t, book.Bids, 1)
	assert.Equal(t, 50990.00, book.Bids[0].Price())
}

func TestOrderBooks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, "/v3/markets/orderbooks", r.URL.Path)
		assert.Equal(t, []string{"BTC-AUD", "ETH-AUD"}, r.URL.Query()["marketId"])
		_, _ = w.Write([]byte(`[
			{"marketId":"BTC-AUD","snapshotId":1,"bids":[["50990.00","0.5"]],"asks":[]},
			{"marketId":"ETH-AUD","snapshotId":2,"bids":[],"asks":[["4000.00","3.0"]]}
		]`))
	})

	books, err := client.OrderBooks(context.Background(), []string{"BTC-AUD", "ETH-AUD"})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "BTC-AUD", books[0].MarketID)
	assert.Equal(t, 4000.00, books[1].Asks[0].Price())

	_, err = client.OrderBooks(context.Background(), nil)
	assert.True(t, core.IsValidationError(err))
}

func TestTopBidTopAsk(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		_, _ = w.Write([]byte(`{
			"marketId":"BTC-AUD","snapshotId":1,
			"bids":[["50990.00","0.5"]],"asks":[["51010.00","1.5"]]
		}`))
	})

	bid, err := client.TopBid(context.Background(), "BTC-AUD")
	require.NoError(t, err)
	assert.Equal(t, 50990.00, bid.Price())

	ask, err := client.TopAsk(context.Background(), "BTC-AUD")
	require.NoError(t, err)
	assert.Equal(t, 51010.00, ask.Price())
}

func TestCandles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, "1d", r.URL.Query().Get("timeWindow"))
		_, _ = w.Write([]byte(`[
			["2024-03-01T00:00:00Z","100","110","95","105","12.5"]
		]`))
	})

	candles, err := client.Candles(context.Background(), "BTC-AUD", &CandleOptions{TimeWindow: "1d"})
	require.NoError(t, err)
	require.Equal(t, 1, candles.Len())
	assert.Equal(t, 105.0, candles[0].MustFloat("close"))
}

func TestServerTime(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, "/v3/time", r.URL.Path)
		_, _ = w.Write([]byte(`{"timestamp":"2024-03-01T12:00:00.000000Z"}`))
	})

	now, err := client.ServerTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2024, now.Year())
}

func TestPlaceOrderSignsExactBody(t *testing.T) {
	var received map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		ts := r.Header.Get(HeaderTimestamp)
		want := Sign(testPrivateKey, r.Method, r.URL.Path, ts, body)
		assert.Equal(t, want, r.Header.Get(HeaderSignature))

		require.NoError(t, sonic.Unmarshal(body, &received))
		_, _ = w.Write([]byte(`{
			"orderId":"12345","marketId":"BTC-AUD","side":"Bid","type":"Limit",
			"price":"50000.00","amount":"0.1","openAmount":"0.1","status":"Accepted",
			"creationTime":"2024-03-01T12:00:00.000000Z"
		}`))
	})

	tif := core.GTC
	order, err := client.PlaceOrder(context.Background(), &OrderParams{
		MarketID:    "BTC-AUD",
		Side:        core.SideBid,
		Type:        core.TypeLimit,
		Price:       "50000.00",
		Amount:      "0.1",
		TimeInForce: &tif,
	})
	require.NoError(t, err)
	assert.Equal(t, 50000.00, order.MustFloat("price"))
	assert.Equal(t, 0.1, order.MustFloat("openAmount"))

	assert.Equal(t, "BTC-AUD", received["marketId"])
	assert.Equal(t, "Limit", received["type"])
	assert.Equal(t, "Bid", received["side"])
	assert.Equal(t, "GTC", received["timeInForce"])
	_, hasTrigger := received["triggerPrice"]
	assert.False(t, hasTrigger)
}

func badTimeInForce() *core.TimeInForce {
	tif := core.TimeInForce(9)
	return &tif
}

func TestPlaceOrderValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	})

	tests := []struct {
		name   string
		params *OrderParams
	}{
		{"nil params", nil},
		{"missing market", &OrderParams{Amount: "0.1", Price: "100"}},
		{"missing amount", &OrderParams{MarketID: "BTC-AUD", Price: "100"}},
		{"bad amount", &OrderParams{MarketID: "BTC-AUD", Amount: "abc", Price: "100"}},
		{"negative amount", &OrderParams{MarketID: "BTC-AUD", Amount: "-1", Price: "100"}},
		{"limit without price", &OrderParams{MarketID: "BTC-AUD", Type: core.TypeLimit, Amount: "0.1"}},
		{"stop limit without trigger", &OrderParams{MarketID: "BTC-AUD", Type: core.TypeStopLimit, Amount: "0.1", Price: "100"}},
		{"limit with trigger", &OrderParams{MarketID: "BTC-AUD", Type: core.TypeLimit, Amount: "0.1", Price: "100", TriggerPrice: "95"}},
		{"unknown side", &OrderParams{MarketID: "BTC-AUD", Side: core.OrderSide(9), Amount: "0.1", Price: "100"}},
		{"unknown type", &OrderParams{MarketID: "BTC-AUD", Type: core.OrderType(99), Amount: "0.1", Price: "100"}},
		{"unknown time in force", &OrderParams{MarketID: "BTC-AUD", Amount: "0.1", Price: "100", TimeInForce: badTimeInForce()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.PlaceOrder(context.Background(), tt.params)
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
		})
	}
}

func TestPlaceMarketOrderWithoutPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		_, _ = w.Write([]byte(`{"orderId":"1","amount":"0.1","creationTime":"2024-03-01T12:00:00Z"}`))
	})

	_, err := client.PlaceOrder(context.Background(), &OrderParams{
		MarketID: "BTC-AUD",
		Side:     core.SideAsk,
		Type:     core.TypeMarket,
		Amount:   "0.1",
	})
	assert.NoError(t, err)
}

func TestCancelOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v3/orders/12345", r.URL.Path)
		_, _ = w.Write([]byte(`{"orderId":"12345","clientOrderId":"abc"}`))
	})

	receipt, err := client.CancelOrder(context.Background(), "12345")
	require.NoError(t, err)
	id, err := receipt.String("orderId")
	require.NoError(t, err)
	assert.Equal(t, "12345", id)
}

func TestReplaceOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v3/orders/12345", r.URL.Path)

		ts := r.Header.Get(HeaderTimestamp)
		assert.Equal(t, Sign(testPrivateKey, r.Method, r.URL.Path, ts, body), r.Header.Get(HeaderSignature))

		_, _ = w.Write([]byte(`{"orderId":"67890","price":"51000.00","amount":"0.2","openAmount":"0.2","creationTime":"2024-03-01T12:00:00Z"}`))
	})

	order, err := client.ReplaceOrder(context.Background(), "12345", "51000.00", "0.2", "")
	require.NoError(t, err)
	assert.Equal(t, 51000.00, order.MustFloat("price"))

	_, err = client.ReplaceOrder(context.Background(), "", "51000.00", "0.2", "")
	assert.True(t, core.IsValidationError(err))

	_, err = client.ReplaceOrder(context.Background(), "12345", "abc", "0.2", "")
	assert.True(t, core.IsValidationError(err))
}

func TestFeeByMarket(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		_, _ = w.Write([]byte(`{
			"volume30Day":"0",
			"feeByMarkets":[{"marketId":"BTC-AUD","makerFeeRate":"0.0085","takerFeeRate":"0.0095"}]
		}`))
	})

	fees, err := client.FeeByMarket(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, fees.Len())
	assert.Equal(t, 0.0095, fees.At(0).MustFloat("takerFeeRate"))
}

func TestAPIErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"InvalidMarketId","message":"market not found"}`))
	})

	_, err := client.Ticker(context.Background(), "NOPE-AUD")
	require.Error(t, err)

	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, core.ErrorTypeBadRequest, apiErr.Type)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "InvalidMarketId", apiErr.Code)
	assert.Equal(t, "market not found", apiErr.Message)
	assert.Equal(t, "/v3/markets/NOPE-AUD/ticker", apiErr.Path)
}

func TestAPIErrorAuthentication(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"InvalidAuthSignature","message":"signature mismatch"}`))
	})

	_, err := client.Balances(context.Background(), nil)
	assert.True(t, core.IsAuthenticationError(err))
}

func TestAPIErrorCodeOnlyEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"InvalidAmount"}`))
	})

	_, err := client.Markets(context.Background())
	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "InvalidAmount", apiErr.Code)
	assert.Equal(t, "HTTP 400", apiErr.Message)
}

func TestAPIErrorWithoutEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream unavailable`))
	})

	_, err := client.Markets(context.Background())
	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, core.ErrorTypeServerError, apiErr.Type)
	assert.Equal(t, "HTTP 502", apiErr.Message)
}

func TestBalancesOptions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		_, _ = w.Write([]byte(`[
			{"assetName":"AUD","balance":"100.0","locked":"25.0","available":"75.0"},
			{"assetName":"BTC","balance":"0.0","locked":"0.0","available":"0.0"},
			{"assetName":"ETH","balance":"200.0","locked":"0.0","available":"200.0"}
		]`))
	})

	balances, err := client.Balances(context.Background(), &BalanceOptions{
		HideEmpty:     true,
		LockedRatio:   true,
		SortByBalance: true,
	})
	require.NoError(t, err)
	require.Equal(t, 2, balances.Len())

	first, _ := balances[0].String("assetName")
	assert.Equal(t, "ETH", first)
	assert.Equal(t, 0.0, balances[0].MustFloat("lockedRatio"))
	assert.Equal(t, 0.25, balances[1].MustFloat("lockedRatio"))
}

func TestGetTradingFees(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, "/v3/accounts/me/trading-fees", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"volume30Day":"12500.50",
			"feeByMarkets":[{"marketId":"BTC-AUD","makerFeeRate":"0.0085","takerFeeRate":"0.0085"}]
		}`))
	})

	fees, err := client.GetTradingFees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12500.50, fees.Volume30Day)
	require.Equal(t, 1, fees.FeeByMarket.Len())
	assert.Equal(t, 0.0085, fees.FeeByMarket[0].MustFloat("makerFeeRate"))
}

func TestWithdrawValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	})

	tests := []struct {
		name   string
		params *WithdrawParams
	}{
		{"nil params", nil},
		{"missing asset", &WithdrawParams{Amount: "10"}},
		{"bad amount", &WithdrawParams{AssetName: "BTC", Amount: "ten"}},
		{"crypto without address", &WithdrawParams{AssetName: "BTC", Amount: "10"}},
		{"aud with address", &WithdrawParams{AssetName: "AUD", Amount: "10", ToAddress: "bc1qxyz"}},
		{
			"partial bank details",
			&WithdrawParams{AssetName: "AUD", Amount: "10", AccountName: "Satoshi", BSBNumber: "123456"},
		},
		{
			"crypto with bank details",
			&WithdrawParams{
				AssetName: "BTC", Amount: "10", ToAddress: "bc1qxyz",
				AccountName: "S", AccountNumber: "1", BSBNumber: "2", BankName: "B",
			},
		},
		{
			"long payment description",
			&WithdrawParams{
				AssetName: "AUD", Amount: "10",
				AccountName: "S", AccountNumber: "1", BSBNumber: "2", BankName: "B",
				PaymentDescription: "this description is far too long",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Withdraw(context.Background(), tt.params)
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
		})
	}
}

func TestWithdrawCrypto(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/withdrawals", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id":"9", "assetName":"BTC","amount":"0.5","fee":"0.0001",
			"status":"Pending Authorization",
			"creationTime":"2024-03-01T12:00:00Z","lastUpdate":"2024-03-01T12:00:00Z"
		}`))
	})

	rec, err := client.Withdraw(context.Background(), &WithdrawParams{
		AssetName: "BTC",
		Amount:    "0.5",
		ToAddress: "bc1qxyz",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, rec.MustFloat("amount"))
	assert.Equal(t, 0.0001, rec.MustFloat("fee"))
}

func TestWithdrawAUDDefaultBankDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)

		var body map[string]any
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, sonic.Unmarshal(data, &body))

		// With no bank fields supplied, the account defaults apply and the
		// payload carries only the asset and amount.
		assert.Equal(t, "AUD", body["assetName"])
		assert.Equal(t, "250.00", body["amount"])
		assert.NotContains(t, body, "toAddress")
		assert.NotContains(t, body, "accountName")
		assert.NotContains(t, body, "bsbNumber")

		_, _ = w.Write([]byte(`{
			"id":"10","assetName":"AUD","amount":"250.00","fee":"0",
			"status":"Pending Authorization",
			"creationTime":"2024-03-01T12:00:00Z","lastUpdate":"2024-03-01T12:00:00Z"
		}`))
	})

	rec, err := client.Withdraw(context.Background(), &WithdrawParams{
		AssetName: "AUD",
		Amount:    "250.00",
	})
	require.NoError(t, err)
	assert.Equal(t, 250.00, rec.MustFloat("amount"))
}

func TestWithdrawAUDExplicitBankDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		verifyAuth(t, r)

		var body map[string]any
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, sonic.Unmarshal(data, &body))
		assert.Equal(t, "Satoshi", body["accountName"])
		assert.Equal(t, "123456", body["bsbNumber"])

		_, _ = w.Write([]byte(`{
			"id":"11","assetName":"AUD","amount":"250.00","fee":"0",
			"creationTime":"2024-03-01T12:00:00Z","lastUpdate":"2024-03-01T12:00:00Z"
		}`))
	})

	_, err := client.Withdraw(context.Background(), &WithdrawParams{
		AssetName:     "AUD",
		Amount:        "250.00",
		AccountName:   "Satoshi",
		AccountNumber: "98765432",
		BSBNumber:     "123456",
		BankName:      "Example Bank",
	})
	require.NoError(t, err)
}

func TestBatchOrders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		ts := r.Header.Get(HeaderTimestamp)
		assert.Equal(t, Sign(testPrivateKey, r.Method, r.URL.Path, ts, body), r.Header.Get(HeaderSignature))

		var instructions []map[string]any
		require.NoError(t, sonic.Unmarshal(body, &instructions))
		require.Len(t, instructions, 2)
		assert.Contains(t, instructions[0], "placeOrder")
		assert.Contains(t, instructions[1], "cancelOrder")

		_, _ = w.Write([]byte(`{
			"placeOrders":[{"orderId":"1","price":"100.0","amount":"0.1","creationTime":"2024-03-01T12:00:00Z"}],
			"cancelOrders":[{"orderId":"2"}],
			"unprocessedRequests":[{"code":"OrderNotFound","message":"order 3 not found","requestId":"3"}]
		}`))
	})

	result, err := client.BatchOrders(context.Background(), []BatchInstruction{
		{PlaceOrder: &OrderParams{MarketID: "BTC-AUD", Side: core.SideBid, Type: core.TypeLimit, Price: "100.0", Amount: "0.1"}},
		{CancelOrder: &CancelTarget{OrderID: "2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.PlaceOrders.Len())
	assert.Equal(t, 1, result.CancelOrders.Len())
	require.Len(t, result.Unprocessed, 1)
	assert.Equal(t, "OrderNotFound", result.Unprocessed[0].Code)
}

func TestBatchOrdersValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the server")
	})

	_, err := client.BatchOrders(context.Background(), nil)
	assert.True(t, core.IsValidationError(err))

	_, err = client.BatchOrders(context.Background(), []BatchInstruction{{}})
	assert.True(t, core.IsValidationError(err))

	_, err = client.BatchOrders(context.Background(), []BatchInstruction{
		{CancelOrder: &CancelTarget{OrderID: "1", ClientOrderID: "a"}},
	})
	assert.Error(t, err)
}

func TestClientClosed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	require.NoError(t, client.Close())

	_, err := client.Markets(context.Background())
	require.Error(t, err)
}
