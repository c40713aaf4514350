package btcmarkets

import (
	"fmt"
	"strconv"
	"time"

	"bmkt/pkg/core"
	"bmkt/pkg/table"
)

// FieldSpec declares which fields of an endpoint's records are numeric and
// which are temporal. Undeclared fields pass through untouched.
type FieldSpec struct {
	Numeric  []string
	Temporal []string
}

// statusCodeField marks an error envelope. Envelopes are never coerced.
const statusCodeField = "statusCode"

// Normalizer converts decoded API payloads into typed records and tables.
type Normalizer struct{}

// NewNormalizer creates a normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Record coerces one decoded object according to the field spec. Declared
// fields that are absent are skipped; declared fields that are present but
// unparsable produce a data-integrity error. An error envelope is returned
// untouched.
func (n *Normalizer) Record(raw map[string]any, spec FieldSpec) (table.Record, error) {
	if _, ok := raw[statusCodeField]; ok {
		return table.Record(raw), nil
	}

	rec := make(table.Record, len(raw))
	for k, v := range raw {
		rec[k] = v
	}

	for _, field := range spec.Numeric {
		v, ok := rec[field]
		if !ok {
			continue
		}
		f, err := coerceFloat(v)
		if err != nil {
			return nil, core.NewDataIntegrityError(field, err)
		}
		rec[field] = f
	}

	for _, field := range spec.Temporal {
		v, ok := rec[field]
		if !ok {
			continue
		}
		t, err := coerceTime(v)
		if err != nil {
			return nil, core.NewDataIntegrityError(field, err)
		}
		rec[field] = t
	}

	return rec, nil
}

// Table coerces a list of decoded objects. An empty list yields an empty
// table.
func (n *Normalizer) Table(raw []map[string]any, spec FieldSpec) (table.Table, error) {
	out := make(table.Table, 0, len(raw))
	for i, obj := range raw {
		rec, err := n.Record(obj, spec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// rawOrderBook mirrors the wire shape of an order book response. Price
// levels arrive as string pairs.
type rawOrderBook struct {
	MarketID   string     `json:"marketId"`
	SnapshotID int64      `json:"snapshotId"`
	Bids       [][]string `json:"bids"`
	Asks       [][]string `json:"asks"`
}

// OrderBook converts string price levels to numeric pairs, keeping market
// and snapshot identifiers as received.
func (n *Normalizer) OrderBook(raw *rawOrderBook) (*core.OrderBookSnapshot, error) {
	bids, err := coerceLevels(raw.Bids)
	if err != nil {
		return nil, core.NewDataIntegrityError("bids", err)
	}
	asks, err := coerceLevels(raw.Asks)
	if err != nil {
		return nil, core.NewDataIntegrityError("asks", err)
	}
	return &core.OrderBookSnapshot{
		MarketID:   raw.MarketID,
		SnapshotID: raw.SnapshotID,
		Bids:       bids,
		Asks:       asks,
	}, nil
}

func coerceLevels(levels [][]string) ([]core.PriceLevel, error) {
	out := make([]core.PriceLevel, 0, len(levels))
	for i, level := range levels {
		if len(level) != 2 {
			return nil, fmt.Errorf("level %d has %d entries, want 2", i, len(level))
		}
		price, err := strconv.ParseFloat(level[0], 64)
		if err != nil {
			return nil, fmt.Errorf("level %d price %q: %w", i, level[0], err)
		}
		volume, err := strconv.ParseFloat(level[1], 64)
		if err != nil {
			return nil, fmt.Errorf("level %d volume %q: %w", i, level[1], err)
		}
		out = append(out, core.PriceLevel{price, volume})
	}
	return out, nil
}

// candleColumns names the positions of a candle array on the wire.
var candleColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// Candles converts positional candle arrays into a table with named
// timestamp and OHLCV columns.
func (n *Normalizer) Candles(raw [][]string) (table.Table, error) {
	out := make(table.Table, 0, len(raw))
	for i, row := range raw {
		if len(row) != len(candleColumns) {
			return nil, core.NewDataIntegrityError("candle",
				fmt.Errorf("row %d has %d columns, want %d", i, len(row), len(candleColumns)))
		}
		rec := make(table.Record, len(candleColumns))
		ts, err := coerceTime(row[0])
		if err != nil {
			return nil, core.NewDataIntegrityError(candleColumns[0], fmt.Errorf("row %d: %w", i, err))
		}
		rec[candleColumns[0]] = ts
		for col := 1; col < len(candleColumns); col++ {
			f, err := coerceFloat(row[col])
			if err != nil {
				return nil, core.NewDataIntegrityError(candleColumns[col], fmt.Errorf("row %d: %w", i, err))
			}
			rec[candleColumns[col]] = f
		}
		out = append(out, rec)
	}
	return out, nil
}

func coerceFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q as number: %w", val, err)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("null value")
	default:
		return 0, fmt.Errorf("unexpected value type: %T", v)
	}
}

func coerceTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse %q as timestamp: %w", val, err)
		}
		return t, nil
	case nil:
		return time.Time{}, fmt.Errorf("null value")
	default:
		return time.Time{}, fmt.Errorf("unexpected value type: %T", v)
	}
}
