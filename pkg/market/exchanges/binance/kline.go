package binance

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"marketboard-api/pkg/series"
)

// GetKlines fetches native OHLCV bars for the given interval, oldest
// first, bounded to limit.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]series.Bar, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("binance: kline limit must be positive")
	}
	if _, err := series.ParseInterval(interval); err != nil {
		return nil, fmt.Errorf("binance: unsupported kline interval %q", interval)
	}

	query := url.Values{}
	query.Set("symbol", canonicalSymbol(symbol))
	query.Set("interval", interval)
	query.Set("limit", strconv.Itoa(limit))

	var rows []klineRow
	if err := c.doRequest(ctx, "/fapi/v1/klines", query, &rows); err != nil {
		return nil, err
	}

	bars := make([]series.Bar, 0, len(rows))
	for _, row := range rows {
		bar, err := decodeKline(row)
		if err != nil {
			// Malformed record: drop it, keep the batch.
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("binance: empty kline response for %s %s", canonicalSymbol(symbol), interval)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time < bars[j].Time })
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

// GetAggTrades fetches recent aggregated trades, oldest first. Records
// with unparseable numeric fields are dropped.
func (c *Client) GetAggTrades(ctx context.Context, symbol string, limit int) ([]series.Tick, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("binance: trade limit must be positive")
	}

	query := url.Values{}
	query.Set("symbol", canonicalSymbol(symbol))
	query.Set("limit", strconv.Itoa(limit))

	var entries []aggTradeEntry
	if err := c.doRequest(ctx, "/fapi/v1/aggTrades", query, &entries); err != nil {
		return nil, err
	}

	ticks := make([]series.Tick, 0, len(entries))
	for _, entry := range entries {
		price, err := parseFloat(entry.Price)
		if err != nil {
			continue
		}
		qty, err := parseFloat(entry.Qty)
		if err != nil {
			continue
		}
		ticks = append(ticks, series.Tick{Price: price, Qty: qty, Time: entry.Time})
	}

	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Time < ticks[j].Time })
	return ticks, nil
}

func decodeKline(row klineRow) (series.Bar, error) {
	var bar series.Bar
	bar.Time = row.OpenTime

	values := []struct {
		raw string
		dst *float64
	}{
		{row.Open, &bar.Open},
		{row.High, &bar.High},
		{row.Low, &bar.Low},
		{row.Close, &bar.Close},
		{row.Volume, &bar.Volume},
	}
	for _, v := range values {
		f, err := parseFloat(v.raw)
		if err != nil {
			return series.Bar{}, err
		}
		*v.dst = f
	}
	return bar, nil
}
