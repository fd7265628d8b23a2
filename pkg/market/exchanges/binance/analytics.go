package binance

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"marketboard-api/pkg/series"
)

func analyticsQuery(symbol, period string, limit int) url.Values {
	query := url.Values{}
	query.Set("symbol", canonicalSymbol(symbol))
	query.Set("period", period)
	query.Set("limit", strconv.Itoa(limit))
	return query
}

// GetOpenInterestHist fetches the open interest level series at the
// given sampling period, oldest first.
func (c *Client) GetOpenInterestHist(ctx context.Context, symbol, period string, limit int) ([]series.LevelPoint, error) {
	var entries []openInterestEntry
	if err := c.doRequest(ctx, "/futures/data/openInterestHist", analyticsQuery(symbol, period, limit), &entries); err != nil {
		return nil, err
	}

	points := make([]series.LevelPoint, 0, len(entries))
	for _, entry := range entries {
		value, err := parseFloat(entry.SumOpenInterest)
		if err != nil {
			continue
		}
		notional, err := parseFloat(entry.SumOpenInterestValue)
		if err != nil {
			continue
		}
		points = append(points, series.LevelPoint{Time: entry.Timestamp, Value: value, Notional: notional})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points, nil
}

// GetTopAccountRatio fetches the top-trader long/short account ratio.
func (c *Client) GetTopAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	return c.longShortSeries(ctx, "/futures/data/topLongShortAccountRatio", symbol, period, limit)
}

// GetTopPositionRatio fetches the top-trader long/short position ratio.
func (c *Client) GetTopPositionRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	return c.longShortSeries(ctx, "/futures/data/topLongShortPositionRatio", symbol, period, limit)
}

// GetGlobalAccountRatio fetches the all-accounts long/short ratio.
func (c *Client) GetGlobalAccountRatio(ctx context.Context, symbol, period string, limit int) ([]series.RatioPoint, error) {
	return c.longShortSeries(ctx, "/futures/data/globalLongShortAccountRatio", symbol, period, limit)
}

// longShortSeries decodes the shared long/short payload shape. The
// endpoints report fractions of 1; the board works in percent, so both
// sides are scaled by 100 and the ratio recomputed from the scaled
// primitives.
func (c *Client) longShortSeries(ctx context.Context, path, symbol, period string, limit int) ([]series.RatioPoint, error) {
	var entries []longShortEntry
	if err := c.doRequest(ctx, path, analyticsQuery(symbol, period, limit), &entries); err != nil {
		return nil, err
	}

	points := make([]series.RatioPoint, 0, len(entries))
	for _, entry := range entries {
		longFrac, err := parseFloat(entry.LongAccount)
		if err != nil {
			continue
		}
		shortFrac, err := parseFloat(entry.ShortAccount)
		if err != nil {
			continue
		}
		long := longFrac * 100
		short := shortFrac * 100
		ratio := 0.0
		if short != 0 {
			ratio = long / short
		}
		points = append(points, series.RatioPoint{Time: entry.Timestamp, Long: long, Short: short, Ratio: ratio})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points, nil
}

// GetTakerVolume fetches the taker buy/sell volume series, recomputing
// the buy/sell ratio from the decoded volumes.
func (c *Client) GetTakerVolume(ctx context.Context, symbol, period string, limit int) ([]series.VolumePoint, error) {
	var entries []takerVolumeEntry
	if err := c.doRequest(ctx, "/futures/data/takerlongshortRatio", analyticsQuery(symbol, period, limit), &entries); err != nil {
		return nil, err
	}

	points := make([]series.VolumePoint, 0, len(entries))
	for _, entry := range entries {
		buy, err := parseFloat(entry.BuyVol)
		if err != nil {
			continue
		}
		sell, err := parseFloat(entry.SellVol)
		if err != nil {
			continue
		}
		ratio := 0.0
		if sell != 0 {
			ratio = buy / sell
		}
		points = append(points, series.VolumePoint{Time: entry.Timestamp, Buy: buy, Sell: sell, Ratio: ratio})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points, nil
}

// GetBasis fetches the mark/index basis series. The pair query parameter
// doubles as the symbol for perpetual contracts.
func (c *Client) GetBasis(ctx context.Context, symbol, period string, limit int) ([]series.BasisPoint, error) {
	query := url.Values{}
	query.Set("pair", canonicalSymbol(symbol))
	query.Set("contractType", "PERPETUAL")
	query.Set("period", period)
	query.Set("limit", strconv.Itoa(limit))

	var entries []basisEntry
	if err := c.doRequest(ctx, "/futures/data/basis", query, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("binance: empty basis response for %s", canonicalSymbol(symbol))
	}

	points := make([]series.BasisPoint, 0, len(entries))
	for _, entry := range entries {
		mark, err := parseFloat(entry.FuturesPrice)
		if err != nil {
			continue
		}
		index, err := parseFloat(entry.IndexPrice)
		if err != nil {
			continue
		}
		points = append(points, series.BasisPoint{Time: entry.Timestamp, Mark: mark, Index: index, Basis: mark - index})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	return points, nil
}
