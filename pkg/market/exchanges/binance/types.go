package binance

import (
	"encoding/json"
	"fmt"
)

// klineRow mirrors one entry of the /fapi/v1/klines response, which is a
// positional JSON array: open time, open, high, low, close, volume,
// close time, and trailing fields this client ignores. Prices and
// volume arrive as numeric strings.
type klineRow struct {
	OpenTime int64
	Open     string
	High     string
	Low      string
	Close    string
	Volume   string
}

func (k *klineRow) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 6 {
		return fmt.Errorf("kline row has %d fields, want at least 6", len(raw))
	}
	if err := json.Unmarshal(raw[0], &k.OpenTime); err != nil {
		return fmt.Errorf("kline open time: %w", err)
	}
	fields := []*string{&k.Open, &k.High, &k.Low, &k.Close, &k.Volume}
	for i, dst := range fields {
		if err := json.Unmarshal(raw[i+1], dst); err != nil {
			return fmt.Errorf("kline field %d: %w", i+1, err)
		}
	}
	return nil
}

// aggTradeEntry mirrors one /fapi/v1/aggTrades record.
type aggTradeEntry struct {
	Price string `json:"p"`
	Qty   string `json:"q"`
	Time  int64  `json:"T"`
}

// openInterestEntry mirrors one /futures/data/openInterestHist record.
// Both levels are numeric strings denominated in contracts and quote
// currency respectively.
type openInterestEntry struct {
	SumOpenInterest      string `json:"sumOpenInterest"`
	SumOpenInterestValue string `json:"sumOpenInterestValue"`
	Timestamp            int64  `json:"timestamp"`
}

// longShortEntry mirrors the three long/short ratio endpoints
// (topLongShortAccountRatio, topLongShortPositionRatio,
// globalLongShortAccountRatio), which share one shape. LongAccount and
// ShortAccount are fractions of 1 by endpoint contract ("0.6442" means
// 64.42%) and are scaled to percent by the decoder. The payload's own
// longShortRatio field is ignored; the ratio is recomputed.
type longShortEntry struct {
	LongAccount  string `json:"longAccount"`
	ShortAccount string `json:"shortAccount"`
	Timestamp    int64  `json:"timestamp"`
}

// takerVolumeEntry mirrors one /futures/data/takerlongshortRatio
// record. Volumes are numeric strings; buySellRatio is ignored and the
// ratio recomputed.
type takerVolumeEntry struct {
	BuyVol    string `json:"buyVol"`
	SellVol   string `json:"sellVol"`
	Timestamp int64  `json:"timestamp"`
}

// basisEntry mirrors one /futures/data/basis record. FuturesPrice is the
// contract mark; the payload's own basis field is ignored and the basis
// recomputed as futures minus index.
type basisEntry struct {
	FuturesPrice string `json:"futuresPrice"`
	IndexPrice   string `json:"indexPrice"`
	Timestamp    int64  `json:"timestamp"`
}

// aggTradeEvent mirrors one aggTrade stream frame.
type aggTradeEvent struct {
	EventType string `json:"e"`
	Price     string `json:"p"`
	Qty       string `json:"q"`
	TradeTime int64  `json:"T"`
}
