package venue

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"trading-console/internal/types"
)

// Wire-format payloads. Prices and quantities arrive as decimal strings;
// klines arrive as heterogeneous arrays.

type rawDepth struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

func (r rawDepth) toBook(symbol string) types.OrderBook {
	book := types.OrderBook{
		Symbol:       symbol,
		LastUpdateID: r.LastUpdateID,
		Bids:         make([]types.BookLevel, 0, len(r.Bids)),
		Asks:         make([]types.BookLevel, 0, len(r.Asks)),
	}
	for _, lvl := range r.Bids {
		if len(lvl) >= 2 {
			book.Bids = append(book.Bids, types.BookLevel{Price: parseDecimal(lvl[0]), Qty: parseDecimal(lvl[1])})
		}
	}
	for _, lvl := range r.Asks {
		if len(lvl) >= 2 {
			book.Asks = append(book.Asks, types.BookLevel{Price: parseDecimal(lvl[0]), Qty: parseDecimal(lvl[1])})
		}
	}
	return book
}

type rawAggTrade struct {
	ID         int64  `json:"a"`
	Price      string `json:"p"`
	Qty        string `json:"q"`
	Time       int64  `json:"T"`
	BuyerMaker bool   `json:"m"`
}

func (r rawAggTrade) toTrade() types.Trade {
	return types.Trade{
		ID:         r.ID,
		Price:      parseDecimal(r.Price),
		Qty:        parseDecimal(r.Qty),
		Time:       r.Time,
		BuyerMaker: r.BuyerMaker,
	}
}

// parseKline decodes one kline array entry:
// [openTime, open, high, low, close, volume, closeTime, ...]
func parseKline(entry []json.RawMessage) (types.Candle, bool) {
	if len(entry) < 7 {
		return types.Candle{}, false
	}
	var c types.Candle
	var o, h, l, cl, v string
	if json.Unmarshal(entry[0], &c.OpenTime) != nil ||
		json.Unmarshal(entry[1], &o) != nil ||
		json.Unmarshal(entry[2], &h) != nil ||
		json.Unmarshal(entry[3], &l) != nil ||
		json.Unmarshal(entry[4], &cl) != nil ||
		json.Unmarshal(entry[5], &v) != nil ||
		json.Unmarshal(entry[6], &c.CloseTime) != nil {
		return types.Candle{}, false
	}
	c.Open = parseDecimal(o)
	c.High = parseDecimal(h)
	c.Low = parseDecimal(l)
	c.Close = parseDecimal(cl)
	c.Volume = parseDecimal(v)
	return c, true
}

func (c *Client) Ping(ctx context.Context) error {
	return c.publicGet(ctx, "/api/v3/ping", nil, nil)
}

func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	var resp struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := c.publicGet(ctx, "/api/v3/time", nil, &resp); err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(resp.ServerTime), nil
}

func (c *Client) Stats24h(ctx context.Context, symbol string) (types.Stats24h, error) {
	var raw struct {
		Symbol             string `json:"symbol"`
		PriceChange        string `json:"priceChange"`
		PriceChangePercent string `json:"priceChangePercent"`
		LastPrice          string `json:"lastPrice"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
		Volume             string `json:"volume"`
		QuoteVolume        string `json:"quoteVolume"`
		OpenTime           int64  `json:"openTime"`
		CloseTime          int64  `json:"closeTime"`
		Count              int64  `json:"count"`
	}
	params := url.Values{"symbol": {symbol}}
	if err := c.publicGet(ctx, "/api/v3/ticker/24hr", params, &raw); err != nil {
		return types.Stats24h{}, err
	}
	return types.Stats24h{
		Symbol:         raw.Symbol,
		PriceChange:    parseDecimal(raw.PriceChange),
		PriceChangePct: parseDecimal(raw.PriceChangePercent),
		LastPrice:      parseDecimal(raw.LastPrice),
		High:           parseDecimal(raw.HighPrice),
		Low:            parseDecimal(raw.LowPrice),
		Volume:         parseDecimal(raw.Volume),
		QuoteVolume:    parseDecimal(raw.QuoteVolume),
		OpenTime:       raw.OpenTime,
		CloseTime:      raw.CloseTime,
		TradeCount:     raw.Count,
	}, nil
}

func (c *Client) Depth(ctx context.Context, symbol string, limit int) (types.OrderBook, error) {
	var raw rawDepth
	params := url.Values{
		"symbol": {symbol},
		"limit":  {strconv.Itoa(limit)},
	}
	if err := c.publicGet(ctx, "/api/v3/depth", params, &raw); err != nil {
		return types.OrderBook{}, err
	}
	return raw.toBook(symbol), nil
}

func (c *Client) Trades(ctx context.Context, symbol string, limit int) ([]types.Trade, error) {
	params := url.Values{
		"symbol": {symbol},
		"limit":  {strconv.Itoa(limit)},
	}
	return c.aggTrades(ctx, params)
}

func (c *Client) TradesFrom(ctx context.Context, symbol string, fromID int64, limit int) ([]types.Trade, error) {
	params := url.Values{
		"symbol": {symbol},
		"fromId": {strconv.FormatInt(fromID, 10)},
		"limit":  {strconv.Itoa(limit)},
	}
	return c.aggTrades(ctx, params)
}

func (c *Client) TradesBetween(ctx context.Context, symbol string, start, end int64) ([]types.Trade, error) {
	params := url.Values{
		"symbol":    {symbol},
		"startTime": {strconv.FormatInt(start, 10)},
		"endTime":   {strconv.FormatInt(end, 10)},
	}
	return c.aggTrades(ctx, params)
}

func (c *Client) aggTrades(ctx context.Context, params url.Values) ([]types.Trade, error) {
	var raw []rawAggTrade
	if err := c.publicGet(ctx, "/api/v3/aggTrades", params, &raw); err != nil {
		return nil, err
	}
	trades := make([]types.Trade, 0, len(raw))
	for _, r := range raw {
		trades = append(trades, r.toTrade())
	}
	return trades, nil
}

func (c *Client) Candles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	params := url.Values{
		"symbol":   {symbol},
		"interval": {interval},
		"limit":    {strconv.Itoa(limit)},
	}
	return c.klines(ctx, params)
}

func (c *Client) CandlesBetween(ctx context.Context, symbol, interval string, start, end int64) ([]types.Candle, error) {
	params := url.Values{
		"symbol":    {symbol},
		"interval":  {interval},
		"startTime": {strconv.FormatInt(start, 10)},
		"endTime":   {strconv.FormatInt(end, 10)},
	}
	return c.klines(ctx, params)
}

func (c *Client) klines(ctx context.Context, params url.Values) ([]types.Candle, error) {
	var raw [][]json.RawMessage
	if err := c.publicGet(ctx, "/api/v3/klines", params, &raw); err != nil {
		return nil, err
	}
	candles := make([]types.Candle, 0, len(raw))
	for _, entry := range raw {
		if candle, ok := parseKline(entry); ok {
			candles = append(candles, candle)
		}
	}
	return candles, nil
}

func (c *Client) Symbols(ctx context.Context) ([]types.SymbolInfo, error) {
	var raw struct {
		Symbols []struct {
			Symbol     string `json:"symbol"`
			Status     string `json:"status"`
			BaseAsset  string `json:"baseAsset"`
			QuoteAsset string `json:"quoteAsset"`
		} `json:"symbols"`
	}
	if err := c.publicGet(ctx, "/api/v3/exchangeInfo", nil, &raw); err != nil {
		return nil, err
	}
	infos := make([]types.SymbolInfo, 0, len(raw.Symbols))
	for _, s := range raw.Symbols {
		infos = append(infos, types.SymbolInfo{
			Symbol:     s.Symbol,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
			Status:     s.Status,
		})
	}
	return infos, nil
}

func (c *Client) Prices(ctx context.Context) ([]types.PriceTicker, error) {
	var raw []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := c.publicGet(ctx, "/api/v3/ticker/price", nil, &raw); err != nil {
		return nil, err
	}
	prices := make([]types.PriceTicker, 0, len(raw))
	for _, p := range raw {
		prices = append(prices, types.PriceTicker{Symbol: p.Symbol, Price: parseDecimal(p.Price)})
	}
	return prices, nil
}

type rawBookTicker struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	BidQty   string `json:"bidQty"`
	AskPrice string `json:"askPrice"`
	AskQty   string `json:"askQty"`
}

func (r rawBookTicker) toTicker() types.BookTicker {
	return types.BookTicker{
		Symbol:   r.Symbol,
		BidPrice: parseDecimal(r.BidPrice),
		BidQty:   parseDecimal(r.BidQty),
		AskPrice: parseDecimal(r.AskPrice),
		AskQty:   parseDecimal(r.AskQty),
	}
}

func (c *Client) BookTickers(ctx context.Context) ([]types.BookTicker, error) {
	var raw []rawBookTicker
	if err := c.publicGet(ctx, "/api/v3/ticker/bookTicker", nil, &raw); err != nil {
		return nil, err
	}
	tickers := make([]types.BookTicker, 0, len(raw))
	for _, t := range raw {
		tickers = append(tickers, t.toTicker())
	}
	return tickers, nil
}

func (c *Client) BookTicker(ctx context.Context, symbol string) (types.BookTicker, error) {
	var raw rawBookTicker
	params := url.Values{"symbol": {symbol}}
	if err := c.publicGet(ctx, "/api/v3/ticker/bookTicker", params, &raw); err != nil {
		return types.BookTicker{}, err
	}
	return raw.toTicker(), nil
}
