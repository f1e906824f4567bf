package venue

import (
	"encoding/json"
	"fmt"

	"trading-console/internal/types"
)

// decodeEvent turns one raw websocket payload into a StreamEvent. Payloads
// that fail to decode are dropped; the stream itself stays up.
func decodeEvent(sub types.StreamSub, data []byte) (types.StreamEvent, bool) {
	ev := types.StreamEvent{Kind: sub.Kind, Symbol: sub.Symbol, Interval: sub.Interval}

	switch sub.Kind {
	case types.StreamOrderBook:
		var raw rawDepth
		if json.Unmarshal(data, &raw) != nil {
			return ev, false
		}
		book := raw.toBook(sub.Symbol)
		ev.Book = &book

	case types.StreamCandles:
		var raw struct {
			Kline struct {
				Start  int64  `json:"t"`
				End    int64  `json:"T"`
				Open   string `json:"o"`
				High   string `json:"h"`
				Low    string `json:"l"`
				Close  string `json:"c"`
				Volume string `json:"v"`
			} `json:"k"`
		}
		if json.Unmarshal(data, &raw) != nil || raw.Kline.Start == 0 {
			return ev, false
		}
		ev.Candle = &types.Candle{
			OpenTime:  raw.Kline.Start,
			CloseTime: raw.Kline.End,
			Open:      parseDecimal(raw.Kline.Open),
			High:      parseDecimal(raw.Kline.High),
			Low:       parseDecimal(raw.Kline.Low),
			Close:     parseDecimal(raw.Kline.Close),
			Volume:    parseDecimal(raw.Kline.Volume),
		}

	case types.StreamTrades:
		var raw rawAggTrade
		if json.Unmarshal(data, &raw) != nil {
			return ev, false
		}
		trade := raw.toTrade()
		ev.Trade = &trade

	case types.StreamUserData:
		user, ok := decodeUserEvent(data)
		if !ok {
			return ev, false
		}
		ev.User = user

	default:
		return ev, false
	}

	return ev, true
}

func decodeUserEvent(data []byte) (*types.UserEvent, bool) {
	var head struct {
		Type string `json:"e"`
		Time int64  `json:"E"`
	}
	if json.Unmarshal(data, &head) != nil || head.Type == "" {
		return nil, false
	}

	user := &types.UserEvent{Type: head.Type, Time: head.Time}

	switch head.Type {
	case "executionReport":
		var rep struct {
			Symbol  string `json:"s"`
			Side    string `json:"S"`
			Status  string `json:"X"`
			OrderID int64  `json:"i"`
			Price   string `json:"p"`
			Qty     string `json:"q"`
			Filled  string `json:"z"`
		}
		if json.Unmarshal(data, &rep) != nil {
			return nil, false
		}
		user.Summary = fmt.Sprintf("order %d %s %s %s qty=%s filled=%s price=%s",
			rep.OrderID, rep.Side, rep.Symbol, rep.Status, rep.Qty, rep.Filled, rep.Price)

	case "outboundAccountPosition":
		var pos struct {
			Balances []struct {
				Asset string `json:"a"`
				Free  string `json:"f"`
			} `json:"B"`
		}
		if json.Unmarshal(data, &pos) != nil {
			return nil, false
		}
		user.Summary = fmt.Sprintf("account position update, %d balance(s) changed", len(pos.Balances))

	case "balanceUpdate":
		var bal struct {
			Asset string `json:"a"`
			Delta string `json:"d"`
		}
		if json.Unmarshal(data, &bal) != nil {
			return nil, false
		}
		user.Summary = fmt.Sprintf("balance update %s delta=%s", bal.Asset, bal.Delta)

	default:
		user.Summary = head.Type
	}

	return user, true
}
