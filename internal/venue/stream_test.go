package venue

import (
	"testing"

	"trading-console/internal/types"
)

func TestStreamName(t *testing.T) {
	cases := []struct {
		sub  types.StreamSub
		want string
	}{
		{types.StreamSub{Kind: types.StreamOrderBook, Symbol: "BTCUSDT"}, "btcusdt@depth20@100ms"},
		{types.StreamSub{Kind: types.StreamCandles, Symbol: "ETHUSDT", Interval: "1m"}, "ethusdt@kline_1m"},
		{types.StreamSub{Kind: types.StreamTrades, Symbol: "BNBUSDT"}, "bnbusdt@aggTrade"},
		{types.StreamSub{Kind: types.StreamUserData}, ""},
	}
	for _, tc := range cases {
		if got := streamName(tc.sub); got != tc.want {
			t.Errorf("Expected %q for %v, got %q", tc.want, tc.sub.Kind, got)
		}
	}
}

func TestDecodeDepthEvent(t *testing.T) {
	sub := types.StreamSub{Kind: types.StreamOrderBook, Symbol: "BTCUSDT"}
	ev, ok := decodeEvent(sub, []byte(`{"lastUpdateId":7,"bids":[["64000.5","1.0"]],"asks":[["64001.5","2.0"]]}`))
	if !ok {
		t.Fatal("Expected a decoded event")
	}
	if ev.Book == nil || ev.Book.LastUpdateID != 7 {
		t.Fatalf("Unexpected book %+v", ev.Book)
	}
	if ev.Book.Bids[0].Price != 64000.5 || ev.Book.Asks[0].Qty != 2.0 {
		t.Errorf("Unexpected levels %+v", ev.Book)
	}
	if ev.Book.Symbol != "BTCUSDT" {
		t.Errorf("Expected symbol stamped from the subscription, got %q", ev.Book.Symbol)
	}
}

func TestDecodeKlineEvent(t *testing.T) {
	sub := types.StreamSub{Kind: types.StreamCandles, Symbol: "BTCUSDT", Interval: "1m"}
	payload := `{"e":"kline","k":{"t":1738000000000,"T":1738000059999,"o":"100.1","h":"101.2","l":"99.9","c":"100.8","v":"12.5"}}`
	ev, ok := decodeEvent(sub, []byte(payload))
	if !ok {
		t.Fatal("Expected a decoded event")
	}
	c := ev.Candle
	if c == nil || c.OpenTime != 1738000000000 || c.Close != 100.8 || c.Volume != 12.5 {
		t.Errorf("Unexpected candle %+v", c)
	}

	// A payload without kline data is dropped, not a zero candle.
	if _, ok := decodeEvent(sub, []byte(`{"e":"kline"}`)); ok {
		t.Error("Expected an empty kline payload to be dropped")
	}
}

func TestDecodeTradeEvent(t *testing.T) {
	sub := types.StreamSub{Kind: types.StreamTrades, Symbol: "BTCUSDT"}
	ev, ok := decodeEvent(sub, []byte(`{"a":26129,"p":"0.01633102","q":"4.70443515","T":1498793709153,"m":true}`))
	if !ok {
		t.Fatal("Expected a decoded event")
	}
	tr := ev.Trade
	if tr == nil || tr.ID != 26129 || tr.Price != 0.01633102 || !tr.BuyerMaker {
		t.Errorf("Unexpected trade %+v", tr)
	}
}

func TestDecodeUserEvents(t *testing.T) {
	sub := types.StreamSub{Kind: types.StreamUserData}

	ev, ok := decodeEvent(sub, []byte(`{"e":"executionReport","E":1,"s":"BTCUSDT","S":"BUY","X":"FILLED","i":42,"p":"64000","q":"0.5","z":"0.5"}`))
	if !ok || ev.User == nil {
		t.Fatal("Expected a decoded execution report")
	}
	if ev.User.Type != "executionReport" {
		t.Errorf("Unexpected type %q", ev.User.Type)
	}

	ev, ok = decodeEvent(sub, []byte(`{"e":"balanceUpdate","E":2,"a":"BTC","d":"0.1"}`))
	if !ok || ev.User == nil || ev.User.Summary == "" {
		t.Fatalf("Expected a balance update summary, got %+v", ev.User)
	}

	if _, ok := decodeEvent(sub, []byte(`not json`)); ok {
		t.Error("Expected malformed payloads to be dropped")
	}
}

func TestDecodeMalformedPayloadDropped(t *testing.T) {
	sub := types.StreamSub{Kind: types.StreamOrderBook, Symbol: "BTCUSDT"}
	if _, ok := decodeEvent(sub, []byte(`[1,2,3]`)); ok {
		t.Error("Expected a malformed depth payload to be dropped")
	}
}
