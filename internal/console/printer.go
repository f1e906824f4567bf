package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"trading-console/internal/interfaces"
	"trading-console/internal/types"
)

// Printer renders typed results as text. A single mutex serializes the
// command loop and live stream workers writing to the same output.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

var _ interfaces.Sink = (*Printer)(nil)

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format+"\n", args...)
}

func ts(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
}

func (p *Printer) Book(book types.OrderBook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s order book (update %d)\n", book.Symbol, book.LastUpdateID)
	fmt.Fprintf(p.w, "%16s %16s | %-16s %-16s\n", "BID QTY", "BID", "ASK", "ASK QTY")
	n := len(book.Bids)
	if len(book.Asks) > n {
		n = len(book.Asks)
	}
	for i := 0; i < n; i++ {
		bidQty, bid, ask, askQty := "", "", "", ""
		if i < len(book.Bids) {
			bidQty = fmt.Sprintf("%.8g", book.Bids[i].Qty)
			bid = fmt.Sprintf("%.8g", book.Bids[i].Price)
		}
		if i < len(book.Asks) {
			ask = fmt.Sprintf("%.8g", book.Asks[i].Price)
			askQty = fmt.Sprintf("%.8g", book.Asks[i].Qty)
		}
		fmt.Fprintf(p.w, "%16s %16s | %-16s %-16s\n", bidQty, bid, ask, askQty)
	}
}

func (p *Printer) Trades(symbol string, trades []types.Trade) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s trades (%d)\n", symbol, len(trades))
	for _, t := range trades {
		side := "buy"
		if t.BuyerMaker {
			side = "sell"
		}
		fmt.Fprintf(p.w, "%12d %s %4s %14.8g @ %-14.8g\n", t.ID, ts(t.Time), side, t.Qty, t.Price)
	}
}

func (p *Printer) Candles(symbol, interval string, candles []types.Candle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s candles %s (%d)\n", symbol, interval, len(candles))
	for _, c := range candles {
		fmt.Fprintf(p.w, "%s O:%-12.8g H:%-12.8g L:%-12.8g C:%-12.8g V:%.8g\n",
			ts(c.OpenTime), c.Open, c.High, c.Low, c.Close, c.Volume)
	}
}

func (p *Printer) Stats(s types.Stats24h) {
	p.Line("%s 24h: last=%.8g change=%.8g (%.2f%%) high=%.8g low=%.8g vol=%.8g quoteVol=%.8g trades=%d",
		s.Symbol, s.LastPrice, s.PriceChange, s.PriceChangePct, s.High, s.Low, s.Volume, s.QuoteVolume, s.TradeCount)
}

func (p *Printer) Prices(prices []types.PriceTicker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pt := range prices {
		fmt.Fprintf(p.w, "%-14s %.8g\n", pt.Symbol, pt.Price)
	}
}

func (p *Printer) BookTickers(tickers []types.BookTicker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range tickers {
		fmt.Fprintf(p.w, "%-14s bid %14.8g (%.8g) ask %14.8g (%.8g)\n",
			t.Symbol, t.BidPrice, t.BidQty, t.AskPrice, t.AskQty)
	}
}

func (p *Printer) Symbols(infos []types.SymbolInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range infos {
		fmt.Fprintf(p.w, "%-14s %s/%s %s\n", s.Symbol, s.BaseAsset, s.QuoteAsset, s.Status)
	}
}

func (p *Printer) Order(o types.Order) {
	p.Line("order %d (%s) %s %s %s %s qty=%.8g filled=%.8g price=%.8g stop=%.8g %s",
		o.OrderID, o.ClientOrderID, o.Symbol, o.Side, o.Type, o.Status,
		o.OrigQty, o.ExecutedQty, o.Price, o.StopPrice, ts(o.Time))
}

func (p *Printer) Orders(orders []types.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, o := range orders {
		fmt.Fprintf(p.w, "%12d %-10s %-4s %-16s %-14s qty=%-12.8g price=%-12.8g %s\n",
			o.OrderID, o.Symbol, o.Side, o.Type, o.Status, o.OrigQty, o.Price, ts(o.Time))
	}
}

func (p *Printer) Account(a types.Account) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "account: trade=%t withdraw=%t deposit=%t\n", a.CanTrade, a.CanWithdraw, a.CanDeposit)
	for _, b := range a.Balances {
		if b.Free == 0 && b.Locked == 0 {
			continue
		}
		fmt.Fprintf(p.w, "%-8s free=%-18.8g locked=%.8g\n", b.Asset, b.Free, b.Locked)
	}
}

func (p *Printer) AccountTrades(trades []types.AccountTrade) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range trades {
		side := "SELL"
		if t.IsBuyer {
			side = "BUY"
		}
		fmt.Fprintf(p.w, "%12d %s %-10s %-4s %14.8g @ %-14.8g fee=%.8g %s\n",
			t.ID, ts(t.Time), t.Symbol, side, t.Qty, t.Price, t.Commission, t.CommissionAsset)
	}
}

func (p *Printer) Deposits(deposits []types.DepositEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range deposits {
		fmt.Fprintf(p.w, "%s %-8s %18.8g %-18s tx=%s %s\n",
			ts(d.InsertTime), d.Asset, d.Amount, d.Status, d.TxID, d.Address)
	}
}

func (p *Printer) Withdrawals(withdrawals []types.WithdrawalEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range withdrawals {
		fmt.Fprintf(p.w, "%s %-8s %18.8g %-18s tx=%s %s\n",
			ts(w.ApplyTime), w.Asset, w.Amount, w.Status, w.TxID, w.Address)
	}
}

// StreamEvent renders one live push event on its own line.
func (p *Printer) StreamEvent(ev types.StreamEvent) {
	switch {
	case ev.Book != nil:
		b := ev.Book
		if len(b.Bids) > 0 && len(b.Asks) > 0 {
			p.Line("[live] %s depth bid %.8g (%.8g) ask %.8g (%.8g) levels=%d",
				b.Symbol, b.Bids[0].Price, b.Bids[0].Qty, b.Asks[0].Price, b.Asks[0].Qty, len(b.Bids))
		}
	case ev.Candle != nil:
		c := ev.Candle
		p.Line("[live] %s kline %s %s O:%.8g H:%.8g L:%.8g C:%.8g V:%.8g",
			ev.Symbol, ev.Interval, ts(c.OpenTime), c.Open, c.High, c.Low, c.Close, c.Volume)
	case ev.Trade != nil:
		t := ev.Trade
		side := "buy"
		if t.BuyerMaker {
			side = "sell"
		}
		p.Line("[live] %s trade %d %s %.8g @ %.8g", ev.Symbol, t.ID, side, t.Qty, t.Price)
	case ev.User != nil:
		p.Line("[live] account: %s", ev.User.Summary)
	}
}

// Fault reports a background stream failure.
func (p *Printer) Fault(err error) {
	p.Line("[live] stream fault: %v (returning to idle)", err)
}
