package session

import (
	"context"

	"trading-console/internal/interfaces"
	"trading-console/internal/types"
)

// Resolver answers market-data reads from the freshest available source:
// the live cache when the active session matches the request, a one-shot
// remote fetch otherwise. An empty live cache (no event received yet)
// counts as a miss. No retries are added here; remote failures propagate.
type Resolver struct {
	live *Manager
	ex   interfaces.Exchange
}

func NewResolver(live *Manager, ex interfaces.Exchange) *Resolver {
	return &Resolver{live: live, ex: ex}
}

// Book returns the top-N order book for a symbol.
func (r *Resolver) Book(ctx context.Context, symbol string, limit int) (types.OrderBook, error) {
	if snap, ok := r.live.SnapshotFor(types.StreamOrderBook, symbol, ""); ok && snap.Book != nil {
		return trimBook(*snap.Book, limit), nil
	}
	return r.ex.Depth(ctx, symbol, limit)
}

// Trades returns the most recent trades for a symbol.
func (r *Resolver) Trades(ctx context.Context, symbol string, limit int) ([]types.Trade, error) {
	if snap, ok := r.live.SnapshotFor(types.StreamTrades, symbol, ""); ok && len(snap.Trades) > 0 {
		trades := snap.Trades
		if limit > 0 && len(trades) > limit {
			trades = trades[len(trades)-limit:]
		}
		return trades, nil
	}
	return r.ex.Trades(ctx, symbol, limit)
}

// Candles returns the most recent candles for a symbol and interval.
func (r *Resolver) Candles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	if snap, ok := r.live.SnapshotFor(types.StreamCandles, symbol, interval); ok && len(snap.Candles) > 0 {
		candles := snap.Candles
		if limit > 0 && len(candles) > limit {
			candles = candles[len(candles)-limit:]
		}
		return candles, nil
	}
	return r.ex.Candles(ctx, symbol, interval, limit)
}

// TopOfBook returns the best bid/ask for a symbol, derived from the cached
// book when a matching depth stream is live.
func (r *Resolver) TopOfBook(ctx context.Context, symbol string) (types.BookTicker, error) {
	if snap, ok := r.live.SnapshotFor(types.StreamOrderBook, symbol, ""); ok && snap.Book != nil {
		book := snap.Book
		if len(book.Bids) > 0 && len(book.Asks) > 0 {
			return types.BookTicker{
				Symbol:   book.Symbol,
				BidPrice: book.Bids[0].Price,
				BidQty:   book.Bids[0].Qty,
				AskPrice: book.Asks[0].Price,
				AskQty:   book.Asks[0].Qty,
			}, nil
		}
	}
	return r.ex.BookTicker(ctx, symbol)
}

// Ranged reads cannot be served from the rolling live cache and always go
// remote; they live here so every market read shares one path.

func (r *Resolver) TradesFrom(ctx context.Context, symbol string, fromID int64, limit int) ([]types.Trade, error) {
	return r.ex.TradesFrom(ctx, symbol, fromID, limit)
}

func (r *Resolver) TradesBetween(ctx context.Context, symbol string, start, end int64) ([]types.Trade, error) {
	return r.ex.TradesBetween(ctx, symbol, start, end)
}

func (r *Resolver) CandlesBetween(ctx context.Context, symbol, interval string, start, end int64) ([]types.Candle, error) {
	return r.ex.CandlesBetween(ctx, symbol, interval, start, end)
}

func trimBook(book types.OrderBook, limit int) types.OrderBook {
	if limit > 0 {
		if len(book.Bids) > limit {
			book.Bids = book.Bids[:limit]
		}
		if len(book.Asks) > limit {
			book.Asks = book.Asks[:limit]
		}
	}
	return book
}
