package interfaces

import (
	"context"
	"time"

	"trading-console/internal/types"
)

// Exchange is the one-shot REST surface of the trading venue. Market-data
// calls are unauthenticated; everything from PlaceOrder down requires API
// credentials on the underlying client.
type Exchange interface {
	Ping(ctx context.Context) error
	ServerTime(ctx context.Context) (time.Time, error)
	Stats24h(ctx context.Context, symbol string) (types.Stats24h, error)
	Depth(ctx context.Context, symbol string, limit int) (types.OrderBook, error)
	Trades(ctx context.Context, symbol string, limit int) ([]types.Trade, error)
	TradesFrom(ctx context.Context, symbol string, fromID int64, limit int) ([]types.Trade, error)
	TradesBetween(ctx context.Context, symbol string, start, end int64) ([]types.Trade, error)
	Candles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error)
	CandlesBetween(ctx context.Context, symbol, interval string, start, end int64) ([]types.Candle, error)
	Symbols(ctx context.Context) ([]types.SymbolInfo, error)
	Prices(ctx context.Context) ([]types.PriceTicker, error)
	BookTickers(ctx context.Context) ([]types.BookTicker, error)
	BookTicker(ctx context.Context, symbol string) (types.BookTicker, error)

	PlaceOrder(ctx context.Context, intent types.OrderIntent) (types.Order, error)
	QueryOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (types.Order, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (types.Order, error)
	OpenOrders(ctx context.Context, symbol string) ([]types.Order, error)
	Orders(ctx context.Context, symbol string, limit int) ([]types.Order, error)
	Account(ctx context.Context) (types.Account, error)
	MyTrades(ctx context.Context, symbol string, limit int) ([]types.AccountTrade, error)
	Deposits(ctx context.Context, asset string) ([]types.DepositEntry, error)
	Withdrawals(ctx context.Context, asset string) ([]types.WithdrawalEntry, error)
	Withdraw(ctx context.Context, asset, address string, amount float64) (string, error)
}
