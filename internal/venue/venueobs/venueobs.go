package venueobs

import (
	"context"
	"time"

	"trading-console/internal/interfaces"
	"trading-console/internal/logger"
	"trading-console/internal/trace"
	"trading-console/internal/types"
)

// observableExchange wraps an Exchange with logging and tracing.
type observableExchange struct {
	ex interfaces.Exchange
}

var _ interfaces.Exchange = (*observableExchange)(nil)

// Wrap wraps an exchange client with observability middleware
func Wrap(ex interfaces.Exchange) interfaces.Exchange {
	return &observableExchange{ex: ex}
}

// read traces one market-data call.
func read(ctx context.Context, name string, kvs []any, call func(ctx context.Context) error) error {
	ctx, span := trace.StartSpan(ctx, name)
	defer span.End()

	logger.DebugSkip(ctx, 1, "Venue call", append([]any{"op", name}, kvs...)...)
	err := call(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Venue call failed", err, append([]any{"op", name}, kvs...)...)
	}
	return err
}

func (o *observableExchange) Ping(ctx context.Context) error {
	return read(ctx, "venue.Ping", nil, o.ex.Ping)
}

func (o *observableExchange) ServerTime(ctx context.Context) (t time.Time, err error) {
	err = read(ctx, "venue.ServerTime", nil, func(ctx context.Context) error {
		t, err = o.ex.ServerTime(ctx)
		return err
	})
	return t, err
}

func (o *observableExchange) Stats24h(ctx context.Context, symbol string) (s types.Stats24h, err error) {
	err = read(ctx, "venue.Stats24h", []any{"symbol", symbol}, func(ctx context.Context) error {
		s, err = o.ex.Stats24h(ctx, symbol)
		return err
	})
	return s, err
}

func (o *observableExchange) Depth(ctx context.Context, symbol string, limit int) (b types.OrderBook, err error) {
	err = read(ctx, "venue.Depth", []any{"symbol", symbol, "limit", limit}, func(ctx context.Context) error {
		b, err = o.ex.Depth(ctx, symbol, limit)
		return err
	})
	return b, err
}

func (o *observableExchange) Trades(ctx context.Context, symbol string, limit int) (t []types.Trade, err error) {
	err = read(ctx, "venue.Trades", []any{"symbol", symbol, "limit", limit}, func(ctx context.Context) error {
		t, err = o.ex.Trades(ctx, symbol, limit)
		return err
	})
	return t, err
}

func (o *observableExchange) TradesFrom(ctx context.Context, symbol string, fromID int64, limit int) (t []types.Trade, err error) {
	err = read(ctx, "venue.TradesFrom", []any{"symbol", symbol, "from_id", fromID}, func(ctx context.Context) error {
		t, err = o.ex.TradesFrom(ctx, symbol, fromID, limit)
		return err
	})
	return t, err
}

func (o *observableExchange) TradesBetween(ctx context.Context, symbol string, start, end int64) (t []types.Trade, err error) {
	err = read(ctx, "venue.TradesBetween", []any{"symbol", symbol, "start", start, "end", end}, func(ctx context.Context) error {
		t, err = o.ex.TradesBetween(ctx, symbol, start, end)
		return err
	})
	return t, err
}

func (o *observableExchange) Candles(ctx context.Context, symbol, interval string, limit int) (c []types.Candle, err error) {
	err = read(ctx, "venue.Candles", []any{"symbol", symbol, "interval", interval, "limit", limit}, func(ctx context.Context) error {
		c, err = o.ex.Candles(ctx, symbol, interval, limit)
		return err
	})
	return c, err
}

func (o *observableExchange) CandlesBetween(ctx context.Context, symbol, interval string, start, end int64) (c []types.Candle, err error) {
	err = read(ctx, "venue.CandlesBetween", []any{"symbol", symbol, "interval", interval}, func(ctx context.Context) error {
		c, err = o.ex.CandlesBetween(ctx, symbol, interval, start, end)
		return err
	})
	return c, err
}

func (o *observableExchange) Symbols(ctx context.Context) (s []types.SymbolInfo, err error) {
	err = read(ctx, "venue.Symbols", nil, func(ctx context.Context) error {
		s, err = o.ex.Symbols(ctx)
		return err
	})
	return s, err
}

func (o *observableExchange) Prices(ctx context.Context) (p []types.PriceTicker, err error) {
	err = read(ctx, "venue.Prices", nil, func(ctx context.Context) error {
		p, err = o.ex.Prices(ctx)
		return err
	})
	return p, err
}

func (o *observableExchange) BookTickers(ctx context.Context) (t []types.BookTicker, err error) {
	err = read(ctx, "venue.BookTickers", nil, func(ctx context.Context) error {
		t, err = o.ex.BookTickers(ctx)
		return err
	})
	return t, err
}

func (o *observableExchange) BookTicker(ctx context.Context, symbol string) (t types.BookTicker, err error) {
	err = read(ctx, "venue.BookTicker", []any{"symbol", symbol}, func(ctx context.Context) error {
		t, err = o.ex.BookTicker(ctx, symbol)
		return err
	})
	return t, err
}

// PlaceOrder places an order with observability
func (o *observableExchange) PlaceOrder(ctx context.Context, intent types.OrderIntent) (types.Order, error) {
	ctx, span := trace.StartSpan(ctx, "venue.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", intent.Symbol,
		"side", intent.Side,
		"qty", intent.Quantity,
		"price", intent.Price,
		"test", intent.IsTest,
	)

	order, err := o.ex.PlaceOrder(ctx, intent)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", intent.Symbol,
			"side", intent.Side,
			"qty", intent.Quantity,
		)
		return types.Order{}, err
	}

	logger.InfoSkip(ctx, 1, "Order placed",
		"symbol", order.Symbol,
		"order_id", order.OrderID,
		"status", order.Status,
	)
	return order, nil
}

func (o *observableExchange) QueryOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (ord types.Order, err error) {
	err = read(ctx, "venue.QueryOrder", []any{"symbol", symbol, "order_id", orderID}, func(ctx context.Context) error {
		ord, err = o.ex.QueryOrder(ctx, symbol, orderID, clientOrderID)
		return err
	})
	return ord, err
}

// CancelOrder cancels an order with observability
func (o *observableExchange) CancelOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (types.Order, error) {
	ctx, span := trace.StartSpan(ctx, "venue.CancelOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Cancelling order", "symbol", symbol, "order_id", orderID, "client_order_id", clientOrderID)

	order, err := o.ex.CancelOrder(ctx, symbol, orderID, clientOrderID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to cancel order", err, "symbol", symbol, "order_id", orderID)
		return types.Order{}, err
	}

	logger.InfoSkip(ctx, 1, "Order cancelled", "symbol", symbol, "order_id", order.OrderID, "status", order.Status)
	return order, nil
}

func (o *observableExchange) OpenOrders(ctx context.Context, symbol string) (orders []types.Order, err error) {
	err = read(ctx, "venue.OpenOrders", []any{"symbol", symbol}, func(ctx context.Context) error {
		orders, err = o.ex.OpenOrders(ctx, symbol)
		return err
	})
	return orders, err
}

func (o *observableExchange) Orders(ctx context.Context, symbol string, limit int) (orders []types.Order, err error) {
	err = read(ctx, "venue.Orders", []any{"symbol", symbol, "limit", limit}, func(ctx context.Context) error {
		orders, err = o.ex.Orders(ctx, symbol, limit)
		return err
	})
	return orders, err
}

func (o *observableExchange) Account(ctx context.Context) (a types.Account, err error) {
	err = read(ctx, "venue.Account", nil, func(ctx context.Context) error {
		a, err = o.ex.Account(ctx)
		return err
	})
	return a, err
}

func (o *observableExchange) MyTrades(ctx context.Context, symbol string, limit int) (t []types.AccountTrade, err error) {
	err = read(ctx, "venue.MyTrades", []any{"symbol", symbol, "limit", limit}, func(ctx context.Context) error {
		t, err = o.ex.MyTrades(ctx, symbol, limit)
		return err
	})
	return t, err
}

func (o *observableExchange) Deposits(ctx context.Context, asset string) (d []types.DepositEntry, err error) {
	err = read(ctx, "venue.Deposits", []any{"asset", asset}, func(ctx context.Context) error {
		d, err = o.ex.Deposits(ctx, asset)
		return err
	})
	return d, err
}

func (o *observableExchange) Withdrawals(ctx context.Context, asset string) (w []types.WithdrawalEntry, err error) {
	err = read(ctx, "venue.Withdrawals", []any{"asset", asset}, func(ctx context.Context) error {
		w, err = o.ex.Withdrawals(ctx, asset)
		return err
	})
	return w, err
}

// Withdraw requests a withdrawal with observability
func (o *observableExchange) Withdraw(ctx context.Context, asset, address string, amount float64) (string, error) {
	ctx, span := trace.StartSpan(ctx, "venue.Withdraw")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Requesting withdrawal", "asset", asset, "amount", amount)

	id, err := o.ex.Withdraw(ctx, asset, address, amount)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Withdrawal request failed", err, "asset", asset, "amount", amount)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Withdrawal submitted", "asset", asset, "amount", amount, "withdrawal_id", id)
	return id, nil
}
