package console

import (
	"context"
	"strconv"
	"strings"

	"trading-console/internal/interfaces"
	"trading-console/internal/logger"
	"trading-console/internal/session"
	"trading-console/internal/tradelog"
	"trading-console/internal/types"
)

const (
	defaultInterval     = "1h"
	liveDefaultInterval = "1m"
)

// Params configures the interpreter.
type Params struct {
	Exchange       interfaces.Exchange
	Reads          *session.Resolver
	Live           *session.Manager
	Out            *Printer
	DefaultSymbol  string
	DefaultLimit   int
	HasCredentials bool
	TestOrders     bool
}

// Interpreter parses one input line into a command, validates arguments and
// dispatches: market reads to the resolver, live start/stop to the session
// manager, trading/account commands to the exchange client.
type Interpreter struct {
	ex            interfaces.Exchange
	reads         *session.Resolver
	live          *session.Manager
	out           *Printer
	defaultSymbol string
	defaultLimit  int
	hasKeys       bool
	testOrders    bool
	audit         func(tradelog.Entry)
}

func NewInterpreter(p Params) *Interpreter {
	if p.DefaultSymbol == "" {
		p.DefaultSymbol = "BTCUSDT"
	}
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = 10
	}
	return &Interpreter{
		ex:            p.Exchange,
		reads:         p.Reads,
		live:          p.Live,
		out:           p.Out,
		defaultSymbol: strings.ToUpper(p.DefaultSymbol),
		defaultLimit:  p.DefaultLimit,
		hasKeys:       p.HasCredentials,
		testOrders:    p.TestOrders,
		audit: func(e tradelog.Entry) {
			if err := tradelog.Append(e); err != nil {
				logger.Warn(context.Background(), "Failed to write audit entry", "error", err)
			}
		},
	}
}

// Execute runs one input line. It reports whether the console should quit;
// any returned error is isolated to this command and the loop continues.
func (in *Interpreter) Execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		in.out.Line("%s", helpText)
		return false, nil
	}
	return false, in.dispatch(ctx, verb, args)
}

func (in *Interpreter) dispatch(ctx context.Context, verb string, args []string) error {
	switch verb {
	case "ping":
		if err := in.ex.Ping(ctx); err != nil {
			return err
		}
		in.out.Line("pong")

	case "time":
		t, err := in.ex.ServerTime(ctx)
		if err != nil {
			return err
		}
		in.out.Line("server time: %s", t.UTC().Format("2006-01-02 15:04:05.000"))

	case "stats":
		stats, err := in.ex.Stats24h(ctx, in.symbolArg(args, 0))
		if err != nil {
			return err
		}
		in.out.Stats(stats)

	case "depth", "book":
		symbol, limit := in.symbolAndLimit(args)
		book, err := in.reads.Book(ctx, symbol, limit)
		if err != nil {
			return err
		}
		in.out.Book(book)

	case "trades":
		symbol, limit := in.symbolAndLimit(args)
		trades, err := in.reads.Trades(ctx, symbol, limit)
		if err != nil {
			return err
		}
		in.out.Trades(symbol, trades)

	case "tradesin":
		symbol, rest := in.splitSymbol(args)
		start, err := requiredInt64(rest, 0, "start")
		if err != nil {
			return err
		}
		end, err := requiredInt64(rest, 1, "end")
		if err != nil {
			return err
		}
		trades, err := in.reads.TradesBetween(ctx, symbol, start, end)
		if err != nil {
			return err
		}
		in.out.Trades(symbol, trades)

	case "tradesfrom":
		symbol, rest := in.splitSymbol(args)
		fromID, err := requiredInt64(rest, 0, "tradeId")
		if err != nil {
			return err
		}
		trades, err := in.reads.TradesFrom(ctx, symbol, fromID, intArg(rest, 1, in.defaultLimit))
		if err != nil {
			return err
		}
		in.out.Trades(symbol, trades)

	case "candles", "klines":
		symbol, interval, rest := in.symbolAndInterval(args)
		candles, err := in.reads.Candles(ctx, symbol, interval, intArg(rest, 0, in.defaultLimit))
		if err != nil {
			return err
		}
		in.out.Candles(symbol, interval, candles)

	case "candlesin", "klinesin":
		symbol, interval, rest := in.symbolAndInterval(args)
		start, err := requiredInt64(rest, 0, "start")
		if err != nil {
			return err
		}
		end, err := requiredInt64(rest, 1, "end")
		if err != nil {
			return err
		}
		candles, err := in.reads.CandlesBetween(ctx, symbol, interval, start, end)
		if err != nil {
			return err
		}
		in.out.Candles(symbol, interval, candles)

	case "symbols":
		infos, err := in.ex.Symbols(ctx)
		if err != nil {
			return err
		}
		in.out.Symbols(infos)

	case "prices":
		prices, err := in.ex.Prices(ctx)
		if err != nil {
			return err
		}
		in.out.Prices(prices)

	case "tops":
		if len(args) > 0 {
			top, err := in.reads.TopOfBook(ctx, in.symbolArg(args, 0))
			if err != nil {
				return err
			}
			in.out.BookTickers([]types.BookTicker{top})
			return nil
		}
		tickers, err := in.ex.BookTickers(ctx)
		if err != nil {
			return err
		}
		in.out.BookTickers(tickers)

	case "live":
		return in.handleLive(args)

	case "market":
		return in.handlePlace(ctx, args, false)

	case "limit":
		return in.handlePlace(ctx, args, true)

	case "orders":
		return in.handleOrders(ctx, args)

	case "order":
		return in.handleOrder(ctx, args)

	case "account", "balances", "positions":
		if !in.hasKeys {
			return ErrNeedCredentials
		}
		acct, err := in.ex.Account(ctx)
		if err != nil {
			return err
		}
		in.out.Account(acct)

	case "mytrades":
		if !in.hasKeys {
			return ErrNeedCredentials
		}
		symbol, limit := in.symbolAndLimit(args)
		trades, err := in.ex.MyTrades(ctx, symbol, limit)
		if err != nil {
			return err
		}
		in.out.AccountTrades(trades)

	case "deposits":
		if !in.hasKeys {
			return ErrNeedCredentials
		}
		deposits, err := in.ex.Deposits(ctx, strings.ToUpper(stringArg(args, 0, "")))
		if err != nil {
			return err
		}
		in.out.Deposits(deposits)

	case "withdrawals":
		if !in.hasKeys {
			return ErrNeedCredentials
		}
		withdrawals, err := in.ex.Withdrawals(ctx, strings.ToUpper(stringArg(args, 0, "")))
		if err != nil {
			return err
		}
		in.out.Withdrawals(withdrawals)

	case "withdraw":
		return in.handleWithdraw(ctx, args)

	case "test":
		mode, err := requiredString(args, 0, "on|off")
		if err != nil {
			return err
		}
		switch strings.ToLower(mode) {
		case "on":
			in.testOrders = true
		case "off":
			in.testOrders = false
		default:
			return argErrorf("test mode must be on or off, got %q", mode)
		}
		in.out.Line("test-only orders: %t", in.testOrders)

	default:
		return ErrUnrecognized
	}
	return nil
}

// splitSymbol resolves an optional leading symbol slot followed by numeric
// arguments: a leading integer means the symbol was omitted.
func (in *Interpreter) splitSymbol(args []string) (string, []string) {
	if len(args) == 0 {
		return in.defaultSymbol, nil
	}
	if _, err := strconv.ParseInt(args[0], 10, 64); err == nil {
		return in.defaultSymbol, args
	}
	return strings.ToUpper(args[0]), args[1:]
}

func (in *Interpreter) handleLive(args []string) error {
	if len(args) == 0 {
		if sub, ok := in.live.Active(); ok {
			in.out.Line("live %s active (symbol=%s interval=%s)", sub.Kind, sub.Symbol, sub.Interval)
		} else {
			in.out.Line("no live stream active")
		}
		return nil
	}

	rest := args[1:]
	var sub types.StreamSub

	switch strings.ToLower(args[0]) {
	case "off":
		if _, ok := in.live.Active(); !ok {
			in.out.Line("no live stream active")
			return nil
		}
		in.live.Stop()
		in.out.Line("live stream stopped")
		return nil

	case "depth", "book":
		sub = types.StreamSub{Kind: types.StreamOrderBook, Symbol: in.symbolArg(rest, 0)}

	case "kline", "klines", "candle", "candles":
		interval := stringArg(rest, 1, liveDefaultInterval)
		if !isInterval(interval) {
			interval = liveDefaultInterval
		}
		sub = types.StreamSub{Kind: types.StreamCandles, Symbol: in.symbolArg(rest, 0), Interval: interval}

	case "trades":
		sub = types.StreamSub{Kind: types.StreamTrades, Symbol: in.symbolArg(rest, 0)}

	case "account", "user":
		if !in.hasKeys {
			return ErrNeedCredentials
		}
		sub = types.StreamSub{Kind: types.StreamUserData}

	default:
		return argErrorf("unknown stream kind %q (expected depth|kline|trades|account|off)", args[0])
	}

	if err := in.live.Start(sub); err != nil {
		return err
	}
	if sub.Symbol != "" {
		in.out.Line("live %s started for %s", sub.Kind, sub.Symbol)
	} else {
		in.out.Line("live %s started", sub.Kind)
	}
	return nil
}

func (in *Interpreter) handlePlace(ctx context.Context, args []string, isLimit bool) error {
	if !in.hasKeys {
		return ErrNeedCredentials
	}
	side, err := sideArg(args, 0)
	if err != nil {
		return err
	}
	symbol, err := requiredString(args, 1, "symbol")
	if err != nil {
		return err
	}
	qty, err := requiredFloat(args, 2, "quantity")
	if err != nil {
		return err
	}

	intent := types.OrderIntent{
		Side:     side,
		Symbol:   strings.ToUpper(symbol),
		Quantity: qty,
		IsTest:   in.testOrders,
	}
	stopIdx := 3
	if isLimit {
		price, err := requiredFloat(args, 3, "price")
		if err != nil {
			return err
		}
		intent.Price = price
		stopIdx = 4
	}
	intent.StopPrice = optionalFloat(args, stopIdx, 0)

	order, err := in.ex.PlaceOrder(ctx, intent)
	if err != nil {
		return err
	}
	in.audit(tradelog.Entry{
		Action:  "ORDER",
		Symbol:  intent.Symbol,
		Side:    intent.Side,
		OrderID: order.OrderID,
		Status:  order.Status,
		Qty:     intent.Quantity,
		Price:   intent.Price,
	})
	in.out.Order(order)
	return nil
}

func (in *Interpreter) handleOrders(ctx context.Context, args []string) error {
	if !in.hasKeys {
		return ErrNeedCredentials
	}
	open := false
	if n := len(args); n > 0 && strings.EqualFold(args[n-1], "open") {
		open = true
		args = args[:n-1]
	}
	symbol, limit := in.symbolAndLimit(args)

	var orders []types.Order
	var err error
	if open {
		orders, err = in.ex.OpenOrders(ctx, symbol)
	} else {
		orders, err = in.ex.Orders(ctx, symbol, limit)
	}
	if err != nil {
		return err
	}
	in.out.Orders(orders)
	return nil
}

func (in *Interpreter) handleOrder(ctx context.Context, args []string) error {
	if !in.hasKeys {
		return ErrNeedCredentials
	}
	symbol, err := requiredString(args, 0, "symbol")
	if err != nil {
		return err
	}
	symbol = strings.ToUpper(symbol)
	idTok, err := requiredString(args, 1, "id|clientId")
	if err != nil {
		return err
	}
	var orderID int64
	var clientID string
	if n, perr := strconv.ParseInt(idTok, 10, 64); perr == nil {
		orderID = n
	} else {
		clientID = idTok
	}

	if len(args) > 2 && strings.EqualFold(args[2], "cancel") {
		order, err := in.ex.CancelOrder(ctx, symbol, orderID, clientID)
		if err != nil {
			return err
		}
		in.audit(tradelog.Entry{
			Action:  "CANCEL",
			Symbol:  symbol,
			Side:    order.Side,
			OrderID: order.OrderID,
			Status:  order.Status,
			Qty:     order.OrigQty,
			Price:   order.Price,
		})
		in.out.Order(order)
		return nil
	}

	order, err := in.ex.QueryOrder(ctx, symbol, orderID, clientID)
	if err != nil {
		return err
	}
	in.out.Order(order)
	return nil
}

func (in *Interpreter) handleWithdraw(ctx context.Context, args []string) error {
	if !in.hasKeys {
		return ErrNeedCredentials
	}
	asset, err := requiredString(args, 0, "asset")
	if err != nil {
		return err
	}
	address, err := requiredString(args, 1, "address")
	if err != nil {
		return err
	}
	amount, err := requiredFloat(args, 2, "amount")
	if err != nil {
		return err
	}

	id, err := in.ex.Withdraw(ctx, strings.ToUpper(asset), address, amount)
	if err != nil {
		return err
	}
	in.audit(tradelog.Entry{
		Action: "WITHDRAW",
		Symbol: strings.ToUpper(asset),
		Status: id,
		Qty:    amount,
	})
	in.out.Line("withdrawal submitted, id=%s", id)
	return nil
}
