package types

// StreamKind identifies one family of live push data.
type StreamKind int

const (
	StreamNone StreamKind = iota
	StreamOrderBook
	StreamCandles
	StreamTrades
	StreamUserData
)

func (k StreamKind) String() string {
	switch k {
	case StreamOrderBook:
		return "depth"
	case StreamCandles:
		return "kline"
	case StreamTrades:
		return "trades"
	case StreamUserData:
		return "account"
	default:
		return "none"
	}
}

// StreamSub describes one live subscription request.
// Interval is only meaningful for StreamCandles.
type StreamSub struct {
	Kind     StreamKind
	Symbol   string
	Interval string
}

type BookLevel struct {
	Price float64
	Qty   float64
}

type OrderBook struct {
	Symbol       string
	LastUpdateID int64
	Bids         []BookLevel
	Asks         []BookLevel
}

type Candle struct {
	OpenTime  int64
	CloseTime int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Trade is an aggregate trade: one price point that may merge several fills.
type Trade struct {
	ID         int64
	Price      float64
	Qty        float64
	Time       int64
	BuyerMaker bool
}

type Stats24h struct {
	Symbol         string
	PriceChange    float64
	PriceChangePct float64
	LastPrice      float64
	High           float64
	Low            float64
	Volume         float64
	QuoteVolume    float64
	OpenTime       int64
	CloseTime      int64
	TradeCount     int64
}

type PriceTicker struct {
	Symbol string
	Price  float64
}

type BookTicker struct {
	Symbol   string
	BidPrice float64
	BidQty   float64
	AskPrice float64
	AskQty   float64
}

type SymbolInfo struct {
	Symbol     string
	BaseAsset  string
	QuoteAsset string
	Status     string
}

// OrderIntent is built by the command layer and handed unmodified to the venue
// client. Price == 0 means a market order; StopPrice == 0 means no stop leg.
type OrderIntent struct {
	Side      string
	Symbol    string
	Quantity  float64
	Price     float64
	StopPrice float64
	IsTest    bool
}

type Order struct {
	Symbol        string
	OrderID       int64
	ClientOrderID string
	Side          string
	Type          string
	Status        string
	Price         float64
	OrigQty       float64
	ExecutedQty   float64
	StopPrice     float64
	Time          int64
}

type Balance struct {
	Asset  string
	Free   float64
	Locked float64
}

type Account struct {
	CanTrade    bool
	CanWithdraw bool
	CanDeposit  bool
	Balances    []Balance
}

// AccountTrade is a fill on one of the account's own orders.
type AccountTrade struct {
	ID              int64
	OrderID         int64
	Symbol          string
	Price           float64
	Qty             float64
	Commission      float64
	CommissionAsset string
	Time            int64
	IsBuyer         bool
	IsMaker         bool
}

type DepositEntry struct {
	Asset      string
	Amount     float64
	Address    string
	TxID       string
	Status     string
	InsertTime int64
}

type WithdrawalEntry struct {
	Asset     string
	Amount    float64
	Address   string
	TxID      string
	Status    string
	ApplyTime int64
}

// UserEvent is one account-stream push: an order update, a balance change, or
// anything else the venue sends on the user data stream.
type UserEvent struct {
	Type    string
	Time    int64
	Summary string
}

// StreamEvent is the uniform envelope delivered by a live stream worker.
// Exactly one payload field is set, matching Kind.
type StreamEvent struct {
	Kind     StreamKind
	Symbol   string
	Interval string
	Book     *OrderBook
	Candle   *Candle
	Trade    *Trade
	User     *UserEvent
}
