package venue

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trading-console/internal/types"
)

type rawOrder struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Price         string `json:"price"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Status        string `json:"status"`
	Type          string `json:"type"`
	Side          string `json:"side"`
	StopPrice     string `json:"stopPrice"`
	Time          int64  `json:"time"`
	TransactTime  int64  `json:"transactTime"`
}

func (r rawOrder) toOrder() types.Order {
	ts := r.Time
	if ts == 0 {
		ts = r.TransactTime
	}
	return types.Order{
		Symbol:        r.Symbol,
		OrderID:       r.OrderID,
		ClientOrderID: r.ClientOrderID,
		Side:          r.Side,
		Type:          r.Type,
		Status:        r.Status,
		Price:         parseDecimal(r.Price),
		OrigQty:       parseDecimal(r.OrigQty),
		ExecutedQty:   parseDecimal(r.ExecutedQty),
		StopPrice:     parseDecimal(r.StopPrice),
		Time:          ts,
	}
}

// orderType maps an intent to the venue's order type string.
func orderType(intent types.OrderIntent) string {
	switch {
	case intent.Price == 0 && intent.StopPrice == 0:
		return "MARKET"
	case intent.Price == 0:
		return "STOP_LOSS"
	case intent.StopPrice == 0:
		return "LIMIT"
	default:
		return "STOP_LOSS_LIMIT"
	}
}

func formatQty(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// PlaceOrder submits an order. When intent.IsTest is set the validation
// endpoint is used: the venue checks the order without executing it.
func (c *Client) PlaceOrder(ctx context.Context, intent types.OrderIntent) (types.Order, error) {
	params := url.Values{
		"symbol":   {intent.Symbol},
		"side":     {intent.Side},
		"type":     {orderType(intent)},
		"quantity": {formatQty(intent.Quantity)},
	}
	if intent.Price > 0 {
		params.Set("price", formatQty(intent.Price))
		params.Set("timeInForce", "GTC")
	}
	if intent.StopPrice > 0 {
		params.Set("stopPrice", formatQty(intent.StopPrice))
	}

	path := "/api/v3/order"
	if intent.IsTest {
		path = "/api/v3/order/test"
	}

	var raw rawOrder
	if err := c.signedCall(ctx, http.MethodPost, path, params, &raw); err != nil {
		return types.Order{}, err
	}
	order := raw.toOrder()
	if intent.IsTest {
		// The validation endpoint returns an empty object on success.
		order = types.Order{
			Symbol:  intent.Symbol,
			Side:    intent.Side,
			Type:    orderType(intent),
			Status:  "TEST_OK",
			Price:   intent.Price,
			OrigQty: intent.Quantity,
		}
	}
	return order, nil
}

func orderIdentity(params url.Values, orderID int64, clientOrderID string) {
	if orderID > 0 {
		params.Set("orderId", strconv.FormatInt(orderID, 10))
	} else {
		params.Set("origClientOrderId", clientOrderID)
	}
}

func (c *Client) QueryOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (types.Order, error) {
	params := url.Values{"symbol": {symbol}}
	orderIdentity(params, orderID, clientOrderID)

	var raw rawOrder
	if err := c.signedCall(ctx, http.MethodGet, "/api/v3/order", params, &raw); err != nil {
		return types.Order{}, err
	}
	return raw.toOrder(), nil
}

func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64, clientOrderID string) (types.Order, error) {
	params := url.Values{"symbol": {symbol}}
	orderIdentity(params, orderID, clientOrderID)

	var raw rawOrder
	if err := c.signedCall(ctx, http.MethodDelete, "/api/v3/order", params, &raw); err != nil {
		return types.Order{}, err
	}
	return raw.toOrder(), nil
}

func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]types.Order, error) {
	params := url.Values{"symbol": {symbol}}
	var raw []rawOrder
	if err := c.signedCall(ctx, http.MethodGet, "/api/v3/openOrders", params, &raw); err != nil {
		return nil, err
	}
	return toOrders(raw), nil
}

func (c *Client) Orders(ctx context.Context, symbol string, limit int) ([]types.Order, error) {
	params := url.Values{
		"symbol": {symbol},
		"limit":  {strconv.Itoa(limit)},
	}
	var raw []rawOrder
	if err := c.signedCall(ctx, http.MethodGet, "/api/v3/allOrders", params, &raw); err != nil {
		return nil, err
	}
	return toOrders(raw), nil
}

func toOrders(raw []rawOrder) []types.Order {
	orders := make([]types.Order, 0, len(raw))
	for _, r := range raw {
		orders = append(orders, r.toOrder())
	}
	return orders
}

func (c *Client) Account(ctx context.Context) (types.Account, error) {
	var raw struct {
		CanTrade    bool `json:"canTrade"`
		CanWithdraw bool `json:"canWithdraw"`
		CanDeposit  bool `json:"canDeposit"`
		Balances    []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err := c.signedCall(ctx, http.MethodGet, "/api/v3/account", nil, &raw); err != nil {
		return types.Account{}, err
	}
	acct := types.Account{
		CanTrade:    raw.CanTrade,
		CanWithdraw: raw.CanWithdraw,
		CanDeposit:  raw.CanDeposit,
		Balances:    make([]types.Balance, 0, len(raw.Balances)),
	}
	for _, b := range raw.Balances {
		acct.Balances = append(acct.Balances, types.Balance{
			Asset:  b.Asset,
			Free:   parseDecimal(b.Free),
			Locked: parseDecimal(b.Locked),
		})
	}
	return acct, nil
}

func (c *Client) MyTrades(ctx context.Context, symbol string, limit int) ([]types.AccountTrade, error) {
	params := url.Values{
		"symbol": {symbol},
		"limit":  {strconv.Itoa(limit)},
	}
	var raw []struct {
		ID              int64  `json:"id"`
		OrderID         int64  `json:"orderId"`
		Symbol          string `json:"symbol"`
		Price           string `json:"price"`
		Qty             string `json:"qty"`
		Commission      string `json:"commission"`
		CommissionAsset string `json:"commissionAsset"`
		Time            int64  `json:"time"`
		IsBuyer         bool   `json:"isBuyer"`
		IsMaker         bool   `json:"isMaker"`
	}
	if err := c.signedCall(ctx, http.MethodGet, "/api/v3/myTrades", params, &raw); err != nil {
		return nil, err
	}
	trades := make([]types.AccountTrade, 0, len(raw))
	for _, t := range raw {
		trades = append(trades, types.AccountTrade{
			ID:              t.ID,
			OrderID:         t.OrderID,
			Symbol:          t.Symbol,
			Price:           parseDecimal(t.Price),
			Qty:             parseDecimal(t.Qty),
			Commission:      parseDecimal(t.Commission),
			CommissionAsset: t.CommissionAsset,
			Time:            t.Time,
			IsBuyer:         t.IsBuyer,
			IsMaker:         t.IsMaker,
		})
	}
	return trades, nil
}

func (c *Client) Deposits(ctx context.Context, asset string) ([]types.DepositEntry, error) {
	params := url.Values{}
	if asset != "" {
		params.Set("coin", asset)
	}
	var raw []struct {
		Coin       string `json:"coin"`
		Amount     string `json:"amount"`
		Address    string `json:"address"`
		TxID       string `json:"txId"`
		Status     int    `json:"status"`
		InsertTime int64  `json:"insertTime"`
	}
	if err := c.signedCall(ctx, http.MethodGet, "/sapi/v1/capital/deposit/hisrec", params, &raw); err != nil {
		return nil, err
	}
	deposits := make([]types.DepositEntry, 0, len(raw))
	for _, d := range raw {
		deposits = append(deposits, types.DepositEntry{
			Asset:      d.Coin,
			Amount:     parseDecimal(d.Amount),
			Address:    d.Address,
			TxID:       d.TxID,
			Status:     depositStatus(d.Status),
			InsertTime: d.InsertTime,
		})
	}
	return deposits, nil
}

func depositStatus(code int) string {
	switch code {
	case 0:
		return "PENDING"
	case 1:
		return "SUCCESS"
	case 6:
		return "CREDITED"
	default:
		return strconv.Itoa(code)
	}
}

func (c *Client) Withdrawals(ctx context.Context, asset string) ([]types.WithdrawalEntry, error) {
	params := url.Values{}
	if asset != "" {
		params.Set("coin", asset)
	}
	var raw []struct {
		Coin      string `json:"coin"`
		Amount    string `json:"amount"`
		Address   string `json:"address"`
		TxID      string `json:"txId"`
		Status    int    `json:"status"`
		ApplyTime string `json:"applyTime"`
	}
	if err := c.signedCall(ctx, http.MethodGet, "/sapi/v1/capital/withdraw/history", params, &raw); err != nil {
		return nil, err
	}
	withdrawals := make([]types.WithdrawalEntry, 0, len(raw))
	for _, w := range raw {
		withdrawals = append(withdrawals, types.WithdrawalEntry{
			Asset:     w.Coin,
			Amount:    parseDecimal(w.Amount),
			Address:   w.Address,
			TxID:      w.TxID,
			Status:    withdrawalStatus(w.Status),
			ApplyTime: parseApplyTime(w.ApplyTime),
		})
	}
	return withdrawals, nil
}

// parseApplyTime converts the withdrawal history's "2006-01-02 15:04:05" UTC
// timestamp to epoch milliseconds.
func parseApplyTime(s string) int64 {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

func withdrawalStatus(code int) string {
	switch code {
	case 0:
		return "EMAIL_SENT"
	case 1:
		return "CANCELLED"
	case 2:
		return "AWAITING_APPROVAL"
	case 3:
		return "REJECTED"
	case 4:
		return "PROCESSING"
	case 5:
		return "FAILURE"
	case 6:
		return "COMPLETED"
	default:
		return strconv.Itoa(code)
	}
}

// Withdraw requests a withdrawal and returns the venue's withdrawal id.
func (c *Client) Withdraw(ctx context.Context, asset, address string, amount float64) (string, error) {
	params := url.Values{
		"coin":    {asset},
		"address": {address},
		"amount":  {formatQty(amount)},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.signedCall(ctx, http.MethodPost, "/sapi/v1/capital/withdraw/apply", params, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// User data stream listen keys. These are keyed, not signed.

func (c *Client) CreateListenKey(ctx context.Context) (string, error) {
	var resp struct {
		ListenKey string `json:"listenKey"`
	}
	if err := c.keyedCall(ctx, http.MethodPost, "/api/v3/userDataStream", nil, &resp); err != nil {
		return "", err
	}
	return resp.ListenKey, nil
}

func (c *Client) KeepAliveListenKey(ctx context.Context, key string) error {
	params := url.Values{"listenKey": {key}}
	return c.keyedCall(ctx, http.MethodPut, "/api/v3/userDataStream", params, nil)
}

func (c *Client) CloseListenKey(ctx context.Context, key string) error {
	params := url.Values{"listenKey": {key}}
	return c.keyedCall(ctx, http.MethodDelete, "/api/v3/userDataStream", params, nil)
}
