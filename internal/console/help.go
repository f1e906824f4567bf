package console

const helpText = `commands (symbol defaults to the configured pair, limit defaults to 10):
  ping                                      connectivity check
  time                                      venue server time
  stats [symbol]                            24h ticker statistics
  depth|book [symbol] [limit]               order book top levels
  trades [symbol] [limit]                   recent aggregate trades
  tradesIn [symbol] <start> <end>           trades in a time range (ms)
  tradesFrom [symbol] <tradeId> [limit]     trades from an id
  candles|klines [symbol] [interval] [limit]  candlesticks (default 1h)
  candlesIn|klinesIn [symbol] [interval] <start> <end>
  symbols                                   listed instruments
  prices                                    latest price for every symbol
  tops [symbol]                             best bid/ask
  live depth|kline|trades|account [symbol] [interval]   attach one push stream
  live off                                  detach the active stream
  market <side> <symbol> <qty> [stop]       market order
  limit <side> <symbol> <qty> <price> [stop]  limit order
  orders [symbol] [limit|open]              order history / open orders
  order <symbol> <id|clientId> [cancel]     query or cancel one order
  account|balances|positions                account balances
  myTrades [symbol] [limit]                 own fills
  deposits [asset]                          deposit history
  withdrawals [asset]                       withdrawal history
  withdraw <asset> <address> <amount>       request withdrawal
  test on|off                               route orders to validation endpoint
  quit|exit`
