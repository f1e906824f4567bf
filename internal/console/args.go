package console

import (
	"strconv"
	"strings"
)

// Optional positional arguments fall back silently to their defaults when
// missing or unparsable; required ones return an ArgError. An overloaded
// leading slot ("book <symbol> [limit]" vs "book [limit]") is resolved by
// attempting an integer parse first.

func intArg(args []string, i, def int) int {
	if i >= len(args) {
		return def
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return def
	}
	return n
}

func stringArg(args []string, i int, def string) string {
	if i >= len(args) {
		return def
	}
	return args[i]
}

func requiredString(args []string, i int, name string) (string, error) {
	if i >= len(args) || args[i] == "" {
		return "", argErrorf("missing required argument <%s>", name)
	}
	return args[i], nil
}

func requiredInt64(args []string, i int, name string) (int64, error) {
	s, err := requiredString(args, i, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, argErrorf("argument <%s> must be an integer, got %q", name, s)
	}
	return n, nil
}

func requiredFloat(args []string, i int, name string) (float64, error) {
	s, err := requiredString(args, i, name)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, argErrorf("argument <%s> must be a positive number, got %q", name, s)
	}
	return f, nil
}

func sideArg(args []string, i int) (string, error) {
	s, err := requiredString(args, i, "side")
	if err != nil {
		return "", err
	}
	side := strings.ToUpper(s)
	if side != "BUY" && side != "SELL" {
		return "", argErrorf("argument <side> must be BUY or SELL, got %q", s)
	}
	return side, nil
}

// optionalFloat is a silently-defaulting decimal slot (e.g. a stop price).
func optionalFloat(args []string, i int, def float64) float64 {
	if i >= len(args) {
		return def
	}
	f, err := strconv.ParseFloat(args[i], 64)
	if err != nil {
		return def
	}
	return f
}

// symbolArg reads an optional symbol slot, defaulting to the reference pair.
func (in *Interpreter) symbolArg(args []string, i int) string {
	return strings.ToUpper(stringArg(args, i, in.defaultSymbol))
}

// symbolAndLimit resolves the overloaded "<symbol> [limit]" / "[limit]"
// argument shape: a leading integer is a limit with the default symbol.
func (in *Interpreter) symbolAndLimit(args []string) (string, int) {
	if len(args) == 0 {
		return in.defaultSymbol, in.defaultLimit
	}
	if n, err := strconv.Atoi(args[0]); err == nil {
		return in.defaultSymbol, n
	}
	return strings.ToUpper(args[0]), intArg(args, 1, in.defaultLimit)
}

var candleIntervals = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

func isInterval(s string) bool {
	return candleIntervals[s]
}

// symbolAndInterval resolves "<symbol> <interval>" where either may be
// omitted: a leading token that is a known interval keeps the default symbol.
func (in *Interpreter) symbolAndInterval(args []string) (string, string, []string) {
	if len(args) == 0 {
		return in.defaultSymbol, defaultInterval, nil
	}
	if isInterval(args[0]) {
		return in.defaultSymbol, args[0], args[1:]
	}
	symbol := strings.ToUpper(args[0])
	if len(args) > 1 && isInterval(args[1]) {
		return symbol, args[1], args[2:]
	}
	return symbol, defaultInterval, args[1:]
}
