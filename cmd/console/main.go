package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-console/internal/console"
	"trading-console/internal/logger"
	"trading-console/internal/session"
	"trading-console/internal/trace"
	"trading-console/internal/venue"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer trace.Shutdown(context.Background())

	cfg, err := loadConfig(ctx)
	must(err)

	compressOldLogs(ctx)

	ex, client := initializeExchange(ctx, cfg)
	streamer := venue.NewStreamer(cfg.Venue.StreamURL, client)

	out := console.NewPrinter(os.Stdout)
	mgr := session.NewManager(streamer, out, session.Config{
		StopTimeout: time.Duration(cfg.Session.StopTimeoutSeconds) * time.Second,
		CacheDepth:  cfg.Session.CacheDepth,
	})
	defer mgr.Stop()

	reads := session.NewResolver(mgr, ex)

	interp := console.NewInterpreter(console.Params{
		Exchange:       ex,
		Reads:          reads,
		Live:           mgr,
		Out:            out,
		DefaultSymbol:  cfg.Console.DefaultSymbol,
		DefaultLimit:   cfg.Console.DefaultLimit,
		HasCredentials: client.HasCredentials(),
		TestOrders:     cfg.Console.TestOrders,
	})

	// Background stream faults surface on the console without killing it.
	go func() {
		for err := range mgr.Faults() {
			out.Fault(err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down")
		mgr.Stop()
		cancel()
		os.Exit(0)
	}()

	out.Line("connected to %s (type help for commands)", cfg.Venue.RestURL)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		quit, err := interp.Execute(ctx, scanner.Text())
		if err != nil {
			reportError(out, err)
		}
		if quit {
			break
		}
	}
	mgr.Stop()
}

// reportError maps a command error to a one-line console message.
func reportError(out *console.Printer, err error) {
	switch console.Classify(err) {
	case console.KindUnrecognized:
		out.Line("unrecognized command (type help for the list)")
	case console.KindArgument:
		out.Line("bad arguments: %v", err)
	case console.KindCredentials:
		out.Line("credentials required: %v", err)
	case console.KindSession:
		out.Line("session: %v", err)
	default:
		if apiErr, ok := venue.AsAPIError(err); ok {
			out.Line("venue error %d (code %d): %s", apiErr.Status, apiErr.Code, apiErr.Message)
		} else {
			out.Line("error: %v", err)
		}
	}
}
