package venue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trading-console/internal/interfaces"
	"trading-console/internal/logger"
	"trading-console/internal/types"

	"github.com/gorilla/websocket"
)

const (
	// The venue pings roughly every three minutes.
	readWait  = 5 * time.Minute
	writeWait = 2 * time.Second

	// Listen keys expire after 60 minutes without a keepalive.
	listenKeyKeepAlive = 25 * time.Minute
)

// Streamer opens live subscriptions over the venue's websocket endpoint.
// User-data streams additionally use the REST client for listen keys.
type Streamer struct {
	baseURL string
	rest    *Client
	dialer  *websocket.Dialer
}

var _ interfaces.Streamer = (*Streamer)(nil)

func NewStreamer(baseURL string, rest *Client) *Streamer {
	return &Streamer{
		baseURL: baseURL,
		rest:    rest,
		dialer:  websocket.DefaultDialer,
	}
}

// streamName builds the websocket stream path segment for a subscription.
// For user-data streams the name is the listen key itself.
func streamName(sub types.StreamSub) string {
	sym := strings.ToLower(sub.Symbol)
	switch sub.Kind {
	case types.StreamOrderBook:
		return sym + "@depth20@100ms"
	case types.StreamCandles:
		return sym + "@kline_" + sub.Interval
	case types.StreamTrades:
		return sym + "@aggTrade"
	default:
		return ""
	}
}

// Open dials the stream and starts the read worker. The returned channel is
// closed only after the worker has stopped invoking the handler; cancelling
// ctx closes the socket, which unblocks the worker.
func (s *Streamer) Open(ctx context.Context, sub types.StreamSub, handler interfaces.EventHandler) (<-chan struct{}, error) {
	var listenKey string
	name := streamName(sub)

	if sub.Kind == types.StreamUserData {
		key, err := s.rest.CreateListenKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("opening user data stream failed: %w", err)
		}
		listenKey = key
		name = key
	}
	if name == "" {
		return nil, fmt.Errorf("unsupported stream kind %v", sub.Kind)
	}

	conn, _, err := s.dialer.DialContext(ctx, s.baseURL+"/ws/"+name, nil)
	if err != nil {
		if listenKey != "" {
			s.dropListenKey(listenKey)
		}
		return nil, fmt.Errorf("dialing stream failed: %w", err)
	}

	done := make(chan struct{})

	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPingHandler(func(payload string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(payload), time.Now().Add(writeWait))
	})

	// Unblock the read loop when cancellation is requested.
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = conn.Close()
		case <-done:
		}
	}()

	if sub.Kind == types.StreamUserData {
		go s.keepAlive(ctx, listenKey, done)
	}

	go func() {
		defer close(done)
		defer conn.Close()
		if listenKey != "" {
			defer s.dropListenKey(listenKey)
		}
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn(context.Background(), "Stream read failed",
						"kind", sub.Kind.String(), "symbol", sub.Symbol, "error", err)
				}
				return
			}
			if ev, ok := decodeEvent(sub, msg); ok {
				handler(ev)
			}
		}
	}()

	return done, nil
}

func (s *Streamer) keepAlive(ctx context.Context, key string, done <-chan struct{}) {
	ticker := time.NewTicker(listenKeyKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := s.rest.KeepAliveListenKey(ctx, key); err != nil {
				logger.Warn(ctx, "Listen key keepalive failed", "error", err)
			}
		}
	}
}

func (s *Streamer) dropListenKey(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.rest.CloseListenKey(ctx, key); err != nil {
		logger.Warn(ctx, "Closing listen key failed", "error", err)
	}
}
