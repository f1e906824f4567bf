package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"trading-console/internal/interfaces"
	"trading-console/internal/logger"
	"trading-console/internal/types"
)

// ErrAlreadyActive is returned by Start while another stream is running.
var ErrAlreadyActive = errors.New("a live stream is already active")

// Config holds tuning for the live session manager.
type Config struct {
	// StopTimeout bounds how long Stop waits for the worker to terminate.
	StopTimeout time.Duration
	// CacheDepth is the maximum number of candles/trades kept in the live cache.
	CacheDepth int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		StopTimeout: 10 * time.Second,
		CacheDepth:  200,
	}
}

// Manager owns the console's single optional live subscription. At most one
// session is active at any time; Start refuses a second one. The manager is
// the sole mutator of session state; readers go through SnapshotFor.
type Manager struct {
	cfg     Config
	streams interfaces.Streamer
	sink    interfaces.Sink
	faults  chan error

	mu  sync.Mutex
	cur *liveSession
}

// liveSession is one active subscription together with its cached view.
// The cache fields are written only by the stream worker and read through
// snapshot(); each session owns its cache exclusively, so a late in-flight
// event can never land in a successor session's cache.
type liveSession struct {
	sub      types.StreamSub
	cancel   context.CancelFunc
	done     <-chan struct{}
	stopping bool // guarded by Manager.mu

	mu      sync.RWMutex
	depth   int
	book    *types.OrderBook
	candles []types.Candle
	trades  []types.Trade
	user    *types.UserEvent
}

func NewManager(streams interfaces.Streamer, sink interfaces.Sink, cfg Config) *Manager {
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultConfig().StopTimeout
	}
	if cfg.CacheDepth <= 0 {
		cfg.CacheDepth = DefaultConfig().CacheDepth
	}
	return &Manager{
		cfg:     cfg,
		streams: streams,
		sink:    sink,
		faults:  make(chan error, 4),
	}
}

// Faults delivers background stream failures. The channel is buffered and
// never closed; writes are non-blocking, so an unread fault may be dropped.
func (m *Manager) Faults() <-chan error {
	return m.faults
}

// Active reports the current subscription, if any.
func (m *Manager) Active() (types.StreamSub, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return types.StreamSub{}, false
	}
	return m.cur.sub, true
}

// Start opens a live subscription. It fails with ErrAlreadyActive, without
// any side effect, while another session exists.
func (m *Manager) Start(sub types.StreamSub) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur != nil {
		return fmt.Errorf("%w: live %s for %s", ErrAlreadyActive, m.cur.sub.Kind, m.cur.sub.Symbol)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &liveSession{
		sub:    sub,
		cancel: cancel,
		depth:  m.cfg.CacheDepth,
	}

	done, err := m.streams.Open(ctx, sub, func(ev types.StreamEvent) {
		s.apply(ev)
		m.sink.StreamEvent(ev)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("starting live %s for %s failed: %w", sub.Kind, sub.Symbol, err)
	}
	s.done = done
	m.cur = s

	go m.watch(s)

	logger.Info(ctx, "Live stream started", "kind", sub.Kind.String(), "symbol", sub.Symbol, "interval", sub.Interval)
	return nil
}

// Stop terminates the active session, if any. It signals cancellation and
// blocks until the worker has observably terminated (bounded by StopTimeout)
// before releasing the session. Calling Stop while idle is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	s := m.cur
	if s == nil {
		m.mu.Unlock()
		return
	}
	s.stopping = true
	m.mu.Unlock()

	s.cancel()
	select {
	case <-s.done:
	case <-time.After(m.cfg.StopTimeout):
		logger.Warn(context.Background(), "Stream worker unresponsive to cancellation, discarding session",
			"kind", s.sub.Kind.String(), "symbol", s.sub.Symbol)
	}

	m.mu.Lock()
	if m.cur == s {
		m.cur = nil
	}
	m.mu.Unlock()

	logger.Info(context.Background(), "Live stream stopped", "kind", s.sub.Kind.String(), "symbol", s.sub.Symbol)
}

// watch resets the manager to idle when the worker dies without an explicit
// Stop, so a dead stream can never block future Start calls or serve
// stale-forever snapshots.
func (m *Manager) watch(s *liveSession) {
	<-s.done

	m.mu.Lock()
	faulted := m.cur == s && !s.stopping
	if faulted {
		m.cur = nil
	}
	m.mu.Unlock()

	if faulted {
		err := fmt.Errorf("live %s stream for %s terminated unexpectedly", s.sub.Kind, s.sub.Symbol)
		logger.ErrorWithErr(context.Background(), "Stream fault", err)
		select {
		case m.faults <- err:
		default:
		}
	}
}

// SnapshotFor returns the cached view when a session is active and matches
// the request exactly: same kind and symbol, and same interval for candle
// streams. Any mismatch is a miss, never a partial answer.
func (m *Manager) SnapshotFor(kind types.StreamKind, symbol, interval string) (Snapshot, bool) {
	m.mu.Lock()
	s := m.cur
	m.mu.Unlock()

	if s == nil || s.sub.Kind != kind || !strings.EqualFold(s.sub.Symbol, symbol) {
		return Snapshot{}, false
	}
	if kind == types.StreamCandles && s.sub.Interval != interval {
		return Snapshot{}, false
	}
	return s.snapshot(), true
}

// Snapshot is a self-consistent copy of a session's cached view. Only the
// field matching Kind is populated.
type Snapshot struct {
	Kind     types.StreamKind
	Symbol   string
	Interval string
	Book     *types.OrderBook
	Candles  []types.Candle
	Trades   []types.Trade
	User     *types.UserEvent
}

func (s *liveSession) apply(ev types.StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case ev.Book != nil:
		s.book = ev.Book
	case ev.Candle != nil:
		c := *ev.Candle
		if n := len(s.candles); n > 0 && s.candles[n-1].OpenTime == c.OpenTime {
			// Same interval still forming: replace instead of append.
			s.candles[n-1] = c
		} else {
			s.candles = append(s.candles, c)
			if len(s.candles) > s.depth {
				s.candles = s.candles[1:]
			}
		}
	case ev.Trade != nil:
		s.trades = append(s.trades, *ev.Trade)
		if len(s.trades) > s.depth {
			s.trades = s.trades[1:]
		}
	case ev.User != nil:
		s.user = ev.User
	}
}

func (s *liveSession) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Kind:     s.sub.Kind,
		Symbol:   s.sub.Symbol,
		Interval: s.sub.Interval,
		User:     s.user,
		// The book is replaced wholesale per event and never mutated in
		// place, so sharing the pointer with readers is safe.
		Book: s.book,
	}
	if len(s.candles) > 0 {
		snap.Candles = append([]types.Candle(nil), s.candles...)
	}
	if len(s.trades) > 0 {
		snap.Trades = append([]types.Trade(nil), s.trades...)
	}
	return snap
}
