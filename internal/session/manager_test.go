package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trading-console/internal/interfaces"
	"trading-console/internal/types"
)

// fakeStream is one opened subscription under test control.
type fakeStream struct {
	sub     types.StreamSub
	handler interfaces.EventHandler
	done    chan struct{}
	once    sync.Once
}

func (s *fakeStream) terminate() {
	s.once.Do(func() { close(s.done) })
}

// fakeStreamer records Open calls and lets tests drive stream lifetime.
type fakeStreamer struct {
	mu          sync.Mutex
	openErr     error
	honorCancel bool
	streams     []*fakeStream
}

func (f *fakeStreamer) Open(ctx context.Context, sub types.StreamSub, handler interfaces.EventHandler) (<-chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	s := &fakeStream{sub: sub, handler: handler, done: make(chan struct{})}
	if f.honorCancel {
		go func() {
			<-ctx.Done()
			s.terminate()
		}()
	}
	f.streams = append(f.streams, s)
	return s.done, nil
}

func (f *fakeStreamer) opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.streams)
}

func (f *fakeStreamer) last() *fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.streams) == 0 {
		return nil
	}
	return f.streams[len(f.streams)-1]
}

type recordSink struct {
	mu     sync.Mutex
	events []types.StreamEvent
}

func (s *recordSink) StreamEvent(ev types.StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordSink) Fault(error) {}

func (s *recordSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func newTestManager(streams *fakeStreamer, cfg Config) (*Manager, *recordSink) {
	sink := &recordSink{}
	return NewManager(streams, sink, cfg), sink
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestStartRefusesSecondStream(t *testing.T) {
	streams := &fakeStreamer{honorCancel: true}
	mgr, _ := newTestManager(streams, DefaultConfig())
	defer mgr.Stop()

	first := types.StreamSub{Kind: types.StreamOrderBook, Symbol: "BTCUSDT"}
	if err := mgr.Start(first); err != nil {
		t.Fatalf("Expected first start to succeed, got %v", err)
	}

	err := mgr.Start(types.StreamSub{Kind: types.StreamTrades, Symbol: "ETHUSDT"})
	if !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("Expected ErrAlreadyActive, got %v", err)
	}
	if streams.opens() != 1 {
		t.Errorf("Expected refused start to have no side effect, got %d opens", streams.opens())
	}
	if sub, ok := mgr.Active(); !ok || sub != first {
		t.Errorf("Expected original subscription to stay active, got %+v (%t)", sub, ok)
	}
}

func TestStartFailureLeavesIdle(t *testing.T) {
	streams := &fakeStreamer{openErr: errors.New("dial refused")}
	mgr, _ := newTestManager(streams, DefaultConfig())

	err := mgr.Start(types.StreamSub{Kind: types.StreamTrades, Symbol: "BTCUSDT"})
	if err == nil {
		t.Fatal("Expected start to fail")
	}
	if _, ok := mgr.Active(); ok {
		t.Error("Expected manager to stay idle after failed start")
	}

	streams.openErr = nil
	streams.honorCancel = true
	if err := mgr.Start(types.StreamSub{Kind: types.StreamTrades, Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	mgr.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	streams := &fakeStreamer{honorCancel: true}
	mgr, _ := newTestManager(streams, DefaultConfig())

	mgr.Stop() // idle, no-op

	if err := mgr.Start(types.StreamSub{Kind: types.StreamOrderBook, Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}
	mgr.Stop()
	if _, ok := mgr.Active(); ok {
		t.Error("Expected manager to be idle after stop")
	}
	mgr.Stop() // again, no-op

	// A fresh session can start after stop.
	if err := mgr.Start(types.StreamSub{Kind: types.StreamCandles, Symbol: "ETHUSDT", Interval: "1m"}); err != nil {
		t.Fatalf("Expected restart to succeed, got %v", err)
	}
	mgr.Stop()
}

func TestStopBoundedByTimeout(t *testing.T) {
	// Worker ignores cancellation; Stop must still return.
	streams := &fakeStreamer{}
	mgr, _ := newTestManager(streams, Config{StopTimeout: 50 * time.Millisecond, CacheDepth: 10})

	if err := mgr.Start(types.StreamSub{Kind: types.StreamTrades, Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}

	start := time.Now()
	mgr.Stop()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Expected stop to return within the timeout, took %v", elapsed)
	}
	if _, ok := mgr.Active(); ok {
		t.Error("Expected manager to be idle after timed-out stop")
	}
	streams.last().terminate()
}

func TestWorkerFaultReturnsToIdle(t *testing.T) {
	streams := &fakeStreamer{}
	mgr, _ := newTestManager(streams, DefaultConfig())

	if err := mgr.Start(types.StreamSub{Kind: types.StreamTrades, Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}

	streams.last().terminate()

	select {
	case err := <-mgr.Faults():
		if err == nil {
			t.Fatal("Expected a non-nil fault")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a fault after worker death")
	}

	waitFor(t, "manager to return to idle", func() bool {
		_, ok := mgr.Active()
		return !ok
	})

	streams.honorCancel = true
	if err := mgr.Start(types.StreamSub{Kind: types.StreamOrderBook, Symbol: "ETHUSDT"}); err != nil {
		t.Fatalf("Expected start after fault to succeed, got %v", err)
	}
	mgr.Stop()
}

func TestDeliberateStopEmitsNoFault(t *testing.T) {
	streams := &fakeStreamer{honorCancel: true}
	mgr, _ := newTestManager(streams, DefaultConfig())

	if err := mgr.Start(types.StreamSub{Kind: types.StreamTrades, Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}
	mgr.Stop()

	select {
	case err := <-mgr.Faults():
		t.Fatalf("Expected no fault after deliberate stop, got %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEventsReachSinkAndCache(t *testing.T) {
	streams := &fakeStreamer{honorCancel: true}
	mgr, sink := newTestManager(streams, DefaultConfig())
	defer mgr.Stop()

	if err := mgr.Start(types.StreamSub{Kind: types.StreamOrderBook, Symbol: "BTCUSDT"}); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}

	book := &types.OrderBook{
		Symbol:       "BTCUSDT",
		LastUpdateID: 42,
		Bids:         []types.BookLevel{{Price: 100, Qty: 1}},
		Asks:         []types.BookLevel{{Price: 101, Qty: 2}},
	}
	streams.last().handler(types.StreamEvent{Kind: types.StreamOrderBook, Symbol: "BTCUSDT", Book: book})

	if sink.count() != 1 {
		t.Errorf("Expected 1 event forwarded to sink, got %d", sink.count())
	}

	snap, ok := mgr.SnapshotFor(types.StreamOrderBook, "BTCUSDT", "")
	if !ok {
		t.Fatal("Expected a snapshot for the active depth stream")
	}
	if snap.Book == nil || snap.Book.LastUpdateID != 42 {
		t.Errorf("Expected cached book with update 42, got %+v", snap.Book)
	}
}

func TestSnapshotForMatching(t *testing.T) {
	streams := &fakeStreamer{honorCancel: true}
	mgr, _ := newTestManager(streams, DefaultConfig())
	defer mgr.Stop()

	if _, ok := mgr.SnapshotFor(types.StreamOrderBook, "BTCUSDT", ""); ok {
		t.Error("Expected no snapshot while idle")
	}

	if err := mgr.Start(types.StreamSub{Kind: types.StreamCandles, Symbol: "BTCUSDT", Interval: "1m"}); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}

	if _, ok := mgr.SnapshotFor(types.StreamCandles, "btcusdt", "1m"); !ok {
		t.Error("Expected symbol match to be case-insensitive")
	}
	if _, ok := mgr.SnapshotFor(types.StreamCandles, "ETHUSDT", "1m"); ok {
		t.Error("Expected a different symbol to miss")
	}
	if _, ok := mgr.SnapshotFor(types.StreamOrderBook, "BTCUSDT", ""); ok {
		t.Error("Expected a different kind to miss")
	}
	if _, ok := mgr.SnapshotFor(types.StreamCandles, "BTCUSDT", "5m"); ok {
		t.Error("Expected a different interval to miss")
	}
}

func TestCandleCacheReplacesFormingCandle(t *testing.T) {
	streams := &fakeStreamer{honorCancel: true}
	mgr, _ := newTestManager(streams, Config{StopTimeout: time.Second, CacheDepth: 3})
	defer mgr.Stop()

	sub := types.StreamSub{Kind: types.StreamCandles, Symbol: "BTCUSDT", Interval: "1m"}
	if err := mgr.Start(sub); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}

	emit := func(openTime int64, close float64) {
		streams.last().handler(types.StreamEvent{
			Kind: sub.Kind, Symbol: sub.Symbol, Interval: sub.Interval,
			Candle: &types.Candle{OpenTime: openTime, Close: close},
		})
	}

	emit(1000, 10)
	emit(1000, 11) // same interval still forming
	emit(2000, 12)

	snap, ok := mgr.SnapshotFor(types.StreamCandles, "BTCUSDT", "1m")
	if !ok {
		t.Fatal("Expected a snapshot")
	}
	if len(snap.Candles) != 2 {
		t.Fatalf("Expected 2 candles after a forming-candle update, got %d", len(snap.Candles))
	}
	if snap.Candles[0].Close != 11 {
		t.Errorf("Expected forming candle to be replaced with close 11, got %g", snap.Candles[0].Close)
	}

	emit(3000, 13)
	emit(4000, 14)

	snap, _ = mgr.SnapshotFor(types.StreamCandles, "BTCUSDT", "1m")
	if len(snap.Candles) != 3 {
		t.Fatalf("Expected cache trimmed to depth 3, got %d candles", len(snap.Candles))
	}
	if snap.Candles[0].OpenTime != 2000 {
		t.Errorf("Expected oldest candle dropped, got first open time %d", snap.Candles[0].OpenTime)
	}
}

func TestTradeCacheTrimsToDepth(t *testing.T) {
	streams := &fakeStreamer{honorCancel: true}
	mgr, _ := newTestManager(streams, Config{StopTimeout: time.Second, CacheDepth: 2})
	defer mgr.Stop()

	sub := types.StreamSub{Kind: types.StreamTrades, Symbol: "BTCUSDT"}
	if err := mgr.Start(sub); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}
	for i := int64(1); i <= 4; i++ {
		streams.last().handler(types.StreamEvent{
			Kind: sub.Kind, Symbol: sub.Symbol,
			Trade: &types.Trade{ID: i, Price: float64(i)},
		})
	}

	snap, ok := mgr.SnapshotFor(types.StreamTrades, "BTCUSDT", "")
	if !ok {
		t.Fatal("Expected a snapshot")
	}
	if len(snap.Trades) != 2 {
		t.Fatalf("Expected trade cache trimmed to 2, got %d", len(snap.Trades))
	}
	if snap.Trades[0].ID != 3 || snap.Trades[1].ID != 4 {
		t.Errorf("Expected the newest trades kept, got ids %d,%d", snap.Trades[0].ID, snap.Trades[1].ID)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	streams := &fakeStreamer{honorCancel: true}
	mgr, _ := newTestManager(streams, DefaultConfig())
	defer mgr.Stop()

	sub := types.StreamSub{Kind: types.StreamTrades, Symbol: "BTCUSDT"}
	if err := mgr.Start(sub); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}
	streams.last().handler(types.StreamEvent{Kind: sub.Kind, Symbol: sub.Symbol, Trade: &types.Trade{ID: 1}})

	snap, _ := mgr.SnapshotFor(types.StreamTrades, "BTCUSDT", "")
	streams.last().handler(types.StreamEvent{Kind: sub.Kind, Symbol: sub.Symbol, Trade: &types.Trade{ID: 2}})

	if len(snap.Trades) != 1 {
		t.Errorf("Expected snapshot to be isolated from later events, got %d trades", len(snap.Trades))
	}
}

func TestLateEventCannotPolluteSuccessor(t *testing.T) {
	streams := &fakeStreamer{honorCancel: true}
	mgr, _ := newTestManager(streams, DefaultConfig())
	defer mgr.Stop()

	sub := types.StreamSub{Kind: types.StreamTrades, Symbol: "BTCUSDT"}
	if err := mgr.Start(sub); err != nil {
		t.Fatalf("Expected start to succeed, got %v", err)
	}
	first := streams.last()
	mgr.Stop()

	if err := mgr.Start(sub); err != nil {
		t.Fatalf("Expected restart to succeed, got %v", err)
	}

	// An event still in flight from the stopped worker lands in the old
	// session's private cache, not the new one.
	first.handler(types.StreamEvent{Kind: sub.Kind, Symbol: sub.Symbol, Trade: &types.Trade{ID: 99}})

	snap, ok := mgr.SnapshotFor(types.StreamTrades, "BTCUSDT", "")
	if !ok {
		t.Fatal("Expected a snapshot from the new session")
	}
	if len(snap.Trades) != 0 {
		t.Errorf("Expected the new session cache to be empty, got %d trades", len(snap.Trades))
	}
}
