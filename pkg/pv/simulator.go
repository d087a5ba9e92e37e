package pv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SimOption configures the Simulator.
type SimOption func(*Simulator)

// WithConnectLatency delays each simulated variable's transition to
// connected by d after Connect.
func WithConnectLatency(d time.Duration) SimOption {
	return func(s *Simulator) { s.latency = d }
}

// WithNeverConnect marks addresses whose handles never report connected,
// for exercising degraded startup paths.
func WithNeverConnect(names ...string) SimOption {
	return func(s *Simulator) {
		for _, name := range names {
			s.stuck[name] = struct{}{}
		}
	}
}

// WithSimLogger sets the logger used for handler panic reports.
func WithSimLogger(logger *slog.Logger) SimOption {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Simulator is an in-memory Client for tests and demos. Values live in the
// simulator; change notifications are delivered from a single dedicated
// goroutine, preserving per-variable ordering while staying asynchronous to
// the writer, the same shape a real client adapter exhibits.
type Simulator struct {
	mu      sync.Mutex
	pvs     map[string]*simPV
	stuck   map[string]struct{}
	latency time.Duration
	logger  *slog.Logger

	events chan func()
	wg     sync.WaitGroup
	closed bool
}

// NewSimulator constructs a running simulator. Close releases its
// notification goroutine.
func NewSimulator(opts ...SimOption) *Simulator {
	s := &Simulator{
		pvs:    make(map[string]*simPV),
		stuck:  make(map[string]struct{}),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		events: make(chan func(), 64),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	s.wg.Add(1)
	go s.deliver()
	return s
}

// Connect returns the handle for name, creating the simulated variable on
// first use. The handle reports connected after the configured latency.
func (s *Simulator) Connect(name string) (Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("pv: simulator closed")
	}
	if p, ok := s.pvs[name]; ok {
		return p, nil
	}

	p := &simPV{name: name, sim: s, subs: make(map[SubscriptionID]Handler)}
	s.pvs[name] = p

	if _, never := s.stuck[name]; !never {
		if s.latency <= 0 {
			p.connected = true
		} else {
			time.AfterFunc(s.latency, func() {
				p.mu.Lock()
				p.connected = true
				p.mu.Unlock()
			})
		}
	}
	return p, nil
}

// Close stops the notification goroutine and rejects further connects.
func (s *Simulator) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.events)
	s.wg.Wait()
}

func (s *Simulator) deliver() {
	defer s.wg.Done()
	for fn := range s.events {
		s.run(fn)
	}
}

func (s *Simulator) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pv: change handler panicked", "panic", r)
		}
	}()
	fn()
}

func (s *Simulator) enqueue(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.events <- fn
}

type simPV struct {
	name string
	sim  *Simulator

	mu        sync.Mutex
	connected bool
	value     Value
	subs      map[SubscriptionID]Handler
}

func (p *simPV) Name() string { return p.name }

func (p *simPV) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *simPV) Get(ctx context.Context) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, nil
}

func (p *simPV) Put(ctx context.Context, value Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.value = value
	handlers := make([]Handler, 0, len(p.subs))
	for _, fn := range p.subs {
		handlers = append(handlers, fn)
	}
	p.mu.Unlock()

	for _, fn := range handlers {
		fn := fn
		p.sim.enqueue(func() { fn(p, value) })
	}
	return nil
}

func (p *simPV) Subscribe(fn Handler) (SubscriptionID, error) {
	if fn == nil {
		return "", fmt.Errorf("pv: nil change handler")
	}
	id := SubscriptionID(uuid.NewString())
	p.mu.Lock()
	p.subs[id] = fn
	p.mu.Unlock()
	return id, nil
}

func (p *simPV) Unsubscribe(id SubscriptionID) {
	p.mu.Lock()
	delete(p.subs, id)
	p.mu.Unlock()
}
