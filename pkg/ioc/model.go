package ioc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-softioc/pkg/database"
	"github.com/goliatone/go-softioc/pkg/process"
	"github.com/goliatone/go-softioc/pkg/pv"
)

const (
	defaultCommand        = "softIoc"
	defaultConnectTimeout = 5 * time.Second
	defaultPollInterval   = 50 * time.Millisecond
)

// ErrConnectTimeout reports handles still unconnected when the bounded wait
// expired under the strict policy.
var ErrConnectTimeout = errors.New("ioc: connection wait expired")

// Option configures Model construction.
type Option func(*config)

type config struct {
	provider any
	command  string
	macros   []database.Macro
	client   pv.Client
	timeout  time.Duration
	poll     time.Duration
	strict   bool
	console  bool
	logger   *slog.Logger
	baseDir  string
}

// WithCallbacks sets the handler provider. When absent, the Model itself is
// the provider, preserving self-hosted callback ergonomics.
func WithCallbacks(provider any) Option {
	return func(c *config) { c.provider = provider }
}

// WithCommand overrides the server command. The default is the well-known
// softIoc binary from the server distribution.
func WithCommand(command string) Option {
	return func(c *config) {
		if strings.TrimSpace(command) != "" {
			c.command = command
		}
	}
}

// WithMacro appends one macro substitution. Macros render in the order the
// options were applied, after the always-present device macro.
func WithMacro(key, value string) Option {
	return func(c *config) {
		c.macros = append(c.macros, database.Macro{Key: key, Value: value})
	}
}

// WithClient sets the process-variable client collaborator.
func WithClient(client pv.Client) Option {
	return func(c *config) { c.client = client }
}

// WithConnectTimeout bounds the overall connection wait.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPollInterval sets the connection-wait polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.poll = d
		}
	}
}

// WithStrictConnect makes an expired connection wait fatal to construction
// instead of proceeding in a degraded ready state.
func WithStrictConnect() Option {
	return func(c *config) { c.strict = true }
}

// WithoutConsole detaches the server process from the calling terminal.
func WithoutConsole() Option {
	return func(c *config) { c.console = false }
}

// WithLogger sets the logger. Logging is always caller-constructed; the
// package never installs process-wide logging state.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseDir sets the directory the database cache is created under. The
// default is the current working directory.
func WithBaseDir(dir string) Option {
	return func(c *config) {
		if strings.TrimSpace(dir) != "" {
			c.baseDir = dir
		}
	}
}

// Model is one live device: a schema bound to a running server process and a
// set of connected process variables. Construction drives generation,
// process startup, connection and callback binding in order; Ready reports
// when the bounded connection wait has completed.
//
// Change handlers run on the PV client's execution context, concurrent with
// the control thread. Handlers that touch shared Model-adjacent state own
// their own serialization.
type Model struct {
	schema   *Schema
	device   string
	macros   []database.Macro
	output   database.Output
	cacheDir string
	proc     *process.Supervisor
	client   pv.Client
	provider any
	logger   *slog.Logger

	mu    sync.RWMutex
	conns map[string]pv.Conn
	subs  map[string]pv.SubscriptionID
	ready bool
}

// New builds a Model: renders the schema's database and startup script into
// the cache directory, launches the server process over them, obtains a
// handle for every declared record, wires change handlers, then waits, with
// a bounded deadline, for the handles to connect. A server that cannot be
// started is fatal. By default an expired wait still produces a ready Model
// (best-effort startup); WithStrictConnect turns it into an error.
func New(ctx context.Context, schema *Schema, device string, opts ...Option) (*Model, error) {
	if schema == nil {
		return nil, errors.New("ioc: schema is required")
	}
	if strings.TrimSpace(device) == "" {
		return nil, errors.New("ioc: device name is required")
	}

	cfg := &config{
		command: defaultCommand,
		timeout: defaultConnectTimeout,
		poll:    defaultPollInterval,
		console: true,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.client == nil {
		return nil, errors.New("ioc: pv client is required")
	}
	if cfg.baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("ioc: resolve working directory: %w", err)
		}
		cfg.baseDir = wd
	}

	m := &Model{
		schema:   schema,
		device:   device,
		macros:   append([]database.Macro{{Key: "device", Value: device}}, cfg.macros...),
		client:   cfg.client,
		provider: cfg.provider,
		logger:   cfg.logger,
		conns:    make(map[string]pv.Conn, schema.Len()),
		subs:     make(map[string]pv.SubscriptionID, schema.Len()),
	}
	if m.provider == nil {
		m.provider = m
	}

	if err := m.startup(cfg); err != nil {
		return nil, err
	}
	if err := m.connect(ctx, cfg); err != nil {
		m.stopProcess()
		return nil, err
	}

	m.mu.Lock()
	m.ready = true
	m.mu.Unlock()
	m.logger.Info("ioc: model ready", "model", schema.Name(), "device", device)
	return m, nil
}

// startup generates the database files and launches the server process.
func (m *Model) startup(cfg *config) error {
	out, err := database.Generate(m.schema.Name(), m.schema.recordList(), m.macros)
	if err != nil {
		return err
	}
	dir, err := database.WriteFiles(cfg.baseDir, m.schema.Name(), out)
	if err != nil {
		return err
	}
	m.output = out
	m.cacheDir = dir

	procOpts := []process.Option{process.WithLogger(m.logger)}
	if !cfg.console {
		procOpts = append(procOpts, process.WithoutConsole())
	}
	proc, err := process.Start(cfg.command, m.schema.Name()+".cmd", dir, procOpts...)
	if err != nil {
		return fmt.Errorf("ioc: %w", err)
	}
	m.proc = proc
	m.logger.Debug("ioc: server started", "command", cfg.command, "pid", proc.Pid())
	return nil
}

// connect obtains a handle per declared record, binds change handlers, then
// polls until every handle reports connected or the deadline expires.
// Handler attachment happens before connection completes: a handle may fire
// notifications before the wait finishes or the model is marked ready.
func (m *Model) connect(ctx context.Context, cfg *config) error {
	pending := make(map[string]pv.Conn, m.schema.Len())
	for _, def := range m.schema.Fields() {
		address := m.device + ":" + def.Record().Name()
		conn, err := m.client.Connect(address)
		if err != nil {
			return fmt.Errorf("ioc: connect %s: %w", address, err)
		}
		m.mu.Lock()
		m.conns[def.Name()] = conn
		m.mu.Unlock()
		pending[def.Name()] = conn

		if err := m.Bind(def.Name()); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(cfg.timeout)
	for len(pending) > 0 {
		for name, conn := range pending {
			if conn.Connected() {
				delete(pending, name)
			}
		}
		if len(pending) == 0 || !time.Now().Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ioc: connection wait: %w", ctx.Err())
		case <-time.After(cfg.poll):
		}
	}

	if len(pending) > 0 {
		names := make([]string, 0, len(pending))
		for name := range pending {
			names = append(names, name)
		}
		sort.Strings(names)
		if cfg.strict {
			return fmt.Errorf("%w: %s", ErrConnectTimeout, strings.Join(names, ", "))
		}
		m.logger.Warn("ioc: proceeding with unconnected records", "fields", names)
	}
	return nil
}

// Schema returns the model's schema.
func (m *Model) Schema() *Schema { return m.schema }

// Device returns the device namespace all records are addressed under.
func (m *Model) Device() string { return m.device }

// Output returns the generated database and script texts.
func (m *Model) Output() database.Output { return m.output }

// Ready reports whether construction completed its bounded connection wait.
// A ready model may still hold unconnected handles under the best-effort
// policy; Connected and Unconnected expose that degradation.
func (m *Model) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// PV returns the connection handle bound to a declared field name.
func (m *Model) PV(field string) (pv.Conn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, ok := m.conns[field]
	return conn, ok
}

// Connected reports whether a declared field's handle is live.
func (m *Model) Connected(field string) bool {
	conn, ok := m.PV(field)
	return ok && conn.Connected()
}

// Unconnected returns the declared field names whose handles are not live,
// sorted for stable reporting.
func (m *Model) Unconnected() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for name, conn := range m.conns {
		if !conn.Connected() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Shutdown terminates the server process and removes the database cache.
// Cleanup is best-effort: steps tolerate an already-dead process or an
// already-removed cache. A model must not be shut down before its
// constructor has returned.
func (m *Model) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	for field, id := range m.subs {
		if conn, ok := m.conns[field]; ok {
			conn.Unsubscribe(id)
		}
		delete(m.subs, field)
	}
	m.mu.Unlock()

	if m.proc == nil {
		return nil
	}
	return m.proc.Stop(ctx)
}

func (m *Model) stopProcess() {
	if m.proc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.proc.Stop(ctx); err != nil {
		m.logger.Debug("ioc: cleanup stop failed", "error", err)
	}
}
