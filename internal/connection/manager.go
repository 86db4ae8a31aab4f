package connection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/realtime"
)

// Config holds the client-side connection settings.
type Config struct {
	BaseURL         string
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	MaxAttempts     int
	BufferSize      int
	LivenessTimeout time.Duration

	HTTPClient *http.Client
	Dialer     Dialer
	Logger     *slog.Logger

	// OnEvent is called for every buffered event, from the manager goroutine.
	OnEvent func(realtime.Event)
	// OnStateChange is called after every transition, from the goroutine
	// that caused it.
	OnStateChange func(Status)
}

// DefaultConfig returns the settings used by the web dashboard: 1s base
// delay, 30s cap, five reconnect attempts and the last 50 events.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		BaseDelay:       time.Second,
		MaxDelay:        30 * time.Second,
		MaxAttempts:     5,
		BufferSize:      50,
		LivenessTimeout: 75 * time.Second,
	}
}

// Manager owns one stream subscription. It runs an explicit state machine:
//
//	connecting -> open                  on the server's connection event
//	open|connecting -> reconnecting     on transport error or stream end
//	reconnecting -> connecting          after the backoff wait
//	reconnecting -> closed (offline)    once MaxAttempts retries failed
//
// Publishing through SendEvent is independent and never changes the state.
type Manager struct {
	cfg       Config
	dialer    Dialer
	publisher *Publisher
	logger    *slog.Logger
	wait      func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	status Status
	buffer []realtime.Event
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config) *Manager {
	def := DefaultConfig(cfg.BaseURL)
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.LivenessTimeout <= 0 {
		cfg.LivenessTimeout = def.LivenessTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &HTTPDialer{BaseURL: cfg.BaseURL, Client: cfg.HTTPClient}
	}

	return &Manager{
		cfg:       cfg,
		dialer:    dialer,
		publisher: NewPublisher(cfg.BaseURL, cfg.HTTPClient),
		logger:    cfg.Logger,
		wait:      sleep,
		status:    Status{State: StateClosed},
	}
}

// Start begins connecting in the background. It is a no-op while a
// connection loop is already running.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.runningLocked() {
		m.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.status = Status{State: StateConnecting}
	snapshot := m.status
	m.mu.Unlock()

	m.notify(snapshot)
	go m.run(ctx, done)
}

// Reconnect restarts the connection loop with a fresh retry budget. It is
// the only way out of the terminal offline state.
func (m *Manager) Reconnect(ctx context.Context) {
	m.Close()
	m.Start(ctx)
}

// Close stops the loop, cancelling any pending backoff wait, and blocks
// until the loop goroutine has exited.
func (m *Manager) Close() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.status
}

// Events returns the most recent non-heartbeat events, oldest first.
func (m *Manager) Events() []realtime.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]realtime.Event, len(m.buffer))
	copy(out, m.buffer)
	return out
}

// Done is closed when the current loop exits, either after Close or after
// giving up. It returns nil before the first Start.
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.done
}

// SendEvent submits e to the ingest endpoint. Failures are returned to the
// caller only.
func (m *Manager) SendEvent(ctx context.Context, e realtime.Event) error {
	return m.publisher.Publish(ctx, e)
}

func (m *Manager) runningLocked() bool {
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	attempt := 0
	for {
		m.transition(StateConnecting, attempt, nil, false)

		err := m.session(ctx, &attempt)
		if ctx.Err() != nil {
			m.transition(StateClosed, attempt, nil, false)
			return
		}

		if attempt >= m.cfg.MaxAttempts {
			m.logger.Error("realtime connection gave up",
				"attempts", attempt,
				"error", err,
			)
			m.transition(StateClosed, attempt, err, true)
			return
		}

		delay := Backoff(attempt, m.cfg.BaseDelay, m.cfg.MaxDelay)
		m.logger.Warn("realtime connection lost, retrying",
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)
		m.transition(StateReconnecting, attempt, err, false)

		if err := m.wait(ctx, delay); err != nil {
			m.transition(StateClosed, attempt, nil, false)
			return
		}
		attempt++
	}
}

// session holds one subscription open until it fails. Receiving the
// connection event moves the manager to open and resets *attempt.
func (m *Manager) session(ctx context.Context, attempt *int) error {
	body, err := m.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = body.Close()
	}()

	stop := context.AfterFunc(ctx, func() {
		_ = body.Close()
	})
	defer stop()

	var timedOut atomic.Bool
	watchdog := time.AfterFunc(m.cfg.LivenessTimeout, func() {
		timedOut.Store(true)
		_ = body.Close()
	})
	defer watchdog.Stop()

	err = realtime.ReadFrames(body, func(e realtime.Event) error {
		watchdog.Reset(m.cfg.LivenessTimeout)

		switch e.Kind {
		case realtime.KindConnection:
			*attempt = 0
			m.transition(StateOpen, 0, nil, false)
			m.record(e)
		case realtime.KindHeartbeat:
			m.touch()
		default:
			if m.Status().State == StateOpen {
				m.record(e)
			}
		}
		return nil
	})

	switch {
	case timedOut.Load():
		return ErrLivenessTimeout
	case errors.Is(err, io.EOF):
		return ErrStreamEnded
	default:
		return err
	}
}

func (m *Manager) transition(state State, attempt int, lastErr error, offline bool) {
	m.mu.Lock()
	m.status.State = state
	m.status.Attempt = attempt
	m.status.LastError = lastErr
	m.status.Offline = offline
	snapshot := m.status
	m.mu.Unlock()

	m.logger.Debug("realtime connection state", "state", state, "attempt", attempt)
	m.notify(snapshot)
}

func (m *Manager) notify(s Status) {
	if m.cfg.OnStateChange != nil {
		m.cfg.OnStateChange(s)
	}
}

func (m *Manager) touch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status.LastHeartbeat = time.Now()
}

func (m *Manager) record(e realtime.Event) {
	m.mu.Lock()
	m.buffer = append(m.buffer, e)
	if over := len(m.buffer) - m.cfg.BufferSize; over > 0 {
		m.buffer = append(m.buffer[:0], m.buffer[over:]...)
	}
	m.mu.Unlock()

	if m.cfg.OnEvent != nil {
		m.cfg.OnEvent(e)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
