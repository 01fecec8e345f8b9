package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultReconnectDelay is the fixed pause between a close and the next dial
const DefaultReconnectDelay = 5 * time.Second

// Status is the connection state
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "DISCONNECTED"
	case StatusConnecting:
		return "CONNECTING"
	case StatusConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// Conn is the subset of *websocket.Conn the manager needs
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens a realtime connection
type Dialer interface {
	Dial(ctx context.Context, rawURL string, header http.Header) (Conn, error)
}

// FrameHandler consumes inbound frames. *Router implements it.
type FrameHandler interface {
	Handle(frame []byte)
}

// WebsocketDialer dials with gorilla/websocket
type WebsocketDialer struct {
	Dialer *websocket.Dialer
}

func (d WebsocketDialer) Dial(ctx context.Context, rawURL string, header http.Header) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, rawURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}
	return conn, nil
}

// ConnConfig configures a ConnectionManager
type ConnConfig struct {
	URL            string
	Token          string
	ReconnectDelay time.Duration
	Header         http.Header
}

// ConnOption customises a ConnectionManager
type ConnOption func(*ConnectionManager)

// WithStatusHook registers a callback for every state transition
func WithStatusHook(fn func(Status)) ConnOption {
	return func(m *ConnectionManager) { m.onStatus = fn }
}

// WithTimer replaces time.After for the reconnect wait
func WithTimer(after func(time.Duration) <-chan time.Time) ConnOption {
	return func(m *ConnectionManager) { m.after = after }
}

// ConnectionManager owns one realtime connection and keeps it alive.
// After a close it schedules exactly one reconnect after a fixed delay;
// there is no backoff growth and no retry cap.
type ConnectionManager struct {
	cfg     ConnConfig
	dialer  Dialer
	handler FrameHandler
	logger  *zap.Logger

	after    func(time.Duration) <-chan time.Time
	onStatus func(Status)

	mu       sync.Mutex
	status   Status
	conn     Conn
	attempts int
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}

	closeOnce sync.Once
}

// NewConnectionManager creates a manager in the DISCONNECTED state
func NewConnectionManager(cfg ConnConfig, dialer Dialer, handler FrameHandler, logger *zap.Logger, opts ...ConnOption) *ConnectionManager {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if dialer == nil {
		dialer = WebsocketDialer{}
	}
	m := &ConnectionManager{
		cfg:     cfg,
		dialer:  dialer,
		handler: handler,
		logger:  logger,
		after:   time.After,
		status:  StatusDisconnected,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins connecting. It may be called once.
func (m *ConnectionManager) Start(ctx context.Context) error {
	target, err := m.dialURL()
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("connection manager already started")
	}
	m.started = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	go m.run(ctx, target)
	return nil
}

// Close stops reconnecting, closes the socket and waits for the reader to exit
func (m *ConnectionManager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		started := m.started
		if m.cancel != nil {
			m.cancel()
		}
		conn := m.conn
		m.mu.Unlock()

		if conn != nil {
			_ = conn.Close()
		}
		if started {
			<-m.done
		}
	})
	return nil
}

// Status returns the current state
func (m *ConnectionManager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Attempts returns how many dials have been started
func (m *ConnectionManager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func (m *ConnectionManager) run(ctx context.Context, target string) {
	defer close(m.done)
	defer m.setStatus(StatusDisconnected)

	for {
		m.mu.Lock()
		m.attempts++
		attempt := m.attempts
		m.mu.Unlock()
		m.setStatus(StatusConnecting)

		conn, err := m.dialer.Dial(ctx, target, m.cfg.Header)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("Realtime connection failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			m.setStatus(StatusDisconnected)
		} else {
			m.serve(ctx, conn)
		}

		if ctx.Err() != nil {
			return
		}

		m.logger.Info("Scheduling realtime reconnect",
			zap.Duration("delay", m.cfg.ReconnectDelay))
		select {
		case <-ctx.Done():
			return
		case <-m.after(m.cfg.ReconnectDelay):
		}
	}
}

// serve reads frames until the connection drops. Frames are handled in order.
func (m *ConnectionManager) serve(ctx context.Context, conn Conn) {
	m.mu.Lock()
	if ctx.Err() != nil {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.mu.Unlock()
	m.setStatus(StatusConnected)
	m.logger.Info("Realtime connection established")

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Warn("Realtime connection closed", zap.Error(err))
			}
			break
		}
		m.handler.Handle(frame)
	}

	m.mu.Lock()
	m.conn = nil
	m.mu.Unlock()
	_ = conn.Close()
	m.setStatus(StatusDisconnected)
}

func (m *ConnectionManager) setStatus(s Status) {
	m.mu.Lock()
	if m.status == s {
		m.mu.Unlock()
		return
	}
	m.status = s
	hook := m.onStatus
	m.mu.Unlock()

	if hook != nil {
		hook(s)
	}
}

func (m *ConnectionManager) dialURL() (string, error) {
	u, err := url.Parse(m.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid realtime url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("realtime url must use ws or wss, got %q", u.Scheme)
	}
	if m.cfg.Token != "" {
		q := u.Query()
		q.Set("token", m.cfg.Token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
