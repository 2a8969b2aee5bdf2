package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/platform"
)

// Config holds the settings Manager builds its Client from.
type Config struct {
	Host           string
	Port           int    // fixed port; 0 = discover
	ProcessName    string // discovery filter; "" = any process
	ProbeTimeout   time.Duration
	RequestTimeout time.Duration
}

// Manager owns the process-wide bridge connection. It creates the Client
// lazily and hands callers either a connected Client or ErrUnavailable.
// After a failed discovery every call scans again.
type Manager struct {
	cfg     Config
	sockets platform.SocketTable
	log     *zap.Logger
	client  *Client
}

// NewManager returns a Manager. sockets may be nil when cfg.Port is fixed.
func NewManager(cfg Config, sockets platform.SocketTable, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{cfg: cfg, sockets: sockets, log: log}
}

// Bridge returns the connected client, discovering it if needed.
func (m *Manager) Bridge(ctx context.Context) (*Client, error) {
	c := m.ensureClient()
	if c.Connected() {
		return c, nil
	}
	if c.Discover(ctx, m.cfg.ProcessName) {
		return c, nil
	}
	return nil, ErrUnavailable
}

// Rediscover forces a fresh scan. An empty processName falls back to the
// configured filter.
func (m *Manager) Rediscover(ctx context.Context, processName string) (*Client, error) {
	if processName == "" {
		processName = m.cfg.ProcessName
	}
	c := m.ensureClient()
	if c.Discover(ctx, processName) {
		return c, nil
	}
	return nil, ErrUnavailable
}

func (m *Manager) ensureClient() *Client {
	if m.client != nil {
		return m.client
	}
	opts := []Option{
		WithSocketTable(m.sockets),
		WithLogger(m.log.Named("bridge")),
	}
	if m.cfg.Host != "" {
		opts = append(opts, WithHost(m.cfg.Host))
	}
	if m.cfg.Port != 0 {
		opts = append(opts, WithPort(m.cfg.Port))
	}
	if m.cfg.ProbeTimeout > 0 {
		opts = append(opts, WithProbeTimeout(m.cfg.ProbeTimeout))
	}
	if m.cfg.RequestTimeout > 0 {
		opts = append(opts, WithRequestTimeout(m.cfg.RequestTimeout))
	}
	m.client = New(opts...)
	return m.client
}
