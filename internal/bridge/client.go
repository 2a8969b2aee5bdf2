package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/platform"
)

const (
	// DefaultHost is where the bridge is always reached, whichever local
	// address it is bound to.
	DefaultHost = "127.0.0.1"

	// DefaultProbeTimeout bounds each discovery probe (TCP connect and
	// the signature GET).
	DefaultProbeTimeout = 500 * time.Millisecond

	// DefaultRequestTimeout bounds steady-state queries.
	DefaultRequestTimeout = 3 * time.Second

	// maxBody caps how much of a response is read.
	maxBody = 32 << 20
)

// Client talks to one bridge instance. The zero port means unconnected.
type Client struct {
	host           string
	port           int
	baseURL        string
	processName    string
	probeTimeout   time.Duration
	requestTimeout time.Duration

	sockets platform.SocketTable
	http    *http.Client
	log     *zap.Logger

	// probe is replaceable in tests.
	probe func(ctx context.Context, port int) bool
}

// Option configures a Client.
type Option func(*Client)

// WithHost overrides DefaultHost.
func WithHost(host string) Option {
	return func(c *Client) { c.host = host }
}

// WithPort connects the client to a known port without probing.
func WithPort(port int) Option {
	return func(c *Client) { c.port = port }
}

// WithSocketTable sets the listening-socket source used by Discover.
func WithSocketTable(t platform.SocketTable) Option {
	return func(c *Client) { c.sockets = t }
}

// WithProbeTimeout overrides DefaultProbeTimeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) { c.probeTimeout = d }
}

// WithRequestTimeout overrides DefaultRequestTimeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

// WithHTTPClient replaces the HTTP client. Per-call timeouts are applied
// through the request context, so the client's own Timeout may stay zero.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client. Without WithPort it is unconnected until Discover
// succeeds.
func New(opts ...Option) *Client {
	c := &Client{
		host:           DefaultHost,
		probeTimeout:   DefaultProbeTimeout,
		requestTimeout: DefaultRequestTimeout,
		http:           &http.Client{},
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.probe = c.probePort
	if c.port != 0 {
		c.connect(c.port)
	}
	return c
}

// Connected reports whether a bridge address is known.
func (c *Client) Connected() bool {
	return c.baseURL != ""
}

// BaseURL returns the bridge URL, or "" when unconnected.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Port returns the bridge port, or 0 when unconnected.
func (c *Client) Port() int {
	return c.port
}

// Host returns the host the client connects to.
func (c *Client) Host() string {
	return c.host
}

func (c *Client) connect(port int) {
	c.port = port
	c.baseURL = "http://" + net.JoinHostPort(c.host, strconv.Itoa(port))
}

func (c *Client) disconnect() {
	c.port = 0
	c.baseURL = ""
}

// get issues a GET against the bridge and returns the raw JSON body.
//
// When the request fails to connect or times out, the bridge has most
// likely restarted on another port: the client forgets its address,
// re-runs discovery with the last process filter, and retries exactly
// once. Any other failure is returned as is.
func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if !c.Connected() {
		return nil, ErrNotConnected
	}
	body, err := c.fetch(ctx, c.baseURL, path, params)
	if err == nil || ctx.Err() != nil || !isConnectivityError(err) {
		return body, err
	}

	oldURL := c.baseURL
	c.log.Warn("bridge request failed, re-discovering",
		zap.String("url", oldURL),
		zap.String("path", path),
		zap.Error(err))
	c.disconnect()
	if !c.Discover(ctx, c.processName) {
		return nil, &LostError{URL: oldURL, Err: err}
	}
	if c.baseURL != oldURL {
		c.log.Info("bridge moved",
			zap.String("from", oldURL),
			zap.String("to", c.baseURL))
	}
	return c.fetch(ctx, c.baseURL, path, params)
}

func (c *Client) fetch(ctx context.Context, baseURL, path string, params url.Values) (json.RawMessage, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	u := baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, Code: resp.StatusCode, Body: strings.TrimSpace(model.TruncateText(string(body), 200))}
	}
	return body, nil
}

// isConnectivityError reports whether err means the bridge could not be
// reached: refused or reset connections, timeouts, truncated responses.
func isConnectivityError(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// Get issues a raw GET against the bridge with the same recovery rules as
// the typed queries.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return c.get(ctx, path, params)
}

// Forms lists the open top-level forms (GET /forms).
func (c *Client) Forms(ctx context.Context) ([]model.Form, error) {
	body, err := c.get(ctx, "/forms", nil)
	if err != nil {
		return nil, err
	}
	return model.DecodeForms(body)
}

// FormControls returns the control tree of one form (GET /forms/{handle}/controls).
func (c *Client) FormControls(ctx context.Context, handle int) ([]model.Control, error) {
	return c.controlTree(ctx, "/forms/"+strconv.Itoa(handle)+"/controls")
}

// MainFormControls returns the main form's control tree (GET /mainform/controls).
func (c *Client) MainFormControls(ctx context.Context) ([]model.Control, error) {
	return c.controlTree(ctx, "/mainform/controls")
}

// ActiveFormControls returns the control tree of whichever form has focus
// (GET /activeform/controls).
func (c *Client) ActiveFormControls(ctx context.Context) ([]model.Control, error) {
	return c.controlTree(ctx, "/activeform/controls")
}

// Controls runs the bridge's flat, filtered query (GET /controls).
func (c *Client) Controls(ctx context.Context, filter model.ControlFilter) ([]model.Control, error) {
	params := url.Values{}
	if filter.ClassName != "" {
		params.Set("class", filter.ClassName)
	}
	if filter.Name != "" {
		params.Set("name", filter.Name)
	}
	if filter.Caption != "" {
		params.Set("caption", filter.Caption)
	}
	body, err := c.get(ctx, "/controls", params)
	if err != nil {
		return nil, err
	}
	return model.DecodeControls(body)
}

// FindControlByCaption returns the first control whose caption matches, or
// nil when there is none.
func (c *Client) FindControlByCaption(ctx context.Context, caption string) (*model.Control, error) {
	controls, err := c.Controls(ctx, model.ControlFilter{Caption: caption})
	if err != nil {
		return nil, err
	}
	if len(controls) == 0 {
		return nil, nil
	}
	return &controls[0], nil
}

// FindControlsByClass returns every control of one VCL class.
func (c *Client) FindControlsByClass(ctx context.Context, className string) ([]model.Control, error) {
	return c.Controls(ctx, model.ControlFilter{ClassName: className})
}

func (c *Client) controlTree(ctx context.Context, path string) ([]model.Control, error) {
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return model.DecodeControls(body)
}
