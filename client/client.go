// Package client is the Go library CLI tools use to push artifacts to a
// running canvas host. It speaks the host's websocket protocol on
// loopback, reconnecting transparently when the host restarts between
// calls.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultPort matches the host's default listen port.
	DefaultPort = 19960

	defaultMaxRetries = 3
	defaultRetryDelay = 500 * time.Millisecond
	handshakeTimeout  = 5 * time.Second
)

var (
	// ErrUnavailable means no host answered on the configured port.
	ErrUnavailable = errors.New("display host unreachable")

	// ErrRequestFailed wraps a failure response from the host.
	ErrRequestFailed = errors.New("request failed")
)

// Options configures a Client. The zero value gets sensible defaults.
type Options struct {
	Port int

	// AutoReconnect retries a dropped connection before giving up.
	AutoReconnect bool
	MaxRetries    int
	RetryDelay    time.Duration

	Logger *slog.Logger
}

// Client is a synchronous connection to the display host. One request
// is in flight at a time; methods are safe to call from multiple
// goroutines.
type Client struct {
	port       int
	reconnect  bool
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger

	mu          sync.Mutex
	conn        *websocket.Conn
	currentFile string
	sessionPath string
}

type message struct {
	ID       string         `json:"id"`
	Action   string         `json:"action"`
	Artifact map[string]any `json:"artifact,omitempty"`
	PanelID  string         `json:"panelId,omitempty"`
}

type response struct {
	ID      string         `json:"id"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// New builds a client. No connection is made until the first request.
func New(opts Options) *Client {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		port:       opts.Port,
		reconnect:  opts.AutoReconnect,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
	}
}

// Connect dials the host. Requests dial on demand, so calling this is
// only needed to probe availability up front.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialLocked()
}

func (c *Client) dialLocked() error {
	if c.conn != nil {
		return nil
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.Dial(fmt.Sprintf("ws://127.0.0.1:%d", c.port), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.conn = conn
	return nil
}

// Close drops the connection. The client remains usable; the next
// request redials.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropLocked()
}

func (c *Client) dropLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Connected reports whether a connection is currently open. It does not
// probe the host; use Ping for that.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// CurrentFile is the persisted path of the most recent render, or ""
// when nothing has been rendered or the host did not persist it.
func (c *Client) CurrentFile() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentFile
}

// SessionPath is the host's session directory, derived from the last
// persisted artifact path.
func (c *Client) SessionPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionPath
}

// Ping reports whether a responsive host is on the other end.
func (c *Client) Ping() bool {
	resp, err := c.send("ping", nil, "")
	return err == nil && resp.Success
}

// send performs one request/response exchange, redialing dropped
// connections up to the retry budget.
func (c *Client) send(action string, artifact map[string]any, panelID string) (response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	attempts := 1
	if c.reconnect {
		attempts = c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying request", "action", action, "attempt", attempt+1)
			time.Sleep(c.retryDelay)
		}
		if err := c.dialLocked(); err != nil {
			lastErr = err
			continue
		}

		resp, err := c.exchangeLocked(message{
			ID:       uuid.NewString(),
			Action:   action,
			Artifact: artifact,
			PanelID:  panelID,
		})
		if err != nil {
			lastErr = err
			_ = c.dropLocked()
			continue
		}

		c.trackLocked(resp)
		return resp, nil
	}
	return response{}, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func (c *Client) exchangeLocked(msg message) (response, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return response{}, fmt.Errorf("encoding message: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return response{}, fmt.Errorf("sending message: %w", err)
	}
	var resp response
	if err := c.conn.ReadJSON(&resp); err != nil {
		return response{}, fmt.Errorf("reading response: %w", err)
	}
	return resp, nil
}

// trackLocked records the persisted artifact path from a successful
// response so callers can find their session directory.
func (c *Client) trackLocked(resp response) {
	if !resp.Success || resp.Data == nil {
		return
	}
	path, ok := resp.Data["filePath"].(string)
	if !ok || path == "" {
		return
	}
	c.currentFile = path
	c.sessionPath = filepath.Dir(path)
}

// renderResult pulls the panel id out of a render response, converting
// host-side failures into errors.
func renderResult(resp response, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("%w: %s", ErrRequestFailed, resp.Error)
	}
	id, _ := resp.Data["panelId"].(string)
	return id, nil
}
