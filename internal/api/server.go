package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

// ServerConfig carries everything the gateway server needs.
type ServerConfig struct {
	// Addr is the loopback listen address, e.g. "127.0.0.1:19960".
	Addr    string
	Handler *Handler
	Logger  *slog.Logger

	// RatePerSecond and RateBurst bound how fast a single connection
	// may submit messages. Zero rate disables limiting.
	RatePerSecond int
	RateBurst     int
}

// Server accepts websocket connections from local CLIs and feeds each
// frame through the handler. One goroutine per connection; messages on
// a connection are processed strictly in order.
type Server struct {
	addr     string
	handler  *Handler
	logger   *slog.Logger
	perSec   int
	burst    int
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    cfg.Addr,
		handler: cfg.Handler,
		logger:  logger,
		perSec:  cfg.RatePerSecond,
		burst:   cfg.RateBurst,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The listener is bound to loopback; origin checks add
			// nothing for same-host CLI clients.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Serve listens on the configured address and blocks until ctx is
// cancelled or the listener fails. Open connections are closed on the
// way out.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConn)
	srv := &http.Server{Handler: mux}

	s.logger.Info("gateway listening", "addr", ln.Addr().String())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeConns()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

func (s *Server) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.track(conn)
	defer s.untrack(conn)
	defer conn.Close()

	s.logger.Debug("client connected", "remote", conn.RemoteAddr().String())

	var limiter *rate.Limiter
	if s.perSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.perSec), s.burst)
	}

	for {
		kind, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("client dropped", "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if limiter != nil {
			if err := limiter.Wait(r.Context()); err != nil {
				return
			}
		}
		resp := s.handler.Handle(raw)
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Warn("writing response", "error", err)
			return
		}
	}
}

func (s *Server) track(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// closeConns force-closes all live connections so their read loops
// unblock during shutdown.
func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "host shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = conn.Close()
	}
}
