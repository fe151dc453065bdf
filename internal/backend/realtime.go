package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/examdeck/examdeck/internal/logger"
)

// Server→client events.
const (
	EventConnect           = "connect"
	EventDisconnect        = "disconnect"
	EventInitialData       = "initial_data"
	EventMonitoringUpdate  = "monitoring_update"
	EventMonitoringStarted = "monitoring_started"
	EventMonitoringStopped = "monitoring_stopped"
	EventKillCompleted     = "kill_completed"
	EventAIKillCompleted   = "ai_kill_completed"
	EventTabsClosed        = "tabs_closed"
	EventError             = "error"
)

// Client→server events.
const (
	EventStartMonitoring = "start_monitoring"
	EventStopMonitoring  = "stop_monitoring"
	EventRequestUpdate   = "request_update"
)

// ConnState is the realtime connection state.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

// String returns a human-readable state label.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Event is one message from the realtime channel. Connect and disconnect
// transitions are delivered on the same stream as server events, so the
// consumer sees one ordered sequence.
type Event struct {
	Name string
	Data json.RawMessage
}

// envelope is the JSON wire format of a realtime message.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// reconnect policy
const (
	maxReconnectAttempts = 10
	maxReconnectBackoff  = 30 * time.Second
)

// Realtime maintains the websocket connection to the backend, reconnecting
// automatically with capped attempts. Consumers range over Events(); the
// channel is closed when reconnection attempts are exhausted or Close is
// called.
type Realtime struct {
	wsURL  string
	dialer *websocket.Dialer
	log    logger.Logger

	events chan Event

	writeMu sync.Mutex
	conn    *websocket.Conn
	connMu  sync.Mutex

	done      chan struct{}
	closeOnce sync.Once

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(context.Context, time.Duration) error
}

// NewRealtime creates a realtime client for the given backend base URL.
// The http(s) scheme is rewritten to ws(s), with the channel served at /ws.
func NewRealtime(baseURL string, log logger.Logger) (*Realtime, error) {
	if log == nil {
		log = logger.NewEnvLogger("[realtime]")
	}
	wsURL, err := websocketURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Realtime{
		wsURL:  wsURL,
		dialer: &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		log:    log,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		sleep:  sleepCtx,
	}, nil
}

// websocketURL converts a backend base URL to its websocket endpoint.
func websocketURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid backend URL %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported backend URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// Events returns the stream of realtime events.
func (r *Realtime) Events() <-chan Event {
	return r.events
}

// Start dials the backend and runs the read/reconnect loop until the context
// is cancelled, Close is called, or reconnection attempts are exhausted.
// The events channel is closed when the loop exits.
func (r *Realtime) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Realtime) run(ctx context.Context) {
	defer close(r.events)

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		default:
		}

		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			if backoff > maxReconnectBackoff {
				backoff = maxReconnectBackoff
			}
			r.log.Debug("reconnecting in %s (attempt %d/%d)", backoff, attempt, maxReconnectAttempts)
			if err := r.sleep(ctx, backoff); err != nil {
				return
			}
		}

		conn, _, err := r.dialer.DialContext(ctx, r.wsURL, nil)
		if err != nil {
			attempt++
			if attempt > maxReconnectAttempts {
				r.log.Warn("giving up on realtime channel after %d attempts: %v", maxReconnectAttempts, err)
				return
			}
			continue
		}

		r.setConn(conn)
		attempt = 0
		if !r.emit(Event{Name: EventConnect}) {
			return
		}

		reason := r.readLoop(conn)
		r.setConn(nil)

		data, _ := json.Marshal(ErrorPayload{Message: reason})
		if !r.emit(Event{Name: EventDisconnect, Data: data}) {
			return
		}
		attempt = 1
	}
}

// readLoop reads events until the connection drops, returning the reason.
func (r *Realtime) readLoop(conn *websocket.Conn) string {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err.Error()
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			r.log.Warn("dropping malformed realtime message: %v", err)
			continue
		}
		if !r.emit(Event{Name: env.Event, Data: env.Data}) {
			return "closed"
		}
	}
}

// emit delivers an event unless the client has been closed.
// Returns false when the client is shutting down.
func (r *Realtime) emit(ev Event) bool {
	select {
	case <-r.done:
		return false
	case r.events <- ev:
		return true
	}
}

// Send writes a client→server event to the channel.
func (r *Realtime) Send(event string, data interface{}) error {
	conn := r.currentConn()
	if conn == nil {
		return fmt.Errorf("realtime channel is not connected")
	}

	env := envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		env.Data = raw
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Close shuts down the client and the underlying connection.
// Safe to call more than once, and safe if Start was never called.
func (r *Realtime) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		if conn := r.currentConn(); conn != nil {
			conn.Close() //nolint:errcheck // Cleanup, error not actionable
		}
	})
}

func (r *Realtime) setConn(conn *websocket.Conn) {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	r.conn = conn
}

func (r *Realtime) currentConn() *websocket.Conn {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	return r.conn
}
