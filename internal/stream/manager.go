// Package stream owns the single live connection to the chat server.
//
// The manager is intent-driven: SetIntent(true) dials when a credential
// is available, SetIntent(false) tears the connection down. A dropped
// connection is NOT redialed automatically; the caller must toggle
// intent again. That policy matches the server's session semantics and
// is deliberate.
package stream

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"sobesednik/internal/models"

	"github.com/gorilla/websocket"
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Conn is the minimal surface the manager needs from a websocket.
type Conn interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}

// Dialer opens a live connection to the given URL.
type Dialer func(ctx context.Context, url string) (Conn, error)

// Event is either a StateChange or a FrameReceived, delivered in order
// on the manager's events channel.
type Event interface {
	streamEvent()
}

type StateChange struct {
	State State
}

type FrameReceived struct {
	Frame models.Frame
}

func (StateChange) streamEvent()   {}
func (FrameReceived) streamEvent() {}

const eventBuffer = 64

type Manager struct {
	url   string
	token func() (string, bool)
	dial  Dialer

	events chan Event

	mu     sync.Mutex
	state  State
	conn   Conn
	intent bool
	gen    int
}

// New builds a manager dialing over gorilla/websocket. The access token
// is consulted at dial time and carried as a query parameter.
func New(wsURL string, token func() (string, bool)) *Manager {
	return NewWithDialer(wsURL, token, gorillaDial)
}

func NewWithDialer(wsURL string, token func() (string, bool), dial Dialer) *Manager {
	return &Manager{
		url:    wsURL,
		token:  token,
		dial:   dial,
		events: make(chan Event, eventBuffer),
	}
}

func gorillaDial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Events delivers state changes and received frames to the one consumer
// driving the session loop.
func (m *Manager) Events() <-chan Event {
	return m.events
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetIntent connects or disconnects. Turning intent on while no
// credential is stored leaves the manager disconnected.
func (m *Manager) SetIntent(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.intent = active

	if !active {
		m.gen++
		if m.conn != nil {
			_ = m.conn.Close()
			m.conn = nil
		}
		m.setStateLocked(Disconnected)
		return
	}

	if m.state != Disconnected {
		return
	}
	token, ok := m.token()
	if !ok {
		return
	}

	m.gen++
	gen := m.gen
	m.setStateLocked(Connecting)
	go m.connect(gen, token)
}

func (m *Manager) connect(gen int, token string) {
	conn, err := m.dial(context.Background(), m.url+"?token="+url.QueryEscape(token))

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		slog.Warn("live stream dial failed", "error", err)
		m.setStateLocked(Disconnected)
		m.mu.Unlock()
		return
	}
	m.conn = conn
	m.setStateLocked(Connected)
	m.mu.Unlock()

	go m.readPump(gen, conn)
}

func (m *Manager) readPump(gen int, conn Conn) {
	for {
		var frame models.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		m.emit(FrameReceived{Frame: frame})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	_ = conn.Close()
	m.conn = nil
	// No redial here: a closed stream stays down until intent is
	// toggled again.
	m.setStateLocked(Disconnected)
}

// Send transmits a frame while Connected and silently drops it
// otherwise. Lost frames are accepted, not queued.
func (m *Manager) Send(frame models.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Connected || m.conn == nil {
		return
	}
	if err := m.conn.WriteJSON(frame); err != nil {
		slog.Warn("live stream write failed", "type", frame.Type, "error", err)
	}
}

// Close tears down the connection and drops intent.
func (m *Manager) Close() {
	m.SetIntent(false)
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	m.state = s
	m.emit(StateChange{State: s})
}

func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		slog.Warn("stream event dropped, consumer too slow")
	}
}
