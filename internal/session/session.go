// Package session ties the stores, the REST client and the live stream
// together. One loop goroutine (Run) processes stream events, loop
// commands and resolved history fetches in arrival order, so every
// mutation of message and typing state is serialized.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sobesednik/internal/catalog"
	"sobesednik/internal/config"
	"sobesednik/internal/credstore"
	"sobesednik/internal/models"
	"sobesednik/internal/rest"
	"sobesednik/internal/store"
	"sobesednik/internal/stream"

	"github.com/google/uuid"
)

// Loop commands. External callers enqueue these; only the Run goroutine
// consumes them.
type selectRoomCmd struct{ roomID string }
type sendChatCmd struct{ content string }
type typingInputCmd struct{ text string }

// historyResult is the resolved history fetch for one room selection.
// gen identifies the selection that issued it; only the latest
// selection's result may seed the store.
type historyResult struct {
	gen      int
	roomID   string
	messages []models.Message
	err      error
}

type Session struct {
	cfg      *config.Config
	rest     *rest.Client
	vault    *credstore.Store
	conn     *stream.Manager
	messages *store.MessageStore
	typing   *store.TypingAggregator
	rooms    *catalog.Catalog

	commands chan any

	credMu  sync.RWMutex
	cred    credstore.Credential
	hasCred bool

	// Room-switch state. Written only by Run; currentRoom is readable
	// from other goroutines through CurrentRoom. fetchGen counts room
	// selections so a resolved fetch from an earlier selection of the
	// same room cannot end the buffering window of a later one.
	roomMu      sync.RWMutex
	currentRoom string
	fetchGen    int
	fetching    bool
	pending     []models.Message

	onMessage   func(models.Message)
	onNotice    func(string)
	onLoggedOut func()
}

// New loads any persisted credential from the vault and wires the REST
// client, stream manager, stores and catalog into one session.
func New(cfg *config.Config, vault *credstore.Store) (*Session, error) {
	return NewWithDialer(cfg, vault, nil)
}

// NewWithDialer is New with a custom stream dialer, for tests.
func NewWithDialer(cfg *config.Config, vault *credstore.Store, dial stream.Dialer) (*Session, error) {
	s := &Session{
		cfg:      cfg,
		vault:    vault,
		messages: store.NewMessageStore(),
		commands: make(chan any, 64),
	}

	cred, ok, err := vault.Load()
	if err != nil {
		return nil, err
	}
	s.cred, s.hasCred = cred, ok

	s.rest = rest.New(cfg.APIBaseURL, s.accessToken, s.handleUnauthorized)
	if dial == nil {
		s.conn = stream.New(cfg.WSURL, s.accessToken)
	} else {
		s.conn = stream.NewWithDialer(cfg.WSURL, s.accessToken, dial)
	}
	s.typing = store.NewTypingAggregator(cfg.TypingTimeout, func(roomID string, isTyping bool) {
		s.conn.Send(models.TypingFrame(roomID, isTyping))
	})
	s.rooms = catalog.New(s.rest)

	return s, nil
}

// Accessors for the collaborating UI layer.

func (s *Session) REST() *rest.Client                  { return s.rest }
func (s *Session) Rooms() *catalog.Catalog             { return s.rooms }
func (s *Session) Messages(id string) []models.Message { return s.messages.Messages(id) }
func (s *Session) TypingUsers(id string) []string      { return s.typing.Users(id) }
func (s *Session) ConnectionState() stream.State       { return s.conn.State() }

// CurrentRoom returns the active room id, empty when none is selected.
func (s *Session) CurrentRoom() string {
	s.roomMu.RLock()
	defer s.roomMu.RUnlock()
	return s.currentRoom
}

// OnMessage registers a callback fired for every message newly appended
// from the live stream. Set before Run.
func (s *Session) OnMessage(fn func(models.Message)) { s.onMessage = fn }

// OnNotice registers a callback for transient protocol notices (server
// ERROR frames). Set before Run.
func (s *Session) OnNotice(fn func(string)) { s.onNotice = fn }

// OnLoggedOut registers a callback fired when the credential is
// rejected and the session is torn down. Set before Run.
func (s *Session) OnLoggedOut(fn func()) { s.onLoggedOut = fn }

// Connect expresses the intent to hold a live stream open. It is a
// no-op without a stored credential.
func (s *Session) Connect() { s.conn.SetIntent(true) }

// Disconnect drops the live stream. Nothing reconnects it implicitly.
func (s *Session) Disconnect() { s.conn.SetIntent(false) }

// SelectRoom switches the active room; empty id means no room.
func (s *Session) SelectRoom(roomID string) {
	s.commands <- selectRoomCmd{roomID: roomID}
}

// SendChat sends a CHAT frame for the active room over the live stream.
// Dropped silently while disconnected.
func (s *Session) SendChat(content string) {
	s.commands <- sendChatCmd{content: content}
}

// TypingInput reports the state of the compose box for the active room.
func (s *Session) TypingInput(text string) {
	s.commands <- typingInputCmd{text: text}
}

// Run processes the session's event loop until the context ends.
func (s *Session) Run(ctx context.Context) error {
	defer func() {
		s.typing.Reset()
		s.conn.Close()
	}()

	events := s.conn.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			s.handleStreamEvent(ev)
		case cmd := <-s.commands:
			s.handleCommand(ctx, cmd)
		}
	}
}

func (s *Session) handleCommand(ctx context.Context, cmd any) {
	switch c := cmd.(type) {
	case selectRoomCmd:
		s.selectRoom(ctx, c.roomID)
	case sendChatCmd:
		if s.currentRoom == "" {
			return
		}
		s.conn.Send(models.ChatFrame(s.currentRoom, c.content))
		s.typing.MessageSent(s.currentRoom)
	case typingInputCmd:
		if s.currentRoom == "" {
			return
		}
		s.typing.InputChanged(s.currentRoom, c.text)
	case historyResult:
		s.applyHistory(c)
	default:
		slog.Error("unknown session command", "command", cmd)
	}
}

// selectRoom is the room-switch orchestration: LEAVE the old room if
// the stream is up, start the history backfill, JOIN the new room if
// the stream is up. While the stream is down no JOIN goes out; the
// Connected transition re-joins whatever is selected then. Reselecting
// the current room skips the LEAVE/JOIN pair but still re-fetches, so
// a failed backfill can be retried.
func (s *Session) selectRoom(ctx context.Context, roomID string) {
	sameRoom := roomID == s.currentRoom
	if sameRoom && roomID == "" {
		return
	}

	if !sameRoom {
		if s.currentRoom != "" && s.conn.State() == stream.Connected {
			s.conn.Send(models.LeaveFrame(s.currentRoom))
		}
		s.typing.Reset()

		s.roomMu.Lock()
		s.currentRoom = roomID
		s.roomMu.Unlock()
	}

	s.fetchGen++
	s.fetching = false
	s.pending = nil
	if roomID == "" {
		return
	}

	s.fetching = true
	gen := s.fetchGen
	if !sameRoom && s.conn.State() == stream.Connected {
		s.conn.Send(models.JoinFrame(roomID))
	}

	go func() {
		page, err := s.rest.GetMessages(ctx, roomID, "", s.cfg.HistoryLimit)
		if err != nil {
			s.commands <- historyResult{gen: gen, roomID: roomID, err: err}
			return
		}
		s.commands <- historyResult{gen: gen, roomID: roomID, messages: page.Chronological()}
	}()
}

// applyHistory seeds the room's log from a resolved fetch. A response
// from any selection but the latest is discarded, even when it is for
// the same room: an older fetch must not end the current selection's
// buffering window. Live messages that raced the fetch were buffered
// and are replayed through the deduplicating append after the seed.
func (s *Session) applyHistory(res historyResult) {
	if res.gen != s.fetchGen {
		slog.Debug("discarding stale history response", "room", res.roomID, "current", s.currentRoom)
		return
	}

	if res.err != nil {
		slog.Warn("history fetch failed, showing empty room", "room", res.roomID, "error", res.err)
		s.messages.Seed(res.roomID, nil)
	} else {
		s.messages.Seed(res.roomID, res.messages)
	}

	for _, msg := range s.pending {
		s.appendLive(res.roomID, msg)
	}
	s.pending = nil
	s.fetching = false
}

func (s *Session) handleStreamEvent(ev stream.Event) {
	switch e := ev.(type) {
	case stream.StateChange:
		slog.Info("connection state changed", "state", e.State)
		if e.State == stream.Connected && s.currentRoom != "" {
			// Re-join after an intent toggle; the selection
			// survived the disconnect.
			s.conn.Send(models.JoinFrame(s.currentRoom))
		}
	case stream.FrameReceived:
		s.handleFrame(e.Frame)
	}
}

func (s *Session) handleFrame(frame models.Frame) {
	switch frame.Type {
	case models.FrameChat:
		if frame.RoomID == "" || frame.Sender == nil {
			slog.Warn("dropping malformed CHAT frame", "frame", frame)
			return
		}
		msg := messageFromFrame(frame)
		if frame.RoomID == s.currentRoom && s.fetching {
			// History for this room is still in flight; hold the
			// message so the seed does not clobber it.
			s.pending = append(s.pending, msg)
			return
		}
		s.appendLive(frame.RoomID, msg)
	case models.FrameTyping:
		if frame.RoomID == "" {
			return
		}
		s.typing.ApplyRemote(frame.RoomID, frame.TypingUsers)
	case models.FrameUserJoined, models.FrameUserLeft:
		// Membership changes are not folded into the room catalog yet;
		// counts refresh on the next REST fetch.
		slog.Info("user event", "type", frame.Type, "room", frame.RoomID, "sender", frame.Sender)
	case models.FrameError:
		slog.Warn("server error frame", "code", frame.ErrorCode, "message", frame.ErrorMessage)
		if s.onNotice != nil {
			s.onNotice(frame.ErrorMessage)
		}
	default:
		slog.Warn("unexpected frame type", "type", frame.Type)
	}
}

func (s *Session) appendLive(roomID string, msg models.Message) {
	if !s.messages.Append(roomID, msg) {
		return
	}
	if s.onMessage != nil {
		s.onMessage(msg)
	}
}

// messageFromFrame converts a broadcast CHAT frame, filling the fields
// the server may omit.
func messageFromFrame(frame models.Frame) models.Message {
	msg := models.Message{
		ID:      frame.MessageID,
		RoomID:  frame.RoomID,
		Sender:  *frame.Sender,
		Content: frame.Content,
		Type:    models.MessageTypeText,
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if created, err := time.Parse(time.RFC3339, frame.CreatedAt); err == nil {
		msg.CreatedAt = created
	} else {
		msg.CreatedAt = time.Now()
	}
	return msg
}
