package store

import (
	"sync"
	"time"
)

// TypingAggregator keeps the per-room set of users the server reports
// as typing, and debounces the local user's outbound typing signal.
//
// Remote state is never expired locally: each TYPING payload from the
// server is a full replacement and stays authoritative until the next
// one. The debouncer emits isTyping=true at most once per window; edits
// inside the window only extend it. Expiry, an explicit send, or input
// going empty emit isTyping=false and cancel the timer.
type TypingAggregator struct {
	mu      sync.Mutex
	byRoom  map[string][]string
	emit    func(roomID string, isTyping bool)
	timeout time.Duration

	timer      *time.Timer
	timerGen   int
	active     bool
	activeRoom string
}

// NewTypingAggregator wires the debouncer to an emit function that
// turns transitions into outbound TYPING frames.
func NewTypingAggregator(timeout time.Duration, emit func(roomID string, isTyping bool)) *TypingAggregator {
	return &TypingAggregator{
		byRoom:  make(map[string][]string),
		emit:    emit,
		timeout: timeout,
	}
}

// ApplyRemote replaces the room's typing set with the server's latest
// payload.
func (t *TypingAggregator) ApplyRemote(roomID string, users []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.byRoom[roomID] = append([]string(nil), users...)
}

// Users returns a copy of the room's current typing set.
func (t *TypingAggregator) Users(roomID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.byRoom[roomID]...)
}

// InputChanged reflects the state of the local compose box. Non-empty
// text starts or extends the debounce window; empty text ends it.
func (t *TypingAggregator) InputChanged(roomID, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if text == "" {
		t.stopLocked(true)
		return
	}

	if t.active && t.activeRoom == roomID {
		t.armTimerLocked()
		return
	}
	if t.active {
		// Compose box moved to another room mid-window.
		t.stopLocked(true)
	}

	t.active = true
	t.activeRoom = roomID
	t.armTimerLocked()
	t.emit(roomID, true)
}

// MessageSent reports an explicit send: the pending expiry is cancelled
// and isTyping=false goes out immediately.
func (t *TypingAggregator) MessageSent(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelTimerLocked()
	t.active = false
	t.emit(roomID, false)
}

// Reset cancels any pending debounce without emitting. Used on room
// switch and teardown, where the old room is already left.
func (t *TypingAggregator) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelTimerLocked()
	t.active = false
}

// armTimerLocked replaces the pending timer. A generation counter
// guards against a stale timer that fired before it could be stopped.
func (t *TypingAggregator) armTimerLocked() {
	t.cancelTimerLocked()
	t.timerGen++
	gen := t.timerGen
	t.timer = time.AfterFunc(t.timeout, func() { t.expire(gen) })
}

func (t *TypingAggregator) expire(gen int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || gen != t.timerGen {
		return
	}
	t.active = false
	t.emit(t.activeRoom, false)
}

func (t *TypingAggregator) stopLocked(emitFalse bool) {
	if !t.active {
		return
	}
	t.cancelTimerLocked()
	t.active = false
	if emitFalse {
		t.emit(t.activeRoom, false)
	}
}

func (t *TypingAggregator) cancelTimerLocked() {
	t.timerGen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
