package store

import (
	"sync"

	"sobesednik/internal/models"
)

// MessageStore is the per-room ordered, deduplicated message log. It is
// the single owner of message state: history seeds replace a room's log
// wholesale, live appends go to the tail, and a message id seen twice
// in the same room is dropped on arrival.
type MessageStore struct {
	mu     sync.RWMutex
	byRoom map[string][]models.Message
	seen   map[string]map[string]struct{}
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		byRoom: make(map[string][]models.Message),
		seen:   make(map[string]map[string]struct{}),
	}
}

// Seed replaces the room's entire log. Messages must already be in
// chronological (oldest-first) order; duplicate ids within the seed
// keep their first occurrence.
func (s *MessageStore) Seed(roomID string, messages []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := make([]models.Message, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		log = append(log, m)
	}

	s.byRoom[roomID] = log
	s.seen[roomID] = seen
}

// Append adds one message at the tail. It reports false and leaves the
// log untouched when the id is already present, which covers a message
// arriving once via backfill and again via live push.
func (s *MessageStore) Append(roomID string, msg models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen, ok := s.seen[roomID]
	if !ok {
		seen = make(map[string]struct{})
		s.seen[roomID] = seen
	}
	if _, dup := seen[msg.ID]; dup {
		return false
	}

	seen[msg.ID] = struct{}{}
	s.byRoom[roomID] = append(s.byRoom[roomID], msg)
	return true
}

// Messages returns a copy of the room's log in display order.
func (s *MessageStore) Messages(roomID string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.byRoom[roomID]
	out := make([]models.Message, len(log))
	copy(out, log)
	return out
}

func (s *MessageStore) Len(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byRoom[roomID])
}
