package store

import (
	"fmt"
	"testing"

	"sobesednik/internal/models"
)

func msg(id, content string) models.Message {
	return models.Message{
		ID:      id,
		RoomID:  "room-1",
		Sender:  models.Sender{ID: "u1", DisplayName: "Alice"},
		Content: content,
		Type:    models.MessageTypeText,
	}
}

func TestMessageStore_AppendDedup(t *testing.T) {
	s := NewMessageStore()

	if !s.Append("room-1", msg("a", "first")) {
		t.Error("first append should succeed")
	}
	if !s.Append("room-1", msg("b", "second")) {
		t.Error("append of new id should succeed")
	}
	if s.Append("room-1", msg("a", "duplicate")) {
		t.Error("duplicate id should be a no-op")
	}

	log := s.Messages("room-1")
	if len(log) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(log))
	}
	// First arrival wins.
	if log[0].Content != "first" {
		t.Errorf("expected 'first', got '%s'", log[0].Content)
	}
}

func TestMessageStore_DedupIsPerRoom(t *testing.T) {
	s := NewMessageStore()

	s.Append("room-1", msg("a", "one"))
	if !s.Append("room-2", msg("a", "one")) {
		t.Error("same id in a different room should be accepted")
	}
}

func TestMessageStore_AppendOrder(t *testing.T) {
	s := NewMessageStore()

	for i := 0; i < 5; i++ {
		s.Append("room-1", msg(fmt.Sprintf("m%d", i), fmt.Sprintf("msg %d", i)))
	}

	log := s.Messages("room-1")
	for i, m := range log {
		if m.Content != fmt.Sprintf("msg %d", i) {
			t.Errorf("index %d: expected 'msg %d', got '%s'", i, i, m.Content)
		}
	}
}

func TestMessageStore_SeedReplaces(t *testing.T) {
	s := NewMessageStore()

	s.Append("room-1", msg("old", "stale"))
	s.Seed("room-1", []models.Message{msg("m1", "one"), msg("m2", "two")})

	log := s.Messages("room-1")
	if len(log) != 2 {
		t.Fatalf("expected 2 messages after seed, got %d", len(log))
	}
	if log[0].ID != "m1" || log[1].ID != "m2" {
		t.Errorf("seed order not preserved: %v", log)
	}

	// The replaced log's ids are forgotten.
	if !s.Append("room-1", msg("old", "back")) {
		t.Error("id from the replaced log should be appendable again")
	}
}

func TestMessageStore_SeedThenLiveDuplicate(t *testing.T) {
	s := NewMessageStore()

	s.Seed("room-1", []models.Message{msg("m1", "one"), msg("m2", "two")})

	if s.Append("room-1", msg("m2", "two again")) {
		t.Error("live push of a backfilled message should be dropped")
	}
	if !s.Append("room-1", msg("m3", "three")) {
		t.Error("new live message should append")
	}
	if got := s.Len("room-1"); got != 3 {
		t.Errorf("expected 3 messages, got %d", got)
	}
}

func TestMessageStore_SeedEmpty(t *testing.T) {
	s := NewMessageStore()

	s.Append("room-1", msg("a", "one"))
	s.Seed("room-1", nil)

	if got := s.Len("room-1"); got != 0 {
		t.Errorf("expected empty log after nil seed, got %d", got)
	}
}
