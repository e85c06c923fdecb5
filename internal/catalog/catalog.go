// Package catalog caches the metadata of rooms the user belongs to.
// REST is the source of truth; local create/update/delete keep the
// cache coherent optimistically. Live USER_JOINED/USER_LEFT events do
// not touch member counts here.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"sobesednik/internal/models"
	"sobesednik/internal/rest"

	"github.com/c-pro/geche"
)

type roomAPI interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	CreateRoom(ctx context.Context, req rest.CreateRoomRequest) (models.Room, error)
	UpdateRoom(ctx context.Context, roomID string, req rest.UpdateRoomRequest) (models.Room, error)
	DeleteRoom(ctx context.Context, roomID string) error
	JoinInvite(ctx context.Context, code string) (models.Room, error)
}

type Catalog struct {
	api roomAPI

	mu    sync.Mutex
	cache *geche.MapCache[string, models.Room]
}

func New(api roomAPI) *Catalog {
	return &Catalog{
		api:   api,
		cache: geche.NewMapCache[string, models.Room](),
	}
}

// List fetches all rooms and replaces the cache. A fetch failure is
// logged and yields an empty catalog; callers must tolerate that.
func (c *Catalog) List(ctx context.Context) []models.Room {
	rooms, err := c.api.ListRooms(ctx)
	if err != nil {
		slog.Warn("room list fetch failed, falling back to empty catalog", "error", err)
		rooms = nil
	}

	c.mu.Lock()
	for id := range c.cache.Snapshot() {
		_ = c.cache.Del(id)
	}
	for _, room := range rooms {
		c.cache.Set(room.ID, room)
	}
	c.mu.Unlock()

	return sortedByName(rooms)
}

// Refresh re-fetches the full catalog, used after joining via invite.
func (c *Catalog) Refresh(ctx context.Context) []models.Room {
	return c.List(ctx)
}

// Cached returns the cached rooms without a fetch, sorted by name.
func (c *Catalog) Cached() []models.Room {
	c.mu.Lock()
	snapshot := c.cache.Snapshot()
	c.mu.Unlock()

	rooms := make([]models.Room, 0, len(snapshot))
	for _, room := range snapshot {
		rooms = append(rooms, room)
	}
	return sortedByName(rooms)
}

func (c *Catalog) Get(roomID string) (models.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, err := c.cache.Get(roomID)
	if err != nil {
		return models.Room{}, false
	}
	return room, true
}

// Add inserts one room optimistically, after a successful create or
// invite join.
func (c *Catalog) Add(room models.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Set(room.ID, room)
}

func (c *Catalog) Create(ctx context.Context, req rest.CreateRoomRequest) (models.Room, error) {
	room, err := c.api.CreateRoom(ctx, req)
	if err != nil {
		return models.Room{}, err
	}
	c.Add(room)
	return room, nil
}

func (c *Catalog) Update(ctx context.Context, roomID string, req rest.UpdateRoomRequest) (models.Room, error) {
	room, err := c.api.UpdateRoom(ctx, roomID, req)
	if err != nil {
		return models.Room{}, err
	}
	c.Add(room)
	return room, nil
}

func (c *Catalog) Delete(ctx context.Context, roomID string) error {
	if err := c.api.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.cache.Del(roomID)
	return nil
}

// JoinByInvite joins the room behind the code, then re-fetches the full
// catalog so membership-derived fields are correct.
func (c *Catalog) JoinByInvite(ctx context.Context, code string) (models.Room, error) {
	room, err := c.api.JoinInvite(ctx, code)
	if err != nil {
		return models.Room{}, err
	}
	c.Refresh(ctx)
	return room, nil
}

func sortedByName(rooms []models.Room) []models.Room {
	out := make([]models.Room, len(rooms))
	copy(out, rooms)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}
