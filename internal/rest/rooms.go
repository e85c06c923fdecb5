package rest

import (
	"context"
	"fmt"
	"net/url"

	"sobesednik/internal/models"
)

type CreateRoomRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        models.RoomType `json:"type,omitempty"`
	MemberIDs   []string        `json:"memberIds,omitempty"`
}

type UpdateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := c.get(ctx, "/rooms", &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *Client) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	var room models.Room
	err := c.get(ctx, "/rooms/"+url.PathEscape(roomID), &room)
	return room, err
}

func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (models.Room, error) {
	var room models.Room
	err := c.post(ctx, "/rooms", req, &room)
	return room, err
}

func (c *Client) UpdateRoom(ctx context.Context, roomID string, req UpdateRoomRequest) (models.Room, error) {
	var room models.Room
	err := c.put(ctx, "/rooms/"+url.PathEscape(roomID), req, &room)
	return room, err
}

func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	return c.delete(ctx, "/rooms/"+url.PathEscape(roomID))
}

func (c *Client) ListMembers(ctx context.Context, roomID string) ([]models.RoomMember, error) {
	var members []models.RoomMember
	err := c.get(ctx, fmt.Sprintf("/rooms/%s/members", url.PathEscape(roomID)), &members)
	return members, err
}

func (c *Client) AddMember(ctx context.Context, roomID, userID string) (models.RoomMember, error) {
	var member models.RoomMember
	endpoint := fmt.Sprintf("/rooms/%s/members?userId=%s", url.PathEscape(roomID), url.QueryEscape(userID))
	err := c.post(ctx, endpoint, nil, &member)
	return member, err
}

func (c *Client) RemoveMember(ctx context.Context, roomID, userID string) error {
	return c.delete(ctx, fmt.Sprintf("/rooms/%s/members/%s", url.PathEscape(roomID), url.PathEscape(userID)))
}
