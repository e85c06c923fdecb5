package rest

import (
	"context"
	"fmt"
	"net/url"

	"sobesednik/internal/models"
)

func (c *Client) CreateInvite(ctx context.Context, roomID string) (models.RoomInvite, error) {
	var invite models.RoomInvite
	err := c.post(ctx, fmt.Sprintf("/rooms/%s/invites", url.PathEscape(roomID)), nil, &invite)
	return invite, err
}

func (c *Client) GetInvite(ctx context.Context, code string) (models.RoomInvite, error) {
	var invite models.RoomInvite
	err := c.get(ctx, "/invites/"+url.PathEscape(code), &invite)
	return invite, err
}

// JoinInvite joins the room behind an invite code and returns it.
// Callers should refresh the room catalog afterwards.
func (c *Client) JoinInvite(ctx context.Context, code string) (models.Room, error) {
	var room models.Room
	err := c.post(ctx, fmt.Sprintf("/invites/%s/join", url.PathEscape(code)), nil, &room)
	return room, err
}

func (c *Client) DeleteInvite(ctx context.Context, code string) error {
	return c.delete(ctx, "/invites/"+url.PathEscape(code))
}
