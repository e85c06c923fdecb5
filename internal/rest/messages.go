package rest

import (
	"context"
	"fmt"
	"net/url"

	"sobesednik/internal/models"
)

// MessagePage is one page of room history. The server returns messages
// newest-first; Chronological flips the page for display order.
type MessagePage struct {
	Messages   []models.Message `json:"messages"`
	NextCursor string           `json:"nextCursor"`
	HasMore    bool             `json:"hasMore"`
}

// Chronological returns the page's messages oldest-first.
func (p MessagePage) Chronological() []models.Message {
	out := make([]models.Message, len(p.Messages))
	for i, m := range p.Messages {
		out[len(p.Messages)-1-i] = m
	}
	return out
}

type SendMessageRequest struct {
	Content string             `json:"content"`
	Type    models.MessageType `json:"messageType,omitempty"`
}

func (c *Client) GetMessages(ctx context.Context, roomID, cursor string, limit int) (MessagePage, error) {
	params := url.Values{}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	params.Set("limit", fmt.Sprintf("%d", limit))

	var page MessagePage
	endpoint := fmt.Sprintf("/rooms/%s/messages?%s", url.PathEscape(roomID), params.Encode())
	err := c.get(ctx, endpoint, &page)
	return page, err
}

// SendMessage is the REST fallback send path, used when the live stream
// is not available. The engine's normal send path is stream-only.
func (c *Client) SendMessage(ctx context.Context, roomID string, req SendMessageRequest) (models.Message, error) {
	var msg models.Message
	err := c.post(ctx, fmt.Sprintf("/rooms/%s/messages", url.PathEscape(roomID)), req, &msg)
	return msg, err
}

func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return c.delete(ctx, "/messages/"+url.PathEscape(messageID))
}
