package rest

import (
	"context"
	"net/url"

	"sobesednik/internal/models"
)

// SearchUsers finds users by name or email fragment, for picking direct
// chat partners and room members.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	err := c.get(ctx, "/users/search?q="+url.QueryEscape(query), &users)
	return users, err
}
