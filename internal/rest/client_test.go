package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sobesednik/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFn(token string) func() (string, bool) {
	return func() (string, bool) { return token, token != "" }
}

func TestClient_ListRooms(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rooms", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]models.Room{
			{ID: "r1", Name: "General", Type: models.RoomTypeGroup, MemberCount: 3},
		})
	}))
	defer server.Close()

	client := New(server.URL, tokenFn("tok"), nil)
	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "General", rooms[0].Name)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestClient_ErrorMessageDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "room already exists"})
	}))
	defer server.Close()

	client := New(server.URL, tokenFn("tok"), nil)
	_, err := client.CreateRoom(context.Background(), CreateRoomRequest{Name: "dup"})
	require.Error(t, err)

	var restErr *Error
	require.ErrorAs(t, err, &restErr)
	assert.Equal(t, http.StatusConflict, restErr.Status)
	assert.Equal(t, "room already exists", restErr.Message)
}

func TestClient_ErrorWithoutBodyGetsGenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, tokenFn("tok"), nil)
	_, err := client.ListRooms(context.Background())

	var restErr *Error
	require.ErrorAs(t, err, &restErr)
	assert.Equal(t, "an error occurred", restErr.Message)
}

func TestClient_UnauthorizedTriggersInterceptor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fired := 0
	client := New(server.URL, tokenFn("tok"), func() { fired++ })

	_, err := client.ListRooms(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, fired)

	var restErr *Error
	require.ErrorAs(t, err, &restErr)
	assert.Equal(t, http.StatusUnauthorized, restErr.Status)
}

func TestClient_RefreshSkipsInterceptor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fired := 0
	client := New(server.URL, tokenFn("tok"), func() { fired++ })

	_, err := client.RefreshToken(context.Background(), "stale-refresh")
	require.Error(t, err)
	assert.Equal(t, 0, fired, "an expired refresh token is not a session teardown")
}

func TestClient_GetMessagesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rooms/r1/messages", r.URL.Path)
		assert.Equal(t, "c123", r.URL.Query().Get("cursor"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(MessagePage{
			Messages: []models.Message{
				{ID: "m3", Content: "newest"},
				{ID: "m2", Content: "middle"},
				{ID: "m1", Content: "oldest"},
			},
			HasMore: true,
		})
	}))
	defer server.Close()

	client := New(server.URL, tokenFn("tok"), nil)
	page, err := client.GetMessages(context.Background(), "r1", "c123", 25)
	require.NoError(t, err)
	require.True(t, page.HasMore)

	chrono := page.Chronological()
	require.Len(t, chrono, 3)
	assert.Equal(t, "m1", chrono[0].ID)
	assert.Equal(t, "m2", chrono[1].ID)
	assert.Equal(t, "m3", chrono[2].ID)
	// The page itself is untouched.
	assert.Equal(t, "m3", page.Messages[0].ID)
}

func TestClient_SearchUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/search", r.URL.Path)
		require.Equal(t, "ali ce", r.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode([]models.User{
			{ID: "u1", Username: "alice", DisplayName: "Alice"},
		})
	}))
	defer server.Close()

	client := New(server.URL, tokenFn("tok"), nil)
	users, err := client.SearchUsers(context.Background(), "ali ce")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestClient_GoogleCallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/callback/google", r.URL.Path)
		require.Equal(t, "abc123", r.URL.Query().Get("code"))
		_ = json.NewEncoder(w).Encode(AuthResponse{
			AccessToken:  "at",
			RefreshToken: "rt",
			User:         models.User{ID: "u1", Username: "alice"},
		})
	}))
	defer server.Close()

	client := New(server.URL, tokenFn(""), nil)
	resp, err := client.GoogleCallback(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "at", resp.AccessToken)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestClient_DeleteNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := New(server.URL, tokenFn("tok"), nil)
	require.NoError(t, client.DeleteRoom(context.Background(), "r1"))
}
