package models

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
)

type UserStatus string

const (
	UserStatusOnline  UserStatus = "ONLINE"
	UserStatusOffline UserStatus = "OFFLINE"
	UserStatusAway    UserStatus = "AWAY"
)

// User represents an authenticated account.
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email,omitempty"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"displayName"`
	AvatarURL     string     `json:"avatarUrl,omitempty"`
	Status        UserStatus `json:"status"`
	OAuthProvider string     `json:"oauthProvider,omitempty"`
}

// Sender is the short user summary attached to messages and frames.
type Sender struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

type RoomType string

const (
	RoomTypeDirect RoomType = "DIRECT"
	RoomTypeGroup  RoomType = "GROUP"
)

// Room represents a chat room the user belongs to.
type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        RoomType  `json:"type"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RoomMember is a membership record within a room.
type RoomMember struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"roomId"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// RoomInvite is a shareable invite code for a room.
type RoomInvite struct {
	Code      string    `json:"code"`
	RoomID    string    `json:"roomId"`
	RoomName  string    `json:"roomName"`
	CreatedBy string    `json:"createdBy"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MessageType string

const (
	MessageTypeText   MessageType = "TEXT"
	MessageTypeImage  MessageType = "IMAGE"
	MessageTypeFile   MessageType = "FILE"
	MessageTypeSystem MessageType = "SYSTEM"
)

// Message represents a chat message. IDs are unique within a room.
type Message struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"roomId"`
	Sender    Sender      `json:"sender"`
	Content   string      `json:"content"`
	Type      MessageType `json:"messageType"`
	CreatedAt time.Time   `json:"createdAt"`
}

// FrameType tags a live-stream frame. The symmetric JSON protocol carries
// one frame shape with optional fields; receivers dispatch on Type.
type FrameType string

const (
	FrameChat       FrameType = "CHAT"
	FrameJoin       FrameType = "JOIN"
	FrameLeave      FrameType = "LEAVE"
	FrameTyping     FrameType = "TYPING"
	FrameUserJoined FrameType = "USER_JOINED"
	FrameUserLeft   FrameType = "USER_LEFT"
	FrameError      FrameType = "ERROR"
)

// Frame is one live-stream message in either direction.
type Frame struct {
	Type         FrameType `json:"type"`
	RoomID       string    `json:"roomId,omitempty"`
	MessageID    string    `json:"messageId,omitempty"`
	Content      string    `json:"content,omitempty"`
	Sender       *Sender   `json:"sender,omitempty"`
	CreatedAt    string    `json:"createdAt,omitempty"`
	IsTyping     *bool     `json:"isTyping,omitempty"`
	TypingUsers  []string  `json:"typingUsers,omitempty"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// ChatFrame builds an outbound CHAT frame. The server fills messageId,
// sender and createdAt on broadcast.
func ChatFrame(roomID, content string) Frame {
	return Frame{Type: FrameChat, RoomID: roomID, Content: content}
}

func JoinFrame(roomID string) Frame {
	return Frame{Type: FrameJoin, RoomID: roomID}
}

func LeaveFrame(roomID string) Frame {
	return Frame{Type: FrameLeave, RoomID: roomID}
}

func TypingFrame(roomID string, isTyping bool) Frame {
	return Frame{Type: FrameTyping, RoomID: roomID, IsTyping: &isTyping}
}
