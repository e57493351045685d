package store

import "time"

// Role is the privilege level of an admin entry.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// GlobalChat is the chat ID of admin entries that apply in every chat.
const GlobalChat int64 = 0

// Chat is a chat the bot has seen a message in.
type Chat struct {
	// ID is the marked chat ID: positive for users, negative for groups.
	ID         int64
	Kind       string
	AccessHash int64
	Title      string
	// Emoji is the tag emoji; empty means the configured default.
	Emoji      string
	LastActive time.Time
}

// IsGroup reports whether the chat is a basic group or a supergroup.
func (c Chat) IsGroup() bool {
	return c.Kind == "chat" || c.Kind == "channel"
}

// User is a Telegram user the bot has seen.
type User struct {
	ID         int64
	AccessHash int64
	Username   string
	FirstName  string
	LastName   string
	LastSeen   time.Time
}

// Name returns the first name, falling back to the username.
func (u User) Name() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

// Admin is an owner or admin entry. ChatID is GlobalChat for entries that
// apply everywhere.
type Admin struct {
	ChatID  int64
	UserID  int64
	Role    Role
	AddedAt time.Time
	// User holds the stored profile, zero when the user was never seen.
	User User
}

// AFK is the away flag of a user.
type AFK struct {
	UserID int64
	// ChatID is the chat the flag was set in.
	ChatID int64
	Reason string
	Since  time.Time
}

// Broadcast is a delivered announcement.
type Broadcast struct {
	ID        string
	SenderID  int64
	Text      string
	Total     int
	Delivered int
	CreatedAt time.Time
}

// Stats holds record counts.
type Stats struct {
	Chats      int `json:"chats"`
	Groups     int `json:"groups"`
	Users      int `json:"users"`
	Members    int `json:"members"`
	Admins     int `json:"admins"`
	AFK        int `json:"afk"`
	Broadcasts int `json:"broadcasts"`
}
