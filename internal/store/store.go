// Package store provides the per-chat record store over SQLite or PostgreSQL.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines the record storage interface.
type Store interface {
	// UpsertUser records a user, keeping stored profile fields that u leaves empty.
	UpsertUser(ctx context.Context, u User) error
	User(ctx context.Context, id int64) (User, error)
	// UserByUsername looks a user up case-insensitively, with or without "@".
	UserByUsername(ctx context.Context, username string) (User, error)

	// UpsertChat records a chat. The stored emoji is never overwritten.
	UpsertChat(ctx context.Context, c Chat) error
	Chat(ctx context.Context, id int64) (Chat, error)
	Chats(ctx context.Context) ([]Chat, error)
	SetEmoji(ctx context.Context, chatID int64, emoji string) error

	// AddMember records userID as a member of chatID and reports whether
	// the pair is new.
	AddMember(ctx context.Context, chatID, userID int64) (bool, error)
	// Members returns the known members of chatID in order of first sighting.
	Members(ctx context.Context, chatID int64) ([]User, error)
	RemoveMember(ctx context.Context, chatID, userID int64) error

	AddAdmin(ctx context.Context, chatID, userID int64) (bool, error)
	RemoveAdmin(ctx context.Context, chatID, userID int64) (bool, error)
	// IsAdmin reports whether userID is an admin of chatID, a global admin
	// or the owner.
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
	Admins(ctx context.Context, chatID int64) ([]Admin, error)
	Owner(ctx context.Context) (int64, error)
	// ClaimOwner makes userID the owner unless an owner already exists.
	ClaimOwner(ctx context.Context, userID int64) (bool, error)
	// SetOwner makes userID the only owner. Any previous owner row is
	// dropped along with the rights it carried.
	SetOwner(ctx context.Context, userID int64) error

	SetAFK(ctx context.Context, a AFK) error
	AFK(ctx context.Context, userID int64) (AFK, error)
	// ClearAFK removes the flag and returns it.
	ClearAFK(ctx context.Context, userID int64) (AFK, error)

	RecordBroadcast(ctx context.Context, b Broadcast) (Broadcast, error)
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}
