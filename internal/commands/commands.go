// Package commands implements the tag bot's chat commands and the passive
// message observer.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/en9inerd/tagbot"
	"github.com/en9inerd/tagbot/internal/sentryutil"
	"github.com/en9inerd/tagbot/internal/store"
)

// Conversation is the inbound message a handler works on.
// *tagbot.Context implements it.
type Conversation interface {
	context.Context

	ChatID() int64
	Chat() tagbot.Chat
	SenderID() int64
	Sender() tagbot.User
	MessageID() int
	Args() string
	IsGroup() bool
	IsPrivate() bool
	Mentions() []tagbot.Mention
	ReplyToID() int
	RepliedSender() (tagbot.User, bool, error)
	Reply(text string) error
	Send(t *tagbot.Text, replyTo int) error
}

// Messenger is the part of the Telegram client the handlers call directly.
// *tagbot.Bot implements it.
type Messenger interface {
	SendText(ctx context.Context, peer tagbot.Peer, text string) error
	IsChatAdmin(ctx context.Context, chat tagbot.Peer, userID int64) (bool, error)
	ChatMembers(ctx context.Context, chat tagbot.Peer) ([]tagbot.User, error)
	ResolveUser(ctx context.Context, username string) (tagbot.User, error)
}

// Settings holds handler tunables.
type Settings struct {
	// OwnerID pins the owner. Zero lets the first /start claim ownership.
	OwnerID           int64
	DefaultEmoji      string
	TagBatchSize      int
	SendInterval      time.Duration
	BroadcastInterval time.Duration
}

// Handlers serves the bot commands.
type Handlers struct {
	store    store.Store
	client   Messenger
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
}

// New creates the command handlers.
func New(st store.Store, client Messenger, settings Settings, logger *slog.Logger) *Handlers {
	if settings.DefaultEmoji == "" {
		settings.DefaultEmoji = "🔔"
	}
	if settings.TagBatchSize <= 0 {
		settings.TagBatchSize = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		store:    st,
		client:   client,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Register wires the handlers into bot.
func (h *Handlers) Register(bot *tagbot.Bot) {
	defs := []struct {
		def tagbot.CommandDef
		fn  func(Conversation) error
	}{
		{tagbot.CommandDef{Name: "start", Description: "Start the bot"}, h.Start},
		{tagbot.CommandDef{Name: "help", Description: "Show help"}, h.Help},
		{tagbot.CommandDef{Name: "tag", Description: "Tag members in group", Scope: tagbot.ScopeAllGroups{}, Locked: true}, h.Tag},
		{tagbot.CommandDef{Name: "afk", Description: "Set AFK status"}, h.AFK},
		{tagbot.CommandDef{Name: "back", Description: "Remove AFK status"}, h.Back},
		{tagbot.CommandDef{Name: "setemoji", Description: "Set tag emoji", Scope: tagbot.ScopeAllGroupAdmins{}}, h.SetEmoji},
		{tagbot.CommandDef{Name: "addadmin"}, h.AddAdmin},
		{tagbot.CommandDef{Name: "removeadmin"}, h.RemoveAdmin},
		{tagbot.CommandDef{Name: "broadcast", Description: "Send to all chats", Scope: tagbot.ScopeAllPrivate{}, Locked: true, Global: true}, h.Broadcast},
	}
	for _, d := range defs {
		bot.Command(d.def, h.wrap(d.def.Name, d.fn))
	}

	bot.OnMessage(tagbot.Filter{Incoming: true}, h.wrap("observe", h.Observe))
	bot.OnMemberLeft(h.MemberLeft)
}

// wrap adapts a handler to the bot and reports its errors.
func (h *Handlers) wrap(name string, fn func(Conversation) error) tagbot.HandlerFunc {
	return func(c *tagbot.Context) error {
		err := fn(c)
		if err != nil {
			sentryutil.CaptureError(err, map[string]string{
				"command": name,
				"chat_id": strconv.FormatInt(c.ChatID(), 10),
			})
		}
		return err
	}
}

// SeedOwner records the configured owner, replacing an owner that claimed
// the bot with /start before one was configured.
func (h *Handlers) SeedOwner(ctx context.Context) error {
	if h.settings.OwnerID == 0 {
		return nil
	}
	prev, err := h.store.Owner(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err := h.store.SetOwner(ctx, h.settings.OwnerID); err != nil {
		return err
	}
	if prev != 0 && prev != h.settings.OwnerID {
		h.logger.Warn("stored owner replaced by configured owner", "previous", prev, "owner", h.settings.OwnerID)
	}
	return nil
}

func (h *Handlers) isOwner(ctx context.Context, userID int64) (bool, error) {
	if h.settings.OwnerID != 0 {
		return userID == h.settings.OwnerID, nil
	}
	owner, err := h.store.Owner(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner == userID, nil
}

// isPrivileged reports whether userID is the owner or an admin in chatID.
func (h *Handlers) isPrivileged(ctx context.Context, chatID, userID int64) (bool, error) {
	owner, err := h.isOwner(ctx, userID)
	if err != nil || owner {
		return owner, err
	}
	return h.store.IsAdmin(ctx, chatID, userID)
}

func (h *Handlers) emojiFor(ctx context.Context, chatID int64) string {
	chat, err := h.store.Chat(ctx, chatID)
	if err != nil || chat.Emoji == "" {
		return h.settings.DefaultEmoji
	}
	return chat.Emoji
}

// remember upserts the sender and the chat of c.
func (h *Handlers) remember(c Conversation) error {
	now := h.now()
	sender := c.Sender()
	if sender.ID != 0 {
		if err := h.store.UpsertUser(c, storeUser(sender, now)); err != nil {
			return err
		}
	}

	chat := c.Chat()
	return h.store.UpsertChat(c, store.Chat{
		ID:         chat.MarkedID(),
		Kind:       string(chat.Kind),
		AccessHash: chat.AccessHash,
		Title:      chat.Title,
		LastActive: now,
	})
}

func storeUser(u tagbot.User, seen time.Time) store.User {
	return store.User{
		ID:         u.ID,
		AccessHash: u.AccessHash,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		LastSeen:   seen,
	}
}

func botUser(u store.User) tagbot.User {
	return tagbot.User{
		ID:         u.ID,
		AccessHash: u.AccessHash,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}

// limiter paces outgoing messages; a zero interval means no pacing.
func limiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
