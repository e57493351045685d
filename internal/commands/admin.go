package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/en9inerd/tagbot"
	"github.com/en9inerd/tagbot/internal/store"
)

// SetEmoji stores the tag emoji of the current chat.
func (h *Handlers) SetEmoji(c Conversation) error {
	ok, err := h.isPrivileged(c, c.ChatID(), c.SenderID())
	if err != nil {
		return err
	}
	if !ok {
		return c.Reply("❌ Only owners and admins can set emoji!")
	}

	emoji, _ := tagbot.FirstArg(c.Args())
	if emoji == "" {
		return c.Reply("❌ Please provide an emoji!\nUsage: /setemoji 🔥")
	}
	if !ValidEmoji(emoji) {
		return c.Reply("❌ Please provide a valid emoji!")
	}

	if err := h.remember(c); err != nil {
		return err
	}
	if err := h.store.SetEmoji(c, c.ChatID(), emoji); err != nil {
		return err
	}
	return c.Reply("✅ Tag emoji set to: " + emoji)
}

// AddAdmin grants admin rights to the target user: in the current group,
// or everywhere when sent in private.
func (h *Handlers) AddAdmin(c Conversation) error {
	owner, err := h.isOwner(c, c.SenderID())
	if err != nil {
		return err
	}
	if !owner {
		return c.Reply("❌ Only the owner can add admins!")
	}

	target, reply, err := h.resolveTarget(c, "addadmin")
	if err != nil {
		return err
	}
	if reply != "" {
		return c.Reply(reply)
	}

	if isOwner, _ := h.isOwner(c, target.ID); isOwner {
		return c.Reply("ℹ️ The owner already has all rights!")
	}

	scope := adminScope(c)
	added, err := h.store.AddAdmin(c, scope, target.ID)
	if err != nil {
		return err
	}
	if !added {
		return c.Reply(fmt.Sprintf("ℹ️ %s is already an admin!", target.DisplayName()))
	}

	h.logger.Info("admin added", "user_id", target.ID, "chat_id", scope, "by", c.SenderID())
	return c.Reply(fmt.Sprintf("✅ %s is now an admin!", target.DisplayName()))
}

// RemoveAdmin revokes admin rights granted by AddAdmin in the same scope.
func (h *Handlers) RemoveAdmin(c Conversation) error {
	owner, err := h.isOwner(c, c.SenderID())
	if err != nil {
		return err
	}
	if !owner {
		return c.Reply("❌ Only the owner can remove admins!")
	}

	target, reply, err := h.resolveTarget(c, "removeadmin")
	if err != nil {
		return err
	}
	if reply != "" {
		return c.Reply(reply)
	}

	scope := adminScope(c)
	removed, err := h.store.RemoveAdmin(c, scope, target.ID)
	if err != nil {
		return err
	}
	if !removed {
		return c.Reply(fmt.Sprintf("❌ %s is not an admin!", target.DisplayName()))
	}

	h.logger.Info("admin removed", "user_id", target.ID, "chat_id", scope, "by", c.SenderID())
	return c.Reply(fmt.Sprintf("✅ %s is no longer an admin!", target.DisplayName()))
}

func adminScope(c Conversation) int64 {
	if c.IsGroup() {
		return c.ChatID()
	}
	return store.GlobalChat
}

// resolveTarget finds the user an admin command is about: the author of
// the replied-to message, a numeric ID, or a username known to the store
// or to Telegram. A non-empty reply is the message to send instead.
func (h *Handlers) resolveTarget(c Conversation, command string) (tagbot.User, string, error) {
	arg, _ := tagbot.FirstArg(c.Args())

	if arg == "" {
		if c.ReplyToID() != 0 {
			u, ok, err := c.RepliedSender()
			if err != nil {
				return tagbot.User{}, "", err
			}
			if ok {
				return u, "", nil
			}
		}
		return tagbot.User{}, fmt.Sprintf("❌ Please provide a username!\nUsage: /%s @username", command), nil
	}

	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
		u, err := h.store.User(c, id)
		if errors.Is(err, store.ErrNotFound) {
			return tagbot.User{ID: id}, "", nil
		}
		if err != nil {
			return tagbot.User{}, "", err
		}
		return botUser(u), "", nil
	}

	username := tagbot.NormalizeUsername(arg)
	if username == "" || strings.ContainsAny(username, " /") {
		return tagbot.User{}, "❌ Please provide a valid username!", nil
	}

	u, err := h.store.UserByUsername(c, username)
	if err == nil {
		return botUser(u), "", nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return tagbot.User{}, "", err
	}

	resolved, err := h.client.ResolveUser(c, username)
	if err != nil {
		h.logger.Debug("failed to resolve username", "username", username, "error", err)
		return tagbot.User{}, fmt.Sprintf("❌ User @%s not found! Ask them to send /start first.", username), nil
	}
	if resolved.Bot {
		return tagbot.User{}, "❌ Bots can't be admins!", nil
	}
	if err := h.store.UpsertUser(c, storeUser(resolved, h.now())); err != nil {
		return tagbot.User{}, "", err
	}
	return resolved, "", nil
}
