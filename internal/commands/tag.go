package commands

import (
	"context"
	"fmt"

	"github.com/en9inerd/tagbot"
	"github.com/en9inerd/tagbot/internal/store"
)

// Tag mentions every known member of the group, TagBatchSize per message.
// The first message carries the optional text and replies to the message
// the command replied to.
func (h *Handlers) Tag(c Conversation) error {
	if !c.IsGroup() {
		return c.Reply("❌ Tag command only works in groups!")
	}
	if err := h.remember(c); err != nil {
		return err
	}

	chat := c.Chat()
	chatID := chat.MarkedID()

	botAdmin, err := h.client.IsChatAdmin(c, chat.Peer, 0)
	if err != nil {
		h.logger.Warn("failed to check bot admin status", "chat_id", chatID, "error", err)
	}
	if botAdmin {
		h.discoverMembers(c, chat.Peer)
	}

	members, err := h.store.Members(c, chatID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		if !botAdmin {
			return c.Reply("❌ I need admin rights to tag all members in this group!")
		}
		return c.Reply("❌ No members to tag!")
	}

	emoji := h.emojiFor(c, chatID)
	batches := batchMessages(members, h.settings.TagBatchSize, emoji, c.Args())
	lim := limiter(h.settings.SendInterval)

	for i, t := range batches {
		if err := lim.Wait(c); err != nil {
			return err
		}
		replyTo := c.MessageID()
		if i == 0 && c.ReplyToID() != 0 {
			replyTo = c.ReplyToID()
		}
		if err := c.Send(t, replyTo); err != nil {
			_ = c.Reply(fmt.Sprintf("❌ Error tagging members: %v", err))
			return fmt.Errorf("tag batch %d/%d in %d: %w", i+1, len(batches), chatID, err)
		}
	}

	h.logger.Info("tagged members", "chat_id", chatID, "members", len(members), "messages", len(batches))
	return nil
}

// discoverMembers stores the members Telegram lists to the bot.
func (h *Handlers) discoverMembers(c Conversation, chat tagbot.Peer) {
	users, err := h.client.ChatMembers(c, chat)
	if err != nil {
		h.logger.Warn("failed to list chat members", "chat_id", chat.MarkedID(), "error", err)
		return
	}

	now := h.now()
	added := 0
	for _, u := range users {
		if u.Bot {
			continue
		}
		if err := h.store.UpsertUser(c, storeUser(u, now)); err != nil {
			h.logger.Warn("failed to store member", "user_id", u.ID, "error", err)
			continue
		}
		isNew, err := h.store.AddMember(c, chat.MarkedID(), u.ID)
		if err != nil {
			h.logger.Warn("failed to add member", "user_id", u.ID, "error", err)
			continue
		}
		if isNew {
			added++
		}
	}
	if added > 0 {
		h.logger.Debug("discovered members", "chat_id", chat.MarkedID(), "added", added)
	}
}

// MemberLeft drops userID from the members tagged in chat.
func (h *Handlers) MemberLeft(ctx context.Context, chat tagbot.Peer, userID int64) error {
	if err := h.store.RemoveMember(ctx, chat.MarkedID(), userID); err != nil {
		return err
	}
	h.logger.Debug("member left", "chat_id", chat.MarkedID(), "user_id", userID)
	return nil
}

// batchMessages renders one mention per member, size mentions per message.
func batchMessages(members []store.User, size int, emoji, header string) []*tagbot.Text {
	if size <= 0 {
		size = len(members)
	}

	var out []*tagbot.Text
	for start := 0; start < len(members); start += size {
		end := min(start+size, len(members))

		t := &tagbot.Text{}
		if start == 0 && header != "" {
			t.Plain("📢 " + header + "\n\n")
		}
		for i, u := range members[start:end] {
			if i > 0 {
				t.Plain(" ")
			}
			t.Plain(emoji + " ")
			t.Mention(botUser(u))
		}
		out = append(out, t)
	}
	return out
}
