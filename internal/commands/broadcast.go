package commands

import (
	"fmt"

	"github.com/en9inerd/tagbot"
	"github.com/en9inerd/tagbot/internal/store"
)

// Broadcast sends the argument text to every known chat except the
// sender's own private chat.
func (h *Handlers) Broadcast(c Conversation) error {
	sender := c.SenderID()
	ok, err := h.isPrivileged(c, c.ChatID(), sender)
	if err != nil {
		return err
	}
	if !ok {
		return c.Reply("❌ Only owners and admins can broadcast!")
	}

	msg := c.Args()
	if msg == "" {
		return c.Reply("❌ Please provide a message to broadcast!\nUsage: /broadcast <message>")
	}

	chats, err := h.store.Chats(c)
	if err != nil {
		return err
	}
	targets := chats[:0]
	for _, chat := range chats {
		if chat.ID == sender {
			continue
		}
		targets = append(targets, chat)
	}

	if err := c.Reply(fmt.Sprintf("📢 Broadcasting to %d chats...", len(targets))); err != nil {
		return err
	}

	text := "📢 Broadcast:\n" + msg
	lim := limiter(h.settings.BroadcastInterval)
	delivered := 0
	for _, chat := range targets {
		if err := lim.Wait(c); err != nil {
			return err
		}
		if err := h.client.SendText(c, chatPeer(chat), text); err != nil {
			h.logger.Warn("broadcast delivery failed", "chat_id", chat.ID, "error", err)
			continue
		}
		delivered++
	}

	if _, err := h.store.RecordBroadcast(c, store.Broadcast{
		SenderID:  sender,
		Text:      msg,
		Total:     len(targets),
		Delivered: delivered,
	}); err != nil {
		h.logger.Warn("failed to record broadcast", "error", err)
	}

	h.logger.Info("broadcast finished", "sender_id", sender, "delivered", delivered, "total", len(targets))
	return c.Reply(fmt.Sprintf("✅ Broadcast sent to %d/%d chats!", delivered, len(targets)))
}

// chatPeer rebuilds the API peer of a stored chat.
func chatPeer(c store.Chat) tagbot.Peer {
	p := tagbot.PeerFromMarked(c.ID)
	p.AccessHash = c.AccessHash
	return p
}
