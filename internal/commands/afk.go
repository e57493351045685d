package commands

import (
	"errors"
	"fmt"

	"github.com/en9inerd/tagbot/internal/store"
)

// AFK marks the sender as away, with an optional reason.
func (h *Handlers) AFK(c Conversation) error {
	if err := h.remember(c); err != nil {
		return err
	}

	sender := c.Sender()
	reason := c.Args()
	if err := h.store.SetAFK(c, store.AFK{
		UserID: sender.ID,
		ChatID: c.ChatID(),
		Reason: reason,
		Since:  h.now(),
	}); err != nil {
		return err
	}

	if reason != "" {
		return c.Reply(fmt.Sprintf("😴 %s is now AFK: %s", sender.DisplayName(), reason))
	}
	return c.Reply(fmt.Sprintf("😴 %s is now AFK", sender.DisplayName()))
}

// Back clears the sender's away flag.
func (h *Handlers) Back(c Conversation) error {
	sender := c.Sender()
	afk, err := h.store.ClearAFK(c, sender.ID)
	if errors.Is(err, store.ErrNotFound) {
		return c.Reply("❌ You are not AFK!")
	}
	if err != nil {
		return err
	}
	return c.Reply(h.welcomeBack(sender.DisplayName(), afk))
}

func (h *Handlers) welcomeBack(name string, afk store.AFK) string {
	return fmt.Sprintf("✅ Welcome back %s!\nYou were AFK for %s.", name, FormatDuration(h.now().Sub(afk.Since)))
}

// Observe runs on every plain message: it records the sender as a chat
// member, welcomes back an away sender and answers for away users that
// the message mentions or replies to.
func (h *Handlers) Observe(c Conversation) error {
	sender := c.Sender()
	if sender.ID == 0 || sender.Bot {
		return nil
	}
	if err := h.remember(c); err != nil {
		return err
	}
	if c.IsGroup() {
		if _, err := h.store.AddMember(c, c.ChatID(), sender.ID); err != nil {
			return err
		}
	}

	afk, err := h.store.ClearAFK(c, sender.ID)
	switch {
	case err == nil:
		if err := c.Reply(h.welcomeBack(sender.DisplayName(), afk)); err != nil {
			return err
		}
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	return h.notifyAFK(c, sender.ID)
}

type afkTarget struct {
	id   int64
	name string
}

// notifyAFK replies once for every away user the message points at.
func (h *Handlers) notifyAFK(c Conversation, senderID int64) error {
	var targets []afkTarget

	for _, m := range c.Mentions() {
		if m.UserID != 0 {
			name := m.Text
			if u, err := h.store.User(c, m.UserID); err == nil {
				name = u.Name()
			}
			targets = append(targets, afkTarget{id: m.UserID, name: name})
			continue
		}
		u, err := h.store.UserByUsername(c, m.Username)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		targets = append(targets, afkTarget{id: u.ID, name: u.Name()})
	}

	if c.ReplyToID() != 0 {
		replied, ok, err := c.RepliedSender()
		if err != nil {
			h.logger.Debug("failed to load replied message", "error", err)
		} else if ok {
			targets = append(targets, afkTarget{id: replied.ID, name: replied.DisplayName()})
		}
	}

	seen := map[int64]bool{senderID: true}
	for _, t := range targets {
		if seen[t.id] {
			continue
		}
		seen[t.id] = true

		afk, err := h.store.AFK(c, t.id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		text := fmt.Sprintf("💤 %s is AFK for %s", t.name, FormatDuration(h.now().Sub(afk.Since)))
		if afk.Reason != "" {
			text += "\nReason: " + afk.Reason
		}
		if err := c.Reply(text); err != nil {
			return err
		}
	}
	return nil
}
