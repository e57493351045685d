package commands

import (
	"fmt"
	"strings"
)

// Start registers the sender. With no owner configured or stored, the
// first user to send /start becomes the owner.
func (h *Handlers) Start(c Conversation) error {
	if err := h.remember(c); err != nil {
		return err
	}

	sender := c.Sender()
	if h.settings.OwnerID == 0 {
		claimed, err := h.store.ClaimOwner(c, sender.ID)
		if err != nil {
			return err
		}
		if claimed {
			h.logger.Info("owner claimed", "user_id", sender.ID)
			return c.Reply(fmt.Sprintf("🎉 Welcome %s!\n\n"+
				"You are now the Owner of this bot!\n\n"+
				"👑 Owner Commands:\n"+
				"/addadmin @username - Add admin\n"+
				"/removeadmin @username - Remove admin\n\n"+
				"🔧 General Commands:\n"+
				"/tag - Tag members in group\n"+
				"/afk [reason] - Set AFK status\n"+
				"/back - Remove AFK status\n"+
				"/setemoji <emoji> - Set tag emoji\n"+
				"/broadcast <message> - Send to all chats\n"+
				"/help - Show this help", sender.DisplayName()))
		}
	}

	return c.Reply(fmt.Sprintf("👋 Hello %s!\n\n"+
		"I'm a group management bot with tagging features!\n\n"+
		"🔧 Available Commands:\n"+
		"/tag - Tag members in group\n"+
		"/afk [reason] - Set AFK status\n"+
		"/back - Remove AFK status\n"+
		"/help - Show help\n\n"+
		"Add me to your group to use tagging features!", sender.DisplayName()))
}

// Help lists the commands available to the sender.
func (h *Handlers) Help(c Conversation) error {
	sender := c.SenderID()
	owner, err := h.isOwner(c, sender)
	if err != nil {
		return err
	}
	privileged := owner
	if !privileged {
		if privileged, err = h.store.IsAdmin(c, c.ChatID(), sender); err != nil {
			return err
		}
	}

	var b strings.Builder
	b.WriteString("🤖 Tag Bot Help\n\n")
	b.WriteString("🔧 General Commands:\n")
	fmt.Fprintf(&b, "/tag [text] - Tag %d members per message\n", h.settings.TagBatchSize)
	b.WriteString("/afk [reason] - Set yourself as AFK\n")
	b.WriteString("/back - Remove AFK status\n")
	b.WriteString("/help - Show this help\n\n")

	if privileged {
		b.WriteString("👨‍💻 Admin Commands:\n")
		b.WriteString("/setemoji <emoji> - Set custom tag emoji\n")
		b.WriteString("/broadcast <message> - Send to all users/groups\n\n")
	}
	if owner {
		b.WriteString("👑 Owner Commands:\n")
		b.WriteString("/addadmin @username - Add admin\n")
		b.WriteString("/removeadmin @username - Remove admin\n\n")
	}

	b.WriteString("💡 Tips:\n")
	b.WriteString("• Use /tag as reply to tag on specific message\n")
	b.WriteString("• Bot works in groups and private chats\n")
	b.WriteString("• AFK auto-replies when someone mentions you")

	return c.Reply(b.String())
}
