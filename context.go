package tagbot

import (
	"context"

	"github.com/gotd/td/tg"
)

// Context is one inbound message together with the entities Telegram sent
// alongside it. It is only valid for the duration of the handler call.
type Context struct {
	context.Context

	bot      *Bot
	message  *tg.Message
	entities tg.Entities

	// Set for commands only.
	command string
	args    string

	replied     *User
	repliedDone bool
}

// Message is the raw message.
func (c *Context) Message() *tg.Message {
	return c.message
}

func (c *Context) Text() string {
	if c.message == nil {
		return ""
	}
	return c.message.Message
}

func (c *Context) MessageID() int {
	if c.message == nil {
		return 0
	}
	return c.message.ID
}

// Command returns the command name without the leading slash,
// or an empty string for plain messages.
func (c *Context) Command() string {
	return c.command
}

// Args returns everything after the command token, trimmed.
// It may be empty.
func (c *Context) Args() string {
	return c.args
}

// Peer returns the chat the message was sent in, with its access hash
// when the update carried one.
func (c *Context) Peer() Peer {
	if c.message == nil {
		return Peer{}
	}
	return peerOf(c.message.PeerID, c.entities)
}

// Chat returns the chat the message was sent in, with its title.
func (c *Context) Chat() Chat {
	chat := Chat{Peer: c.Peer()}
	switch chat.Kind {
	case PeerChannel:
		if ch, ok := c.entities.Channels[chat.ID]; ok {
			chat.Title = ch.Title
			chat.Broadcast = ch.Broadcast
		}
	case PeerChat:
		if ch, ok := c.entities.Chats[chat.ID]; ok {
			chat.Title = ch.Title
		}
	case PeerUser:
		if u, ok := c.entities.Users[chat.ID]; ok {
			chat.Title = userFromTG(u).DisplayName()
		}
	}
	return chat
}

// ChatID is the marked ID of Peer.
func (c *Context) ChatID() int64 {
	return c.Peer().MarkedID()
}

// SenderID is the author's user ID, or 0 for messages sent on behalf of a
// chat or channel.
func (c *Context) SenderID() int64 {
	if c.message == nil {
		return 0
	}
	from := c.message.FromID
	if from == nil {
		// private chats leave FromID empty
		from = c.message.PeerID
	}
	if u, ok := from.(*tg.PeerUser); ok {
		return u.UserID
	}
	return 0
}

// Sender returns the sender with the profile fields carried by the update.
func (c *Context) Sender() User {
	id := c.SenderID()
	if u, ok := c.entities.Users[id]; ok {
		return userFromTG(u)
	}
	return User{ID: id}
}

func (c *Context) IsOutgoing() bool {
	return c.message != nil && c.message.Out
}

// IsPrivate reports a one-to-one chat with the bot.
func (c *Context) IsPrivate() bool {
	return c.Peer().Kind == PeerUser
}

// IsGroup reports a basic group or a supergroup.
func (c *Context) IsGroup() bool {
	return c.Chat().IsGroup()
}

// Mentions returns the users mentioned in the message.
func (c *Context) Mentions() []Mention {
	if c.message == nil {
		return nil
	}
	return Mentions(c.message.Message, c.message.Entities)
}

// ReplyToID returns the ID of the message this message replies to, or 0.
func (c *Context) ReplyToID() int {
	if c.message == nil {
		return 0
	}
	if h, ok := c.message.ReplyTo.(*tg.MessageReplyHeader); ok {
		return h.ReplyToMsgID
	}
	return 0
}

// RepliedSender returns the author of the message this message replies to.
// The lookup hits the API once per Context.
func (c *Context) RepliedSender() (User, bool, error) {
	if c.repliedDone {
		if c.replied == nil {
			return User{}, false, nil
		}
		return *c.replied, true, nil
	}

	id := c.ReplyToID()
	if id == 0 {
		c.repliedDone = true
		return User{}, false, nil
	}

	msg, users, err := c.bot.fetchMessage(c, c.Peer(), id)
	if err != nil {
		return User{}, false, err
	}
	c.repliedDone = true

	from, ok := msg.FromID.(*tg.PeerUser)
	if !ok {
		return User{}, false, nil
	}
	u, ok := users[from.UserID]
	if !ok {
		u = User{ID: from.UserID}
	}
	c.replied = &u
	return u, true, nil
}

// Reply answers the message with plain text.
func (c *Context) Reply(text string) error {
	if c.message == nil {
		return nil
	}
	return c.bot.SendRich(c, c.Peer(), new(Text).Plain(text), c.message.ID)
}

// Send sends formatted text to the current chat. A non-zero replyTo makes
// it a reply to that message.
func (c *Context) Send(t *Text, replyTo int) error {
	if c.message == nil {
		return nil
	}
	return c.bot.SendRich(c, c.Peer(), t, replyTo)
}
