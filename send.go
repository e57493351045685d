package tagbot

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/gotd/td/tg"
)

// SendText sends plain text to peer.
func (b *Bot) SendText(ctx context.Context, peer Peer, text string) error {
	var t Text
	t.Plain(text)
	return b.SendRich(ctx, peer, &t, 0)
}

// SendRich sends formatted text to peer. A non-zero replyTo makes it a
// reply to that message.
func (b *Bot) SendRich(ctx context.Context, peer Peer, t *Text, replyTo int) error {
	if b.api == nil {
		return ErrBotNotRunning
	}
	if peer.Kind == "" {
		return ErrUnknownPeer
	}

	req := &tg.MessagesSendMessageRequest{
		Peer:      peer.InputPeer(),
		Message:   t.String(),
		RandomID:  rand.Int64(),
		Entities:  t.Entities(),
		NoWebpage: true,
	}
	if replyTo != 0 {
		req.ReplyTo = &tg.InputReplyToMessage{ReplyToMsgID: replyTo}
	}

	if _, err := b.api.MessagesSendMessage(ctx, req); err != nil {
		return fmt.Errorf("send to %s %d: %w", peer.Kind, peer.ID, err)
	}
	return nil
}

// fetchMessage loads a single message of the given chat together with the
// users referenced by it.
func (b *Bot) fetchMessage(ctx context.Context, peer Peer, id int) (*tg.Message, map[int64]User, error) {
	if b.api == nil {
		return nil, nil, ErrBotNotRunning
	}

	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: id}}

	var (
		res tg.MessagesMessagesClass
		err error
	)
	if peer.Kind == PeerChannel {
		res, err = b.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: peer.inputChannel(),
			ID:      ids,
		})
	} else {
		res, err = b.api.MessagesGetMessages(ctx, ids)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get message %d: %w", id, err)
	}

	var messages []tg.MessageClass
	var users []tg.UserClass
	switch r := res.(type) {
	case *tg.MessagesMessages:
		messages, users = r.Messages, r.Users
	case *tg.MessagesMessagesSlice:
		messages, users = r.Messages, r.Users
	case *tg.MessagesChannelMessages:
		messages, users = r.Messages, r.Users
	}

	for _, m := range messages {
		if msg, ok := m.(*tg.Message); ok && msg.ID == id {
			return msg, usersFromTG(users), nil
		}
	}
	return nil, nil, fmt.Errorf("message %d not found", id)
}
