package tagbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"
)

// BotInfo holds bot profile information.
type BotInfo struct {
	// Name is the bot's display name.
	Name string

	// About is the short description shown in the bot's profile.
	About string

	// Description is the longer description shown when starting the bot.
	Description string
}

// UpdateBotInfo sets the non-empty fields of info on the bot profile.
// Nothing is sent when the profile already matches.
func (b *Bot) UpdateBotInfo(ctx context.Context, info BotInfo) error {
	if b.api == nil {
		return ErrBotNotRunning
	}

	current, err := b.api.BotsGetBotInfo(ctx, &tg.BotsGetBotInfoRequest{})
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	req := &tg.BotsSetBotInfoRequest{}
	changed := false
	if info.Name != "" && info.Name != current.Name {
		req.SetName(info.Name)
		changed = true
	}
	if info.About != "" && info.About != current.About {
		req.SetAbout(info.About)
		changed = true
	}
	if info.Description != "" && info.Description != current.Description {
		req.SetDescription(info.Description)
		changed = true
	}
	if !changed {
		b.config.Logger.Debug("bot info unchanged, skipping update")
		return nil
	}

	if _, err := b.api.BotsSetBotInfo(ctx, req); err != nil {
		return fmt.Errorf("failed to set bot info: %w", err)
	}

	b.config.Logger.Info("updated bot info", "name", info.Name)
	return nil
}

// IsChatAdmin reports whether userID is the creator or an admin of chat.
// A userID of 0 checks the bot itself.
func (b *Bot) IsChatAdmin(ctx context.Context, chat Peer, userID int64) (bool, error) {
	if b.api == nil {
		return false, ErrBotNotRunning
	}
	if userID == 0 {
		userID = b.selfID
	}

	switch chat.Kind {
	case PeerChannel:
		var participant tg.InputPeerClass = &tg.InputPeerUser{UserID: userID}
		if userID == b.selfID {
			participant = &tg.InputPeerSelf{}
		}
		res, err := b.api.ChannelsGetParticipant(ctx, &tg.ChannelsGetParticipantRequest{
			Channel:     chat.inputChannel(),
			Participant: participant,
		})
		if err != nil {
			return false, fmt.Errorf("failed to get participant: %w", err)
		}
		switch res.Participant.(type) {
		case *tg.ChannelParticipantCreator, *tg.ChannelParticipantAdmin:
			return true, nil
		}
		return false, nil

	case PeerChat:
		participants, _, err := b.chatParticipants(ctx, chat.ID)
		if err != nil {
			return false, err
		}
		for _, p := range participants {
			if p.GetUserID() != userID {
				continue
			}
			switch p.(type) {
			case *tg.ChatParticipantCreator, *tg.ChatParticipantAdmin:
				return true, nil
			}
			return false, nil
		}
		return false, nil
	}

	return false, nil
}

// ChatMembers returns the members of chat the bot can see. Supergroups
// only list their admins to bots; basic groups list every participant.
// Bots are left out.
func (b *Bot) ChatMembers(ctx context.Context, chat Peer) ([]User, error) {
	if b.api == nil {
		return nil, ErrBotNotRunning
	}

	var ids []int64
	var users map[int64]User

	switch chat.Kind {
	case PeerChannel:
		res, err := b.api.ChannelsGetParticipants(ctx, &tg.ChannelsGetParticipantsRequest{
			Channel: chat.inputChannel(),
			Filter:  &tg.ChannelParticipantsAdmins{},
			Limit:   200,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get admins: %w", err)
		}
		list, ok := res.(*tg.ChannelsChannelParticipants)
		if !ok {
			return nil, nil
		}
		users = usersFromTG(list.Users)
		for _, p := range list.Participants {
			if peer, ok := participantPeer(p).(*tg.PeerUser); ok {
				ids = append(ids, peer.UserID)
			}
		}

	case PeerChat:
		participants, u, err := b.chatParticipants(ctx, chat.ID)
		if err != nil {
			return nil, err
		}
		users = u
		for _, p := range participants {
			ids = append(ids, p.GetUserID())
		}

	default:
		return nil, nil
	}

	members := make([]User, 0, len(ids))
	for _, id := range ids {
		u, ok := users[id]
		if !ok || u.Bot {
			continue
		}
		members = append(members, u)
	}
	return members, nil
}

func (b *Bot) chatParticipants(ctx context.Context, chatID int64) ([]tg.ChatParticipantClass, map[int64]User, error) {
	full, err := b.api.MessagesGetFullChat(ctx, chatID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get full chat: %w", err)
	}
	chatFull, ok := full.FullChat.(*tg.ChatFull)
	if !ok {
		return nil, nil, nil
	}
	list, ok := chatFull.Participants.(*tg.ChatParticipants)
	if !ok {
		return nil, nil, nil
	}
	return list.Participants, usersFromTG(full.Users), nil
}

func participantPeer(p tg.ChannelParticipantClass) tg.PeerClass {
	switch v := p.(type) {
	case *tg.ChannelParticipantCreator:
		return &tg.PeerUser{UserID: v.UserID}
	case *tg.ChannelParticipantAdmin:
		return &tg.PeerUser{UserID: v.UserID}
	case *tg.ChannelParticipant:
		return &tg.PeerUser{UserID: v.UserID}
	case *tg.ChannelParticipantSelf:
		return &tg.PeerUser{UserID: v.UserID}
	case *tg.ChannelParticipantBanned:
		return v.Peer
	case *tg.ChannelParticipantLeft:
		return v.Peer
	}
	return nil
}

// ResolveUser looks up a public username, with or without the "@".
func (b *Bot) ResolveUser(ctx context.Context, username string) (User, error) {
	if b.api == nil {
		return User{}, ErrBotNotRunning
	}

	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	resolved, err := b.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return User{}, fmt.Errorf("resolve @%s: %w", username, err)
	}

	for _, uc := range resolved.Users {
		if u, ok := uc.(*tg.User); ok {
			return userFromTG(u), nil
		}
	}
	return User{}, fmt.Errorf("@%s: %w", username, ErrUserNotFound)
}
