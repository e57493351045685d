package tagbot

import (
	"strings"

	"github.com/gotd/td/tg"
)

// PeerKind is the kind of a Telegram peer.
type PeerKind string

const (
	PeerUser    PeerKind = "user"
	PeerChat    PeerKind = "chat"
	PeerChannel PeerKind = "channel"
)

// channelMarker offsets channel IDs into the negative range used by the
// Bot API, so that user, chat and channel IDs never collide.
const channelMarker = 1000000000000

// Peer identifies a chat together with the access hash needed to send to it.
type Peer struct {
	Kind       PeerKind
	ID         int64
	AccessHash int64
}

// MarkedID returns the Bot API style ID: users are positive, basic groups
// are negative and channels are offset by -1000000000000.
func (p Peer) MarkedID() int64 {
	switch p.Kind {
	case PeerChat:
		return -p.ID
	case PeerChannel:
		return -(channelMarker + p.ID)
	}
	return p.ID
}

// PeerFromMarked reverses MarkedID. The access hash is left empty.
func PeerFromMarked(id int64) Peer {
	switch {
	case id > 0:
		return Peer{Kind: PeerUser, ID: id}
	case id < -channelMarker:
		return Peer{Kind: PeerChannel, ID: -id - channelMarker}
	default:
		return Peer{Kind: PeerChat, ID: -id}
	}
}

// InputPeer converts p into the form expected by API calls.
func (p Peer) InputPeer() tg.InputPeerClass {
	switch p.Kind {
	case PeerUser:
		return &tg.InputPeerUser{UserID: p.ID, AccessHash: p.AccessHash}
	case PeerChat:
		return &tg.InputPeerChat{ChatID: p.ID}
	case PeerChannel:
		return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
	}
	return &tg.InputPeerEmpty{}
}

// peerOf converts a message peer, taking the access hash from e when the
// update carried the entity.
func peerOf(p tg.PeerClass, e tg.Entities) Peer {
	switch p := p.(type) {
	case *tg.PeerChannel:
		peer := Peer{Kind: PeerChannel, ID: p.ChannelID}
		if ch, ok := e.Channels[p.ChannelID]; ok {
			peer.AccessHash = ch.AccessHash
		}
		return peer
	case *tg.PeerChat:
		return Peer{Kind: PeerChat, ID: p.ChatID}
	case *tg.PeerUser:
		peer := Peer{Kind: PeerUser, ID: p.UserID}
		if u, ok := e.Users[p.UserID]; ok {
			peer.AccessHash = u.AccessHash
		}
		return peer
	}
	return Peer{}
}

func (p Peer) inputChannel() *tg.InputChannel {
	return &tg.InputChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
}

// User is a Telegram user as seen by the bot.
type User struct {
	ID         int64
	AccessHash int64
	Username   string
	FirstName  string
	LastName   string
	Bot        bool
}

// DisplayName returns the first name, falling back to the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

func userFromTG(u *tg.User) User {
	return User{
		ID:         u.ID,
		AccessHash: u.AccessHash,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Bot:        u.Bot,
	}
}

func usersFromTG(list []tg.UserClass) map[int64]User {
	users := make(map[int64]User, len(list))
	for _, uc := range list {
		if u, ok := uc.(*tg.User); ok {
			users[u.ID] = userFromTG(u)
		}
	}
	return users
}

// Chat describes the chat a message was sent in.
type Chat struct {
	Peer
	Title string

	// Broadcast is set for broadcast channels (as opposed to supergroups).
	Broadcast bool
}

// IsGroup reports whether the chat is a basic group or a supergroup.
func (c Chat) IsGroup() bool {
	switch c.Kind {
	case PeerChat:
		return true
	case PeerChannel:
		return !c.Broadcast
	}
	return false
}

// NormalizeUsername strips a leading "@" and lowercases the name.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "@"))
}
