package tagbot

import (
	"strings"
	"unicode/utf16"

	"github.com/gotd/td/tg"
)

// Mention is a reference to a user found in an inbound message.
// Exactly one of Username or UserID is set.
type Mention struct {
	// Username is the normalised username of an "@username" mention.
	Username string

	// UserID is set for text mentions of users without a username.
	UserID int64

	// Text is the mentioned text as it appears in the message.
	Text string
}

// Mentions extracts user mentions from message entities.
// Entity offsets are in UTF-16 code units, as sent by Telegram.
func Mentions(text string, entities []tg.MessageEntityClass) []Mention {
	if len(entities) == 0 {
		return nil
	}

	units := utf16.Encode([]rune(text))
	slice := func(offset, length int) (string, bool) {
		if offset < 0 || length <= 0 || offset+length > len(units) {
			return "", false
		}
		return string(utf16.Decode(units[offset : offset+length])), true
	}

	var mentions []Mention
	for _, entity := range entities {
		switch e := entity.(type) {
		case *tg.MessageEntityMention:
			s, ok := slice(e.Offset, e.Length)
			if !ok {
				continue
			}
			username := NormalizeUsername(s)
			if username == "" {
				continue
			}
			mentions = append(mentions, Mention{Username: username, Text: s})
		case *tg.MessageEntityMentionName:
			s, _ := slice(e.Offset, e.Length)
			mentions = append(mentions, Mention{UserID: e.UserID, Text: s})
		}
	}
	return mentions
}

// Text is an outbound message body with mention entities.
// The zero value is an empty message ready to use.
type Text struct {
	b        strings.Builder
	length   int // UTF-16 code units
	entities []tg.MessageEntityClass
}

// Plain appends s without formatting.
func (t *Text) Plain(s string) *Text {
	t.b.WriteString(s)
	t.length += utf16Len(s)
	return t
}

// Mention appends a mention of u. Users with a username are mentioned as
// "@username", which Telegram links on its own. Others get their display
// name linked with a mention-name entity.
func (t *Text) Mention(u User) *Text {
	if u.Username != "" {
		return t.Plain("@" + u.Username)
	}

	name := u.DisplayName()
	t.entities = append(t.entities, &tg.InputMessageEntityMentionName{
		Offset: t.length,
		Length: utf16Len(name),
		UserID: &tg.InputUser{UserID: u.ID, AccessHash: u.AccessHash},
	})
	return t.Plain(name)
}

// String returns the message text.
func (t *Text) String() string {
	return t.b.String()
}

// Len returns the text length in UTF-16 code units.
func (t *Text) Len() int {
	return t.length
}

// Entities returns the mention entities of the text.
func (t *Text) Entities() []tg.MessageEntityClass {
	return t.entities
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
