package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/en9inerd/tagbot"
	"github.com/en9inerd/tagbot/internal/store"
)

type sentMessage struct {
	text     string
	replyTo  int
	entities int
}

type fakeConversation struct {
	context.Context

	chat     tagbot.Chat
	sender   tagbot.User
	msgID    int
	args     string
	mentions []tagbot.Mention
	replyTo  int
	replied  *tagbot.User

	replies []string
	sent    []sentMessage
	sendErr error
}

func (f *fakeConversation) ChatID() int64              { return f.chat.MarkedID() }
func (f *fakeConversation) Chat() tagbot.Chat          { return f.chat }
func (f *fakeConversation) SenderID() int64            { return f.sender.ID }
func (f *fakeConversation) Sender() tagbot.User        { return f.sender }
func (f *fakeConversation) MessageID() int             { return f.msgID }
func (f *fakeConversation) Args() string               { return f.args }
func (f *fakeConversation) IsGroup() bool              { return f.chat.IsGroup() }
func (f *fakeConversation) IsPrivate() bool            { return f.chat.Kind == tagbot.PeerUser }
func (f *fakeConversation) Mentions() []tagbot.Mention { return f.mentions }
func (f *fakeConversation) ReplyToID() int             { return f.replyTo }

func (f *fakeConversation) RepliedSender() (tagbot.User, bool, error) {
	if f.replied == nil {
		return tagbot.User{}, false, nil
	}
	return *f.replied, true, nil
}

func (f *fakeConversation) Reply(text string) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeConversation) Send(t *tagbot.Text, replyTo int) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{text: t.String(), replyTo: replyTo, entities: len(t.Entities())})
	return nil
}

func (f *fakeConversation) lastReply() string {
	if len(f.replies) == 0 {
		return ""
	}
	return f.replies[len(f.replies)-1]
}

type fakeMessenger struct {
	botAdmin bool
	members  []tagbot.User
	resolve  map[string]tagbot.User
	failTo   map[int64]bool
	texts    map[int64]string
}

func (m *fakeMessenger) SendText(_ context.Context, peer tagbot.Peer, text string) error {
	if m.failTo[peer.MarkedID()] {
		return errors.New("forbidden")
	}
	if m.texts == nil {
		m.texts = make(map[int64]string)
	}
	m.texts[peer.MarkedID()] = text
	return nil
}

func (m *fakeMessenger) IsChatAdmin(context.Context, tagbot.Peer, int64) (bool, error) {
	return m.botAdmin, nil
}

func (m *fakeMessenger) ChatMembers(context.Context, tagbot.Peer) ([]tagbot.User, error) {
	return m.members, nil
}

func (m *fakeMessenger) ResolveUser(_ context.Context, username string) (tagbot.User, error) {
	if u, ok := m.resolve[username]; ok {
		return u, nil
	}
	return tagbot.User{}, tagbot.ErrUserNotFound
}

var (
	group   = tagbot.Chat{Peer: tagbot.Peer{Kind: tagbot.PeerChat, ID: 100}, Title: "Group"}
	alice   = tagbot.User{ID: 1, Username: "alice", FirstName: "Alice"}
	bob     = tagbot.User{ID: 2, FirstName: "Bob"}
	carol   = tagbot.User{ID: 3, Username: "carol", FirstName: "Carol"}
	private = func(u tagbot.User) tagbot.Chat {
		return tagbot.Chat{Peer: tagbot.Peer{Kind: tagbot.PeerUser, ID: u.ID}, Title: u.FirstName}
	}
)

func newTestHandlers(t *testing.T, client Messenger, settings Settings) (*Handlers, *store.SQLStore) {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if client == nil {
		client = &fakeMessenger{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(st, client, settings, logger), st
}

func conv(chat tagbot.Chat, sender tagbot.User, args string) *fakeConversation {
	return &fakeConversation{Context: context.Background(), chat: chat, sender: sender, msgID: 50, args: args}
}

func TestTagOnlyInGroups(t *testing.T) {
	h, _ := newTestHandlers(t, nil, Settings{})

	c := conv(private(alice), alice, "")
	if err := h.Tag(c); err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	if got := c.lastReply(); got != "❌ Tag command only works in groups!" {
		t.Errorf("Tag() reply = %q", got)
	}
}

func TestTagNoMembers(t *testing.T) {
	tests := []struct {
		name     string
		botAdmin bool
		want     string
	}{
		{"bot not admin", false, "❌ I need admin rights to tag all members in this group!"},
		{"bot admin", true, "❌ No members to tag!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandlers(t, &fakeMessenger{botAdmin: tt.botAdmin}, Settings{})
			// a sender without an ID is never recorded as a member
			c := conv(group, tagbot.User{}, "")
			if err := h.Tag(c); err != nil {
				t.Fatalf("Tag() error = %v", err)
			}
			if got := c.lastReply(); got != tt.want {
				t.Errorf("Tag() reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTagMentionsEveryMemberOnce(t *testing.T) {
	ctx := context.Background()
	h, st := newTestHandlers(t, &fakeMessenger{}, Settings{TagBatchSize: 2})

	for _, u := range []tagbot.User{alice, bob, carol} {
		st.UpsertUser(ctx, storeUser(u, time.Now()))
		st.AddMember(ctx, group.MarkedID(), u.ID)
		time.Sleep(time.Millisecond)
	}

	c := conv(group, alice, "meeting now")
	c.replyTo = 42
	if err := h.Tag(c); err != nil {
		t.Fatalf("Tag() error = %v", err)
	}

	if len(c.sent) != 2 {
		t.Fatalf("Tag() sent %d messages, want 2", len(c.sent))
	}
	first := c.sent[0]
	if !strings.HasPrefix(first.text, "📢 meeting now\n\n") {
		t.Errorf("first batch = %q, want header", first.text)
	}
	if first.replyTo != 42 {
		t.Errorf("first batch replyTo = %d, want 42", first.replyTo)
	}
	if c.sent[1].replyTo != 50 {
		t.Errorf("second batch replyTo = %d, want the command message", c.sent[1].replyTo)
	}

	all := c.sent[0].text + " " + c.sent[1].text
	for _, want := range []string{"🔔 @alice", "🔔 Bob", "🔔 @carol"} {
		if n := strings.Count(all, want); n != 1 {
			t.Errorf("Tag() output contains %q %d times, want 1", want, n)
		}
	}
	if first.entities != 1 {
		t.Errorf("first batch entities = %d, want 1 mention-name for Bob", first.entities)
	}
}

func TestMemberLeftIsNoLongerTagged(t *testing.T) {
	ctx := context.Background()
	h, st := newTestHandlers(t, &fakeMessenger{}, Settings{})

	other := tagbot.Chat{Peer: tagbot.Peer{Kind: tagbot.PeerChat, ID: 200}}
	for _, u := range []tagbot.User{alice, bob} {
		st.UpsertUser(ctx, storeUser(u, time.Now()))
		st.AddMember(ctx, group.MarkedID(), u.ID)
	}
	st.AddMember(ctx, other.MarkedID(), bob.ID)

	if err := h.MemberLeft(ctx, group.Peer, bob.ID); err != nil {
		t.Fatalf("MemberLeft() error = %v", err)
	}

	c := conv(group, alice, "")
	if err := h.Tag(c); err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	if len(c.sent) != 1 || strings.Contains(c.sent[0].text, "Bob") {
		t.Errorf("Tag() sent %v, want only alice", c.sent)
	}

	members, _ := st.Members(ctx, other.MarkedID())
	if len(members) != 1 || members[0].ID != bob.ID {
		t.Errorf("Members() of other chat = %v, want bob kept", members)
	}
}

func TestTagDiscoversMembersAndUsesChatEmoji(t *testing.T) {
	ctx := context.Background()
	client := &fakeMessenger{
		botAdmin: true,
		members:  []tagbot.User{alice, {ID: 9, Username: "helper_bot", Bot: true}, carol},
	}
	h, st := newTestHandlers(t, client, Settings{})

	st.UpsertChat(ctx, store.Chat{ID: group.MarkedID(), Kind: "chat"})
	st.SetEmoji(ctx, group.MarkedID(), "🔥")

	c := conv(group, alice, "")
	if err := h.Tag(c); err != nil {
		t.Fatalf("Tag() error = %v", err)
	}
	if len(c.sent) != 1 {
		t.Fatalf("Tag() sent %d messages, want 1", len(c.sent))
	}
	if got, want := c.sent[0].text, "🔥 @alice 🔥 @carol"; got != want {
		t.Errorf("Tag() text = %q, want %q", got, want)
	}
}

func TestTagSendFailure(t *testing.T) {
	ctx := context.Background()
	h, st := newTestHandlers(t, &fakeMessenger{}, Settings{})
	st.UpsertUser(ctx, storeUser(bob, time.Now()))
	st.AddMember(ctx, group.MarkedID(), bob.ID)

	c := conv(group, alice, "")
	c.sendErr = errors.New("FLOOD_WAIT")
	if err := h.Tag(c); err == nil {
		t.Error("Tag() error = nil, want send failure")
	}
	if !strings.HasPrefix(c.lastReply(), "❌ Error tagging members") {
		t.Errorf("Tag() reply = %q, want error report", c.lastReply())
	}
}

func TestAFKAndBack(t *testing.T) {
	h, _ := newTestHandlers(t, nil, Settings{})
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return start }

	c := conv(group, alice, "lunch")
	if err := h.AFK(c); err != nil {
		t.Fatalf("AFK() error = %v", err)
	}
	if got, want := c.lastReply(), "😴 Alice is now AFK: lunch"; got != want {
		t.Errorf("AFK() reply = %q, want %q", got, want)
	}

	h.now = func() time.Time { return start.Add(75 * time.Minute) }
	c = conv(group, alice, "")
	if err := h.Back(c); err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if got, want := c.lastReply(), "✅ Welcome back Alice!\nYou were AFK for 1 hour 15 minutes."; got != want {
		t.Errorf("Back() reply = %q, want %q", got, want)
	}

	if err := h.Back(c); err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if got, want := c.lastReply(), "❌ You are not AFK!"; got != want {
		t.Errorf("Back() twice reply = %q, want %q", got, want)
	}
}

func TestObserveAFK(t *testing.T) {
	ctx := context.Background()
	h, st := newTestHandlers(t, nil, Settings{})
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return start }

	st.UpsertUser(ctx, storeUser(carol, start))
	st.SetAFK(ctx, store.AFK{UserID: carol.ID, ChatID: group.MarkedID(), Reason: "sleeping", Since: start})
	st.SetAFK(ctx, store.AFK{UserID: bob.ID, ChatID: group.MarkedID(), Since: start})

	h.now = func() time.Time { return start.Add(5 * time.Minute) }

	c := conv(group, alice, "")
	c.mentions = []tagbot.Mention{{Username: "Carol"}, {Username: "carol"}, {UserID: bob.ID, Text: "Bob"}}
	c.replyTo = 7
	c.replied = &carol
	if err := h.Observe(c); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}

	want := []string{
		"💤 Carol is AFK for 5 minutes\nReason: sleeping",
		"💤 Bob is AFK for 5 minutes",
	}
	if len(c.replies) != len(want) {
		t.Fatalf("Observe() replies = %q, want %q", c.replies, want)
	}
	for i := range want {
		if c.replies[i] != want[i] {
			t.Errorf("Observe() reply[%d] = %q, want %q", i, c.replies[i], want[i])
		}
	}

	members, _ := st.Members(ctx, group.MarkedID())
	if len(members) != 1 || members[0].ID != alice.ID {
		t.Errorf("Observe() members = %+v, want alice recorded", members)
	}

	// an away sender is welcomed back and never told about itself
	c = conv(group, carol, "")
	c.mentions = []tagbot.Mention{{Username: "carol"}}
	if err := h.Observe(c); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if len(c.replies) != 1 || !strings.HasPrefix(c.replies[0], "✅ Welcome back Carol!") {
		t.Errorf("Observe() replies = %q, want a single welcome back", c.replies)
	}
}

func TestSetEmoji(t *testing.T) {
	ctx := context.Background()
	h, st := newTestHandlers(t, nil, Settings{OwnerID: alice.ID})

	tests := []struct {
		name   string
		sender tagbot.User
		args   string
		want   string
	}{
		{"not admin", bob, "🔥", "❌ Only owners and admins can set emoji!"},
		{"missing", alice, "", "❌ Please provide an emoji!\nUsage: /setemoji 🔥"},
		{"invalid", alice, "abc", "❌ Please provide a valid emoji!"},
		{"ok", alice, "🔥", "✅ Tag emoji set to: 🔥"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := conv(group, tt.sender, tt.args)
			if err := h.SetEmoji(c); err != nil {
				t.Fatalf("SetEmoji() error = %v", err)
			}
			if got := c.lastReply(); got != tt.want {
				t.Errorf("SetEmoji() reply = %q, want %q", got, tt.want)
			}
		})
	}

	chat, err := st.Chat(ctx, group.MarkedID())
	if err != nil {
		t.Fatalf("get chat: %v", err)
	}
	if chat.Emoji != "🔥" {
		t.Errorf("stored emoji = %q, want 🔥", chat.Emoji)
	}
}

func TestAdminManagement(t *testing.T) {
	ctx := context.Background()
	client := &fakeMessenger{resolve: map[string]tagbot.User{"dave": {ID: 4, Username: "dave", FirstName: "Dave"}}}
	h, st := newTestHandlers(t, client, Settings{})
	st.UpsertUser(ctx, storeUser(carol, time.Now()))

	// first /start claims ownership
	c := conv(private(alice), alice, "")
	if err := h.Start(c); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !strings.HasPrefix(c.lastReply(), "🎉 Welcome Alice!") {
		t.Errorf("Start() reply = %q, want owner welcome", c.lastReply())
	}
	c = conv(private(bob), bob, "")
	h.Start(c)
	if !strings.HasPrefix(c.lastReply(), "👋 Hello Bob!") {
		t.Errorf("Start() reply = %q, want plain welcome", c.lastReply())
	}

	c = conv(group, bob, "@carol")
	h.AddAdmin(c)
	if got := c.lastReply(); got != "❌ Only the owner can add admins!" {
		t.Errorf("AddAdmin() by non-owner reply = %q", got)
	}

	c = conv(group, alice, "@carol")
	if err := h.AddAdmin(c); err != nil {
		t.Fatalf("AddAdmin() error = %v", err)
	}
	if got, want := c.lastReply(), "✅ Carol is now an admin!"; got != want {
		t.Errorf("AddAdmin() reply = %q, want %q", got, want)
	}
	if ok, _ := st.IsAdmin(ctx, group.MarkedID(), carol.ID); !ok {
		t.Error("carol is not a group admin after AddAdmin()")
	}
	if ok, _ := st.IsAdmin(ctx, -999, carol.ID); ok {
		t.Error("group admin leaked into another chat")
	}

	// private chat grants a global entry via Telegram lookup
	c = conv(private(alice), alice, "dave")
	if err := h.AddAdmin(c); err != nil {
		t.Fatalf("AddAdmin() error = %v", err)
	}
	if ok, _ := st.IsAdmin(ctx, -999, 4); !ok {
		t.Error("dave is not a global admin after AddAdmin() in private")
	}

	c = conv(group, alice, "@nobody")
	h.AddAdmin(c)
	if got := c.lastReply(); !strings.HasPrefix(got, "❌ User @nobody not found!") {
		t.Errorf("AddAdmin() unknown reply = %q", got)
	}

	c = conv(group, alice, "")
	c.replyTo = 9
	c.replied = &carol
	if err := h.RemoveAdmin(c); err != nil {
		t.Fatalf("RemoveAdmin() error = %v", err)
	}
	if got, want := c.lastReply(), "✅ Carol is no longer an admin!"; got != want {
		t.Errorf("RemoveAdmin() reply = %q, want %q", got, want)
	}
	h.RemoveAdmin(c)
	if got, want := c.lastReply(), "❌ Carol is not an admin!"; got != want {
		t.Errorf("RemoveAdmin() twice reply = %q, want %q", got, want)
	}

	c = conv(group, alice, "")
	h.RemoveAdmin(c)
	if got, want := c.lastReply(), "❌ Please provide a username!\nUsage: /removeadmin @username"; got != want {
		t.Errorf("RemoveAdmin() without target reply = %q, want %q", got, want)
	}
}

func adminSnapshot(t *testing.T, st *store.SQLStore, chatID int64) []string {
	t.Helper()
	admins, err := st.Admins(context.Background(), chatID)
	if err != nil {
		t.Fatalf("Admins() error = %v", err)
	}
	var out []string
	for _, a := range admins {
		out = append(out, fmt.Sprintf("%d/%d/%s", a.ChatID, a.UserID, a.Role))
	}
	return out
}

func TestAdminCommandsRejectNonOwner(t *testing.T) {
	ctx := context.Background()
	h, st := newTestHandlers(t, nil, Settings{OwnerID: alice.ID})
	st.UpsertUser(ctx, storeUser(carol, time.Now()))
	st.UpsertUser(ctx, storeUser(bob, time.Now()))
	st.AddAdmin(ctx, group.MarkedID(), carol.ID)

	tests := []struct {
		name   string
		chat   tagbot.Chat
		sender tagbot.User
		fn     func(*Handlers, Conversation) error
		args   string
		want   string
	}{
		{"addadmin by chat admin", group, carol, (*Handlers).AddAdmin, "2", "❌ Only the owner can add admins!"},
		{"addadmin by member", group, bob, (*Handlers).AddAdmin, "2", "❌ Only the owner can add admins!"},
		{"addadmin in private", private(bob), bob, (*Handlers).AddAdmin, "2", "❌ Only the owner can add admins!"},
		{"removeadmin by chat admin", group, carol, (*Handlers).RemoveAdmin, "@carol", "❌ Only the owner can remove admins!"},
		{"removeadmin by member", group, bob, (*Handlers).RemoveAdmin, "3", "❌ Only the owner can remove admins!"},
		{"removeadmin in private", private(bob), bob, (*Handlers).RemoveAdmin, "3", "❌ Only the owner can remove admins!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := adminSnapshot(t, st, group.MarkedID())

			c := conv(tt.chat, tt.sender, tt.args)
			if err := tt.fn(h, c); err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if len(c.replies) != 1 || c.replies[0] != tt.want {
				t.Errorf("replies = %q, want [%q]", c.replies, tt.want)
			}

			after := adminSnapshot(t, st, group.MarkedID())
			if strings.Join(after, ",") != strings.Join(before, ",") {
				t.Errorf("admins changed from %v to %v", before, after)
			}
			if ok, _ := st.IsAdmin(ctx, group.MarkedID(), bob.ID); ok {
				t.Error("bob became an admin")
			}
			if ok, _ := st.IsAdmin(ctx, group.MarkedID(), carol.ID); !ok {
				t.Error("carol lost admin rights")
			}
		})
	}
}

func TestSeedOwnerReplacesClaimedOwner(t *testing.T) {
	ctx := context.Background()
	unset, st := newTestHandlers(t, nil, Settings{})

	if err := unset.SeedOwner(ctx); err != nil {
		t.Fatalf("SeedOwner() without OwnerID error = %v", err)
	}
	if _, err := st.Owner(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Owner() after no-op SeedOwner() error = %v, want ErrNotFound", err)
	}

	// bob claims the bot before an owner is configured
	c := conv(private(bob), bob, "")
	if err := unset.Start(c); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if owner, _ := st.Owner(ctx); owner != bob.ID {
		t.Fatalf("Owner() = %d, want bob", owner)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(st, &fakeMessenger{}, Settings{OwnerID: alice.ID}, logger)
	if err := h.SeedOwner(ctx); err != nil {
		t.Fatalf("SeedOwner() error = %v", err)
	}

	if owner, _ := st.Owner(ctx); owner != alice.ID {
		t.Errorf("Owner() = %d, want alice", owner)
	}
	if ok, _ := st.IsAdmin(ctx, group.MarkedID(), bob.ID); ok {
		t.Error("IsAdmin() of the replaced owner = true, want false")
	}

	c = conv(group, bob, "💀")
	if err := h.SetEmoji(c); err != nil {
		t.Fatalf("SetEmoji() error = %v", err)
	}
	if got, want := c.lastReply(), "❌ Only owners and admins can set emoji!"; got != want {
		t.Errorf("SetEmoji() by replaced owner reply = %q, want %q", got, want)
	}
	if chat, err := st.Chat(ctx, group.MarkedID()); err == nil && chat.Emoji != "" {
		t.Errorf("stored emoji = %q, want unchanged", chat.Emoji)
	}

	c = conv(private(bob), bob, "hi")
	if err := h.Broadcast(c); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	if got, want := c.lastReply(), "❌ Only owners and admins can broadcast!"; got != want {
		t.Errorf("Broadcast() by replaced owner reply = %q, want %q", got, want)
	}

	c = conv(group, alice, "3")
	if err := h.AddAdmin(c); err != nil {
		t.Fatalf("AddAdmin() error = %v", err)
	}
	if ok, _ := st.IsAdmin(ctx, group.MarkedID(), carol.ID); !ok {
		t.Error("configured owner could not add an admin")
	}
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()
	client := &fakeMessenger{failTo: map[int64]bool{-300: true}}
	h, st := newTestHandlers(t, client, Settings{OwnerID: alice.ID})

	for _, chat := range []store.Chat{
		{ID: alice.ID, Kind: "user"},
		{ID: bob.ID, Kind: "user"},
		{ID: -100, Kind: "chat"},
		{ID: -300, Kind: "chat"},
	} {
		st.UpsertChat(ctx, chat)
	}

	c := conv(private(bob), bob, "hello")
	h.Broadcast(c)
	if got := c.lastReply(); got != "❌ Only owners and admins can broadcast!" {
		t.Errorf("Broadcast() by non-admin reply = %q", got)
	}

	c = conv(private(alice), alice, "hello")
	if err := h.Broadcast(c); err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}
	want := []string{"📢 Broadcasting to 3 chats...", "✅ Broadcast sent to 2/3 chats!"}
	if len(c.replies) != 2 || c.replies[0] != want[0] || c.replies[1] != want[1] {
		t.Errorf("Broadcast() replies = %q, want %q", c.replies, want)
	}
	if _, ok := client.texts[alice.ID]; ok {
		t.Error("Broadcast() delivered to the sender's own chat")
	}
	if got := client.texts[-100]; got != "📢 Broadcast:\nhello" {
		t.Errorf("Broadcast() text = %q", got)
	}

	st2, _ := st.Stats(ctx)
	if st2.Broadcasts != 1 {
		t.Errorf("Stats().Broadcasts = %d, want 1", st2.Broadcasts)
	}
}

func TestHelpIsRoleAware(t *testing.T) {
	ctx := context.Background()
	h, st := newTestHandlers(t, nil, Settings{OwnerID: alice.ID})
	st.AddAdmin(ctx, group.MarkedID(), bob.ID)

	tests := []struct {
		sender    tagbot.User
		wantAdmin bool
		wantOwner bool
	}{
		{alice, true, true},
		{bob, true, false},
		{carol, false, false},
	}
	for _, tt := range tests {
		c := conv(group, tt.sender, "")
		if err := h.Help(c); err != nil {
			t.Fatalf("Help() error = %v", err)
		}
		got := c.lastReply()
		if strings.Contains(got, "/setemoji") != tt.wantAdmin {
			t.Errorf("Help() for %s admin section = %v, want %v", tt.sender.FirstName, !tt.wantAdmin, tt.wantAdmin)
		}
		if strings.Contains(got, "/addadmin") != tt.wantOwner {
			t.Errorf("Help() for %s owner section = %v, want %v", tt.sender.FirstName, !tt.wantOwner, tt.wantOwner)
		}
	}
}
