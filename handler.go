package tagbot

import "slices"

// HandlerFunc handles one message. Returned errors are logged by the
// dispatcher.
type HandlerFunc func(ctx *Context) error

// Filter restricts which messages reach a handler. All set conditions
// must hold.
type Filter struct {
	// Chats filters by marked chat IDs (see Peer.MarkedID).
	// Empty means all chats.
	Chats []int64

	// Users filters by sender user IDs.
	// Empty means all users.
	Users []int64

	// Groups limits the handler to basic groups and supergroups.
	Groups bool

	// Private limits the handler to private chats with the bot.
	Private bool

	// Incoming drops messages sent by the bot itself.
	Incoming bool

	// Custom reports whether the message should be handled.
	Custom func(ctx *Context) bool
}

type handler struct {
	fn     HandlerFunc
	filter Filter
}

type commandHandler struct {
	CommandDef
	fn HandlerFunc
}

func (f *Filter) matches(ctx *Context) bool {
	switch {
	case f.Incoming && ctx.IsOutgoing():
		return false
	case f.Groups && !ctx.IsGroup():
		return false
	case f.Private && !ctx.IsPrivate():
		return false
	case len(f.Chats) > 0 && !slices.Contains(f.Chats, ctx.ChatID()):
		return false
	case len(f.Users) > 0 && !slices.Contains(f.Users, ctx.SenderID()):
		return false
	case f.Custom != nil:
		return f.Custom(ctx)
	}
	return true
}
