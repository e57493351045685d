package tagbot

import "github.com/gotd/td/tg"

// CommandScope selects who sees a command in the Telegram menu.
// Implementations are comparable so they can key a map.
type CommandScope interface {
	toTG() tg.BotCommandScopeClass
	String() string
}

// ScopeDefault is every chat. Its commands are also copied into each
// narrower scope, since Telegram only shows the most specific one.
type ScopeDefault struct{}

func (ScopeDefault) toTG() tg.BotCommandScopeClass { return &tg.BotCommandScopeDefault{} }
func (ScopeDefault) String() string                  { return "default" }

// ScopeAllPrivate is every private chat with the bot.
type ScopeAllPrivate struct{}

func (ScopeAllPrivate) toTG() tg.BotCommandScopeClass { return &tg.BotCommandScopeUsers{} }
func (ScopeAllPrivate) String() string                  { return "private" }

// ScopeAllGroups is every basic group and supergroup.
type ScopeAllGroups struct{}

func (ScopeAllGroups) toTG() tg.BotCommandScopeClass { return &tg.BotCommandScopeChats{} }
func (ScopeAllGroups) String() string                  { return "groups" }

// ScopeAllGroupAdmins is the administrators of every group.
type ScopeAllGroupAdmins struct{}

func (ScopeAllGroupAdmins) toTG() tg.BotCommandScopeClass { return &tg.BotCommandScopeChatAdmins{} }
func (ScopeAllGroupAdmins) String() string                  { return "group_admins" }

var menuScopes = []CommandScope{ScopeDefault{}, ScopeAllPrivate{}, ScopeAllGroups{}, ScopeAllGroupAdmins{}}
