package tagbot

import (
	"context"
	"slices"

	"github.com/gotd/td/tg"
)

// menuKey identifies one command list on Telegram's side.
type menuKey struct {
	scope CommandScope
	lang  string
}

// SyncCommands replaces the bot's command menu with the registered
// commands that have a description.
func (b *Bot) SyncCommands(ctx context.Context) error {
	if b.api == nil {
		return ErrBotNotRunning
	}

	b.mu.RLock()
	defs := make([]CommandDef, 0, len(b.commands))
	for _, h := range b.commands {
		defs = append(defs, h.CommandDef)
	}
	b.mu.RUnlock()

	menus := groupCommands(defs)

	langs := []string{""}
	for k := range menus {
		if !slices.Contains(langs, k.lang) {
			langs = append(langs, k.lang)
		}
	}
	b.resetMenus(ctx, langs)

	set := 0
	for k, cmds := range menus {
		_, err := b.api.BotsSetBotCommands(ctx, &tg.BotsSetBotCommandsRequest{
			Scope:    k.scope.toTG(),
			LangCode: k.lang,
			Commands: cmds,
		})
		if err != nil {
			b.config.Logger.Error("set commands", "scope", k.scope, "lang", k.lang, "error", err)
			continue
		}
		set++
	}

	b.config.Logger.Info("command menu synced", "menus", set, "commands", len(defs))
	return nil
}

func (b *Bot) resetMenus(ctx context.Context, langs []string) {
	for _, lang := range langs {
		for _, scope := range menuScopes {
			_, err := b.api.BotsResetBotCommands(ctx, &tg.BotsResetBotCommandsRequest{
				Scope:    scope.toTG(),
				LangCode: lang,
			})
			if err != nil {
				b.config.Logger.Debug("reset commands", "scope", scope, "lang", lang, "error", err)
			}
		}
	}
}

// groupCommands builds one command list per scope and language. Default
// scope commands lead every narrower list of the same language.
func groupCommands(defs []CommandDef) map[menuKey][]tg.BotCommand {
	menus := make(map[menuKey][]tg.BotCommand)
	for _, d := range defs {
		if d.Description == "" {
			continue
		}
		scope := d.Scope
		if scope == nil {
			scope = ScopeDefault{}
		}
		k := menuKey{scope: scope, lang: d.LangCode}
		menus[k] = appendCommand(menus[k], tg.BotCommand{Command: d.Name, Description: d.Description})
	}

	for k, cmds := range menus {
		if k.scope == (ScopeDefault{}) {
			continue
		}
		merged := slices.Clone(menus[menuKey{scope: ScopeDefault{}, lang: k.lang}])
		for _, c := range cmds {
			merged = appendCommand(merged, c)
		}
		menus[k] = merged
	}
	return menus
}

func appendCommand(list []tg.BotCommand, c tg.BotCommand) []tg.BotCommand {
	if slices.ContainsFunc(list, func(x tg.BotCommand) bool { return x.Command == c.Command }) {
		return list
	}
	return append(list, c)
}
