package tagbot

import (
	"context"

	"github.com/gotd/td/tg"
)

// registerDispatcherHandlers routes new messages from private chats, basic
// groups and supergroups. Edits are not handled.
func (b *Bot) registerDispatcherHandlers() {
	b.dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		return b.route(ctx, u.Message, e)
	})
	b.dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		return b.route(ctx, u.Message, e)
	})
}

func (b *Bot) route(ctx context.Context, m tg.MessageClass, e tg.Entities) error {
	switch msg := m.(type) {
	case *tg.Message:
		return b.handleMessage(ctx, msg, e)
	case *tg.MessageService:
		return b.handleService(ctx, msg, e)
	}
	return nil
}

// handleService reacts to the service messages the bot cares about: a
// member leaving or being removed from a group.
func (b *Bot) handleService(ctx context.Context, msg *tg.MessageService, entities tg.Entities) error {
	action, ok := msg.Action.(*tg.MessageActionChatDeleteUser)
	if !ok {
		return nil
	}
	chat := peerOf(msg.PeerID, entities)

	b.mu.RLock()
	handlers := b.left
	b.mu.RUnlock()

	for _, fn := range handlers {
		if err := fn(ctx, chat, action.UserID); err != nil {
			b.config.Logger.Error("member left handler error",
				"chat_id", chat.MarkedID(),
				"user_id", action.UserID,
				"error", err)
		}
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tg.Message, entities tg.Entities) error {
	if msg.Out {
		return nil
	}

	botCtx := &Context{
		Context:  ctx,
		bot:      b,
		message:  msg,
		entities: entities,
	}

	if name, mention, args, ok := ParseCommand(msg.Message); ok {
		if mention != "" && NormalizeUsername(mention) != b.selfUsername {
			// addressed to another bot
			return nil
		}
		botCtx.command = name
		botCtx.args = args
		if err := b.handleCommand(botCtx); err != nil {
			b.config.Logger.Error("command handler error",
				"command", name,
				"chat_id", botCtx.ChatID(),
				"error", err)
		}
		return nil
	}

	b.mu.RLock()
	handlers := b.messages
	b.mu.RUnlock()

	for _, h := range handlers {
		if h.filter.matches(botCtx) {
			if err := h.fn(botCtx); err != nil {
				b.config.Logger.Error("message handler error", "error", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleCommand(ctx *Context) error {
	name := ctx.Command()

	b.config.Logger.Debug("received command",
		"command", name,
		"sender_id", ctx.SenderID(),
		"chat_id", ctx.ChatID())

	b.mu.RLock()
	handlers := b.commands
	b.mu.RUnlock()

	for _, h := range handlers {
		if h.Name != name {
			continue
		}
		if !h.Filter.matches(ctx) {
			b.config.Logger.Debug("command filter not matched",
				"command", name,
				"sender_id", ctx.SenderID())
			continue
		}

		if !h.Locked {
			return h.fn(ctx)
		}

		chatID := ctx.ChatID()
		key := chatID
		if h.Global {
			key = globalLockKey
		}
		if !b.locks.TryAcquire(key, name) {
			holder, _ := b.locks.Holder(key)
			b.config.Logger.Info("command dropped, already running",
				"command", name,
				"chat_id", chatID,
				"global", h.Global,
				"running", holder)
			return nil
		}

		// locked commands are long-running; keep the update loop moving
		if b.runCtx != nil {
			ctx.Context = b.runCtx
		}
		b.inflight.Add(1)
		go func() {
			defer b.inflight.Done()
			defer b.locks.Unlock(key)
			if err := h.fn(ctx); err != nil {
				b.config.Logger.Error("command handler error",
					"command", name,
					"chat_id", chatID,
					"error", err)
			}
		}()
		return nil
	}

	return nil
}
