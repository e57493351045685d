// Package tagbot is the Telegram layer of the tag bot. It wraps the MTProto
// client from gotd/td with a small command dispatcher:
//   - exact-match command routing with a free-text argument string
//   - message filters (chats, users, groups, private chats)
//   - per-chat locking for long-running commands
//   - mention extraction from inbound messages and mention rendering
//     for outbound ones
//   - command menu sync and chat admin lookups
//
// Basic usage:
//
//	bot, err := tagbot.New(tagbot.Config{
//	    APIID:    12345,
//	    APIHash:  "your-api-hash",
//	    BotToken: "your-bot-token",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	bot.Command(tagbot.CommandDef{Name: "afk", Description: "Set AFK status"},
//	    func(ctx *tagbot.Context) error {
//	        return ctx.Reply("AFK: " + ctx.Args())
//	    })
//
//	if err := bot.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package tagbot
