package tagbot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/updates"
	updhook "github.com/gotd/td/telegram/updates/hook"
	"github.com/gotd/td/tg"
)

// Bot is a Telegram bot account driven over MTProto. Handlers are
// registered before Run and dispatched from the update loop.
type Bot struct {
	config     Config
	client     *telegram.Client
	api        *tg.Client
	dispatcher tg.UpdateDispatcher
	gaps       *updates.Manager

	mu       sync.RWMutex
	commands []commandHandler
	messages []handler
	left     []MemberLeftFunc
	locks    *CommandLock
	inflight sync.WaitGroup
	onReady  func(ctx context.Context)

	running      atomic.Bool
	runCtx       context.Context
	selfID       int64
	selfUsername string
}

// New validates cfg and prepares the MTProto client. Nothing is sent to
// Telegram until Run.
func New(cfg Config) (*Bot, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	storage, err := cfg.sessionStorage()
	if err != nil {
		return nil, err
	}

	zl := cfg.zapLogger()
	b := &Bot{
		config:     cfg,
		dispatcher: tg.NewUpdateDispatcher(),
		locks:      NewCommandLock(),
	}
	b.gaps = updates.New(updates.Config{
		Handler: &b.dispatcher,
		Logger:  zl.Named("gaps"),
	})
	b.client = telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		Logger:         zl,
		SessionStorage: storage,
		UpdateHandler:  b.gaps,
		Middlewares: []telegram.Middleware{
			floodWaitMiddleware{maxWait: cfg.MaxFloodWait, logger: cfg.Logger},
			updhook.UpdateHook(b.gaps.Handle),
		},
		Device: telegram.DeviceConfig{
			DeviceModel: cfg.DeviceModel,
			AppVersion:  cfg.AppVersion,
			LangCode:    cfg.LangCode,
		},
	})

	b.registerDispatcherHandlers()
	return b, nil
}

func (c *Config) sessionStorage() (session.Storage, error) {
	if c.SessionStorage != nil {
		return c.SessionStorage, nil
	}
	if err := os.MkdirAll(c.SessionDir, 0700); err != nil {
		return nil, err
	}
	return &session.FileStorage{Path: filepath.Join(c.SessionDir, "session")}, nil
}

// OnReady sets fn to run once per Run, after login and before updates
// are consumed.
func (b *Bot) OnReady(fn func(ctx context.Context)) {
	b.onReady = fn
}

// OnMessage registers fn for incoming messages that are not commands.
// Handlers run in registration order.
func (b *Bot) OnMessage(filter Filter, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, handler{fn: fn, filter: filter})
}

// MemberLeftFunc is called when a service message reports that userID
// left chat or was removed from it.
type MemberLeftFunc func(ctx context.Context, chat Peer, userID int64) error

// OnMemberLeft registers fn for members leaving a group.
func (b *Bot) OnMemberLeft(fn MemberLeftFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.left = append(b.left, fn)
}

// CommandDef describes a slash command.
type CommandDef struct {
	// Name without the leading slash. Routing is an exact match.
	Name string

	// Description for the command menu. Commands without one are routed
	// but never synced.
	Description string

	// Locked commands run at most once at a time per chat. Overlapping
	// invocations are dropped.
	Locked bool

	// Global widens the lock of a Locked command to all chats.
	Global bool

	// Scope of the menu entry. Nil means ScopeDefault.
	Scope CommandScope

	// LangCode of the menu entry, empty for all languages.
	LangCode string

	// Filter narrows who may trigger the command.
	Filter Filter
}

// Command registers fn for def.Name.
func (b *Bot) Command(def CommandDef, fn HandlerFunc) {
	def.Filter.Incoming = true

	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = append(b.commands, commandHandler{CommandDef: def, fn: fn})
}

// Run logs in with the bot token and consumes updates until ctx ends.
// Only one Run may be active at a time.
func (b *Bot) Run(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer b.running.Store(false)
	defer b.inflight.Wait()

	return b.client.Run(ctx, func(ctx context.Context) error {
		b.runCtx = ctx
		self, err := b.login(ctx)
		if err != nil {
			return err
		}
		b.prepare(ctx)

		return b.gaps.Run(ctx, b.api, self.ID, updates.AuthOptions{
			OnStart: func(ctx context.Context) {
				b.config.Logger.Info("receiving updates", "id", self.ID, "username", self.Username)
			},
		})
	})
}

func (b *Bot) login(ctx context.Context) (*tg.User, error) {
	status, err := b.client.Auth().Status(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Authorized {
		if _, err := b.client.Auth().Bot(ctx, b.config.BotToken); err != nil {
			return nil, err
		}
	}

	self, err := b.client.Self(ctx)
	if err != nil {
		return nil, err
	}
	b.selfID = self.ID
	b.selfUsername = NormalizeUsername(self.Username)
	b.api = tg.NewClient(b.client)
	return self, nil
}

// prepare runs the per-login setup. Failures here are logged only.
func (b *Bot) prepare(ctx context.Context) {
	log := b.config.Logger

	if info := b.config.BotInfo; info != nil {
		if err := b.UpdateBotInfo(ctx, *info); err != nil {
			log.Warn("bot profile not updated", "error", err)
		}
	}
	if b.onReady != nil {
		b.onReady(ctx)
	}
	if b.config.SyncCommands {
		if err := b.SyncCommands(ctx); err != nil {
			log.Warn("command menu not synced", "error", err)
		}
	}
}

// Running reports whether Run is in progress.
func (b *Bot) Running() bool {
	return b.running.Load()
}

// SelfID is the bot's user ID, zero before login.
func (b *Bot) SelfID() int64 {
	return b.selfID
}
