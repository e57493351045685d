package tagbot

import (
	"log/slog"
	"os"
	"time"

	"github.com/gotd/td/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures a Bot. APIID, APIHash and BotToken are required.
type Config struct {
	// MTProto application credentials (my.telegram.org).
	APIID   int
	APIHash string

	// BotToken as issued by @BotFather.
	BotToken string

	// SessionDir keeps the session file when SessionStorage is nil.
	// Default "./session".
	SessionDir string

	// SessionStorage replaces the session file, e.g. with a database row.
	SessionStorage session.Storage

	// Logger for the bot. Default slog.Default().
	Logger *slog.Logger

	// Client identification sent on connect. Defaults: "tagbot",
	// "1.0.0", "en".
	DeviceModel string
	AppVersion  string
	LangCode    string

	// MaxFloodWait is the longest FLOOD_WAIT the client sleeps through
	// before returning the error. Default 5m.
	MaxFloodWait time.Duration

	// SyncCommands publishes the command menu after login.
	SyncCommands bool

	// BotInfo, when set, is applied to the bot profile after login.
	BotInfo *BotInfo

	// Verbose turns on MTProto debug output.
	Verbose bool
}

func (c *Config) setDefaults() {
	if c.SessionDir == "" {
		c.SessionDir = "./session"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.DeviceModel == "" {
		c.DeviceModel = "tagbot"
	}
	if c.AppVersion == "" {
		c.AppVersion = "1.0.0"
	}
	if c.LangCode == "" {
		c.LangCode = "en"
	}
	if c.MaxFloodWait == 0 {
		c.MaxFloodWait = 5 * time.Minute
	}
}

func (c *Config) validate() error {
	switch {
	case c.APIID == 0:
		return ErrMissingAPIID
	case c.APIHash == "":
		return ErrMissingAPIHash
	case c.BotToken == "":
		return ErrMissingBotToken
	}
	return nil
}

// zapLogger is the gotd client logger: warnings only, or everything when
// Verbose.
func (c *Config) zapLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if c.Verbose {
		level = zapcore.DebugLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	enc.CallerKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Named("mtproto")
}
