package tagbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/gotd/td/bin"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// floodWaitMiddleware sleeps through FLOOD_WAIT errors and retries the call.
// Waits longer than maxWait are returned to the caller unchanged.
type floodWaitMiddleware struct {
	maxWait time.Duration
	logger  *slog.Logger
}

func (f floodWaitMiddleware) Handle(next tg.Invoker) telegram.InvokeFunc {
	return func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		for {
			err := next.Invoke(ctx, input, output)
			if err == nil {
				return nil
			}

			wait, ok := tgerr.AsFloodWait(err)
			if !ok {
				return err
			}
			if f.maxWait > 0 && wait > f.maxWait {
				f.logger.Warn("flood wait exceeds limit", "wait", wait, "limit", f.maxWait)
				return err
			}

			f.logger.Debug("flood wait, retrying", "wait", wait)
			timer := time.NewTimer(wait + time.Second)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
}
