package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"doctor-registry/internal/notify"
	"doctor-registry/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow doctor change events from the Redis stream",
		Long: "Prints each change event as a JSON line and drops the cached copy of the\n" +
			"doctor when the cache is enabled. Stops on SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.rdb == nil {
				return withCode(exitUsage, fmt.Errorf("watch needs REDIS_ENABLED=true or NOTIFY_MODE=redis"))
			}

			source := notify.NewRedisStreamSource(a.rdb, a.cfg.Notify.Stream, a.cfg.Notify.Group, a.cfg.Notify.Consumer)
			c := notify.NewChangeConsumer(source, watchHandler(cmd.OutOrStdout(), a.cache, a.logger), a.logger)
			if err := c.Start(ctx); err != nil {
				return withCode(exitIO, err)
			}
			return nil
		},
	}
}

// watchHandler 失效缓存后输出事件；缓存失效失败时不 ACK，等待重投
func watchHandler(out io.Writer, cache *store.DoctorCache, logger *zap.Logger) notify.Handler {
	var mu sync.Mutex
	return func(ctx context.Context, ev notify.Event) error {
		if cache != nil {
			if err := cache.Invalidate(ctx, ev.DoctorID); err != nil {
				return fmt.Errorf("failed to invalidate doctor %d: %w", ev.DoctorID, err)
			}
		}
		logger.Debug("Doctor changed", zap.Int64("doctor_id", ev.DoctorID), zap.String("actor", ev.Actor))

		mu.Lock()
		defer mu.Unlock()
		return writeJSONLine(out, ev)
	}
}
