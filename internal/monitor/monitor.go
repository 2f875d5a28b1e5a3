package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/farrow9/user-api/internal/metrics"
	"github.com/farrow9/user-api/internal/store"
)

// Run pings the user store on the given interval and keeps the store_up gauge
// current, logging up/down transitions. It blocks until ctx is canceled, so
// call it in a goroutine.
func Run(ctx context.Context, users store.UserStore, interval time.Duration) {
	var up atomic.Bool
	up.Store(true)

	check := func() {
		err := users.Ping(ctx)
		now := err == nil
		metrics.SetStoreUp(now)
		if was := up.Swap(now); was != now {
			if now {
				slog.Info("user store reachable again")
			} else {
				slog.Error("user store unreachable", "error", err)
			}
		}
	}

	check()

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), check); err != nil {
		slog.Error("store monitor disabled: bad interval", "interval", interval, "error", err)
		return
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
}
