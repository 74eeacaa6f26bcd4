package stores

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/mockup/core"
)

// RunSweeper 每隔 interval 删除存放超过 ttl 的产物，直到 ctx 结束。
// interval 为 0 时取 ttl 的一半。
func RunSweeper(ctx context.Context, store core.ArtifactStore, ttl, interval time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logrus.WithField("ttl", ttl.String())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.Sweep(ctx, now.Add(-ttl))
			if err != nil {
				log.WithError(err).Warn("Artifact sweep failed")
				continue
			}
			if n > 0 {
				log.WithField("count", n).Info("Expired artifacts released")
			}
		}
	}
}
