package job

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger 能清理过期批量任务的存储
type Purger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// PurgeSpec 清理频率
const PurgeSpec = "@every 5m"

// StartCronJob 定时清理 ttl 之前完成的任务结果，返回的 cron 由调用方 Stop
func StartCronJob(repo Purger, ttl time.Duration) *cron.Cron {
	c := cron.New()

	_, _ = c.AddFunc(PurgeSpec, func() {
		purge(context.Background(), repo, time.Now().Add(-ttl))
	})

	c.Start()
	return c
}

func purge(ctx context.Context, repo Purger, before time.Time) int64 {
	rows, err := repo.PurgeExpired(ctx, before)
	if err != nil {
		log.Println("[Cron] Error:", err)
		return 0
	}
	if rows > 0 {
		log.Printf("[Cron] 清理了 %d 个过期批量任务", rows)
	}
	return rows
}
