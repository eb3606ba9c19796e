package scheduler

import (
	"context"
	"fmt"

	"homematch_backend/platform/config"
	"homematch_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic wraps the asynq cron scheduler that enqueues the recurring
// distribution sweep.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	scheduler := asynq.NewScheduler(opt, nil)

	task, err := NewDistributeLeadsTask(DistributeLeadsPayload{TriggeredBy: "cron"})
	if err != nil {
		return nil, err
	}

	cron := cfg.GetDistributionCron()
	if _, err := scheduler.Register(cron, task, asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register distribution cron %q: %w", cron, err)
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run starts the cron scheduler and blocks until the context is cancelled.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	go func() {
		<-ctx.Done()
		p.scheduler.Shutdown()
	}()

	if err := p.scheduler.Run(); err != nil {
		p.log.Error("cron scheduler stopped", "error", err)
	}
}
