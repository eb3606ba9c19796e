package scheduler

import (
	"context"
	"fmt"

	"homematch_backend/internal/matching/transport"
	"homematch_backend/platform/config"
	"homematch_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Distributor runs one pass over the unassigned backlog. Satisfied by the
// matching service.
type Distributor interface {
	DistributeAll(ctx context.Context) (transport.DistributionRunResponse, error)
}

type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	distributor Distributor
	log         *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, distributor Distributor, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:      server,
		mux:         mux,
		distributor: distributor,
		log:         log,
	}

	mux.HandleFunc(TaskDistributeLeads, w.handleDistributeLeads)

	return w, nil
}

func (w *Worker) handleDistributeLeads(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDistributeLeadsPayload(task)
	if err != nil {
		return err
	}

	run, err := w.distributor.DistributeAll(ctx)
	if err != nil {
		w.log.Error("distribution run failed", "triggeredBy", payload.TriggeredBy, "error", err)
		return err
	}

	w.log.Info("distribution run finished",
		"triggeredBy", payload.TriggeredBy,
		"attempted", run.Attempted,
		"assigned", run.Assigned,
		"failed", run.Failed,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
