// One-shot distribution run for operators: drains the unassigned backlog
// once and prints the outcome, without going through Redis or HTTP.
package main

import (
	"context"

	"homematch_backend/internal/email"
	"homematch_backend/internal/events"
	leadrepo "homematch_backend/internal/leads/repository"
	matchingrepo "homematch_backend/internal/matching/repository"
	matchingservice "homematch_backend/internal/matching/service"
	"homematch_backend/internal/notification"
	realtorrepo "homematch_backend/internal/realtors/repository"
	"homematch_backend/platform/config"
	"homematch_backend/platform/db"
	"homematch_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting one-shot lead distribution")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	notificationModule := notification.New(email.NewSender(cfg), log)
	notificationModule.SetReaders(leadrepo.New(pool), realtorrepo.New(pool))
	notificationModule.RegisterHandlers(eventBus)

	svc := matchingservice.New(matchingrepo.New(pool), eventBus, log)

	run, err := svc.DistributeAll(ctx)
	if err != nil {
		log.Error("distribution run failed", "error", err)
		panic("distribution run failed: " + err.Error())
	}

	log.Info("distribution run finished", "message", run.Message, "failed", run.Failed)
	for _, failure := range run.Failures {
		log.Warn("lead not assigned", "leadId", failure.LeadID, "reason", failure.Reason)
	}
}
