package scheduler

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "matching" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 2 }
func (c testSchedulerConfig) GetDistributionCron() string {
	return "0 * * * *"
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(testSchedulerConfig{redisURL: ""})
	if err == nil {
		t.Fatalf("expected error without redis url")
	}
}

func TestEnqueueDistribution(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	err = client.EnqueueDistribution(context.Background(), DistributeLeadsPayload{TriggeredBy: "test"})
	if err != nil {
		t.Fatalf("EnqueueDistribution: %v", err)
	}

	// asynq stores pending tasks under asynq:{<queue>} keys.
	found := false
	for _, key := range mr.Keys() {
		if strings.Contains(key, "matching") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("no task landed on the matching queue, keys = %v", mr.Keys())
	}
}

func TestDistributeLeadsPayloadRoundTrip(t *testing.T) {
	task, err := NewDistributeLeadsTask(DistributeLeadsPayload{TriggeredBy: "cron"})
	if err != nil {
		t.Fatalf("NewDistributeLeadsTask: %v", err)
	}
	if task.Type() != TaskDistributeLeads {
		t.Fatalf("task type = %q", task.Type())
	}

	payload, err := ParseDistributeLeadsPayload(task)
	if err != nil {
		t.Fatalf("ParseDistributeLeadsPayload: %v", err)
	}
	if payload.TriggeredBy != "cron" {
		t.Fatalf("triggeredBy = %q", payload.TriggeredBy)
	}
}
