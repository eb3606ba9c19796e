package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskDistributeLeads = "matching.distribute"

type DistributeLeadsPayload struct {
	TriggeredBy string `json:"triggeredBy"`
}

func NewDistributeLeadsTask(payload DistributeLeadsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDistributeLeads, data), nil
}

func ParseDistributeLeadsPayload(task *asynq.Task) (DistributeLeadsPayload, error) {
	var payload DistributeLeadsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DistributeLeadsPayload{}, err
	}
	return payload, nil
}
