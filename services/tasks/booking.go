package tasks

import (
	"encoding/json"

	"repairhub/models"

	"github.com/hibiken/asynq"
)

const TypeBookingCreated = "booking:created"

func NewBookingCreatedTask(payload models.BookingCreatedPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingCreated, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Queue("default")}

	return task, opts, nil
}

// ParseBookingCreated decodes a booking:created task payload.
func ParseBookingCreated(t *asynq.Task) (models.BookingCreatedPayload, error) {
	var p models.BookingCreatedPayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}
