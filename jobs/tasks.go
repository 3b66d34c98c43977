package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jumph/jumph/internal/client/company"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCompanyEvent carries a company lifecycle event to the worker.
	TaskCompanyEvent = "company:event"

	companyEventMaxRetry = 5
)

// NewCompanyEventTask wraps evt into an asynq task.
func NewCompanyEventTask(evt company.Event) (*asynq.Task, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCompanyEvent, data, asynq.MaxRetry(companyEventMaxRetry)), nil
}

// DecodeCompanyEvent reads the event back from a task. Payloads that cannot
// be decoded wrap asynq.SkipRetry, since retrying will not fix them.
func DecodeCompanyEvent(t *asynq.Task) (company.Event, error) {
	var evt company.Event
	if err := json.Unmarshal(t.Payload(), &evt); err != nil {
		return company.Event{}, fmt.Errorf("decode %s: %v: %w", TaskCompanyEvent, err, asynq.SkipRetry)
	}
	if !evt.Type.Valid() || evt.Company.ID <= 0 {
		return company.Event{}, fmt.Errorf("decode %s: incomplete event %q: %w", TaskCompanyEvent, evt.Type, asynq.SkipRetry)
	}
	return evt, nil
}
