package jobs

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/jumph/jumph/internal/jobs"
	"github.com/jumph/jumph/internal/shared"
)

// AuditRecorder stores audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CompanyAuditJob writes one audit_logs row per company event.
type CompanyAuditJob struct {
	recorder AuditRecorder
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
}

// NewCompanyAuditJob constructs the job. metrics may be nil.
func NewCompanyAuditJob(recorder AuditRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *CompanyAuditJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompanyAuditJob{recorder: recorder, logger: logger, metrics: metrics}
}

// Handle processes TaskCompanyEvent tasks.
func (j *CompanyAuditJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("company_audit")
	evt, err := DecodeCompanyEvent(t)
	if err != nil {
		j.logger.Warn("discard company event", slog.Any("error", err))
		return tracker.End(err)
	}
	err = j.recorder.Record(ctx, shared.AuditLog{
		Action:   string(evt.Type),
		Entity:   "company",
		EntityID: strconv.FormatInt(evt.Company.ID, 10),
		Meta: map[string]any{
			"code": evt.Company.Code,
			"name": evt.Company.Name,
		},
		At: evt.OccurredAt,
	})
	if err != nil {
		j.logger.Error("record company audit", slog.Any("error", err), slog.Int64("company_id", evt.Company.ID))
	}
	return tracker.End(err)
}
