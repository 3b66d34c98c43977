package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	sql  string
	args []any
	err  error
}

func (r *recordingExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = sql
	r.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestAuditLoggerRecord(t *testing.T) {
	db := &recordingExecer{}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := NewAuditLogger(db).Record(context.Background(), AuditLog{
		Action:   "CREATE_COMPANY",
		Entity:   "company",
		EntityID: "7",
		Meta:     map[string]any{"code": "ACME"},
		At:       at,
	})
	require.NoError(t, err)

	assert.Contains(t, db.sql, "INSERT INTO audit_logs")
	require.Len(t, db.args, 5)
	assert.Equal(t, "CREATE_COMPANY", db.args[0])
	assert.JSONEq(t, `{"code":"ACME"}`, string(db.args[3].([]byte)))
	assert.Equal(t, at, db.args[4])
}

func TestAuditLoggerRejectsIncompleteRecords(t *testing.T) {
	db := &recordingExecer{}

	err := NewAuditLogger(db).Record(context.Background(), AuditLog{Action: "DELETE_COMPANY"})
	assert.Error(t, err)
	assert.Empty(t, db.sql)

	var nilLogger *AuditLogger
	assert.Error(t, nilLogger.Record(context.Background(), AuditLog{}))
}

func TestAuditLoggerPropagatesExecError(t *testing.T) {
	db := &recordingExecer{err: errors.New("relation does not exist")}

	err := NewAuditLogger(db).Record(context.Background(), AuditLog{Action: "a", Entity: "company", EntityID: "1"})
	assert.ErrorContains(t, err, "relation does not exist")
	assert.False(t, db.args[4].(time.Time).IsZero())
}
