package levelingqueue

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	levelingservice "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/application"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditor struct {
	calls   int
	summary levelingservice.AuditSummary
	err     error
}

func (f *fakeAuditor) AuditAll(context.Context) (levelingservice.AuditSummary, error) {
	f.calls++
	return f.summary, f.err
}

func testJob() *river.Job[AuditJob] {
	return &river.Job[AuditJob]{JobRow: &rivertype.JobRow{ID: 7}, Args: AuditJob{}}
}

func TestAuditWorker_Work(t *testing.T) {
	auditor := &fakeAuditor{summary: levelingservice.AuditSummary{
		Guilds: []levelingservice.AuditReport{{GuildID: "g1", Corrected: 2}},
	}}
	w := NewAuditWorker(auditor, slog.Default())

	require.NoError(t, w.Work(context.Background(), testJob()))
	assert.Equal(t, 1, auditor.calls)
}

func TestAuditWorker_PropagatesError(t *testing.T) {
	auditor := &fakeAuditor{err: errors.New("list guilds: connection refused")}
	w := NewAuditWorker(auditor, slog.Default())

	assert.Error(t, w.Work(context.Background(), testJob()))
}

func TestRegister(t *testing.T) {
	workers := river.NewWorkers()
	reg := Register(workers, &fakeAuditor{}, slog.Default(), 7*24*time.Hour)

	assert.Equal(t, QueueName, reg.Queue)
	assert.Len(t, reg.Periodic, 1)
	assert.Equal(t, "leveling_role_audit", AuditJob{}.Kind())
}
