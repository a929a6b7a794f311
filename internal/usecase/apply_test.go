package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

type stubApplier struct {
	calls  []int64
	failID int64
}

func (a *stubApplier) ApplyToJob(_ domain.Context, jobID int64, resumePath string) (domain.ApplyResult, error) {
	a.calls = append(a.calls, jobID)
	if jobID == a.failID {
		return domain.ApplyResult{Success: false, JobID: jobID, Error: "form changed"}, nil
	}
	return domain.ApplyResult{Success: true, JobID: jobID, Method: "agent_queue"}, nil
}

func seedMatchedJob(t *testing.T, st domain.Store, company string, score float64, decision domain.DecisionType) int64 {
	t.Helper()
	ctx := context.Background()
	id := seedJob(t, st, company, "Go Engineer", "role")
	require.NoError(t, st.UpdateJobScoring(ctx, id, score, "match", []string{"Go"}, nil))
	d := decision
	require.NoError(t, st.UpdateJobStatus(ctx, id, domain.JobMatched, &d))
	require.NoError(t, st.MarkProcessed(ctx, id))
	return id
}

func TestApproveSubmitsApplication(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	id := seedMatchedJob(t, st, "Acme", 0.72, domain.DecisionManual)

	applier := &stubApplier{}
	svc := NewApplyService(st, applier, config.Preferences{})
	require.NoError(t, svc.Approve(ctx, id))

	assert.Equal(t, []int64{id}, applier.calls)
	job, err := st.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobApplied, job.Status)
	assert.NotNil(t, job.AppliedAt)

	app, err := st.GetApplicationByJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationSubmitted, app.Status)
	assert.Equal(t, 1, app.Attempts)
	assert.NotNil(t, app.SubmittedAt)
}

func TestApproveRequiresMatched(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	id := seedJob(t, st, "Acme", "Go Engineer", "role")

	svc := NewApplyService(st, &stubApplier{}, config.Preferences{})
	err := svc.Approve(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestSkipRecordsDecision(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	id := seedMatchedJob(t, st, "Acme", 0.72, domain.DecisionManual)

	svc := NewApplyService(st, &stubApplier{}, config.Preferences{})
	require.NoError(t, svc.Skip(ctx, id))

	job, err := st.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobSkipped, job.Status)
	assert.NotNil(t, job.DecidedAt)
}

func TestApplyFailureMarksJobFailed(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	id := seedMatchedJob(t, st, "Acme", 0.72, domain.DecisionManual)

	svc := NewApplyService(st, &stubApplier{failID: id}, config.Preferences{})
	err := svc.Approve(ctx, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "form changed")

	job, err := st.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, job.Status)

	app, err := st.GetApplicationByJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationFailed, app.Status)
	assert.Equal(t, "form changed", app.ErrorMessage)
}

func TestProcessHighMatchAppliesQueue(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	a := seedMatchedJob(t, st, "CoA", 0.95, domain.DecisionAuto)
	b := seedMatchedJob(t, st, "CoB", 0.88, domain.DecisionAuto)
	seedMatchedJob(t, st, "CoC", 0.72, domain.DecisionManual) // not auto tier

	applier := &stubApplier{}
	svc := NewApplyService(st, applier, config.Preferences{})
	applied, err := svc.ProcessHighMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	// Best score first.
	assert.Equal(t, []int64{a, b}, applier.calls)
}

func TestProcessHighMatchStopsAtDailyCap(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	for i := 0; i < 3; i++ {
		seedMatchedJob(t, st, fmt.Sprintf("Co%d", i), 0.9, domain.DecisionAuto)
	}

	applier := &stubApplier{}
	svc := NewApplyService(st, applier, config.Preferences{MaxApplicationsDay: 2})
	applied, err := svc.ProcessHighMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	assert.Len(t, applier.calls, 2)
}

func TestProcessHighMatchHourlyCap(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	for i := 0; i < 3; i++ {
		seedMatchedJob(t, st, fmt.Sprintf("Co%d", i), 0.9, domain.DecisionAuto)
	}

	svc := NewApplyService(st, &stubApplier{}, config.Preferences{MaxApplicationsHour: 1})
	applied, err := svc.ProcessHighMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}

func TestProcessHighMatchContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	bad := seedMatchedJob(t, st, "BadCo", 0.95, domain.DecisionAuto)
	good := seedMatchedJob(t, st, "GoodCo", 0.9, domain.DecisionAuto)

	applier := &stubApplier{failID: bad}
	svc := NewApplyService(st, applier, config.Preferences{})
	applied, err := svc.ProcessHighMatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	job, err := st.GetJob(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, domain.JobApplied, job.Status)
	job, err = st.GetJob(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, job.Status)
}

func TestPendingDecisionsDigest(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	id := seedMatchedJob(t, st, "Acme", 0.72, domain.DecisionManual)
	seedMatchedJob(t, st, "AutoCo", 0.9, domain.DecisionAuto)

	msg, count, err := PendingDecisionsDigest(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, msg, fmt.Sprintf("#%d", id))
	assert.Contains(t, msg, "Acme")
	assert.Contains(t, msg, "(72%)")
	assert.NotContains(t, msg, "AutoCo")
}
