package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

type memSource struct {
	batches map[string][]domain.SourceRecord
	err     error
}

func (s *memSource) Batches(domain.Context) (map[string][]domain.SourceRecord, error) {
	return s.batches, s.err
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	client := &stubClient{scores: map[string]int{"HighCo": 92, "MidCo": 70, "LowCo": 20}}
	source := &memSource{batches: map[string][]domain.SourceRecord{
		"greenhouse": {
			rec("https://gh/1", "HighCo", "Go Engineer"),
			rec("https://gh/2", "MidCo", "Go Engineer"),
			rec("https://gh/3", "LowCo", "PHP Engineer"),
			{Company: "NoURL", Title: "Engineer"},
		},
	}}
	p := NewPipeline(st, NewImporter(st), newScorer(st, client, nil), source,
		PipelineOptions{BatchSize: 2})

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Import.New)
	assert.Equal(t, 1, summary.Import.Invalid)
	assert.Equal(t, 3, summary.Scoring.TotalProcessed)
	assert.Equal(t, 1, summary.Scoring.Tier1)
	assert.Equal(t, 1, summary.Scoring.Tier2)
	assert.Equal(t, 1, summary.Scoring.Tier3)

	run, err := st.GetRun(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, run.Status)
	assert.Equal(t, 3, run.JobsScraped)
	assert.Equal(t, 3, run.JobsFiltered)
	assert.Equal(t, 2, run.JobsMatched)
	assert.Equal(t, 1, run.JobsAutoApplied)
	assert.Equal(t, 1, run.JobsPendingDecision)
	assert.Equal(t, 0, run.JobsFailed)
	require.NotNil(t, run.CompletedAt)
}

func TestPipelineDiscoveryFailureClosesRunFailed(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	p := NewPipeline(st, NewImporter(st), newScorer(st, &stubClient{}, nil),
		&memSource{err: fmt.Errorf("scrape dir unreadable")}, PipelineOptions{})

	summary, err := p.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrape dir unreadable")

	run, rerr := st.GetRun(ctx, summary.RunID)
	require.NoError(t, rerr)
	assert.Equal(t, domain.RunFailed, run.Status)
	require.NotNil(t, run.CompletedAt)
}

func TestPipelineCancellationPersistsFailedRun(t *testing.T) {
	st := newMemStore(t)
	seedJob(t, st, "Co0", "Go Engineer", "role")
	seedJob(t, st, "Co1", "Go Engineer", "role")
	sc := newScorer(st, &stubClient{scores: map[string]int{"Co0": 70, "Co1": 70}}, nil)
	sc.WindowPause = 100 * time.Millisecond
	p := NewPipeline(st, NewImporter(st), sc, nil, PipelineOptions{BatchSize: 1})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	summary, err := p.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The run record still closes even though ctx is canceled.
	run, rerr := st.GetRun(context.Background(), summary.RunID)
	require.NoError(t, rerr)
	assert.Equal(t, domain.RunFailed, run.Status)
	assert.Equal(t, 1, run.JobsFiltered, "first window's work is preserved")
}

func TestPipelineNilSourceScoresExisting(t *testing.T) {
	ctx := context.Background()
	st := newMemStore(t)
	seedJob(t, st, "HighCo", "Go Engineer", "role")
	p := NewPipeline(st, NewImporter(st), newScorer(st, &stubClient{scores: map[string]int{"HighCo": 90}}, nil),
		nil, PipelineOptions{})

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Import.Total)
	assert.Equal(t, 1, summary.Scoring.Tier1)
}
