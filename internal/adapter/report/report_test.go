package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/store/sqlite"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

func TestDaily(t *testing.T) {
	ctx := context.Background()
	st, err := sqlite.OpenMemory()
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	require.NoError(t, st.Init(ctx))

	id, err := st.InsertJob(ctx, domain.Job{
		Platform: "linkedin", Source: "linkedin", SourcePriority: 2,
		URL: "https://li/1", Company: "Acme", Title: "Go Engineer",
	})
	require.NoError(t, err)
	require.NoError(t, st.UpdateJobScoring(ctx, id, 0.72, "r", nil, nil))
	d := domain.DecisionManual
	require.NoError(t, st.UpdateJobStatus(ctx, id, domain.JobMatched, &d))

	today := time.Now().UTC().Format("2006-01-02")
	out, err := Daily(ctx, st, today)
	require.NoError(t, err)
	assert.Contains(t, out, "# Job hunt report "+today)
	assert.Contains(t, out, "| Jobs scraped | 1 |")
	assert.Contains(t, out, "| Jobs matched | 1 |")
	assert.Contains(t, out, "| Awaiting decision | 1 |")
	assert.Contains(t, out, "notify-pending")
}
