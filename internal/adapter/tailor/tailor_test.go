package tailor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/store/sqlite"
	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

type stubClient struct {
	content string
	err     error
	prompts []string
}

func (c *stubClient) Chat(_ domain.Context, messages []domain.ChatMessage, _ float64, _ int) (domain.ChatResponse, error) {
	c.prompts = append(c.prompts, messages[len(messages)-1].Content)
	if c.err != nil {
		return domain.ChatResponse{}, c.err
	}
	return domain.ChatResponse{Content: c.content, Model: "stub", CostUSD: 0.004}, nil
}

func (c *stubClient) CostFor(int64, int64) float64 { return 0 }
func (c *stubClient) Stats() domain.ProviderStats  { return domain.ProviderStats{} }
func (c *stubClient) ResetStats()                  {}
func (c *stubClient) Model() string                { return "stub" }

func testProfile() (config.ResumeProfile, []config.Achievement) {
	var resume config.ResumeProfile
	resume.Personal.Name = "Jamie Doe"
	resume.Personal.Email = "jamie@example.com"
	resume.Personal.Location = "Remote"
	resume.Summary = "Backend engineer focused on payments."
	resume.Skills = map[string][]string{
		"languages": {"Go", "SQL"},
		"infra":     {"Kubernetes"},
	}
	achievements := []config.Achievement{
		{Name: "Payment pipeline rewrite", Keywords: []string{"go", "throughput"},
			Bullets: []string{"Rewrote the settlement pipeline in Go", "Cut p99 latency by 60%"}},
		{Name: "Zero-downtime migration", Keywords: []string{"postgres"},
			Bullets: []string{"Migrated 2TB of data without downtime"}},
	}
	return resume, achievements
}

func seedJob(t *testing.T, st *sqlite.Store) int64 {
	t.Helper()
	id, err := st.InsertJob(context.Background(), domain.Job{
		Platform: "greenhouse", Source: "greenhouse", SourcePriority: 1,
		URL: "https://gh/1", Company: "Acme Corp, Inc.", Title: "Senior Go Engineer",
		Description: "Own the payment platform.",
	})
	require.NoError(t, err)
	return id
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Init(context.Background()))
	return st
}

func TestTailorForJob(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	jobID := seedJob(t, st)
	dir := t.TempDir()

	client := &stubClient{content: `{
		"summary": "Backend engineer with payment platform depth.",
		"selected_achievements": ["Payment pipeline rewrite", "Zero-downtime migration"],
		"highlighted_skills": ["Go", "SQL"],
		"tailoring_notes": "Lead with the pipeline rewrite."
	}`}
	resume, achievements := testProfile()
	svc := NewService(st, client, resume, achievements, dir)

	result, err := svc.TailorForJob(ctx, jobID, "")
	require.NoError(t, err)

	wantPath := filepath.Join(dir, fmt.Sprintf("resume_job_%d_acme_corp_inc.pdf", jobID))
	assert.Equal(t, wantPath, result.PDFPath)
	info, err := os.Stat(wantPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Equal(t, []string{"Payment pipeline rewrite", "Zero-downtime migration"}, result.SelectedAchievements)
	assert.Equal(t, 0.004, result.CostUSD)

	stored, err := st.LatestResumeForJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, wantPath, stored.PDFPath)
	assert.Equal(t, "Lead with the pipeline rewrite.", stored.TailoringNotes)

	// The prompt carries the inventory and the job, not the bullets.
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Payment pipeline rewrite")
	assert.Contains(t, client.prompts[0], "Senior Go Engineer")
}

func TestTailorForJobEmptySelection(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	jobID := seedJob(t, st)

	client := &stubClient{content: `{"summary": "x", "selected_achievements": []}`}
	resume, achievements := testProfile()
	svc := NewService(st, client, resume, achievements, t.TempDir())

	_, err := svc.TailorForJob(ctx, jobID, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidResponse)

	_, err = st.LatestResumeForJob(ctx, jobID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTailorForJobMissingJob(t *testing.T) {
	st := newStore(t)
	resume, achievements := testProfile()
	svc := NewService(st, &stubClient{}, resume, achievements, t.TempDir())

	_, err := svc.TailorForJob(context.Background(), 42, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPickBulletsMatchesCaseInsensitive(t *testing.T) {
	resume, achievements := testProfile()
	svc := NewService(nil, nil, resume, achievements, "")

	got := svc.pickBullets([]string{"payment PIPELINE rewrite", "unknown"})
	require.Len(t, got, 1)
	assert.Len(t, got["Payment pipeline rewrite"], 2)
}
