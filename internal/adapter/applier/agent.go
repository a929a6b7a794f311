// Package applier bridges the approval flow to the external browser agent.
package applier

import (
	"fmt"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// AgentQueue implements domain.Applier by handing the job to the browser
// agent: the submission itself happens outside this process, driven by the
// apply instruction files. Success here means the hand-off was recorded.
type AgentQueue struct {
	Store domain.Store
}

// NewAgentQueue constructs the applier.
func NewAgentQueue(store domain.Store) *AgentQueue { return &AgentQueue{Store: store} }

// ApplyToJob validates the job and queues it for the agent.
func (a *AgentQueue) ApplyToJob(ctx domain.Context, jobID int64, resumePath string) (domain.ApplyResult, error) {
	job, err := a.Store.GetJob(ctx, jobID)
	if err != nil {
		return domain.ApplyResult{}, fmt.Errorf("op=applier.get_job: %w", err)
	}
	if job.URL == "" {
		return domain.ApplyResult{
			Success: false, JobID: jobID, Error: "job has no url",
		}, nil
	}
	slog.Info("queued application for browser agent",
		slog.Int64("job_id", jobID),
		slog.String("platform", job.Platform),
		slog.String("resume", resumePath))
	return domain.ApplyResult{
		Success:  true,
		JobID:    jobID,
		Company:  job.Company,
		Title:    job.Title,
		Platform: job.Platform,
		Method:   "agent_queue",
	}, nil
}
