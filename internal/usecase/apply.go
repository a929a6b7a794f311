package usecase

import (
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// ErrRateCapReached signals the daily or hourly application cap is exhausted.
var ErrRateCapReached = errors.New("application rate cap reached")

// ApplyService drives manual decisions and the auto-apply queue. Rate caps
// come from preferences and are enforced against submitted applications.
type ApplyService struct {
	Store   domain.Store
	Applier domain.Applier
	Prefs   config.Preferences
}

// NewApplyService constructs an ApplyService.
func NewApplyService(store domain.Store, applier domain.Applier, prefs config.Preferences) *ApplyService {
	return &ApplyService{Store: store, Applier: applier, Prefs: prefs}
}

// Approve marks a matched job approved and applies to it.
func (s *ApplyService) Approve(ctx domain.Context, jobID int64) error {
	job, err := s.Store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("op=apply.approve: %w", err)
	}
	if job.Status != domain.JobMatched {
		return fmt.Errorf("op=apply.approve: %w: job %d is %s, not matched", domain.ErrInvalidRecord, jobID, job.Status)
	}
	if err := s.Store.UpdateJobStatus(ctx, jobID, domain.JobApproved, nil); err != nil {
		return fmt.Errorf("op=apply.approve: %w", err)
	}
	return s.apply(ctx, job)
}

// Skip records a manual skip decision.
func (s *ApplyService) Skip(ctx domain.Context, jobID int64) error {
	job, err := s.Store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("op=apply.skip: %w", err)
	}
	if job.Status != domain.JobMatched {
		return fmt.Errorf("op=apply.skip: %w: job %d is %s, not matched", domain.ErrInvalidRecord, jobID, job.Status)
	}
	if err := s.Store.UpdateJobStatus(ctx, jobID, domain.JobSkipped, nil); err != nil {
		return fmt.Errorf("op=apply.skip: %w", err)
	}
	return nil
}

// ProcessHighMatch iterates undecided auto-tier jobs and applies to each
// until the queue or the rate caps are exhausted. Returns the number of
// successful applications.
func (s *ApplyService) ProcessHighMatch(ctx domain.Context) (int, error) {
	jobs, err := s.Store.PendingDecisions(ctx, domain.DecisionAuto, 50)
	if err != nil {
		return 0, fmt.Errorf("op=apply.high_match: %w", err)
	}
	applied := 0
	for _, job := range jobs {
		if err := s.checkRateCaps(ctx); err != nil {
			if errors.Is(err, ErrRateCapReached) {
				slog.Info("stopping auto-apply at rate cap", slog.Int("applied", applied))
				return applied, nil
			}
			return applied, err
		}
		if err := s.Store.UpdateJobStatus(ctx, job.ID, domain.JobApproved, nil); err != nil {
			return applied, fmt.Errorf("op=apply.high_match: %w", err)
		}
		if err := s.apply(ctx, job); err != nil {
			slog.Warn("auto-apply failed", slog.Int64("job_id", job.ID), slog.Any("error", err))
			continue
		}
		applied++
	}
	return applied, nil
}

func (s *ApplyService) checkRateCaps(ctx domain.Context) error {
	now := time.Now().UTC()
	if s.Prefs.MaxApplicationsDay > 0 {
		n, err := s.Store.ApplicationsSince(ctx, now.Add(-24*time.Hour))
		if err != nil {
			return fmt.Errorf("op=apply.rate_cap: %w", err)
		}
		if n >= s.Prefs.MaxApplicationsDay {
			return fmt.Errorf("%w: %d in 24h", ErrRateCapReached, n)
		}
	}
	if s.Prefs.MaxApplicationsHour > 0 {
		n, err := s.Store.ApplicationsSince(ctx, now.Add(-time.Hour))
		if err != nil {
			return fmt.Errorf("op=apply.rate_cap: %w", err)
		}
		if n >= s.Prefs.MaxApplicationsHour {
			return fmt.Errorf("%w: %d in 1h", ErrRateCapReached, n)
		}
	}
	return nil
}

// apply drives the applier adapter and records the outcome on the single
// application row for the job.
func (s *ApplyService) apply(ctx domain.Context, job domain.Job) error {
	resumePath := ""
	if resume, err := s.Store.LatestResumeForJob(ctx, job.ID); err == nil {
		resumePath = resume.PDFPath
	}

	app, err := s.Store.GetApplicationByJob(ctx, job.ID)
	if errors.Is(err, domain.ErrNotFound) {
		id, cerr := s.Store.CreateApplication(ctx, domain.Application{JobID: job.ID, ResumePath: resumePath})
		if cerr != nil {
			return fmt.Errorf("op=apply.create_application: %w", cerr)
		}
		app = domain.Application{ID: id, JobID: job.ID, ResumePath: resumePath, Status: domain.ApplicationPending}
	} else if err != nil {
		return fmt.Errorf("op=apply.get_application: %w", err)
	}

	result, err := s.Applier.ApplyToJob(ctx, job.ID, resumePath)
	app.Attempts++
	app.ResumePath = resumePath
	if err != nil || !result.Success {
		app.Status = domain.ApplicationFailed
		if err != nil {
			app.ErrorMessage = err.Error()
		} else {
			app.ErrorMessage = result.Error
		}
		if uerr := s.Store.UpdateApplication(ctx, app); uerr != nil {
			return fmt.Errorf("op=apply.record_failure: %w", uerr)
		}
		if serr := s.Store.UpdateJobStatus(ctx, job.ID, domain.JobFailed, nil); serr != nil {
			return fmt.Errorf("op=apply.record_failure: %w", serr)
		}
		return fmt.Errorf("op=apply.submit job=%d: application failed: %s", job.ID, app.ErrorMessage)
	}

	now := time.Now().UTC()
	app.Status = domain.ApplicationSubmitted
	app.ErrorMessage = ""
	app.SubmittedAt = &now
	if err := s.Store.UpdateApplication(ctx, app); err != nil {
		return fmt.Errorf("op=apply.record_success: %w", err)
	}
	if err := s.Store.UpdateJobStatus(ctx, job.ID, domain.JobApplied, nil); err != nil {
		return fmt.Errorf("op=apply.record_success: %w", err)
	}
	slog.Info("application submitted",
		slog.Int64("job_id", job.ID),
		slog.String("company", job.Company),
		slog.String("method", result.Method))
	return nil
}

// PendingDecisionsDigest formats the manual-review queue for notification.
func PendingDecisionsDigest(ctx domain.Context, store domain.Store) (string, int, error) {
	jobs, err := store.PendingDecisions(ctx, domain.DecisionManual, 20)
	if err != nil {
		return "", 0, fmt.Errorf("op=apply.pending_digest: %w", err)
	}
	if len(jobs) == 0 {
		return "", 0, nil
	}
	msg := fmt.Sprintf("*%d jobs awaiting decision*\n", len(jobs))
	for _, j := range jobs {
		score := 0.0
		if j.MatchScore != nil {
			score = *j.MatchScore
		}
		msg += fmt.Sprintf("\n#%d %s at %s (%.0f%%)\n%s\n", j.ID, j.Title, j.Company, score*100, j.URL)
	}
	return msg, len(jobs), nil
}
