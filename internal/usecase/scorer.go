package usecase

import (
	"fmt"
	"sync"
	"time"

	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/ai"
	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// Tier thresholds on the 0-100 scale. The LLM's own tier field is advisory;
// the numeric score decides.
const (
	tier1Threshold = 85
	tier2Threshold = 60
)

// Stats summarizes one scoring pass. Tier1+Tier2+Tier3+Errors+
// SemanticDuplicates always equals TotalProcessed; pre-filter rejections are
// counted inside Tier3.
type Stats struct {
	TotalProcessed     int
	Tier1              int
	Tier2              int
	Tier3              int
	ResumesGenerated   int
	SemanticDuplicates int
	PreFiltered        int
	Rejected           int
	Errors             int
	CostUSD            float64
}

func (s *Stats) merge(d Stats) {
	s.TotalProcessed += d.TotalProcessed
	s.Tier1 += d.Tier1
	s.Tier2 += d.Tier2
	s.Tier3 += d.Tier3
	s.ResumesGenerated += d.ResumesGenerated
	s.SemanticDuplicates += d.SemanticDuplicates
	s.PreFiltered += d.PreFiltered
	s.Rejected += d.Rejected
	s.Errors += d.Errors
	s.CostUSD += d.CostUSD
}

// ScoreRecord is the validated shape of a provider scoring response.
type ScoreRecord struct {
	Score      int      `json:"score"`
	Reasoning  string   `json:"reasoning"`
	RedFlags   []string `json:"red_flags"`
	KeyMatches []string `json:"key_matches"`
	Tier       string   `json:"tier"`
}

// Scorer runs the three-tier filtering engine: pre-filter, semantic dedup,
// LLM scoring, and state transitions.
type Scorer struct {
	Store     domain.Store
	Client    domain.ProviderClient
	PreFilter *PreFilter
	Dedup     *SemanticDedup
	Tailor    domain.Tailor // optional; only used for tier 1

	achievementsBlock string
	preferencesBlock  string

	// WindowPause is the rate-smoothing delay between concurrent windows.
	WindowPause time.Duration
}

// NewScorer constructs a Scorer. The achievements and preferences blocks are
// formatted once and reused for every prompt.
func NewScorer(store domain.Store, client domain.ProviderClient, preFilter *PreFilter, dedup *SemanticDedup, tailor domain.Tailor, achievementsBlock, preferencesBlock string) *Scorer {
	return &Scorer{
		Store:             store,
		Client:            client,
		PreFilter:         preFilter,
		Dedup:             dedup,
		Tailor:            tailor,
		achievementsBlock: achievementsBlock,
		preferencesBlock:  preferencesBlock,
		WindowPause:       time.Second,
	}
}

// ProcessUnfiltered scores all unprocessed jobs in concurrent windows of
// batchSize. Per-job failures are counted, never propagated; cancellation
// stops new windows and returns the partial stats with the context error.
func (sc *Scorer) ProcessUnfiltered(ctx domain.Context, batchSize, limit int, enableSemanticDedup, enableTier1Resume bool) (Stats, error) {
	tracer := otel.Tracer("usecase.scorer")
	ctx, span := tracer.Start(ctx, "scorer.ProcessUnfiltered")
	defer span.End()

	if batchSize <= 0 {
		batchSize = 5
	}
	jobs, err := sc.Store.UnprocessedJobs(ctx, limit)
	if err != nil {
		return Stats{}, fmt.Errorf("op=scorer.query_unprocessed: %w", err)
	}
	slog.Info("scoring unprocessed jobs",
		slog.Int("count", len(jobs)),
		slog.Int("batch_size", batchSize))

	var total Stats
	for start := 0; start < len(jobs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("op=scorer.window: %w", err)
		}
		end := start + batchSize
		if end > len(jobs) {
			end = len(jobs)
		}
		window := jobs[start:end]

		deltas := make([]Stats, len(window))
		var wg sync.WaitGroup
		for i, job := range window {
			wg.Add(1)
			go func(i int, job domain.Job) {
				defer wg.Done()
				deltas[i] = sc.processJob(ctx, job, enableSemanticDedup, enableTier1Resume)
			}(i, job)
		}
		wg.Wait()
		for _, d := range deltas {
			total.merge(d)
		}

		if end < len(jobs) {
			select {
			case <-time.After(sc.WindowPause):
			case <-ctx.Done():
				return total, fmt.Errorf("op=scorer.window_pause: %w", ctx.Err())
			}
		}
	}
	observability.PipelineCostUSD.Add(total.CostUSD)
	return total, nil
}

// processJob runs the per-job decision flow and returns its stats delta.
func (sc *Scorer) processJob(ctx domain.Context, job domain.Job, enableSemanticDedup, enableTier1Resume bool) Stats {
	delta := Stats{TotalProcessed: 1}

	// 1. Pre-filter: reject without spending a provider call.
	if reject, reason := sc.PreFilter.ShouldReject(job); reject {
		if err := sc.rejectJob(ctx, job.ID, "Pre-filter: "+reason, []string{reason}); err != nil {
			sc.countError(&delta, job.ID, "store", err)
			return delta
		}
		sc.auditSkip(ctx, job.ID, "pre_filter", reason)
		delta.PreFiltered++
		delta.Rejected++
		delta.Tier3++
		observability.JobsScoredTotal.WithLabelValues("low").Inc()
		return delta
	}

	// 2. Semantic duplicate: same-company title variant, no provider call.
	if enableSemanticDedup {
		dup, otherID, err := sc.Dedup.IsDuplicate(ctx, job)
		if err != nil {
			sc.countError(&delta, job.ID, "dedup", err)
			return delta
		}
		if dup {
			reason := fmt.Sprintf("Semantic duplicate of job #%d", otherID)
			if err := sc.rejectJob(ctx, job.ID, reason, []string{"Duplicate job posting"}); err != nil {
				sc.countError(&delta, job.ID, "store", err)
				return delta
			}
			sc.auditSkip(ctx, job.ID, "semantic_dedup", reason)
			delta.SemanticDuplicates++
			delta.Rejected++
			return delta
		}
	}

	// 3. Provider scoring.
	record, cost, err := sc.score(ctx, job)
	delta.CostUSD += cost
	if err != nil {
		sc.countError(&delta, job.ID, "provider", err)
		return delta
	}

	// 4. Tier assignment from the numeric score.
	matchScore := float64(record.Score) / 100
	var (
		status   domain.JobStatus
		decision *domain.DecisionType
	)
	switch {
	case record.Score >= tier1Threshold:
		status = domain.JobMatched
		d := domain.DecisionAuto
		decision = &d
		delta.Tier1++
		observability.JobsScoredTotal.WithLabelValues("high").Inc()
	case record.Score >= tier2Threshold:
		status = domain.JobMatched
		d := domain.DecisionManual
		decision = &d
		delta.Tier2++
		observability.JobsScoredTotal.WithLabelValues("medium").Inc()
	default:
		status = domain.JobRejected
		delta.Tier3++
		delta.Rejected++
		observability.JobsScoredTotal.WithLabelValues("low").Inc()
	}

	err = sc.Store.Transaction(ctx, func(tx domain.Store) error {
		if err := tx.UpdateJobScoring(ctx, job.ID, matchScore, record.Reasoning, record.KeyMatches, record.RedFlags); err != nil {
			return err
		}
		if err := tx.UpdateJobStatus(ctx, job.ID, status, decision); err != nil {
			return err
		}
		return tx.MarkProcessed(ctx, job.ID)
	})
	if err != nil {
		sc.countError(&delta, job.ID, "store", err)
		return delta
	}
	observability.MatchScoreHistogram.Observe(matchScore)
	slog.Info("scored job",
		slog.Int64("id", job.ID),
		slog.String("company", job.Company),
		slog.Int("score", record.Score),
		slog.String("status", string(status)))

	// 5. Tier 1 side effect: tailor a resume; failure is non-fatal.
	if decision != nil && *decision == domain.DecisionAuto && enableTier1Resume && sc.Tailor != nil {
		result, err := sc.Tailor.TailorForJob(ctx, job.ID, "")
		if err != nil {
			slog.Warn("resume tailoring failed",
				slog.Int64("job_id", job.ID),
				slog.Any("error", err))
		} else {
			delta.ResumesGenerated++
			delta.CostUSD += result.CostUSD
		}
	}
	return delta
}

// score sends the scoring prompt and validates the structured response.
// The returned cost is nonzero even when parsing fails.
func (sc *Scorer) score(ctx domain.Context, job domain.Job) (ScoreRecord, float64, error) {
	messages := []domain.ChatMessage{
		{Role: "system", Content: scoringSystemPrompt},
		{Role: "user", Content: BuildScoringPrompt(sc.achievementsBlock, sc.preferencesBlock, job)},
	}
	resp, err := sc.Client.Chat(ctx, messages, 0.3, 1024)
	if err != nil {
		return ScoreRecord{}, 0, err
	}
	var record ScoreRecord
	if err := ai.ParseStructuredResponse(resp.Content, &record); err != nil {
		return ScoreRecord{}, resp.CostUSD, err
	}
	if record.Score < 0 || record.Score > 100 {
		return ScoreRecord{}, resp.CostUSD, fmt.Errorf("op=scorer.validate: %w: score %d out of range", domain.ErrInvalidResponse, record.Score)
	}
	return record, resp.CostUSD, nil
}

// rejectJob writes the zero-score rejection atomically: scoring columns,
// rejected status, processed flag.
func (sc *Scorer) rejectJob(ctx domain.Context, id int64, reasoning string, redFlags []string) error {
	return sc.Store.Transaction(ctx, func(tx domain.Store) error {
		if err := tx.UpdateJobScoring(ctx, id, 0.0, reasoning, nil, redFlags); err != nil {
			return err
		}
		if err := tx.UpdateJobStatus(ctx, id, domain.JobRejected, nil); err != nil {
			return err
		}
		return tx.MarkProcessed(ctx, id)
	})
}

func (sc *Scorer) countError(delta *Stats, jobID int64, kind string, err error) {
	delta.Errors++
	observability.JobsFailedTotal.WithLabelValues(kind).Inc()
	slog.Error("job processing failed",
		slog.Int64("job_id", jobID),
		slog.String("kind", kind),
		slog.Any("error", err))
}

// auditSkip records the skip decision durably for later review.
func (sc *Scorer) auditSkip(ctx domain.Context, jobID int64, component, reason string) {
	err := sc.Store.AppendLog(ctx, domain.LogEntry{
		Level:     "info",
		Component: component,
		Message:   "job rejected without scoring",
		Details:   fmt.Sprintf(`{"job_id":%d,"reason":%q}`, jobID, reason),
	})
	if err != nil {
		slog.Warn("audit log write failed", slog.Int64("job_id", jobID), slog.Any("error", err))
	}
}
