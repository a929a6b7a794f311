package usecase

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// RecordSource supplies batches of scraped records per source tag, e.g. the
// file-discovery adapter.
type RecordSource interface {
	Batches(ctx domain.Context) (map[string][]domain.SourceRecord, error)
}

// PipelineOptions carry the scorer knobs for a run.
type PipelineOptions struct {
	BatchSize         int
	Limit             int
	SemanticDedup     bool
	EnableTier1Resume bool
}

// RunSummary is the result of one pipeline invocation.
type RunSummary struct {
	RunID   int64
	Import  ImportStats
	Scoring Stats
}

// Pipeline orchestrates import then scoring under a durable Run record.
type Pipeline struct {
	Store    domain.Store
	Importer *Importer
	Scorer   *Scorer
	Source   RecordSource
	Options  PipelineOptions
}

// NewPipeline constructs a Pipeline.
func NewPipeline(store domain.Store, importer *Importer, scorer *Scorer, source RecordSource, opts PipelineOptions) *Pipeline {
	return &Pipeline{Store: store, Importer: importer, Scorer: scorer, Source: source, Options: opts}
}

// Run executes import then scoring. Unrecoverable store errors and
// cancellation close the run as failed with partial counters preserved;
// per-job provider errors are absorbed by the scorer.
func (p *Pipeline) Run(ctx domain.Context) (RunSummary, error) {
	runID, err := p.Store.StartRun(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("op=pipeline.start_run: %w", err)
	}
	summary := RunSummary{RunID: runID}
	slog.Info("pipeline run started", slog.Int64("run_id", runID))

	// Import phase. A failing source batch is logged and counted; other
	// sources proceed.
	if p.Source != nil {
		batches, err := p.Source.Batches(ctx)
		if err != nil {
			return p.fail(ctx, summary, fmt.Errorf("op=pipeline.discover: %w", err))
		}
		for source, records := range batches {
			stats, err := p.Importer.ImportRecords(ctx, source, records)
			summary.Import.merge(stats)
			if err != nil {
				return p.fail(ctx, summary, fmt.Errorf("op=pipeline.import source=%s: %w", source, err))
			}
		}
	}

	// Scoring phase.
	scoring, err := p.Scorer.ProcessUnfiltered(ctx,
		p.Options.BatchSize, p.Options.Limit,
		p.Options.SemanticDedup, p.Options.EnableTier1Resume)
	summary.Scoring = scoring
	if err != nil {
		return p.fail(ctx, summary, fmt.Errorf("op=pipeline.score: %w", err))
	}

	if err := p.close(ctx, summary, domain.RunCompleted); err != nil {
		return summary, err
	}
	slog.Info("pipeline run completed",
		slog.Int64("run_id", runID),
		slog.Int("imported", summary.Import.New),
		slog.Int("scored", scoring.TotalProcessed),
		slog.Int("tier1", scoring.Tier1),
		slog.Int("tier2", scoring.Tier2),
		slog.Int("tier3", scoring.Tier3),
		slog.Float64("cost_usd", scoring.CostUSD))
	return summary, nil
}

func (p *Pipeline) fail(ctx domain.Context, summary RunSummary, cause error) (RunSummary, error) {
	slog.Error("pipeline run failed", slog.Int64("run_id", summary.RunID), slog.Any("error", cause))
	if err := p.close(ctx, summary, domain.RunFailed); err != nil {
		slog.Error("closing failed run", slog.Int64("run_id", summary.RunID), slog.Any("error", err))
	}
	return summary, cause
}

// close writes the merged counters and the terminal status. The run record
// must survive cancellation, so the writes detach from ctx's cancel signal.
func (p *Pipeline) close(ctx domain.Context, summary RunSummary, status domain.RunStatus) error {
	ctx = context.WithoutCancel(ctx)
	run := domain.Run{
		ID:                  summary.RunID,
		JobsScraped:         summary.Import.New,
		JobsFiltered:        summary.Scoring.TotalProcessed,
		JobsMatched:         summary.Scoring.Tier1 + summary.Scoring.Tier2,
		JobsAutoApplied:     summary.Scoring.Tier1,
		JobsPendingDecision: summary.Scoring.Tier2,
		JobsFailed:          summary.Scoring.Errors,
	}
	if err := p.Store.UpdateRunCounters(ctx, run); err != nil {
		return fmt.Errorf("op=pipeline.update_counters: %w", err)
	}
	if err := p.Store.CompleteRun(ctx, summary.RunID, status); err != nil {
		return fmt.Errorf("op=pipeline.complete_run: %w", err)
	}
	return nil
}
