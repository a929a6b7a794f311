// Command jobhunter is the operator CLI for the job-hunting pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/ai"
	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/applier"
	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/instructions"
	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/notify"
	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/report"
	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/source"
	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/store/sqlite"
	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/tailor"
	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
	"github.com/fairyhunter13/ai-job-hunter/internal/usecase"
)

const usageText = `usage: jobhunter <command> [args]

commands:
  store init                 create the database schema
  store stats                dump aggregate counters
  import [file...]           import scraped JSON records
  run [--schedule spec]      run the full pipeline, optionally on a cron schedule
  approve <id>               approve a matched job and apply
  skip <id>                  skip a matched job
  apply-auto                 process the auto-apply queue
  notify-pending             send the manual-review digest
  report [YYYY-MM-DD]        print the daily report
  instructions               write scrape/apply instruction files
  blacklist add <type> <value> [reason]
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(observability.SetupLogger(cfg))
	observability.InitMetrics()
	shutdown, err := observability.SetupTracing(cfg)
	if err != nil {
		return fmt.Errorf("op=main.tracing: %w", err)
	}
	if shutdown != nil {
		defer func() { _ = shutdown(context.Background()) }()
	}

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	switch args[0] {
	case "store":
		return runStore(ctx, st, args[1:])
	case "import":
		return runImport(ctx, cfg, st, args[1:])
	case "run":
		return runPipeline(ctx, cfg, st, args[1:])
	case "approve", "skip":
		return runDecision(ctx, cfg, st, args[0], args[1:])
	case "apply-auto":
		return runApplyAuto(ctx, cfg, st)
	case "notify-pending":
		return runNotifyPending(ctx, cfg, st)
	case "report":
		return runReport(ctx, st, args[1:])
	case "instructions":
		return runInstructions(ctx, cfg, st)
	case "blacklist":
		return runBlacklist(ctx, st, args[1:])
	}
	fmt.Fprint(os.Stderr, usageText)
	os.Exit(1)
	return nil
}

func runStore(ctx context.Context, st *sqlite.Store, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(1)
	}
	switch args[0] {
	case "init":
		if err := st.Init(ctx); err != nil {
			return err
		}
		fmt.Println("schema created")
		return nil
	case "stats":
		totals, err := st.Totals(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("jobs: %d (unprocessed %d)\n", totals.TotalJobs, totals.Unprocessed)
		for status, n := range totals.ByStatus {
			fmt.Printf("  %s: %d\n", status, n)
		}
		fmt.Printf("applications: %d\nresumes: %d\ncompleted runs: %d\nblacklist entries: %d\n",
			totals.Applications, totals.Resumes, totals.CompletedRuns, totals.BlacklistCount)
		return nil
	}
	fmt.Fprint(os.Stderr, usageText)
	os.Exit(1)
	return nil
}

func runImport(ctx context.Context, cfg config.Config, st *sqlite.Store, files []string) error {
	src := source.NewFileSource(cfg.DataDir)
	if len(files) > 0 {
		src.Paths = files
	}
	batches, err := src.Batches(ctx)
	if err != nil {
		return err
	}
	importer := usecase.NewImporter(st)
	var total usecase.ImportStats
	for tag, records := range batches {
		stats, err := importer.ImportRecords(ctx, tag, records)
		if err != nil {
			return err
		}
		total = mergeImportStats(total, stats)
	}
	fmt.Printf("imported: %d new, %d url duplicates, %d fuzzy skipped, %d fuzzy updated, %d invalid (of %d)\n",
		total.New, total.URLDuplicates, total.FuzzySkipped, total.FuzzyUpdated, total.Invalid, total.Total)
	return nil
}

func mergeImportStats(a, b usecase.ImportStats) usecase.ImportStats {
	a.Total += b.Total
	a.New += b.New
	a.URLDuplicates += b.URLDuplicates
	a.FuzzySkipped += b.FuzzySkipped
	a.FuzzyUpdated += b.FuzzyUpdated
	a.Invalid += b.Invalid
	return a
}

// buildPipeline wires the full import-and-score path from profiles and env.
func buildPipeline(ctx context.Context, cfg config.Config, st *sqlite.Store) (*usecase.Pipeline, error) {
	profiles := config.NewProfileLoader(cfg.ConfigDir)
	prefs, err := profiles.Preferences()
	if err != nil {
		return nil, err
	}
	achievements, err := profiles.Achievements()
	if err != nil {
		return nil, err
	}
	resume, err := profiles.Resume()
	if err != nil {
		return nil, err
	}
	providers, err := profiles.LLMProviders()
	if err != nil {
		return nil, err
	}
	registry := ai.NewRegistry(cfg, providers)
	filterClient, err := registry.ForPurpose("filter")
	if err != nil {
		return nil, err
	}
	tailorClient, err := registry.ForPurpose("tailor")
	if err != nil {
		return nil, err
	}

	storeBlacklist, err := st.BlacklistByType(ctx, "company")
	if err != nil {
		return nil, err
	}
	extra := make([]string, 0, len(storeBlacklist))
	for _, e := range storeBlacklist {
		extra = append(extra, e.Value)
	}

	preFilter := usecase.NewPreFilter(prefs, extra)
	dedup := usecase.NewSemanticDedup(st)
	tailorSvc := tailor.NewService(st, tailorClient, resume, achievements, cfg.OutputDir)
	scorer := usecase.NewScorer(st, filterClient, preFilter, dedup, tailorSvc,
		usecase.FormatAchievements(achievements), usecase.FormatPreferences(prefs))

	opts := usecase.PipelineOptions{
		BatchSize:         cfg.BatchSize,
		Limit:             cfg.ScoreLimit,
		SemanticDedup:     cfg.SemanticDedup,
		EnableTier1Resume: cfg.Tier1Resume,
	}
	return usecase.NewPipeline(st, usecase.NewImporter(st), scorer, source.NewFileSource(cfg.DataDir), opts), nil
}

func runPipeline(ctx context.Context, cfg config.Config, st *sqlite.Store, args []string) error {
	var schedule string
	if len(args) >= 2 && args[0] == "--schedule" {
		schedule = args[1]
	}
	p, err := buildPipeline(ctx, cfg, st)
	if err != nil {
		return err
	}
	runOnce := func() {
		summary, err := p.Run(ctx)
		if err != nil {
			slog.Error("pipeline run failed", slog.Any("error", err))
			return
		}
		fmt.Printf("run %d: %d imported, %d scored (tier1 %d, tier2 %d, tier3 %d, dup %d, errors %d), $%.4f\n",
			summary.RunID, summary.Import.New, summary.Scoring.TotalProcessed,
			summary.Scoring.Tier1, summary.Scoring.Tier2, summary.Scoring.Tier3,
			summary.Scoring.SemanticDuplicates, summary.Scoring.Errors, summary.Scoring.CostUSD)
	}
	if schedule == "" {
		summary, err := p.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("run %d completed: %d imported, %d scored, $%.4f\n",
			summary.RunID, summary.Import.New, summary.Scoring.TotalProcessed, summary.Scoring.CostUSD)
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, runOnce); err != nil {
		return fmt.Errorf("op=main.schedule: %w: %v", domain.ErrConfig, err)
	}
	c.Start()
	slog.Info("scheduled pipeline started", slog.String("schedule", schedule))
	<-ctx.Done()
	cronCtx := c.Stop()
	<-cronCtx.Done()
	return nil
}

func runDecision(ctx context.Context, cfg config.Config, st *sqlite.Store, verb string, args []string) error {
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("op=main.decision: %w: bad job id %q", domain.ErrInvalidRecord, args[0])
	}
	svc, err := applyService(ctx, cfg, st)
	if err != nil {
		return err
	}
	if verb == "approve" {
		if err := svc.Approve(ctx, id); err != nil {
			return err
		}
		fmt.Printf("job %d approved and applied\n", id)
		return nil
	}
	if err := svc.Skip(ctx, id); err != nil {
		return err
	}
	fmt.Printf("job %d skipped\n", id)
	return nil
}

func applyService(ctx context.Context, cfg config.Config, st *sqlite.Store) (*usecase.ApplyService, error) {
	prefs, err := config.NewProfileLoader(cfg.ConfigDir).Preferences()
	if err != nil {
		return nil, err
	}
	return usecase.NewApplyService(st, applier.NewAgentQueue(st), prefs), nil
}

func runApplyAuto(ctx context.Context, cfg config.Config, st *sqlite.Store) error {
	svc, err := applyService(ctx, cfg, st)
	if err != nil {
		return err
	}
	n, err := svc.ProcessHighMatch(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d applications queued\n", n)
	return nil
}

func runNotifyPending(ctx context.Context, cfg config.Config, st *sqlite.Store) error {
	digest, count, err := usecase.PendingDecisionsDigest(ctx, st)
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("no pending decisions")
		return nil
	}
	notifier := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.TelegramBaseURL)
	if err := notifier.Notify(ctx, digest, "Markdown"); err != nil {
		return err
	}
	fmt.Printf("notified %d pending decisions\n", count)
	return nil
}

func runReport(ctx context.Context, st *sqlite.Store, args []string) error {
	date := time.Now().UTC().Format("2006-01-02")
	if len(args) > 0 {
		date = args[0]
	}
	out, err := report.Daily(ctx, st, date)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runInstructions(ctx context.Context, cfg config.Config, st *sqlite.Store) error {
	prefs, err := config.NewProfileLoader(cfg.ConfigDir).Preferences()
	if err != nil {
		return err
	}
	gen := instructions.NewGenerator(st, prefs, cfg.InstructionsDir)
	now := time.Now()
	scrapePath, err := gen.WriteScrapeInstructions(ctx, now)
	if err != nil {
		return err
	}
	applyPath, err := gen.WriteApplyInstructions(ctx, now)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\nwrote %s\n", scrapePath, applyPath)
	return nil
}

func runBlacklist(ctx context.Context, st *sqlite.Store, args []string) error {
	if len(args) < 3 || args[0] != "add" {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(1)
	}
	entry := domain.BlacklistEntry{Type: args[1], Value: args[2]}
	if len(args) > 3 {
		entry.Reason = args[3]
	}
	if err := st.UpsertBlacklist(ctx, entry); err != nil {
		return err
	}
	fmt.Printf("blacklisted %s:%s\n", entry.Type, entry.Value)
	return nil
}
