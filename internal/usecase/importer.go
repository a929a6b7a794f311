// Package usecase implements the ingest-to-decision engine: import with
// dedup, pre-filtering, LLM scoring, and pipeline orchestration.
package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/adapter/observability"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
	"github.com/fairyhunter13/ai-job-hunter/pkg/textx"
)

// sourcePriorities ranks how trustworthy a source's data is; 1 is best.
// Unlisted sources rank 3.
var sourcePriorities = map[string]int{
	"greenhouse": 1,
	"lever":      1,
	"ashby":      1,
	"workable":   1,
	"indeed":     1,
	"wellfound":  1,
	"linkedin":   2,
	"glassdoor":  2,
}

// SourcePriority returns the rank for a source tag.
func SourcePriority(source string) int {
	if p, ok := sourcePriorities[strings.ToLower(source)]; ok {
		return p
	}
	return 3
}

// ImportStats counts per-import outcomes.
type ImportStats struct {
	Total         int
	New           int
	URLDuplicates int
	FuzzySkipped  int
	FuzzyUpdated  int
	Invalid       int
	BySource      map[string]int
}

func (s *ImportStats) merge(o ImportStats) {
	s.Total += o.Total
	s.New += o.New
	s.URLDuplicates += o.URLDuplicates
	s.FuzzySkipped += o.FuzzySkipped
	s.FuzzyUpdated += o.FuzzyUpdated
	s.Invalid += o.Invalid
	if s.BySource == nil {
		s.BySource = map[string]int{}
	}
	for k, v := range o.BySource {
		s.BySource[k] += v
	}
}

// Importer normalizes source records and applies two-level dedup with
// source-priority resolution.
type Importer struct {
	Store domain.Store
}

// NewImporter constructs an Importer over the store.
func NewImporter(store domain.Store) *Importer {
	return &Importer{Store: store}
}

// ImportRecords ingests one source's records. Invalid records are logged,
// counted, and skipped; store errors other than Duplicate abort the import.
func (im *Importer) ImportRecords(ctx domain.Context, source string, records []domain.SourceRecord) (ImportStats, error) {
	stats := ImportStats{BySource: map[string]int{}}
	for _, rec := range records {
		stats.Total++
		job, err := im.normalize(source, rec)
		if err != nil {
			stats.Invalid++
			observability.JobsImportedTotal.WithLabelValues(source, "invalid").Inc()
			slog.Warn("skipping invalid record",
				slog.String("source", source),
				slog.String("title", rec.Title),
				slog.Any("error", err))
			continue
		}

		// Level 1: URL-exact dedup. A matching hash skips unconditionally.
		existing, err := im.Store.GetJobByURLHash(ctx, job.URLHash)
		if err == nil {
			stats.URLDuplicates++
			observability.JobsImportedTotal.WithLabelValues(source, "url_duplicate").Inc()
			slog.Debug("url duplicate", slog.Int64("existing_id", existing.ID), slog.String("url", job.URL))
			continue
		} else if !isNotFound(err) {
			return stats, fmt.Errorf("op=import.url_dedup: %w", err)
		}

		// Level 2: fuzzy company+title dedup with priority resolution.
		existing, err = im.Store.GetJobByFuzzyHash(ctx, job.FuzzyHash)
		if err == nil {
			outcome, rerr := im.resolveDuplicate(ctx, existing, job)
			if rerr != nil {
				return stats, rerr
			}
			switch outcome {
			case "updated":
				stats.FuzzyUpdated++
				observability.JobsImportedTotal.WithLabelValues(source, "fuzzy_updated").Inc()
			default:
				stats.FuzzySkipped++
				observability.JobsImportedTotal.WithLabelValues(source, "fuzzy_skipped").Inc()
			}
			continue
		} else if !isNotFound(err) {
			return stats, fmt.Errorf("op=import.fuzzy_dedup: %w", err)
		}

		id, inserted, err := im.Store.InsertJobIfNew(ctx, job)
		if err != nil {
			return stats, fmt.Errorf("op=import.insert: %w", err)
		}
		if !inserted {
			// Raced with a concurrent import of the same posting.
			stats.URLDuplicates++
			observability.JobsImportedTotal.WithLabelValues(source, "url_duplicate").Inc()
			continue
		}
		stats.New++
		stats.BySource[source]++
		observability.JobsImportedTotal.WithLabelValues(source, "new").Inc()
		slog.Debug("imported job",
			slog.Int64("id", id),
			slog.String("company", job.Company),
			slog.String("title", job.Title))
	}
	return stats, nil
}

// normalize converts a raw record into a Job. Only a missing URL aborts the
// record; absent title and company fall back to sentinel strings.
func (im *Importer) normalize(source string, rec domain.SourceRecord) (domain.Job, error) {
	url := strings.TrimSpace(rec.URL)
	if url == "" {
		return domain.Job{}, fmt.Errorf("%w: missing url", domain.ErrInvalidRecord)
	}
	title, err := sanitizeRequired(rec.Title, "Unknown Title", "title")
	if err != nil {
		return domain.Job{}, err
	}
	company, err := sanitizeRequired(rec.Company, "Unknown Company", "company")
	if err != nil {
		return domain.Job{}, err
	}
	salaryMin, salaryMax := ParseSalary(rec.Salary)
	description := textx.SanitizeText(rec.Description)
	job := domain.Job{
		Platform:        strings.ToLower(source),
		ExternalID:      strings.TrimSpace(rec.ExternalID),
		URL:             url,
		URLHash:         domain.URLHash(url),
		FuzzyHash:       domain.FuzzyHash(company, title),
		Title:           title,
		Company:         company,
		Location:        strings.TrimSpace(rec.Location),
		Description:     description,
		DescriptionMD:   description,
		SalaryMin:       salaryMin,
		SalaryMax:       salaryMax,
		SalaryText:      strings.TrimSpace(rec.Salary),
		RemoteType:      strings.ToLower(strings.TrimSpace(rec.RemoteType)),
		VisaSponsorship: rec.VisaSponsorship,
		EasyApply:       rec.EasyApply,
		Status:          domain.JobNew,
		Source:          strings.ToLower(source),
		SourcePriority:  SourcePriority(source),
		ScrapedAt:       parsePostedDate(rec.PostedDate),
	}
	return job, nil
}

// sanitizeRequired trims and sanitizes a field, substituting the sentinel
// when the field is absent. A value that was present but empties after
// sanitizing is malformed, not absent, and rejects the record.
func sanitizeRequired(raw, sentinel, field string) (string, error) {
	v := strings.TrimSpace(textx.SanitizeText(raw))
	if v != "" {
		return v, nil
	}
	if raw != "" {
		return "", fmt.Errorf("%w: blank %s", domain.ErrInvalidRecord, field)
	}
	return sentinel, nil
}

// resolveDuplicate applies source-priority resolution between an existing job
// and a new record that share a fuzzy hash. Returns "updated" or "skipped".
func (im *Importer) resolveDuplicate(ctx domain.Context, existing, incoming domain.Job) (string, error) {
	switch {
	case incoming.SourcePriority < existing.SourcePriority:
		// More trusted source: replace content, keep scoring and workflow.
		if err := im.Store.ReplaceJobContent(ctx, existing.ID, incoming); err != nil {
			return "", fmt.Errorf("op=import.replace_content: %w", err)
		}
		slog.Debug("replaced job content from higher-priority source",
			slog.Int64("id", existing.ID),
			slog.String("old_source", existing.Source),
			slog.String("new_source", incoming.Source))
		return "updated", nil
	case incoming.SourcePriority == existing.SourcePriority:
		if len(incoming.Description) > len(existing.Description) {
			if err := im.Store.UpdateJobDescription(ctx, existing.ID, incoming.Description); err != nil {
				return "", fmt.Errorf("op=import.update_description: %w", err)
			}
			return "updated", nil
		}
		return "skipped", nil
	}
	return "skipped", nil
}

func parsePostedDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Now().UTC()
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
