// Package instructions emits machine-executable files for the external
// browser agent: what to scrape and where to apply.
package instructions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/config"
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// Generator writes scrape and apply instruction files under Dir. The files
// are consumed by the browser agent; the pipeline treats them as opaque.
type Generator struct {
	Store domain.Store
	Prefs config.Preferences
	Dir   string
}

// NewGenerator constructs a Generator.
func NewGenerator(store domain.Store, prefs config.Preferences, dir string) *Generator {
	return &Generator{Store: store, Prefs: prefs, Dir: dir}
}

type scrapeInstruction struct {
	Platform   string   `json:"platform"`
	Keywords   []string `json:"keywords"`
	Locations  []string `json:"locations,omitempty"`
	RemoteOnly bool     `json:"remote_only"`
	Limit      int      `json:"limit"`
}

type applyInstruction struct {
	JobID      int64  `json:"job_id"`
	Platform   string `json:"platform"`
	URL        string `json:"url"`
	Company    string `json:"company"`
	Title      string `json:"title"`
	ResumePath string `json:"resume_path,omitempty"`
	EasyApply  bool   `json:"easy_apply"`
}

// WriteScrapeInstructions emits scrape_jobs_YYYY-MM-DD.json with one search
// per enabled platform. Returns the file path.
func (g *Generator) WriteScrapeInstructions(ctx domain.Context, now time.Time) (string, error) {
	var items []scrapeInstruction
	for platform, enabled := range g.Prefs.Platforms {
		if !enabled {
			continue
		}
		items = append(items, scrapeInstruction{
			Platform:   platform,
			Keywords:   g.Prefs.TargetPositions,
			Locations:  g.Prefs.Locations,
			RemoteOnly: g.Prefs.RemoteOnly,
			Limit:      50,
		})
	}
	path := filepath.Join(g.Dir, fmt.Sprintf("scrape_jobs_%s.json", now.UTC().Format("2006-01-02")))
	if err := writeJSON(path, items); err != nil {
		return "", err
	}
	slog.Info("scrape instructions written", slog.String("path", path), slog.Int("platforms", len(items)))
	return path, nil
}

// WriteApplyInstructions emits apply_jobs_YYYY-MM-DD.json listing approved
// jobs with their latest resume artifacts. Returns the file path.
func (g *Generator) WriteApplyInstructions(ctx domain.Context, now time.Time) (string, error) {
	jobs, err := g.Store.JobsByStatus(ctx, domain.JobApproved, 100, 0)
	if err != nil {
		return "", fmt.Errorf("op=instructions.approved: %w", err)
	}
	items := make([]applyInstruction, 0, len(jobs))
	for _, j := range jobs {
		item := applyInstruction{
			JobID:     j.ID,
			Platform:  j.Platform,
			URL:       j.URL,
			Company:   j.Company,
			Title:     j.Title,
			EasyApply: j.EasyApply,
		}
		if resume, rerr := g.Store.LatestResumeForJob(ctx, j.ID); rerr == nil {
			item.ResumePath = resume.PDFPath
		}
		items = append(items, item)
	}
	path := filepath.Join(g.Dir, fmt.Sprintf("apply_jobs_%s.json", now.UTC().Format("2006-01-02")))
	if err := writeJSON(path, items); err != nil {
		return "", err
	}
	slog.Info("apply instructions written", slog.String("path", path), slog.Int("jobs", len(items)))
	return path, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("op=instructions.mkdir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("op=instructions.marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("op=instructions.write: %w", err)
	}
	return nil
}
