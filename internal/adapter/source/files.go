// Package source discovers and decodes scraped job record files.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// FileSource reads scraper output files named <source>_*.json from a
// directory; the filename prefix supplies the canonical platform tag.
type FileSource struct {
	Dir string
	// Paths optionally pins explicit files instead of scanning Dir.
	Paths []string
}

// NewFileSource scans dir for scraped record files.
func NewFileSource(dir string) *FileSource { return &FileSource{Dir: dir} }

// SourceTag derives the platform tag from a filename like linkedin_2026-01-02.json.
func SourceTag(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".json")
	if i := strings.Index(base, "_"); i > 0 {
		return strings.ToLower(base[:i])
	}
	return strings.ToLower(base)
}

// Batches decodes every discovered file, grouped by source tag. A file that
// fails to decode is logged and skipped; remaining files proceed.
func (f *FileSource) Batches(ctx domain.Context) (map[string][]domain.SourceRecord, error) {
	paths := f.Paths
	if len(paths) == 0 {
		matches, err := filepath.Glob(filepath.Join(f.Dir, "*_*.json"))
		if err != nil {
			return nil, fmt.Errorf("op=source.glob: %w", err)
		}
		paths = matches
	}
	out := map[string][]domain.SourceRecord{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := decodeFile(path)
		if err != nil {
			slog.Warn("skipping unreadable source file",
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}
		tag := SourceTag(path)
		out[tag] = append(out[tag], records...)
		slog.Debug("decoded source file",
			slog.String("path", path),
			slog.String("source", tag),
			slog.Int("records", len(records)))
	}
	return out, nil
}

func decodeFile(path string) ([]domain.SourceRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("op=source.read: %w", err)
	}
	var records []domain.SourceRecord
	if err := json.Unmarshal(b, &records); err != nil {
		// Some scrapers wrap the array in {"jobs": [...]}.
		var wrapped struct {
			Jobs []domain.SourceRecord `json:"jobs"`
		}
		if werr := json.Unmarshal(b, &wrapped); werr != nil || wrapped.Jobs == nil {
			return nil, fmt.Errorf("op=source.decode: %w: %v", domain.ErrInvalidRecord, err)
		}
		records = wrapped.Jobs
	}
	return records, nil
}
