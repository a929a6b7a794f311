// Package report renders daily pipeline digests.
package report

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// Daily renders the counters for one day as a markdown digest.
func Daily(ctx domain.Context, store domain.Store, date string) (string, error) {
	stats, err := store.DailyStats(ctx, date)
	if err != nil {
		return "", fmt.Errorf("op=report.daily: %w", err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Job hunt report %s\n\n", stats.Date)
	fmt.Fprintf(&sb, "| Metric | Count |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Jobs scraped | %d |\n", stats.JobsScraped)
	fmt.Fprintf(&sb, "| Jobs matched | %d |\n", stats.JobsMatched)
	fmt.Fprintf(&sb, "| Auto-apply tier | %d |\n", stats.JobsAutoApply)
	fmt.Fprintf(&sb, "| Awaiting decision | %d |\n", stats.JobsPending)
	fmt.Fprintf(&sb, "| Rejected | %d |\n", stats.JobsRejected)
	fmt.Fprintf(&sb, "| Applications submitted | %d |\n", stats.ApplicationsSub)
	if stats.JobsPending > 0 {
		sb.WriteString("\nPending decisions need review: run `jobhunter notify-pending` for the digest.\n")
	}
	return sb.String(), nil
}
