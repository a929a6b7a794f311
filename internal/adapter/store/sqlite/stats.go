package sqlite

import (
	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// DailyStats aggregates per-day counters for the report surface.
// date is YYYY-MM-DD.
func (s *Store) DailyStats(ctx domain.Context, date string) (domain.DailyStats, error) {
	st := domain.DailyStats{Date: date}
	row := s.q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM jobs WHERE date(scraped_at)=?),
			(SELECT COUNT(*) FROM jobs WHERE status='matched' AND date(filtered_at)=?),
			(SELECT COUNT(*) FROM jobs WHERE status='matched' AND decision_type='auto' AND date(filtered_at)=?),
			(SELECT COUNT(*) FROM jobs WHERE status='matched' AND decision_type='manual' AND decided_at IS NULL AND date(filtered_at)=?),
			(SELECT COUNT(*) FROM jobs WHERE status='rejected' AND date(filtered_at)=?),
			(SELECT COUNT(*) FROM applications WHERE status='submitted' AND date(submitted_at)=?)`,
		date, date, date, date, date, date)
	if err := row.Scan(&st.JobsScraped, &st.JobsMatched, &st.JobsAutoApply,
		&st.JobsPending, &st.JobsRejected, &st.ApplicationsSub); err != nil {
		return domain.DailyStats{}, mapSQLiteErr("stats.daily", err)
	}
	return st, nil
}

// TotalStats is the aggregate counter dump behind `store stats`.
type TotalStats struct {
	TotalJobs      int
	ByStatus       map[string]int
	Unprocessed    int
	Applications   int
	Resumes        int
	CompletedRuns  int
	BlacklistCount int
}

// Totals returns whole-store counters.
func (s *Store) Totals(ctx domain.Context) (TotalStats, error) {
	st := TotalStats{ByStatus: map[string]int{}}
	row := s.q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM jobs),
			(SELECT COUNT(*) FROM jobs WHERE is_processed=0),
			(SELECT COUNT(*) FROM applications),
			(SELECT COUNT(*) FROM resumes),
			(SELECT COUNT(*) FROM runs WHERE status='completed'),
			(SELECT COUNT(*) FROM blacklist)`)
	if err := row.Scan(&st.TotalJobs, &st.Unprocessed, &st.Applications,
		&st.Resumes, &st.CompletedRuns, &st.BlacklistCount); err != nil {
		return TotalStats{}, mapSQLiteErr("stats.totals", err)
	}
	rows, err := s.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return TotalStats{}, mapSQLiteErr("stats.totals", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return TotalStats{}, mapSQLiteErr("stats.totals", err)
		}
		st.ByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return TotalStats{}, mapSQLiteErr("stats.totals", err)
	}
	return st, nil
}
