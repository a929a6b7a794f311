package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// StartRun opens a new pipeline run record.
func (s *Store) StartRun(ctx domain.Context) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO runs (started_at, status) VALUES (?,?)`,
		time.Now().UTC(), domain.RunRunning)
	if err != nil {
		return 0, mapSQLiteErr("run.start", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("op=run.start: %w", err)
	}
	return id, nil
}

// UpdateRunCounters writes the counters of an open run.
func (s *Store) UpdateRunCounters(ctx domain.Context, r domain.Run) error {
	q := `UPDATE runs SET jobs_scraped=?, jobs_filtered=?, jobs_matched=?,
		jobs_auto_applied=?, jobs_pending_decision=?, jobs_failed=? WHERE id=?`
	res, err := s.q.ExecContext(ctx, q,
		r.JobsScraped, r.JobsFiltered, r.JobsMatched,
		r.JobsAutoApplied, r.JobsPendingDecision, r.JobsFailed, r.ID)
	if err != nil {
		return mapSQLiteErr("run.update_counters", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("op=run.update_counters: %w", domain.ErrNotFound)
	}
	return nil
}

// CompleteRun closes a run with a final status.
func (s *Store) CompleteRun(ctx domain.Context, id int64, status domain.RunStatus) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE runs SET status=?, completed_at=? WHERE id=?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return mapSQLiteErr("run.complete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("op=run.complete: %w", domain.ErrNotFound)
	}
	return nil
}

// GetRun loads a run by id.
func (s *Store) GetRun(ctx domain.Context, id int64) (domain.Run, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, started_at, completed_at, jobs_scraped, jobs_filtered, jobs_matched,
			jobs_auto_applied, jobs_pending_decision, jobs_failed, status
		 FROM runs WHERE id=?`, id)
	var (
		r           domain.Run
		completedAt sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.StartedAt, &completedAt, &r.JobsScraped, &r.JobsFiltered,
		&r.JobsMatched, &r.JobsAutoApplied, &r.JobsPendingDecision, &r.JobsFailed, &r.Status); err != nil {
		return domain.Run{}, mapSQLiteErr("run.get", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return r, nil
}
