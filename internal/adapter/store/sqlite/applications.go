package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// CreateApplication inserts the single application row for a job.
// Duplicate when the job already has one.
func (s *Store) CreateApplication(ctx domain.Context, a domain.Application) (int64, error) {
	tracer := otel.Tracer("store.applications")
	ctx, span := tracer.Start(ctx, "applications.Create")
	defer span.End()
	if a.Status == "" {
		a.Status = domain.ApplicationPending
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO applications (job_id, resume_path, status, error_message, attempts, submitted_at, created_at)
		VALUES (?,?,?,?,?,?,?)`
	res, err := s.q.ExecContext(ctx, q, a.JobID, a.ResumePath, a.Status, a.ErrorMessage, a.Attempts, a.SubmittedAt, a.CreatedAt)
	if err != nil {
		return 0, mapSQLiteErr("application.create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("op=application.create: %w", err)
	}
	return id, nil
}

// GetApplicationByJob loads the application for a job.
func (s *Store) GetApplicationByJob(ctx domain.Context, jobID int64) (domain.Application, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, job_id, resume_path, status, error_message, attempts, submitted_at, created_at
		 FROM applications WHERE job_id=?`, jobID)
	var (
		a           domain.Application
		submittedAt sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.JobID, &a.ResumePath, &a.Status, &a.ErrorMessage, &a.Attempts, &submittedAt, &a.CreatedAt); err != nil {
		return domain.Application{}, mapSQLiteErr("application.get_by_job", err)
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		a.SubmittedAt = &t
	}
	return a, nil
}

// UpdateApplication updates status, error, attempts and submission time.
func (s *Store) UpdateApplication(ctx domain.Context, a domain.Application) error {
	q := `UPDATE applications SET resume_path=?, status=?, error_message=?, attempts=?, submitted_at=? WHERE id=?`
	res, err := s.q.ExecContext(ctx, q, a.ResumePath, a.Status, a.ErrorMessage, a.Attempts, a.SubmittedAt, a.ID)
	if err != nil {
		return mapSQLiteErr("application.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("op=application.update: %w", domain.ErrNotFound)
	}
	return nil
}

// ApplicationsSince counts submitted applications since a point in time, used
// for apply rate caps.
func (s *Store) ApplicationsSince(ctx domain.Context, since time.Time) (int, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE status=? AND submitted_at IS NOT NULL AND submitted_at >= ?`,
		domain.ApplicationSubmitted, since)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, mapSQLiteErr("application.since", err)
	}
	return n, nil
}
