package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// CreateResume records a generated artifact. Multiple per job allowed.
func (s *Store) CreateResume(ctx domain.Context, r domain.Resume) (int64, error) {
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}
	q := `INSERT INTO resumes (job_id, pdf_path, highlights, tailoring_notes, generated_at) VALUES (?,?,?,?,?)`
	res, err := s.q.ExecContext(ctx, q, r.JobID, r.PDFPath, jsonList(r.Highlights), r.TailoringNotes, r.GeneratedAt)
	if err != nil {
		return 0, mapSQLiteErr("resume.create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("op=resume.create: %w", err)
	}
	return id, nil
}

// LatestResumeForJob returns the most recently generated resume for a job.
func (s *Store) LatestResumeForJob(ctx domain.Context, jobID int64) (domain.Resume, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, job_id, pdf_path, highlights, tailoring_notes, generated_at
		 FROM resumes WHERE job_id=? ORDER BY generated_at DESC, id DESC LIMIT 1`, jobID)
	var (
		r              domain.Resume
		highlightsJSON string
	)
	if err := row.Scan(&r.ID, &r.JobID, &r.PDFPath, &highlightsJSON, &r.TailoringNotes, &r.GeneratedAt); err != nil {
		return domain.Resume{}, mapSQLiteErr("resume.latest", err)
	}
	_ = json.Unmarshal([]byte(highlightsJSON), &r.Highlights)
	return r, nil
}
