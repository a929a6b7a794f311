package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

const jobColumns = `id, platform, COALESCE(external_id,''), url, url_hash, fuzzy_hash,
	title, company, location, description, description_md,
	salary_min, salary_max, salary_currency, salary_text,
	remote_type, visa_sponsorship, easy_apply,
	match_score, match_reasoning, key_requirements, red_flags,
	status, decision_type, source, source_priority, is_processed,
	scraped_at, filtered_at, decided_at, applied_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (domain.Job, error) {
	var (
		j          domain.Job
		salaryMin  sql.NullInt64
		salaryMax  sql.NullInt64
		score      sql.NullFloat64
		reqsJSON   string
		flagsJSON  string
		decision   sql.NullString
		filteredAt sql.NullTime
		decidedAt  sql.NullTime
		appliedAt  sql.NullTime
	)
	err := row.Scan(
		&j.ID, &j.Platform, &j.ExternalID, &j.URL, &j.URLHash, &j.FuzzyHash,
		&j.Title, &j.Company, &j.Location, &j.Description, &j.DescriptionMD,
		&salaryMin, &salaryMax, &j.SalaryCurrency, &j.SalaryText,
		&j.RemoteType, &j.VisaSponsorship, &j.EasyApply,
		&score, &j.MatchReasoning, &reqsJSON, &flagsJSON,
		&j.Status, &decision, &j.Source, &j.SourcePriority, &j.IsProcessed,
		&j.ScrapedAt, &filteredAt, &decidedAt, &appliedAt,
	)
	if err != nil {
		return domain.Job{}, err
	}
	if salaryMin.Valid {
		j.SalaryMin = &salaryMin.Int64
	}
	if salaryMax.Valid {
		j.SalaryMax = &salaryMax.Int64
	}
	if score.Valid {
		j.MatchScore = &score.Float64
	}
	if decision.Valid {
		d := domain.DecisionType(decision.String)
		j.DecisionType = &d
	}
	if filteredAt.Valid {
		t := filteredAt.Time
		j.FilteredAt = &t
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		j.DecidedAt = &t
	}
	if appliedAt.Valid {
		t := appliedAt.Time
		j.AppliedAt = &t
	}
	_ = json.Unmarshal([]byte(reqsJSON), &j.KeyRequirements)
	_ = json.Unmarshal([]byte(flagsJSON), &j.RedFlags)
	return j, nil
}

func jsonList(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

// InsertJob inserts a new posting; Duplicate when url_hash or
// (platform, external_id) collide.
func (s *Store) InsertJob(ctx domain.Context, j domain.Job) (int64, error) {
	tracer := otel.Tracer("store.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Insert")
	defer span.End()
	if j.URLHash == "" {
		j.URLHash = domain.URLHash(j.URL)
	}
	if j.FuzzyHash == "" {
		j.FuzzyHash = domain.FuzzyHash(j.Company, j.Title)
	}
	if j.Status == "" {
		j.Status = domain.JobNew
	}
	if j.ScrapedAt.IsZero() {
		j.ScrapedAt = time.Now().UTC()
	}
	q := `INSERT INTO jobs (
		platform, external_id, url, url_hash, fuzzy_hash,
		title, company, location, description, description_md,
		salary_min, salary_max, salary_currency, salary_text,
		remote_type, visa_sponsorship, easy_apply,
		match_reasoning, key_requirements, red_flags,
		status, source, source_priority, is_processed, scraped_at
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := s.q.ExecContext(ctx, q,
		j.Platform, nullStr(j.ExternalID), j.URL, j.URLHash, j.FuzzyHash,
		j.Title, j.Company, j.Location, j.Description, j.DescriptionMD,
		j.SalaryMin, j.SalaryMax, defaultCurrency(j.SalaryCurrency), j.SalaryText,
		j.RemoteType, j.VisaSponsorship, j.EasyApply,
		j.MatchReasoning, jsonList(j.KeyRequirements), jsonList(j.RedFlags),
		j.Status, j.Source, j.SourcePriority, j.IsProcessed, j.ScrapedAt,
	)
	if err != nil {
		return 0, mapSQLiteErr("job.insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("op=job.insert: %w", err)
	}
	return id, nil
}

// InsertJobIfNew inserts and reports whether a row was created; duplicates
// return (0, false, nil) instead of an error.
func (s *Store) InsertJobIfNew(ctx domain.Context, j domain.Job) (int64, bool, error) {
	id, err := s.InsertJob(ctx, j)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

// GetJob loads a job by id.
func (s *Store) GetJob(ctx domain.Context, id int64) (domain.Job, error) {
	tracer := otel.Tracer("store.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Get")
	defer span.End()
	row := s.q.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id=?`, id)
	j, err := scanJob(row)
	if err != nil {
		return domain.Job{}, mapSQLiteErr("job.get", err)
	}
	return j, nil
}

// GetJobByURLHash loads a job by its exact URL fingerprint.
func (s *Store) GetJobByURLHash(ctx domain.Context, hash string) (domain.Job, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE url_hash=?`, hash)
	j, err := scanJob(row)
	if err != nil {
		return domain.Job{}, mapSQLiteErr("job.get_by_url_hash", err)
	}
	return j, nil
}

// GetJobByFuzzyHash loads a job by its company+title fingerprint.
func (s *Store) GetJobByFuzzyHash(ctx domain.Context, hash string) (domain.Job, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE fuzzy_hash=? ORDER BY id LIMIT 1`, hash)
	j, err := scanJob(row)
	if err != nil {
		return domain.Job{}, mapSQLiteErr("job.get_by_fuzzy_hash", err)
	}
	return j, nil
}

func (s *Store) queryJobs(ctx domain.Context, op, q string, args ...any) ([]domain.Job, error) {
	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapSQLiteErr(op, err)
	}
	defer func() { _ = rows.Close() }()
	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, mapSQLiteErr(op, err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteErr(op, err)
	}
	return jobs, nil
}

// JobsByStatus lists jobs in a workflow state, newest first.
func (s *Store) JobsByStatus(ctx domain.Context, status domain.JobStatus, limit, offset int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryJobs(ctx, "job.by_status",
		`SELECT `+jobColumns+` FROM jobs WHERE status=? ORDER BY scraped_at DESC LIMIT ? OFFSET ?`,
		status, limit, offset)
}

// UnprocessedJobs lists jobs awaiting scoring, newest scrape first.
// limit <= 0 means no limit.
func (s *Store) UnprocessedJobs(ctx domain.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryJobs(ctx, "job.unprocessed",
		`SELECT `+jobColumns+` FROM jobs WHERE is_processed=0 ORDER BY scraped_at DESC LIMIT ?`,
		limit)
}

// MatchedJobs lists jobs by score band and status, best score first.
func (s *Store) MatchedJobs(ctx domain.Context, minScore, maxScore float64, status domain.JobStatus, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryJobs(ctx, "job.matched",
		`SELECT `+jobColumns+` FROM jobs
		 WHERE status=? AND match_score IS NOT NULL AND match_score >= ? AND match_score <= ?
		 ORDER BY match_score DESC LIMIT ?`,
		status, minScore, maxScore, limit)
}

// PendingDecisions lists matched jobs with the given decision type that have
// not been decided yet.
func (s *Store) PendingDecisions(ctx domain.Context, decision domain.DecisionType, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryJobs(ctx, "job.pending_decisions",
		`SELECT `+jobColumns+` FROM jobs
		 WHERE status=? AND decision_type=? AND decided_at IS NULL
		 ORDER BY match_score DESC LIMIT ?`,
		domain.JobMatched, decision, limit)
}

// CompanyJobs lists non-rejected jobs from a company, excluding one id.
func (s *Store) CompanyJobs(ctx domain.Context, company string, excludeID int64, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryJobs(ctx, "job.company",
		`SELECT `+jobColumns+` FROM jobs
		 WHERE lower(company)=lower(?) AND id != ? AND status != ?
		 ORDER BY id LIMIT ?`,
		company, excludeID, domain.JobRejected, limit)
}

// statusTimestampColumn maps a target status to the single timestamp it
// advances; statuses outside the map advance nothing.
func statusTimestampColumn(status domain.JobStatus) string {
	switch status {
	case domain.JobFiltered:
		return "filtered_at"
	case domain.JobApproved, domain.JobRejected, domain.JobSkipped:
		return "decided_at"
	case domain.JobApplied:
		return "applied_at"
	}
	return ""
}

// UpdateJobStatus sets status (and optionally decision_type) and stamps the
// matching timestamp column.
func (s *Store) UpdateJobStatus(ctx domain.Context, id int64, status domain.JobStatus, decision *domain.DecisionType) error {
	tracer := otel.Tracer("store.jobs")
	ctx, span := tracer.Start(ctx, "jobs.UpdateStatus")
	defer span.End()
	now := time.Now().UTC()
	q := `UPDATE jobs SET status=?`
	args := []any{status}
	if decision != nil {
		q += `, decision_type=?`
		args = append(args, string(*decision))
	}
	if col := statusTimestampColumn(status); col != "" {
		q += `, ` + col + `=?`
		args = append(args, now)
	}
	q += ` WHERE id=?`
	args = append(args, id)
	res, err := s.q.ExecContext(ctx, q, args...)
	if err != nil {
		return mapSQLiteErr("job.update_status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("op=job.update_status: %w", domain.ErrNotFound)
	}
	return nil
}

// UpdateJobScoring writes the scoring columns, stamps filtered_at, and moves
// the job to filtered in a single statement.
func (s *Store) UpdateJobScoring(ctx domain.Context, id int64, score float64, reasoning string, requirements, redFlags []string) error {
	tracer := otel.Tracer("store.jobs")
	ctx, span := tracer.Start(ctx, "jobs.UpdateScoring")
	defer span.End()
	q := `UPDATE jobs SET match_score=?, match_reasoning=?, key_requirements=?, red_flags=?,
		filtered_at=?, status=? WHERE id=?`
	res, err := s.q.ExecContext(ctx, q,
		score, reasoning, jsonList(requirements), jsonList(redFlags),
		time.Now().UTC(), domain.JobFiltered, id)
	if err != nil {
		return mapSQLiteErr("job.update_scoring", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("op=job.update_scoring: %w", domain.ErrNotFound)
	}
	return nil
}

// ReplaceJobContent overwrites descriptive fields from a higher-priority
// source while preserving scoring and workflow columns.
func (s *Store) ReplaceJobContent(ctx domain.Context, id int64, j domain.Job) error {
	tracer := otel.Tracer("store.jobs")
	ctx, span := tracer.Start(ctx, "jobs.ReplaceContent")
	defer span.End()
	q := `UPDATE jobs SET
		platform=?, external_id=?, url=?, url_hash=?,
		title=?, company=?, location=?, description=?, description_md=?,
		salary_min=?, salary_max=?, salary_currency=?, salary_text=?,
		remote_type=?, visa_sponsorship=?, easy_apply=?,
		source=?, source_priority=?, scraped_at=?
		WHERE id=?`
	res, err := s.q.ExecContext(ctx, q,
		j.Platform, nullStr(j.ExternalID), j.URL, j.URLHash,
		j.Title, j.Company, j.Location, j.Description, j.DescriptionMD,
		j.SalaryMin, j.SalaryMax, defaultCurrency(j.SalaryCurrency), j.SalaryText,
		j.RemoteType, j.VisaSponsorship, j.EasyApply,
		j.Source, j.SourcePriority, j.ScrapedAt,
		id)
	if err != nil {
		return mapSQLiteErr("job.replace_content", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("op=job.replace_content: %w", domain.ErrNotFound)
	}
	return nil
}

// UpdateJobDescription updates only the description text.
func (s *Store) UpdateJobDescription(ctx domain.Context, id int64, description string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE jobs SET description=? WHERE id=?`, description, id)
	if err != nil {
		return mapSQLiteErr("job.update_description", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("op=job.update_description: %w", domain.ErrNotFound)
	}
	return nil
}

// MarkProcessed sets is_processed. Idempotent.
func (s *Store) MarkProcessed(ctx domain.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `UPDATE jobs SET is_processed=1 WHERE id=?`, id)
	if err != nil {
		return mapSQLiteErr("job.mark_processed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("op=job.mark_processed: %w", domain.ErrNotFound)
	}
	return nil
}

// CheckDuplicate reports whether a record identified by (platform,
// external_id) or url is already present, and why it matters.
func (s *Store) CheckDuplicate(ctx domain.Context, platform, externalID, url string) (domain.DuplicateCheck, error) {
	tracer := otel.Tracer("store.jobs")
	ctx, span := tracer.Start(ctx, "jobs.CheckDuplicate")
	defer span.End()
	var (
		j   domain.Job
		err error
	)
	switch {
	case platform != "" && externalID != "":
		row := s.q.QueryRowContext(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE platform=? AND external_id=?`,
			platform, externalID)
		j, err = scanJob(row)
	case url != "":
		row := s.q.QueryRowContext(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE url_hash=?`, domain.URLHash(url))
		j, err = scanJob(row)
	default:
		return domain.DuplicateCheck{}, fmt.Errorf("op=job.check_duplicate: %w: no identifier", domain.ErrInvalidRecord)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.DuplicateCheck{}, nil
		}
		return domain.DuplicateCheck{}, mapSQLiteErr("job.check_duplicate", err)
	}
	reason := "already_scraped"
	if j.Status == domain.JobApplied {
		reason = "already_applied"
	}
	return domain.DuplicateCheck{IsDuplicate: true, Reason: reason, ExistingID: j.ID}, nil
}

func defaultCurrency(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}
