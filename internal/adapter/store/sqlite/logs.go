package sqlite

import (
	"time"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// AppendLog writes a durable audit record.
func (s *Store) AppendLog(ctx domain.Context, e domain.LogEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO logs (level, component, message, details, created_at) VALUES (?,?,?,?,?)`
	if _, err := s.q.ExecContext(ctx, q, e.Level, e.Component, e.Message, e.Details, e.CreatedAt); err != nil {
		return mapSQLiteErr("log.append", err)
	}
	return nil
}

// RecentLogs lists the newest audit records, optionally filtered by component.
func (s *Store) RecentLogs(ctx domain.Context, component string, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, level, component, message, details, created_at FROM logs`
	args := []any{}
	if component != "" {
		q += ` WHERE component=?`
		args = append(args, component)
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapSQLiteErr("log.recent", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		if err := rows.Scan(&e.ID, &e.Level, &e.Component, &e.Message, &e.Details, &e.CreatedAt); err != nil {
			return nil, mapSQLiteErr("log.recent", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteErr("log.recent", err)
	}
	return out, nil
}
