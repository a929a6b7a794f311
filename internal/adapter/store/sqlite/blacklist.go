package sqlite

import (
	"time"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// UpsertBlacklist inserts or refreshes a (type, value) entry. Idempotent.
func (s *Store) UpsertBlacklist(ctx domain.Context, e domain.BlacklistEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	q := `INSERT INTO blacklist (type, value, reason, created_at) VALUES (?,?,?,?)
		ON CONFLICT(type, value) DO UPDATE SET reason=excluded.reason`
	if _, err := s.q.ExecContext(ctx, q, e.Type, e.Value, e.Reason, e.CreatedAt); err != nil {
		return mapSQLiteErr("blacklist.upsert", err)
	}
	return nil
}

// BlacklistByType lists entries of one type.
func (s *Store) BlacklistByType(ctx domain.Context, typ string) ([]domain.BlacklistEntry, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, type, value, reason, created_at FROM blacklist WHERE type=? ORDER BY value`, typ)
	if err != nil {
		return nil, mapSQLiteErr("blacklist.by_type", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.BlacklistEntry
	for rows.Next() {
		var e domain.BlacklistEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Value, &e.Reason, &e.CreatedAt); err != nil {
			return nil, mapSQLiteErr("blacklist.by_type", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteErr("blacklist.by_type", err)
	}
	return out, nil
}
