package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/elum-utils/chatfilter/models"
)

// SQLAdapter is a generic SQL vocabulary store.
type SQLAdapter struct {
	db    *sql.DB
	table string
}

// NewSQLAdapter creates an adapter over *sql.DB.
func NewSQLAdapter(db *sql.DB, table string) (*SQLAdapter, error) {
	if db == nil {
		return nil, errors.New("storage: db is nil")
	}
	if strings.TrimSpace(table) == "" {
		table = "chatfilter_entries"
	}
	return &SQLAdapter{db: db, table: table}, nil
}

// EnsureSchema creates table if missing.
func (s *SQLAdapter) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	kind TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	value TEXT NOT NULL,
	PRIMARY KEY (kind, value)
)`, s.table)
	_, err := s.db.ExecContext(ctx, q)
	return err
}

// AddEntry inserts one entry. Existing entries are left untouched.
func (s *SQLAdapter) AddEntry(ctx context.Context, entry models.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s (kind, category, value) VALUES (?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q, string(entry.Kind), categoryColumn(entry), entry.Value)
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "duplicate") || strings.Contains(strings.ToLower(err.Error()), "unique") {
		return nil
	}
	return err
}

func (s *SQLAdapter) RemoveEntry(ctx context.Context, entry models.Entry) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE kind = ? AND value = ?`, s.table)
	_, err := s.db.ExecContext(ctx, q, string(entry.Kind), entry.Value)
	return err
}

// Entries loads every row. Rows with an unknown category are passed on with
// a zero category so the vocabulary build skips and reports them.
func (s *SQLAdapter) Entries(ctx context.Context) (models.Entries, error) {
	q := fmt.Sprintf(`SELECT kind, category, value FROM %s`, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return models.Entries{}, err
	}
	defer rows.Close()

	var out models.Entries
	for rows.Next() {
		var kind, category, value string
		if scanErr := rows.Scan(&kind, &category, &value); scanErr != nil {
			return models.Entries{}, scanErr
		}
		cat, _ := models.ParseCategory(category)
		switch models.EntryKind(kind) {
		case models.KindLiteral:
			out.Literals = append(out.Literals, models.LiteralEntry{Category: cat, Term: value})
		case models.KindPattern:
			out.Patterns = append(out.Patterns, models.PatternEntry{Category: cat, Expr: value})
		case models.KindWhitelist:
			out.Whitelist = append(out.Whitelist, value)
		default:
			return models.Entries{}, fmt.Errorf("storage: unknown entry kind %q", kind)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Entries{}, err
	}
	return out, nil
}

func (s *SQLAdapter) EntryExists(ctx context.Context, entry models.Entry) (bool, error) {
	q := fmt.Sprintf(`SELECT 1 FROM %s WHERE kind = ? AND value = ? LIMIT 1`, s.table)
	var v int
	err := s.db.QueryRowContext(ctx, q, string(entry.Kind), entry.Value).Scan(&v)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func categoryColumn(entry models.Entry) string {
	if entry.Kind == models.KindWhitelist {
		return ""
	}
	return entry.Category.String()
}
