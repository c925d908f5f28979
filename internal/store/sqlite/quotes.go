package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/store"
)

const quoteColumns = `id, entry_id, text, page, created_at`

// scanQuote scans a row into a domain.Quote.
func scanQuote(scanner interface{ Scan(dest ...any) error }) (*domain.Quote, error) {
	var q domain.Quote
	var (
		page      sql.NullInt64
		createdAt string
	)

	if err := scanner.Scan(&q.ID, &q.EntryID, &q.Text, &page, &createdAt); err != nil {
		return nil, err
	}

	var err error
	q.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	if page.Valid {
		p := int(page.Int64)
		q.Page = &p
	}
	return &q, nil
}

// CreateQuote inserts a quote under an existing entry.
// Returns store.ErrNotFound when the parent entry does not exist.
func (s *Store) CreateQuote(ctx context.Context, q *domain.Quote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, entry_id, text, page, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		q.ID, q.EntryID, q.Text, nullableInt(q.Page), formatTime(q.CreatedAt))
	if err != nil {
		if isForeignKeyErr(err) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// GetQuote fetches a single quote by id.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id)

	q, err := scanQuote(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListQuotes returns all quotes for an entry, oldest first.
func (s *Store) ListQuotes(ctx context.Context, entryID string) ([]domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE entry_id = ? ORDER BY created_at ASC`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}

// DeleteQuote removes a quote by id.
// Returns store.ErrNotFound if no row matches.
func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// isForeignKeyErr reports whether err is a foreign key constraint violation.
func isForeignKeyErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
