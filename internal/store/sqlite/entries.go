package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/store"
)

// entryColumns is the ordered list of columns selected in entry queries.
// Must match the scan order in scanEntry.
const entryColumns = `id, user_id, title, author, publisher, original_language,
	year_published, cover_url, cover_blurhash, rating, comment,
	started_at, finished_at, created_at, updated_at`

// entryOrder sorts most recently started first; entries without a start date
// sink to the bottom, tiebroken by creation time.
const entryOrder = `ORDER BY started_at IS NULL, started_at DESC, created_at DESC`

// scanEntry scans a sql.Row (or sql.Rows via its Scan method) into a domain.LibraryEntry.
func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.LibraryEntry, error) {
	var e domain.LibraryEntry

	var (
		publisher  sql.NullString
		language   sql.NullString
		yearPub    sql.NullInt64
		coverURL   sql.NullString
		coverBlur  sql.NullString
		rating     sql.NullFloat64
		comment    sql.NullString
		startedAt  sql.NullString
		finishedAt sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Author,
		&publisher,
		&language,
		&yearPub,
		&coverURL,
		&coverBlur,
		&rating,
		&comment,
		&startedAt,
		&finishedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	e.StartedAt, err = parseNullableTime(startedAt)
	if err != nil {
		return nil, err
	}
	e.FinishedAt, err = parseNullableTime(finishedAt)
	if err != nil {
		return nil, err
	}

	// Optional fields.
	if publisher.Valid {
		e.Publisher = publisher.String
	}
	if language.Valid {
		e.OriginalLanguage = language.String
	}
	if yearPub.Valid {
		e.YearPublished = int(yearPub.Int64)
	}
	if coverURL.Valid {
		e.CoverURL = coverURL.String
	}
	if coverBlur.Valid {
		e.CoverBlurhash = coverBlur.String
	}
	if rating.Valid {
		r := rating.Float64
		e.Rating = &r
	}
	if comment.Valid {
		e.Comment = comment.String
	}

	return &e, nil
}

// CreateEntry inserts a library entry and increments the owner's book count
// in a single transaction. Either both take effect or neither does.
// Returns store.ErrAlreadyExists when the entry ID is taken.
func (s *Store) CreateEntry(ctx context.Context, e *domain.LibraryEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := bumpTotalBooks(ctx, tx, e.UserID, 1); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO library_entries (
				id, user_id, title, author, publisher, original_language,
				year_published, cover_url, cover_blurhash, rating, comment,
				started_at, finished_at, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID,
			e.UserID,
			e.Title,
			e.Author,
			nullString(e.Publisher),
			nullString(e.OriginalLanguage),
			nullInt(e.YearPublished),
			nullString(e.CoverURL),
			nullString(e.CoverBlurhash),
			nullFloat64(e.Rating),
			nullString(e.Comment),
			nullTimeString(e.StartedAt),
			nullTimeString(e.FinishedAt),
			formatTime(e.CreatedAt),
			formatTime(e.UpdatedAt),
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return store.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
}

// GetEntry fetches a single entry scoped to its owner.
// Returns store.ErrNotFound if no entry matches both id and user.
func (s *Store) GetEntry(ctx context.Context, userID, id string) (*domain.LibraryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE id = ? AND user_id = ?`, id, userID)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEntries returns one page of a user's library ordered by reading
// recency.
func (s *Store) ListEntries(ctx context.Context, userID string, params store.PageParams) (store.PageResult[domain.LibraryEntry], error) {
	params.Validate()

	var result store.PageResult[domain.LibraryEntry]

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM library_entries WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return result, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ?
		`+entryOrder+` LIMIT ? OFFSET ?`,
		userID, params.Limit, params.Offset())
	if err != nil {
		return result, err
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return result, err
	}

	return store.NewPageResult(entries, params, total), nil
}

// ListAllEntries returns every entry a user owns, ordered by reading
// recency. Used by the preference analyzer and the reading calendar.
func (s *Store) ListAllEntries(ctx context.Context, userID string) ([]domain.LibraryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ? `+entryOrder, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// AllEntries returns every library entry across all users. Used to rebuild
// the search index from scratch.
func (s *Store) AllEntries(ctx context.Context) ([]domain.LibraryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListRecentEntries returns up to limit of the user's most recently started
// entries.
func (s *Store) ListRecentEntries(ctx context.Context, userID string, limit int) ([]domain.LibraryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ?
		`+entryOrder+` LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEntries(rows)
}

// GetEntriesByIDs fetches the given entries for a user, preserving the order
// of ids. Unknown ids are skipped.
func (s *Store) GetEntriesByIDs(ctx context.Context, userID string, ids []string) ([]domain.LibraryEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries
		WHERE user_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.LibraryEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	ordered := make([]domain.LibraryEntry, 0, len(entries))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

// UpdateEntry persists the mutable fields of an entry, scoped to its owner.
// Returns store.ErrNotFound if no row matches.
func (s *Store) UpdateEntry(ctx context.Context, e *domain.LibraryEntry) error {
	e.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE library_entries SET
			title = ?, author = ?, publisher = ?, original_language = ?,
			year_published = ?, cover_url = ?, cover_blurhash = ?,
			rating = ?, comment = ?, started_at = ?, finished_at = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Title,
		e.Author,
		nullString(e.Publisher),
		nullString(e.OriginalLanguage),
		nullInt(e.YearPublished),
		nullString(e.CoverURL),
		nullString(e.CoverBlurhash),
		nullFloat64(e.Rating),
		nullString(e.Comment),
		nullTimeString(e.StartedAt),
		nullTimeString(e.FinishedAt),
		formatTime(e.UpdatedAt),
		e.ID,
		e.UserID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateRating sets or clears (nil) an entry's rating, scoped to its owner.
func (s *Store) UpdateRating(ctx context.Context, userID, id string, rating *float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE library_entries SET rating = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		nullFloat64(rating), formatTime(time.Now()), id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateComment sets or clears ("") an entry's comment, scoped to its owner.
func (s *Store) UpdateComment(ctx context.Context, userID, id, comment string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE library_entries SET comment = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		nullString(comment), formatTime(time.Now()), id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteEntry removes an entry and decrements the owner's book count in a
// single transaction. Quotes cascade via the foreign key.
// Returns store.ErrNotFound if no row matches.
func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM library_entries WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return err
		}
		return bumpTotalBooks(ctx, tx, userID, -1)
	})
}

// bumpTotalBooks adjusts the denormalized profiles.total_books counter.
// A missing profile row is created on increment so the invariant holds for
// users who add a book before ever editing their profile.
func bumpTotalBooks(ctx context.Context, tx *sql.Tx, userID string, delta int) error {
	now := formatTime(time.Now())

	res, err := tx.ExecContext(ctx,
		`UPDATE profiles SET total_books = MAX(total_books + ?, 0), updated_at = ? WHERE user_id = ?`,
		delta, now, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 || delta <= 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (user_id, username, total_books, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, defaultUsername(userID), delta, now, now)
	return err
}

// collectEntries drains rows into a slice.
func collectEntries(rows *sql.Rows) ([]domain.LibraryEntry, error) {
	var entries []domain.LibraryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// requireRow converts a zero-rows-affected result into store.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
