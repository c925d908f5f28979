package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/store"
)

const profileColumns = `user_id, username, avatar_url, avatar_blurhash, total_books, created_at, updated_at`

func scanProfile(scanner interface{ Scan(dest ...any) error }) (*domain.UserProfile, error) {
	var p domain.UserProfile
	var (
		avatarURL      sql.NullString
		avatarBlurhash sql.NullString
		createdAt      string
		updatedAt      string
	)

	if err := scanner.Scan(&p.UserID, &p.Username, &avatarURL, &avatarBlurhash,
		&p.TotalBooks, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	p.AvatarURL = avatarURL.String
	p.AvatarBlurhash = avatarBlurhash.String
	return &p, nil
}

// GetProfile fetches a user profile by user id.
// Returns store.ErrNotFound when no profile row exists yet.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)

	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertProfile creates or updates a profile. The total_books counter is
// never touched here since entry writes maintain it transactionally.
func (s *Store) UpsertProfile(ctx context.Context, p *domain.UserProfile) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, username, avatar_url, avatar_blurhash, total_books, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			avatar_url = excluded.avatar_url,
			avatar_blurhash = excluded.avatar_blurhash,
			updated_at = excluded.updated_at`,
		p.UserID, p.Username, nullString(p.AvatarURL), nullString(p.AvatarBlurhash),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}

// UpdateAvatar sets the avatar URL and blurhash for an existing profile.
// Returns store.ErrNotFound when the profile does not exist.
func (s *Store) UpdateAvatar(ctx context.Context, userID, avatarURL, blurhash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET avatar_url = ?, avatar_blurhash = ?, updated_at = ?
		WHERE user_id = ?`,
		nullString(avatarURL), nullString(blurhash), formatTime(time.Now().UTC()), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// defaultUsername derives a placeholder username from a user id for
// profiles created implicitly by the first library write.
func defaultUsername(userID string) string {
	suffix := userID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return "reader-" + suffix
}
