package service

import (
	"context"
	"log/slog"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/errors"
	"github.com/tinykiri/readiculous/internal/media/images"
	"github.com/tinykiri/readiculous/internal/storage"
	"github.com/tinykiri/readiculous/internal/store"
	"github.com/tinykiri/readiculous/internal/store/sqlite"
)

// ProfileService orchestrates user profile operations.
type ProfileService struct {
	store   *sqlite.Store
	storage *storage.Storage
	logger  *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(st *sqlite.Store, blobs *storage.Storage, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: st, storage: blobs, logger: logger}
}

// GetProfile fetches the user's profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, convertStoreErr(err, "profile")
	}
	return profile, nil
}

// UpdateProfileInput carries the updatable profile fields. Nil pointers
// leave the stored value untouched.
type UpdateProfileInput struct {
	Username  *string
	AvatarURL *string
}

// UpdateProfile creates or updates the user's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.UserProfile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		profile = &domain.UserProfile{UserID: userID}
	} else if err != nil {
		return nil, convertStoreErr(err, "profile")
	}

	if input.Username != nil {
		profile.Username = *input.Username
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = *input.AvatarURL
	}

	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, convertStoreErr(err, "profile")
	}

	return s.GetProfile(ctx, userID)
}

// UploadAvatar stores an avatar image, persists its public URL and blurhash,
// and deletes the replaced blob best-effort.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, data []byte) (*domain.UserProfile, error) {
	contentType := images.DetectType(data)
	if contentType == "" {
		return nil, errors.Validation("file is not a supported image format (jpeg, png, webp, gif)")
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, convertStoreErr(err, "profile")
	}

	avatarURL, err := s.storage.Save(storage.BucketAvatars, data, contentType)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "store avatar image")
	}

	hash, err := images.ComputeBlurHash(data)
	if err != nil {
		s.logger.Warn("failed to compute avatar blurhash", "user_id", userID, "error", err)
		hash = ""
	}

	oldAvatarURL := profile.AvatarURL
	if err := s.store.UpdateAvatar(ctx, userID, avatarURL, hash); err != nil {
		return nil, convertStoreErr(err, "profile")
	}

	if oldAvatarURL != "" {
		if err := s.storage.DeleteByURL(oldAvatarURL); err != nil {
			s.logger.Warn("failed to delete replaced avatar blob",
				"user_id", userID,
				"error", err,
			)
		}
	}

	return s.GetProfile(ctx, userID)
}
