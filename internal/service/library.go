// Package service provides the business logic layer between the API and the
// stores.
package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/tinykiri/readiculous/internal/cache"
	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/errors"
	"github.com/tinykiri/readiculous/internal/id"
	"github.com/tinykiri/readiculous/internal/media/images"
	"github.com/tinykiri/readiculous/internal/search"
	"github.com/tinykiri/readiculous/internal/storage"
	"github.com/tinykiri/readiculous/internal/store"
	"github.com/tinykiri/readiculous/internal/store/sqlite"
)

// recentEntryCount is how many entries the last-read shelf shows.
const recentEntryCount = 10

// LibraryService orchestrates library entry operations.
type LibraryService struct {
	store   *sqlite.Store
	search  *search.Index
	cache   *cache.Cache
	storage *storage.Storage
	logger  *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(st *sqlite.Store, idx *search.Index, ca *cache.Cache, blobs *storage.Storage, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:   st,
		search:  idx,
		cache:   ca,
		storage: blobs,
		logger:  logger,
	}
}

// CreateEntryInput carries the fields accepted when adding a book.
type CreateEntryInput struct {
	Title            string
	Author           string
	Publisher        string
	OriginalLanguage string
	YearPublished    int
	Rating           *float64
	Comment          string
	StartedAt        *time.Time
	FinishedAt       *time.Time
}

// UpdateEntryInput carries the mutable fields of an entry. Nil pointers
// leave the stored value untouched.
type UpdateEntryInput struct {
	Title            *string
	Author           *string
	Publisher        *string
	OriginalLanguage *string
	YearPublished    *int
	StartedAt        *time.Time
	FinishedAt       *time.Time
}

// checkReadingDates rejects a finish date that precedes the start date.
func checkReadingDates(started, finished *time.Time) error {
	if started != nil && finished != nil && finished.Before(*started) {
		return errors.Validation("finished_at must not be before started_at")
	}
	return nil
}

// CreateEntry adds a book to the user's library.
func (s *LibraryService) CreateEntry(ctx context.Context, userID string, input CreateEntryInput) (*domain.LibraryEntry, error) {
	if input.StartedAt == nil {
		return nil, errors.Validation("started_at is required")
	}
	if err := checkReadingDates(input.StartedAt, input.FinishedAt); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &domain.LibraryEntry{
		ID:               id.MustGenerate("book"),
		UserID:           userID,
		Title:            input.Title,
		Author:           input.Author,
		Publisher:        input.Publisher,
		OriginalLanguage: input.OriginalLanguage,
		YearPublished:    input.YearPublished,
		Rating:           input.Rating,
		Comment:          input.Comment,
		StartedAt:        input.StartedAt,
		FinishedAt:       input.FinishedAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, convertStoreErr(err, "library entry")
	}

	s.indexEntry(entry)
	s.invalidateRecommendations(userID)

	s.logger.Info("library entry created",
		"entry_id", entry.ID,
		"user_id", userID,
	)
	return entry, nil
}

// GetEntry fetches one entry owned by the user.
func (s *LibraryService) GetEntry(ctx context.Context, userID, entryID string) (*domain.LibraryEntry, error) {
	entry, err := s.store.GetEntry(ctx, userID, entryID)
	if err != nil {
		return nil, convertStoreErr(err, "library entry")
	}
	return entry, nil
}

// ListEntries returns one page of the user's library, optionally filtered by
// a title/author search query.
func (s *LibraryService) ListEntries(ctx context.Context, userID, query string, params store.PageParams) (store.PageResult[domain.LibraryEntry], error) {
	params.Validate()

	if query == "" {
		page, err := s.store.ListEntries(ctx, userID, params)
		if err != nil {
			return store.PageResult[domain.LibraryEntry]{}, convertStoreErr(err, "library entries")
		}
		return page, nil
	}

	result, err := s.search.Search(ctx, userID, query, params.Limit, params.Offset())
	if err != nil {
		return store.PageResult[domain.LibraryEntry]{}, errors.Wrap(err, errors.CodeInternal, "search library")
	}

	entries, err := s.store.GetEntriesByIDs(ctx, userID, result.IDs)
	if err != nil {
		return store.PageResult[domain.LibraryEntry]{}, convertStoreErr(err, "library entries")
	}

	return store.NewPageResult(entries, params, int(result.Total)), nil
}

// LastRead returns the ten most recently started entries.
func (s *LibraryService) LastRead(ctx context.Context, userID string) ([]domain.LibraryEntry, error) {
	entries, err := s.store.ListRecentEntries(ctx, userID, recentEntryCount)
	if err != nil {
		return nil, convertStoreErr(err, "library entries")
	}
	return entries, nil
}

// UpdateEntry applies a partial update to an entry.
func (s *LibraryService) UpdateEntry(ctx context.Context, userID, entryID string, input UpdateEntryInput) (*domain.LibraryEntry, error) {
	entry, err := s.store.GetEntry(ctx, userID, entryID)
	if err != nil {
		return nil, convertStoreErr(err, "library entry")
	}

	if input.Title != nil {
		entry.Title = *input.Title
	}
	if input.Author != nil {
		entry.Author = *input.Author
	}
	if input.Publisher != nil {
		entry.Publisher = *input.Publisher
	}
	if input.OriginalLanguage != nil {
		entry.OriginalLanguage = *input.OriginalLanguage
	}
	if input.YearPublished != nil {
		entry.YearPublished = *input.YearPublished
	}
	if input.StartedAt != nil {
		entry.StartedAt = input.StartedAt
	}
	if input.FinishedAt != nil {
		entry.FinishedAt = input.FinishedAt
	}

	if err := checkReadingDates(entry.StartedAt, entry.FinishedAt); err != nil {
		return nil, err
	}

	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		return nil, convertStoreErr(err, "library entry")
	}

	s.indexEntry(entry)
	s.invalidateRecommendations(userID)

	return entry, nil
}

// SetRating sets or clears (nil) an entry's rating.
func (s *LibraryService) SetRating(ctx context.Context, userID, entryID string, rating *float64) (*domain.LibraryEntry, error) {
	if err := s.store.UpdateRating(ctx, userID, entryID, rating); err != nil {
		return nil, convertStoreErr(err, "library entry")
	}

	s.invalidateRecommendations(userID)

	return s.GetEntry(ctx, userID, entryID)
}

// SetComment sets or clears (empty string) an entry's comment.
func (s *LibraryService) SetComment(ctx context.Context, userID, entryID, comment string) (*domain.LibraryEntry, error) {
	if err := s.store.UpdateComment(ctx, userID, entryID, comment); err != nil {
		return nil, convertStoreErr(err, "library entry")
	}

	s.invalidateRecommendations(userID)

	return s.GetEntry(ctx, userID, entryID)
}

// DeleteEntry removes an entry, its quotes, its cover blob, and its search
// document.
func (s *LibraryService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	entry, err := s.store.GetEntry(ctx, userID, entryID)
	if err != nil {
		return convertStoreErr(err, "library entry")
	}

	if err := s.store.DeleteEntry(ctx, userID, entryID); err != nil {
		return convertStoreErr(err, "library entry")
	}

	if err := s.search.DeleteEntry(entryID); err != nil {
		s.logger.Warn("failed to remove entry from search index",
			"entry_id", entryID,
			"error", err,
		)
	}
	if entry.CoverURL != "" {
		if err := s.storage.DeleteByURL(entry.CoverURL); err != nil {
			s.logger.Warn("failed to delete cover blob", "entry_id", entryID, "error", err)
		}
	}
	s.invalidateRecommendations(userID)

	s.logger.Info("library entry deleted",
		"entry_id", entryID,
		"user_id", userID,
	)
	return nil
}

// UploadCover stores a cover image for an entry and persists its public URL
// and blurhash. The replaced blob, if any, is deleted best-effort.
func (s *LibraryService) UploadCover(ctx context.Context, userID, entryID string, data []byte) (*domain.LibraryEntry, error) {
	entry, err := s.store.GetEntry(ctx, userID, entryID)
	if err != nil {
		return nil, convertStoreErr(err, "library entry")
	}

	contentType := images.DetectType(data)
	if contentType == "" {
		return nil, errors.Validation("file is not a supported image format (jpeg, png, webp, gif)")
	}

	coverURL, err := s.storage.Save(storage.BucketCovers, data, contentType)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "store cover image")
	}

	hash, err := images.ComputeBlurHash(data)
	if err != nil {
		s.logger.Warn("failed to compute cover blurhash", "entry_id", entryID, "error", err)
		hash = ""
	}

	oldCoverURL := entry.CoverURL
	entry.CoverURL = coverURL
	entry.CoverBlurhash = hash

	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		return nil, convertStoreErr(err, "library entry")
	}

	if oldCoverURL != "" {
		if err := s.storage.DeleteByURL(oldCoverURL); err != nil {
			s.logger.Warn("failed to delete replaced cover blob",
				"entry_id", entryID,
				"error", err,
			)
		}
	}

	return entry, nil
}

// Calendar returns the reading calendar for a year: the set of years the
// user has reading activity in, plus the books whose reading period touches
// the requested year.
func (s *LibraryService) Calendar(ctx context.Context, userID string, year int) (*domain.CalendarData, error) {
	entries, err := s.store.ListAllEntries(ctx, userID)
	if err != nil {
		return nil, convertStoreErr(err, "library entries")
	}

	yearSet := map[int]struct{}{time.Now().UTC().Year(): {}}
	for i := range entries {
		if entries[i].StartedAt != nil {
			yearSet[entries[i].StartedAt.Year()] = struct{}{}
		}
		if entries[i].FinishedAt != nil {
			yearSet[entries[i].FinishedAt.Year()] = struct{}{}
		}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	books := make([]domain.LibraryEntry, 0)
	for i := range entries {
		if entries[i].OverlapsYear(year) {
			books = append(books, entries[i])
		}
	}

	return &domain.CalendarData{
		AvailableYears: years,
		Books:          books,
	}, nil
}

// indexEntry updates the search index, logging failures instead of
// propagating them. A stale index never blocks a write.
func (s *LibraryService) indexEntry(entry *domain.LibraryEntry) {
	if err := s.search.IndexEntry(entry); err != nil {
		s.logger.Warn("failed to index library entry",
			"entry_id", entry.ID,
			"error", err,
		)
	}
}

// invalidateRecommendations drops cached recommendation state after a
// library write.
func (s *LibraryService) invalidateRecommendations(userID string) {
	if err := s.cache.Invalidate(userID); err != nil {
		s.logger.Warn("failed to invalidate recommendation cache",
			"user_id", userID,
			"error", err,
		)
	}
}

// convertStoreErr maps store sentinels onto domain errors.
func convertStoreErr(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errors.NotFound(what + " not found")
	case errors.Is(err, store.ErrAlreadyExists):
		return errors.AlreadyExists(what + " already exists")
	default:
		return errors.Wrap(err, errors.CodeInternal, what+" operation failed")
	}
}
