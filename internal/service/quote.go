package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/id"
	"github.com/tinykiri/readiculous/internal/store/sqlite"
)

// QuoteService orchestrates quote operations. Authorization always goes
// through the parent entry: a quote belongs to whoever owns the book.
type QuoteService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewQuoteService creates a new quote service.
func NewQuoteService(st *sqlite.Store, logger *slog.Logger) *QuoteService {
	return &QuoteService{store: st, logger: logger}
}

// AddQuote saves a passage under one of the user's entries.
func (s *QuoteService) AddQuote(ctx context.Context, userID, entryID, text string, page *int) (*domain.Quote, error) {
	// Resolving the entry both authorizes and confirms it exists.
	if _, err := s.store.GetEntry(ctx, userID, entryID); err != nil {
		return nil, convertStoreErr(err, "library entry")
	}

	quote := &domain.Quote{
		ID:        id.MustGenerate("quote"),
		EntryID:   entryID,
		Text:      text,
		Page:      page,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateQuote(ctx, quote); err != nil {
		return nil, convertStoreErr(err, "quote")
	}

	s.logger.Info("quote added", "quote_id", quote.ID, "entry_id", entryID)
	return quote, nil
}

// ListQuotes returns all quotes for one of the user's entries, oldest first.
func (s *QuoteService) ListQuotes(ctx context.Context, userID, entryID string) ([]domain.Quote, error) {
	if _, err := s.store.GetEntry(ctx, userID, entryID); err != nil {
		return nil, convertStoreErr(err, "library entry")
	}

	quotes, err := s.store.ListQuotes(ctx, entryID)
	if err != nil {
		return nil, convertStoreErr(err, "quotes")
	}
	return quotes, nil
}

// DeleteQuote removes a quote the user owns via its parent entry.
func (s *QuoteService) DeleteQuote(ctx context.Context, userID, quoteID string) error {
	quote, err := s.store.GetQuote(ctx, quoteID)
	if err != nil {
		return convertStoreErr(err, "quote")
	}

	// The parent entry lookup is scoped by user, so a quote under someone
	// else's book comes back not found rather than leaking its existence.
	if _, err := s.store.GetEntry(ctx, userID, quote.EntryID); err != nil {
		return convertStoreErr(err, "quote")
	}

	if err := s.store.DeleteQuote(ctx, quoteID); err != nil {
		return convertStoreErr(err, "quote")
	}

	s.logger.Info("quote deleted", "quote_id", quoteID, "entry_id", quote.EntryID)
	return nil
}
