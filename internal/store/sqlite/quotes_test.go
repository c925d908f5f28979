package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/store"
)

func testQuote(id, entryID, text string, createdAt time.Time) *domain.Quote {
	return &domain.Quote{
		ID:        id,
		EntryID:   entryID,
		Text:      text,
		CreatedAt: createdAt,
	}
}

func TestCreateQuote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateEntry(t, s, testEntry("book-1", "user-1", "The Lathe of Heaven"))

	q := testQuote("quote-1", "book-1", "The end justifies the means. But what if there never is an end?", time.Now().UTC())
	page := 82
	q.Page = &page

	if err := s.CreateQuote(ctx, q); err != nil {
		t.Fatalf("CreateQuote() error = %v", err)
	}

	got, err := s.GetQuote(ctx, "quote-1")
	if err != nil {
		t.Fatalf("GetQuote() error = %v", err)
	}
	if got.EntryID != "book-1" {
		t.Errorf("EntryID = %s, want book-1", got.EntryID)
	}
	if got.Page == nil || *got.Page != 82 {
		t.Errorf("Page = %v, want 82", got.Page)
	}
}

func TestCreateQuote_MissingEntry(t *testing.T) {
	s := newTestStore(t)

	q := testQuote("quote-1", "book-missing", "Orphaned.", time.Now().UTC())
	if err := s.CreateQuote(context.Background(), q); err != store.ErrNotFound {
		t.Errorf("CreateQuote(missing entry) error = %v, want ErrNotFound", err)
	}
}

func TestListQuotes_OrderedByCreation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateEntry(t, s, testEntry("book-1", "user-1", "Quoted"))

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"quote-b", "quote-a", "quote-c"} {
		q := testQuote(id, "book-1", "Quote "+id, base.Add(time.Duration(i)*time.Minute))
		if err := s.CreateQuote(ctx, q); err != nil {
			t.Fatalf("CreateQuote(%s) error = %v", id, err)
		}
	}

	quotes, err := s.ListQuotes(ctx, "book-1")
	if err != nil {
		t.Fatalf("ListQuotes() error = %v", err)
	}

	wantOrder := []string{"quote-b", "quote-a", "quote-c"}
	if len(quotes) != len(wantOrder) {
		t.Fatalf("len(quotes) = %d, want %d", len(quotes), len(wantOrder))
	}
	for i, want := range wantOrder {
		if quotes[i].ID != want {
			t.Errorf("quotes[%d].ID = %s, want %s", i, quotes[i].ID, want)
		}
	}
}

func TestDeleteQuote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateEntry(t, s, testEntry("book-1", "user-1", "Quoted"))
	if err := s.CreateQuote(ctx, testQuote("quote-1", "book-1", "Gone soon.", time.Now().UTC())); err != nil {
		t.Fatalf("CreateQuote() error = %v", err)
	}

	if err := s.DeleteQuote(ctx, "quote-1"); err != nil {
		t.Fatalf("DeleteQuote() error = %v", err)
	}
	if _, err := s.GetQuote(ctx, "quote-1"); err != store.ErrNotFound {
		t.Errorf("GetQuote(deleted) error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteQuote(ctx, "quote-1"); err != store.ErrNotFound {
		t.Errorf("DeleteQuote(again) error = %v, want ErrNotFound", err)
	}
}
