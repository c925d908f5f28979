package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tinykiri/readiculous/internal/domain"
	"github.com/tinykiri/readiculous/internal/service"
	"github.com/tinykiri/readiculous/internal/store"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/{userID}/books",
		Summary:       "Add book",
		Description:   "Adds a book to the user's library",
		Tags:          []string{"Library"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/books",
		Summary:     "List books",
		Description: "Returns a page of the user's library, optionally filtered by a search query",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "lastRead",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/books/last-read",
		Summary:     "Last read books",
		Description: "Returns the ten most recently started books",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLastRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/books/{bookID}",
		Summary:     "Get book",
		Description: "Returns a book by ID, including its saved quotes",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{userID}/books/{bookID}",
		Summary:     "Update book",
		Description: "Updates book fields; omitted fields are left unchanged",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "setBookRating",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{userID}/books/{bookID}/rating",
		Summary:     "Set book rating",
		Description: "Sets the rating; omitting the rating clears it",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetRating)

	huma.Register(s.api, huma.Operation{
		OperationID: "setBookComment",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{userID}/books/{bookID}/comment",
		Summary:     "Set book comment",
		Description: "Sets the comment; an empty comment clears it",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{userID}/books/{bookID}",
		Summary:     "Delete book",
		Description: "Removes a book and its quotes from the library",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadBookCover",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{userID}/books/{bookID}/cover",
		Summary:     "Upload book cover",
		Description: "Uploads a cover image for a book",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadCover)

	huma.Register(s.api, huma.Operation{
		OperationID: "readingCalendar",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/calendar/{year}",
		Summary:     "Reading calendar",
		Description: "Returns the books read in a year plus the years with activity",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCalendar)
}

// === DTOs ===

// BookResponse contains library entry data in API responses.
type BookResponse struct {
	ID               string     `json:"id" doc:"Book ID"`
	Title            string     `json:"title" doc:"Book title"`
	Author           string     `json:"author" doc:"Book author"`
	Publisher        string     `json:"publisher,omitempty" doc:"Publisher name"`
	OriginalLanguage string     `json:"original_language,omitempty" doc:"Original language code"`
	YearPublished    int        `json:"year_published,omitempty" doc:"Year of publication"`
	CoverURL         string     `json:"cover_url,omitempty" doc:"Public cover image URL"`
	CoverBlurhash    string     `json:"cover_blurhash,omitempty" doc:"BlurHash placeholder for the cover"`
	Rating           *float64   `json:"rating,omitempty" doc:"Rating from 0 to 5"`
	Comment          string     `json:"comment,omitempty" doc:"Personal comment"`
	StartedAt        *time.Time `json:"started_at,omitempty" doc:"When reading started"`
	FinishedAt       *time.Time `json:"finished_at,omitempty" doc:"When reading finished"`
	CreatedAt        time.Time  `json:"created_at" doc:"Creation time"`
	UpdatedAt        time.Time  `json:"updated_at" doc:"Last update time"`
}

func bookResponse(e *domain.LibraryEntry) BookResponse {
	return BookResponse{
		ID:               e.ID,
		Title:            e.Title,
		Author:           e.Author,
		Publisher:        e.Publisher,
		OriginalLanguage: e.OriginalLanguage,
		YearPublished:    e.YearPublished,
		CoverURL:         e.CoverURL,
		CoverBlurhash:    e.CoverBlurhash,
		Rating:           e.Rating,
		Comment:          e.Comment,
		StartedAt:        e.StartedAt,
		FinishedAt:       e.FinishedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func bookResponses(entries []domain.LibraryEntry) []BookResponse {
	resp := make([]BookResponse, len(entries))
	for i := range entries {
		resp[i] = bookResponse(&entries[i])
	}
	return resp
}

// BookOutput wraps a single book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// BookDetailResponse is a book together with its saved quotes.
type BookDetailResponse struct {
	BookResponse
	Quotes []QuoteResponse `json:"quotes" doc:"Quotes saved for this book"`
}

// BookDetailOutput wraps a detailed book response for Huma.
type BookDetailOutput struct {
	Body BookDetailResponse
}

// CreateBookRequest is the request body for adding a book.
type CreateBookRequest struct {
	Title            string     `json:"title" validate:"required,min=1,max=200" doc:"Book title"`
	Author           string     `json:"author" validate:"required,min=1,max=200" doc:"Book author"`
	Publisher        string     `json:"publisher,omitempty" validate:"omitempty,max=200" doc:"Publisher name"`
	OriginalLanguage string     `json:"original_language,omitempty" validate:"omitempty,max=20" doc:"Original language code"`
	YearPublished    int        `json:"year_published,omitempty" validate:"omitempty,min=1000,max=9999" doc:"Year of publication"`
	Rating           *float64   `json:"rating,omitempty" validate:"omitempty,min=0,max=5" doc:"Rating from 0 to 5"`
	Comment          string     `json:"comment,omitempty" validate:"omitempty,max=5000" doc:"Personal comment"`
	StartedAt        *time.Time `json:"started_at" validate:"required" doc:"When reading started"`
	FinishedAt       *time.Time `json:"finished_at,omitempty" doc:"When reading finished, not before started_at"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	Body          CreateBookRequest
}

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	Page          int    `query:"page" doc:"Page number, starting at 1"`
	Limit         int    `query:"limit" doc:"Items per page, capped at 100"`
	Query         string `query:"q" doc:"Full-text search over title and author"`
}

// ListBooksResponse contains one page of books.
type ListBooksResponse struct {
	Books      []BookResponse `json:"books" doc:"Books on this page"`
	Page       int            `json:"page" doc:"Page number"`
	Limit      int            `json:"limit" doc:"Items per page"`
	Total      int            `json:"total" doc:"Total matching books"`
	TotalPages int            `json:"totalPages" doc:"Total pages"`
}

// ListBooksOutput wraps the list books response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// LastReadInput contains parameters for the last-read shelf.
type LastReadInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
}

// BooksResponse contains an unpaginated list of books.
type BooksResponse struct {
	Books []BookResponse `json:"books" doc:"List of books"`
}

// BooksOutput wraps a plain book list for Huma.
type BooksOutput struct {
	Body BooksResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
}

// UpdateBookRequest is the request body for updating a book.
type UpdateBookRequest struct {
	Title            *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200" doc:"Book title"`
	Author           *string    `json:"author,omitempty" validate:"omitempty,min=1,max=200" doc:"Book author"`
	Publisher        *string    `json:"publisher,omitempty" validate:"omitempty,max=200" doc:"Publisher name"`
	OriginalLanguage *string    `json:"original_language,omitempty" validate:"omitempty,max=20" doc:"Original language code"`
	YearPublished    *int       `json:"year_published,omitempty" validate:"omitempty,min=1000,max=9999" doc:"Year of publication"`
	StartedAt        *time.Time `json:"started_at,omitempty" doc:"When reading started"`
	FinishedAt       *time.Time `json:"finished_at,omitempty" doc:"When reading finished"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
	Body          UpdateBookRequest
}

// SetRatingRequest is the request body for setting a rating.
type SetRatingRequest struct {
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5" doc:"Rating from 0 to 5; omit to clear"`
}

// SetRatingInput wraps the set rating request for Huma.
type SetRatingInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
	Body          SetRatingRequest
}

// SetCommentRequest is the request body for setting a comment.
type SetCommentRequest struct {
	Comment string `json:"comment" validate:"omitempty,max=5000" doc:"Personal comment; empty clears"`
}

// SetCommentInput wraps the set comment request for Huma.
type SetCommentInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
	Body          SetCommentRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
}

// UploadCoverInput contains the raw image bytes for a cover upload.
type UploadCoverInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
	RawBody       []byte
}

// CalendarInput contains parameters for the reading calendar.
type CalendarInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	Year          int    `path:"year" doc:"Calendar year"`
}

// CalendarResponse contains the reading calendar for one year.
type CalendarResponse struct {
	AvailableYears []int          `json:"availableYears" doc:"Years with reading activity, newest first"`
	Books          []BookResponse `json:"books" doc:"Books whose reading period touches the year"`
}

// CalendarOutput wraps the calendar response for Huma.
type CalendarOutput struct {
	Body CalendarResponse
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	entry, err := s.services.Library.CreateEntry(ctx, userID, service.CreateEntryInput{
		Title:            input.Body.Title,
		Author:           input.Body.Author,
		Publisher:        input.Body.Publisher,
		OriginalLanguage: input.Body.OriginalLanguage,
		YearPublished:    input.Body.YearPublished,
		Rating:           input.Body.Rating,
		Comment:          input.Body.Comment,
		StartedAt:        input.Body.StartedAt,
		FinishedAt:       input.Body.FinishedAt,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: bookResponse(entry)}, nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	params := store.PageParams{Page: input.Page, Limit: input.Limit}
	page, err := s.services.Library.ListEntries(ctx, userID, input.Query, params)
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{Body: ListBooksResponse{
		Books:      bookResponses(page.Items),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}}, nil
}

func (s *Server) handleLastRead(ctx context.Context, input *LastReadInput) (*BooksOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Library.LastRead(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BooksOutput{Body: BooksResponse{Books: bookResponses(entries)}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookDetailOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Library.GetEntry(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	quotes, err := s.services.Quote.ListQuotes(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &BookDetailOutput{Body: BookDetailResponse{
		BookResponse: bookResponse(entry),
		Quotes:       quoteResponses(quotes),
	}}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	entry, err := s.services.Library.UpdateEntry(ctx, userID, input.BookID, service.UpdateEntryInput{
		Title:            input.Body.Title,
		Author:           input.Body.Author,
		Publisher:        input.Body.Publisher,
		OriginalLanguage: input.Body.OriginalLanguage,
		YearPublished:    input.Body.YearPublished,
		StartedAt:        input.Body.StartedAt,
		FinishedAt:       input.Body.FinishedAt,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: bookResponse(entry)}, nil
}

func (s *Server) handleSetRating(ctx context.Context, input *SetRatingInput) (*BookOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	entry, err := s.services.Library.SetRating(ctx, userID, input.BookID, input.Body.Rating)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: bookResponse(entry)}, nil
}

func (s *Server) handleSetComment(ctx context.Context, input *SetCommentInput) (*BookOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	entry, err := s.services.Library.SetComment(ctx, userID, input.BookID, input.Body.Comment)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: bookResponse(entry)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Library.DeleteEntry(ctx, userID, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleUploadCover(ctx context.Context, input *UploadCoverInput) (*BookOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Library.UploadCover(ctx, userID, input.BookID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: bookResponse(entry)}, nil
}

func (s *Server) handleCalendar(ctx context.Context, input *CalendarInput) (*CalendarOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	data, err := s.services.Library.Calendar(ctx, userID, input.Year)
	if err != nil {
		return nil, err
	}

	return &CalendarOutput{Body: CalendarResponse{
		AvailableYears: data.AvailableYears,
		Books:          bookResponses(data.Books),
	}}, nil
}
