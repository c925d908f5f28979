package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tinykiri/readiculous/internal/domain"
)

func (s *Server) registerQuoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "addQuote",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/{userID}/books/{bookID}/quotes",
		Summary:       "Add quote",
		Description:   "Saves a passage from a book",
		Tags:          []string{"Quotes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddQuote)

	huma.Register(s.api, huma.Operation{
		OperationID: "listQuotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}/books/{bookID}/quotes",
		Summary:     "List quotes",
		Description: "Returns the quotes saved from a book, oldest first",
		Tags:        []string{"Quotes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListQuotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteQuote",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{userID}/quotes/{quoteID}",
		Summary:     "Delete quote",
		Description: "Deletes a saved quote",
		Tags:        []string{"Quotes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteQuote)
}

// === DTOs ===

// QuoteResponse contains quote data in API responses.
type QuoteResponse struct {
	ID        string    `json:"id" doc:"Quote ID"`
	EntryID   string    `json:"entry_id" doc:"Parent book ID"`
	Text      string    `json:"text" doc:"Quoted passage"`
	Page      *int      `json:"page,omitempty" doc:"Page number"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func quoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:        q.ID,
		EntryID:   q.EntryID,
		Text:      q.Text,
		Page:      q.Page,
		CreatedAt: q.CreatedAt,
	}
}

func quoteResponses(quotes []domain.Quote) []QuoteResponse {
	resp := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		resp[i] = quoteResponse(&quotes[i])
	}
	return resp
}

// QuoteOutput wraps a single quote response for Huma.
type QuoteOutput struct {
	Body QuoteResponse
}

// AddQuoteRequest is the request body for saving a quote.
type AddQuoteRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000" doc:"Quoted passage"`
	Page *int   `json:"page,omitempty" validate:"omitempty,min=1" doc:"Page number"`
}

// AddQuoteInput wraps the add quote request for Huma.
type AddQuoteInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
	Body          AddQuoteRequest
}

// ListQuotesInput contains parameters for listing quotes.
type ListQuotesInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	BookID        string `path:"bookID" doc:"Book ID"`
}

// ListQuotesResponse contains the quotes saved from a book.
type ListQuotesResponse struct {
	Quotes []QuoteResponse `json:"quotes" doc:"Quotes, oldest first"`
}

// ListQuotesOutput wraps the list quotes response for Huma.
type ListQuotesOutput struct {
	Body ListQuotesResponse
}

// DeleteQuoteInput contains parameters for deleting a quote.
type DeleteQuoteInput struct {
	Authorization string `header:"Authorization"`
	UserID        string `path:"userID" doc:"Owner user ID"`
	QuoteID       string `path:"quoteID" doc:"Quote ID"`
}

// === Handlers ===

func (s *Server) handleAddQuote(ctx context.Context, input *AddQuoteInput) (*QuoteOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	quote, err := s.services.Quote.AddQuote(ctx, userID, input.BookID, input.Body.Text, input.Body.Page)
	if err != nil {
		return nil, err
	}

	return &QuoteOutput{Body: quoteResponse(quote)}, nil
}

func (s *Server) handleListQuotes(ctx context.Context, input *ListQuotesInput) (*ListQuotesOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	quotes, err := s.services.Quote.ListQuotes(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &ListQuotesOutput{Body: ListQuotesResponse{Quotes: quoteResponses(quotes)}}, nil
}

func (s *Server) handleDeleteQuote(ctx context.Context, input *DeleteQuoteInput) (*MessageOutput, error) {
	userID, err := s.requireOwner(ctx, input.Authorization, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Quote.DeleteQuote(ctx, userID, input.QuoteID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Quote deleted"}}, nil
}
