package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Result holds one page of matching entry IDs, best match first.
type Result struct {
	IDs   []string
	Total uint64
}

// Search finds library entries owned by userID whose title or author match
// the query. Returns entry IDs ordered by relevance.
func (s *Index) Search(ctx context.Context, userID, rawQuery string, limit, offset int) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildEntryQuery(userID, rawQuery)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, offset, false)
	searchRequest.SortBy([]string{"-_score"})

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		IDs:   make([]string, 0, len(searchResult.Hits)),
		Total: searchResult.Total,
	}
	for _, hit := range searchResult.Hits {
		result.IDs = append(result.IDs, hit.ID)
	}
	return result, nil
}

// buildEntryQuery combines the owner filter with title/author matching.
func buildEntryQuery(userID, rawQuery string) query.Query {
	userQuery := bleve.NewTermQuery(userID)
	userQuery.SetField("user_id")

	if rawQuery == "" {
		return userQuery
	}

	textQueries := []query.Query{}

	titleMatch := bleve.NewMatchQuery(rawQuery)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)
	textQueries = append(textQueries, titleMatch)

	authorMatch := bleve.NewMatchQuery(rawQuery)
	authorMatch.SetField("author")
	authorMatch.SetBoost(1.5)
	textQueries = append(textQueries, authorMatch)

	// Fuzzy match on title for typo tolerance.
	fuzzyQuery := bleve.NewFuzzyQuery(rawQuery)
	fuzzyQuery.SetFuzziness(1)
	fuzzyQuery.SetField("title")
	fuzzyQuery.SetBoost(0.8)
	textQueries = append(textQueries, fuzzyQuery)

	// Prefix query for partial words (minimum 2 chars).
	if len(rawQuery) >= 2 {
		prefixQuery := bleve.NewPrefixQuery(strings.ToLower(rawQuery))
		prefixQuery.SetField("title")
		prefixQuery.SetBoost(0.5)
		textQueries = append(textQueries, prefixQuery)
	}

	return bleve.NewConjunctionQuery(
		userQuery,
		bleve.NewDisjunctionQuery(textQueries...),
	)
}
