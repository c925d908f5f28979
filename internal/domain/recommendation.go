package domain

// AuthorPreference is one favorite author derived from highly rated entries.
type AuthorPreference struct {
	Name      string  `json:"name"`
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}

// PreferenceProfile is the derived taste snapshot the recommendation
// aggregator works from. AvgYearPublished and AvgRating are informational
// signals; no strategy consumes them yet.
type PreferenceProfile struct {
	FavoriteAuthors    []AuthorPreference `json:"favorite_authors"`
	TopPublishers      []string           `json:"top_publishers"`
	LanguagePreference string             `json:"language_preference,omitempty"`
	AvgYearPublished   float64            `json:"avg_year_published,omitempty"`
	AvgRating          float64            `json:"avg_rating"`
}

// IsEmpty reports whether the profile carries no usable signal.
func (p *PreferenceProfile) IsEmpty() bool {
	return len(p.FavoriteAuthors) == 0 &&
		len(p.TopPublishers) == 0 &&
		p.LanguagePreference == ""
}

// RecommendationCandidate is one suggested book, normalized from a raw
// catalog volume. CatalogID is the catalog's volume id and is the dedup key
// across strategies.
type RecommendationCandidate struct {
	CatalogID     string   `json:"catalog_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	ThumbnailURL  string   `json:"thumbnail_url,omitempty"`
	Language      string   `json:"language,omitempty"`
	AverageRating float64  `json:"average_rating,omitempty"`
	RatingsCount  int      `json:"ratings_count,omitempty"`
	Reason        string   `json:"reason"`
}

// PrimaryAuthor returns the first listed author, or empty.
func (c *RecommendationCandidate) PrimaryAuthor() string {
	if len(c.Authors) == 0 {
		return ""
	}
	return c.Authors[0]
}
