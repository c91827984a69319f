package model

// SearchRequest represents a search query request
type SearchRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId,omitempty"`
}

// SearchMetadata carries response metadata for one search
type SearchMetadata struct {
	TotalResults int     `json:"totalResults"`
	SearchTimeMs int64   `json:"searchTimeMs"`
	Confidence   float64 `json:"confidence"`
}

// SearchResponse represents a search result response
type SearchResponse struct {
	Results   []Listing      `json:"results"`
	SessionID string         `json:"sessionId"`
	Metadata  SearchMetadata `json:"metadata"`
}

// IndexRequest represents a batch indexing request. An empty Listings slice
// means "index the whole catalog".
type IndexRequest struct {
	Listings []Listing `json:"listings,omitempty"`
}

// IndexResponse represents the outcome of a batch indexing run
type IndexResponse struct {
	Indexed int      `json:"indexed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
