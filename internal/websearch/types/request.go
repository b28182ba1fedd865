package types

// SearchRequest represents a search request
type SearchRequest struct {
	Query          string     `json:"query"`
	MaxResults     int        `json:"max_results,omitempty"`
	SearchDepth    string     `json:"search_depth,omitempty"` // "basic" or "advanced"
	IncludeDomains []string   `json:"include_domains,omitempty"`
	ExcludeDomains []string   `json:"exclude_domains,omitempty"`
	TimeRange      *TimeRange `json:"time_range,omitempty"`
}

// TimeRange represents a time range filter
type TimeRange struct {
	Start string `json:"start,omitempty"` // ISO 8601 format
	End   string `json:"end,omitempty"`   // ISO 8601 format
}
