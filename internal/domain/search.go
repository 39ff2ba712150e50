package domain

import "strings"

// Ad status values accepted by the ad library.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusAll      = "all"
)

const (
	DefaultCountry = "US"
	DefaultCount   = 10
	MaxCount       = 100
)

// SearchQuery describes one domain search against the ad library
type SearchQuery struct {
	Domain      string     `json:"domain" validate:"required,max=253"`
	Country     string     `json:"country" validate:"required,len=2,alpha"`
	Status      string     `json:"status" validate:"required,oneof=active inactive all"`
	Count       int        `json:"count" validate:"min=1,max=100"`
	ExactPhrase bool       `json:"exact_phrase"`
	DateRange   *DateRange `json:"date_range,omitempty"`
}

// WithDefaults fills unset fields and canonicalizes casing.
func (q SearchQuery) WithDefaults() SearchQuery {
	q.Domain = strings.TrimSpace(q.Domain)
	q.Country = strings.ToUpper(strings.TrimSpace(q.Country))
	if q.Country == "" {
		q.Country = DefaultCountry
	}
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	if q.Status == "" {
		q.Status = StatusActive
	}
	if q.Count == 0 {
		q.Count = DefaultCount
	}
	return q
}

// SearchResult is the normalized outcome of a search
type SearchResult struct {
	Data     []CanonicalAdRecord `json:"data"`
	Total    int                 `json:"total"`
	Fetched  int                 `json:"fetched"`
	Filtered int                 `json:"filtered"`
}
