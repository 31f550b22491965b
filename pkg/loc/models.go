package loc

// SearchResponse represents one page of a loc.gov search result
type SearchResponse struct {
	Results    []Record   `json:"results"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains pagination metadata for a result page
type Pagination struct {
	// Current is the 1-based number of this page
	Current int `json:"current"`
	// Total is the total number of result pages
	Total int `json:"total"`
	// Next is the full URL of the next page, empty on the last page
	// (the API reports JSON null, which decodes to the empty string)
	Next string `json:"next"`
}

// HasNext reports whether another result page follows this one
func (p Pagination) HasNext() bool {
	if p.Next == "" {
		return false
	}
	if p.Total > 0 && p.Current >= p.Total {
		return false
	}
	return true
}
