package db

// MaxSearchLimit bounds a single FT.SEARCH page.
const MaxSearchLimit = 10000

// SearchQuery is the input for an FT.SEARCH listing.
type SearchQuery struct {
	IndexName    string
	Query        string
	SortBy       string // empty keeps index order
	SortAsc      bool
	Offset       int
	Limit        int // 0 means MaxSearchLimit
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
