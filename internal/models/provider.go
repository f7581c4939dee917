package models

// ProviderInfo contains static information about a research provider.
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchResult represents a single web result returned by a provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider defines the contract every research source must implement.
// Search runs a web query; FetchPage retrieves the raw HTML of one result
// so the analyzer can extract hearing information from it.
type Provider interface {
	GetInfo() ProviderInfo
	Search(query string) ([]SearchResult, error)
	FetchPage(url string) (string, error)
}

// SchedulerJobInfo describes one scheduled job for the status endpoint.
type SchedulerJobInfo struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	NextRun *string `json:"next_run"`
}
