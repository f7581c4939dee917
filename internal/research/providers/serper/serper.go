// A research provider backed by the Serper API (Google Search) for finding
// court coverage, plus a plain HTTP fetcher for reading the result pages.
package serper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

const searchEndpoint = "https://google.serper.dev/search"

// resultLimit caps how many organic results one query returns.
const resultLimit = 5

type SerperProvider struct {
	apiKey string
	client *http.Client
}

func New(apiKey string) *SerperProvider {
	return &SerperProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *SerperProvider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{
		ID:   "serper",
		Name: "Serper Web Search",
	}
}

type searchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (p *SerperProvider) Search(query string) ([]models.SearchResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("serper API key is not configured")
	}

	body, err := json.Marshal(searchRequest{Query: query, Num: resultLimit})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", searchEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request returned status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var results []models.SearchResult
	for i, r := range decoded.Organic {
		if i >= resultLimit || r.Link == "" {
			break
		}
		results = append(results, models.SearchResult{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
		})
	}
	return results, nil
}

// FetchPage downloads the raw HTML of a result page. Content is capped to
// keep a hostile page from exhausting memory.
func (p *SerperProvider) FetchPage(url string) (string, error) {
	resp, err := p.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch of %s returned status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(data), nil
}
