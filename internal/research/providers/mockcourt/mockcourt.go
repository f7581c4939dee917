// A mock provider for development and testing purposes. It simulates web
// search and page fetches for court records without making network calls.
package mockcourt

import (
	"fmt"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

type MockcourtProvider struct {
	// NextHearing controls the hearing date embedded in fetched pages.
	// Defaults to ten days from now.
	NextHearing time.Time
}

func New() *MockcourtProvider {
	return &MockcourtProvider{NextHearing: time.Now().AddDate(0, 0, 10)}
}

func (p *MockcourtProvider) GetInfo() models.ProviderInfo {
	return models.ProviderInfo{
		ID:   "mockcourt",
		Name: "Mockcourt Records",
	}
}

func (p *MockcourtProvider) Search(query string) ([]models.SearchResult, error) {
	var results []models.SearchResult
	for i := 1; i <= 3; i++ {
		results = append(results, models.SearchResult{
			Title:   fmt.Sprintf("%s - Court Record %d", query, i),
			URL:     fmt.Sprintf("https://mockcourt.example/records/%d", i),
			Snippet: fmt.Sprintf("Docket entry %d for %s", i, query),
		})
	}
	return results, nil
}

func (p *MockcourtProvider) FetchPage(url string) (string, error) {
	date := p.NextHearing.Format("January 2, 2006")
	return fmt.Sprintf(`<html><head><title>Docket</title></head><body>
<article>
<h1>Case Docket</h1>
<p>The next hearing in this matter is scheduled for %s before the Superior Court.</p>
<p>The case remains open pending trial. The defendant entered a plea at the last hearing on %s.</p>
</article>
</body></html>`, date, p.NextHearing.AddDate(0, -1, 0).Format("January 2, 2006")), nil
}
