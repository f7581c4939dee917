// Package client is the front-end half of the application: an API client
// over the case endpoints, the per-case progress poller, the list syncer,
// and the pure table renderer the CLI draws from.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vrsandeep/casetrack-go/internal/models"
)

// Client wraps the HTTP API. Every call applies the uniform success
// contract: the response must be 2xx and the body must declare success,
// otherwise the server-supplied error message is returned verbatim.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// do performs one round trip and enforces the success contract, returning
// the raw body for the caller to decode into its own shape.
func (c *Client) do(method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, err
		}
		reqBody = buf
	}
	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return checkEnvelope(resp.StatusCode, raw)
}

// checkEnvelope applies the success contract to a response body. The
// error message raised is exactly the server's "error" field when one is
// present.
func checkEnvelope(statusCode int, raw []byte) ([]byte, error) {
	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("server returned status %d with an unreadable body", statusCode)
	}
	if statusCode < 200 || statusCode >= 300 || !env.Success {
		if env.Error != "" {
			return nil, fmt.Errorf("%s", env.Error)
		}
		return nil, fmt.Errorf("request failed with status %d", statusCode)
	}
	return raw, nil
}

// ListCases fetches all cases, optionally filtered by status
// (case-insensitive on the server side).
func (c *Client) ListCases(status string) ([]*models.Case, error) {
	path := "/api/cases"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	raw, err := c.do("GET", path, nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Data []*models.Case `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

func (c *Client) GetCase(id int64) (*models.Case, error) {
	raw, err := c.do("GET", fmt.Sprintf("/api/cases/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return decodeCase(raw)
}

func decodeCase(raw []byte) (*models.Case, error) {
	var body struct {
		Data *models.Case `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// NewCase carries the fields accepted when creating a case.
type NewCase struct {
	CaseName        string `json:"case_name"`
	DocketURL       string `json:"docket_url,omitempty"`
	VictimName      string `json:"victim_name,omitempty"`
	SuspectName     string `json:"suspect_name,omitempty"`
	NextHearingDate string `json:"next_hearing_date,omitempty"`
	LastHearingDate string `json:"last_hearing_date,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

func (c *Client) AddCase(nc NewCase) (*models.Case, error) {
	raw, err := c.do("POST", "/api/add_case", nc)
	if err != nil {
		return nil, err
	}
	return decodeCase(raw)
}

// CaseChanges is a partial update; nil fields are left untouched.
type CaseChanges struct {
	CaseName        *string `json:"case_name,omitempty"`
	DocketURL       *string `json:"docket_url,omitempty"`
	VictimName      *string `json:"victim_name,omitempty"`
	SuspectName     *string `json:"suspect_name,omitempty"`
	Status          *string `json:"status,omitempty"`
	NextHearingDate *string `json:"next_hearing_date,omitempty"`
	LastHearingDate *string `json:"last_hearing_date,omitempty"`
	Confidence      *string `json:"confidence,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func (c *Client) UpdateCase(id int64, changes CaseChanges) (*models.Case, error) {
	raw, err := c.do("PUT", fmt.Sprintf("/api/cases/%d", id), changes)
	if err != nil {
		return nil, err
	}
	return decodeCase(raw)
}

// DeleteCase returns the server's success flag rather than the deleted
// entity. Deleting an id the server no longer has still succeeds.
func (c *Client) DeleteCase(id int64) (bool, error) {
	_, err := c.do("DELETE", fmt.Sprintf("/api/cases/%d", id), nil)
	if err != nil {
		return false, err
	}
	return true, nil
}

// TriggerResearch queues the research job for one case.
func (c *Client) TriggerResearch(id int64) error {
	_, err := c.do("POST", fmt.Sprintf("/api/trigger_update/%d", id), nil)
	return err
}

// TriggerAll runs the eligibility sweep; returns how many cases were
// queued and skipped.
func (c *Client) TriggerAll() (queued, skipped int, err error) {
	raw, err := c.do("POST", "/api/trigger_all", nil)
	if err != nil {
		return 0, 0, err
	}
	var body struct {
		Queued  int `json:"queued"`
		Skipped int `json:"skipped"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0, 0, err
	}
	return body.Queued, body.Skipped, nil
}

// SchedulerStatus reports whether the scheduler is running and its jobs.
func (c *Client) SchedulerStatus() (bool, []models.SchedulerJobInfo, error) {
	raw, err := c.do("GET", "/api/scheduler/status", nil)
	if err != nil {
		return false, nil, err
	}
	var body struct {
		SchedulerRunning bool                      `json:"scheduler_running"`
		Jobs             []models.SchedulerJobInfo `json:"jobs"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return false, nil, err
	}
	return body.SchedulerRunning, body.Jobs, nil
}

// ScheduleCustomCheck registers a one-time check of the given cases and
// returns the job id.
func (c *Client) ScheduleCustomCheck(caseIDs []int64, runAt time.Time) (string, error) {
	req := map[string]interface{}{
		"case_ids": caseIDs,
		"run_time": runAt.UTC().Format(time.RFC3339),
	}
	raw, err := c.do("POST", "/api/schedule_custom_check", req)
	if err != nil {
		return "", err
	}
	var body struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", err
	}
	return body.JobID, nil
}

// Progress is a point-in-time research job state as the progress endpoint
// reports it.
type Progress struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Done reports whether the job reached a terminal state.
func (p Progress) Done() bool {
	return p.Percent >= 100 || p.Status == "complete" || p.Status == "error"
}

// Progress fetches the raw progress snapshot for a case. This is the one
// endpoint without the success envelope: the decoded body is returned as
// is, whatever its shape.
func (c *Client) Progress(id int64) (Progress, error) {
	resp, err := c.http.Get(fmt.Sprintf("%s/api/progress/%d", c.baseURL, id))
	if err != nil {
		return Progress{}, err
	}
	defer resp.Body.Close()

	var p Progress
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Progress{}, err
	}
	return p, nil
}

// UpcomingHearings lists cases with hearings inside the window.
func (c *Client) UpcomingHearings(days int) ([]*models.Case, error) {
	raw, err := c.do("GET", fmt.Sprintf("/api/cases/upcoming-hearings?days=%d", days), nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		Data []*models.Case `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// ImportResult mirrors the server's import summary.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// ImportFile uploads a CSV or XLSX spreadsheet of cases.
func (c *Client) ImportFile(path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	writer.Close()

	req, err := http.NewRequest("POST", c.baseURL+"/api/import_cases", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	raw, err = checkEnvelope(resp.StatusCode, raw)
	if err != nil {
		return nil, err
	}
	var body struct {
		Result ImportResult `json:"result"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return &body.Result, nil
}

// Health checks the server's health endpoint.
func (c *Client) Health() (string, bool, error) {
	resp, err := c.http.Get(c.baseURL + "/api/health")
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	var body struct {
		Status           string `json:"status"`
		SchedulerRunning bool   `json:"scheduler_running"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, err
	}
	return body.Status, body.SchedulerRunning, nil
}
