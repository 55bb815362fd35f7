package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/observability"
)

// Client pushes reports to search-service for indexing. It is best-effort:
// callers run it from the outbound queue and only log failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client. With an empty baseURL IndexReport is a no-op.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: observability.NewHTTPClient(5*time.Second, nil),
	}
}

// IndexReportPayload is the body of POST /search/index/report.
type IndexReportPayload struct {
	ReportID       string `json:"report_id"`
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Address        string `json:"address"`
	Urgency        string `json:"urgency"`
	Status         string `json:"status"`
}

func (c *Client) IndexReport(ctx context.Context, r *model.Report) error {
	if c.baseURL == "" {
		return nil
	}
	payload := IndexReportPayload{
		ReportID:       r.ID,
		UserID:         r.UserID,
		OrganizationID: r.OrganizationID,
		Category:       r.Category,
		Description:    r.Description,
		Address:        r.Address,
		Urgency:        r.Urgency,
		Status:         string(r.Status),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("searchindex: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search/index/report", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("searchindex: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("searchindex: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("searchindex: status %d for report %s", resp.StatusCode, r.ID)
	}
	return nil
}
