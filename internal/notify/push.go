package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fixora/fixora-service/internal/observability"
	"github.com/sethvargo/go-retry"
)

// PushMessage is a single push notification addressed to a device token.
type PushMessage struct {
	To    string
	Title string
	Body  string
	Data  map[string]interface{}
}

// PushSender delivers one push message.
type PushSender interface {
	Send(ctx context.Context, msg PushMessage) error
}

// ExpoClient posts messages to the Expo push API.
type ExpoClient struct {
	url        string
	httpClient *http.Client
	maxRetries uint64
	backoff    time.Duration
}

func NewExpoClient(url string) *ExpoClient {
	return &ExpoClient{
		url:        url,
		httpClient: observability.NewHTTPClient(10*time.Second, nil),
		maxRetries: 2,
		backoff:    200 * time.Millisecond,
	}
}

type expoMessage struct {
	To       string                 `json:"to"`
	Sound    string                 `json:"sound"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Priority string                 `json:"priority"`
}

type expoTicket struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type expoResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send delivers msg, retrying transport errors and 5xx responses.
func (c *ExpoClient) Send(ctx context.Context, msg PushMessage) error {
	body, err := json.Marshal(expoMessage{
		To:       msg.To,
		Sound:    "default",
		Title:    msg.Title,
		Body:     msg.Body,
		Data:     msg.Data,
		Priority: "high",
	})
	if err != nil {
		return fmt.Errorf("push: marshal: %w", err)
	}

	b := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("push: new request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("push: request: %w", err))
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("push: status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("push: status %d", resp.StatusCode)
		}
		return checkExpoResponse(resp)
	})
}

func checkExpoResponse(resp *http.Response) error {
	var out expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("push: decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("push: %s", strings.Join(msgs, "; "))
	}
	var ticket expoTicket
	if err := json.Unmarshal(out.Data, &ticket); err == nil && ticket.Status == "error" {
		return fmt.Errorf("push: %s", ticket.Message)
	}
	return nil
}
