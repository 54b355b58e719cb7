package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"DailyDigest/internal/ports"
)

// Client drives the third-party transcript job API: submit a job, poll its
// status on a fixed interval up to a maximum wait, then fetch the result set.
type Client struct {
	endpoint     string
	apiKey       string
	http         *http.Client
	pollInterval time.Duration
	maxWait      time.Duration
}

var _ ports.TranscriptClient = (*Client)(nil)

// NewClient creates a reusable job API client.
func NewClient(endpoint, apiKey string, pollInterval, maxWait time.Duration) *Client {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if maxWait <= 0 {
		maxWait = time.Minute
	}
	return &Client{
		endpoint:     strings.TrimSuffix(endpoint, "/"),
		apiKey:       apiKey,
		http:         &http.Client{Timeout: 15 * time.Second},
		pollInterval: pollInterval,
		maxWait:      maxWait,
	}
}

type jobResponse struct {
	JobID       string `json:"jobId"`
	ResultSetID string `json:"resultSetId"`
	Status      string `json:"status"`
}

type resultSetResponse struct {
	Items []struct {
		Transcript string `json:"transcript"`
	} `json:"items"`
}

// Transcript runs one extraction job to completion and returns the first
// result item's transcript text.
func (c *Client) Transcript(ctx context.Context, videoURL string) (string, error) {
	var job jobResponse
	if err := c.post(ctx, "/jobs", map[string]any{"url": videoURL}, &job); err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	if job.JobID == "" || job.ResultSetID == "" {
		return "", fmt.Errorf("submit job: response missing job or result-set id")
	}

	if err := c.awaitCompletion(ctx, job.JobID); err != nil {
		return "", err
	}

	var results resultSetResponse
	if err := c.get(ctx, "/result-sets/"+job.ResultSetID, &results); err != nil {
		return "", fmt.Errorf("fetch result set %s: %w", job.ResultSetID, err)
	}
	if len(results.Items) == 0 || results.Items[0].Transcript == "" {
		return "", fmt.Errorf("result set %s has no transcript", job.ResultSetID)
	}

	return results.Items[0].Transcript, nil
}

func (c *Client) awaitCompletion(ctx context.Context, jobID string) error {
	deadline := time.Now().Add(c.maxWait)

	for {
		var status jobResponse
		if err := c.get(ctx, "/jobs/"+jobID, &status); err != nil {
			return fmt.Errorf("poll job %s: %w", jobID, err)
		}

		switch status.Status {
		case "completed":
			return nil
		case "failed", "cancelled":
			return fmt.Errorf("job %s ended as %s", jobID, status.Status)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("job %s not finished after %s", jobID, c.maxWait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, v)
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	return c.do(req, v)
}

func (c *Client) do(req *http.Request, v any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	if v == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
