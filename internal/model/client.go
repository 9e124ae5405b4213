// Package model talks to the external regressor service trained on the
// labeling sheet.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tekoetch/investorscout/internal/features"
)

// ProgressCallback is called with progress updates during batch prediction
type ProgressCallback func(current, total int)

// concurrentPredictions is the number of parallel prediction calls
const concurrentPredictions = 5

// Client is an HTTP client for the prediction service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// PredictRequest is the request body for one prediction
type PredictRequest struct {
	Name     string         `json:"name"`
	Features map[string]int `json:"features"`
}

// Prediction holds the predicted label scores for one candidate
type Prediction struct {
	Name     string  `json:"name"`
	Identity float64 `json:"identity"`
	Behavior float64 `json:"behavior"`
	Geo      float64 `json:"geo"`
	Contact  float64 `json:"contact"`
}

// Mean returns the average of the four predicted labels
func (p *Prediction) Mean() float64 {
	return (p.Identity + p.Behavior + p.Geo + p.Contact) / 4
}

// HealthResponse is the response from health check
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Features    int    `json:"features"`
}

// New creates a new prediction client
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the service address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks if the prediction service is running
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to prediction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("health check failed: %s", string(body))
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &health, nil
}

// IsRunning checks if the service is reachable and has a model loaded
func (c *Client) IsRunning(ctx context.Context) bool {
	health, err := c.Health(ctx)
	return err == nil && health.Status == "ok" && health.ModelLoaded
}

// EnsureRunning checks if the service is running and returns a helpful error if not
func (c *Client) EnsureRunning(ctx context.Context) error {
	if c.IsRunning(ctx) {
		return nil
	}

	return fmt.Errorf(
		"prediction service not running at %s\n\n"+
			"Export a labeling sheet with `scout features`, label it, train the\n"+
			"regressor on it and serve it on the address set in [model] url",
		c.baseURL,
	)
}

// Predict scores one feature vector
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*Prediction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("prediction failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result Prediction
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Name == "" {
		result.Name = req.Name
	}

	return &result, nil
}

// BatchResult holds the result for a single row in a batch
type BatchResult struct {
	Index      int
	Prediction *Prediction
	Error      error
}

// PredictRows predicts every labeling-sheet row in parallel
func (c *Client) PredictRows(ctx context.Context, rows []features.Row, progress ProgressCallback) []BatchResult {
	requests := make([]PredictRequest, len(rows))
	for i, r := range rows {
		requests[i] = PredictRequest{Name: r.Name, Features: r.Features}
	}
	return c.PredictBatch(ctx, requests, progress)
}

// PredictBatch predicts multiple requests in parallel with progress reporting
func (c *Client) PredictBatch(ctx context.Context, requests []PredictRequest, progress ProgressCallback) []BatchResult {
	results := make([]BatchResult, len(requests))
	resultChan := make(chan BatchResult, len(requests))
	var predictedCount int64

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrentPredictions)

	total := len(requests)
	if progress != nil {
		progress(0, total)
	}

	for i, req := range requests {
		wg.Add(1)
		go func(index int, r PredictRequest) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				resultChan <- BatchResult{Index: index, Error: ctx.Err()}
				return
			}

			pred, err := c.Predict(ctx, r)

			if progress != nil {
				current := int(atomic.AddInt64(&predictedCount, 1))
				progress(current, total)
			}

			resultChan <- BatchResult{Index: index, Prediction: pred, Error: err}
		}(i, req)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for r := range resultChan {
		results[r.Index] = r
	}

	return results
}
