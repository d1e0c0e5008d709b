// Package insight is the typed client for the analytics/generation backend.
// Every response is parsed and defaulted exactly once here, at the API
// boundary, so the rest of the console never touches loosely-typed payloads.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ignite/campaign-intel/internal/config"
	"github.com/ignite/campaign-intel/internal/pkg/httpretry"
)

// Client talks to the insight backend. The base URL is injected at
// construction; nothing in this package reads the environment.
type Client struct {
	baseURL       string
	httpClient    httpretry.HTTPDoer
	submitTimeout time.Duration

	// submitting enforces the one-submission-per-client policy.
	submitting atomic.Bool
}

// NewClient creates a backend client from configuration.
func NewClient(cfg config.InsightConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, cfg.MaxRetries),
		submitTimeout: cfg.SubmitTimeout(),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// SetSubmitTimeout overrides the experiment submission deadline
// (useful for testing).
func (c *Client) SetSubmitTimeout(d time.Duration) {
	c.submitTimeout = d
}

// doRequest performs a request against the backend and returns the raw
// body. Transport failures come back as NetworkError, non-2xx responses
// as ServerError with the backend detail extracted.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	op := fmt.Sprintf("%s %s", method, endpoint)

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseServerError(op, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// ResolvePrompt turns a natural-language prompt into an executable query
// by delegating to the backend prompt-to-SQL service. The returned SQL is
// used verbatim; the original prompt is retained for display. Idempotent.
func (c *Client) ResolvePrompt(ctx context.Context, prompt string) (*ResolvedQuery, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return nil, &ValidationError{Field: "prompt", Reason: "must not be empty"}
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/v1/analytics/prompt-sql", map[string]string{
		"prompt": trimmed,
	})
	if err != nil {
		return nil, err
	}

	var resolved ResolvedQuery
	if err := json.Unmarshal(respBody, &resolved); err != nil {
		return nil, fmt.Errorf("failed to parse prompt-sql response: %w", err)
	}
	resolved.Prompt = trimmed
	if resolved.Columns == nil {
		resolved.Columns = []string{}
	}
	if resolved.Rows == nil {
		resolved.Rows = [][]any{}
	}
	return &resolved, nil
}

// SubmitExperiment submits a resolved query to the experiment-execution
// endpoint and returns a run handle. The call is wrapped with the
// configured submission deadline (60s by default); on expiry the in-flight
// request is aborted and the failure is classified as TimeoutError.
//
// A prompt-only query is not resolved implicitly; the caller invokes
// ResolvePrompt first. At least one of SQL or Prompt must be non-empty.
// Only one submission may be in flight per client; a concurrent second
// call is rejected with ErrSubmitInFlight.
func (c *Client) SubmitExperiment(ctx context.Context, query Query, opts SubmitOptions) (*ExperimentRun, error) {
	if strings.TrimSpace(query.SQL) == "" && strings.TrimSpace(query.Prompt) == "" {
		return nil, &ValidationError{Field: "query", Reason: "requires a SQL text or a prompt"}
	}

	if !c.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInFlight
	}
	defer c.submitting.Store(false)

	payload := map[string]string{}
	if s := strings.TrimSpace(query.SQL); s != "" {
		payload["sql_query"] = s
	}
	if p := strings.TrimSpace(query.Prompt); p != "" {
		payload["prompt_query"] = p
	}
	if opts.ImageDirectory != "" {
		payload["image_directory"] = opts.ImageDirectory
	}
	if opts.RunName != "" {
		payload["experiment_name"] = opts.RunName
	}

	run, err := httpretry.WithTimeout(ctx, c.submitTimeout, func(tctx context.Context) (*ExperimentRun, error) {
		respBody, err := c.doRequest(tctx, http.MethodPost, "/v1/experiments/run", payload)
		if err != nil {
			return nil, err
		}
		var run ExperimentRun
		if err := json.Unmarshal(respBody, &run); err != nil {
			return nil, fmt.Errorf("failed to parse experiment run: %w", err)
		}
		return &run, nil
	})
	if err != nil {
		if errors.Is(err, httpretry.ErrTimeout) {
			return nil, &TimeoutError{Op: "experiment submission", Timeout: c.submitTimeout, Err: err}
		}
		return nil, err
	}

	if run.CampaignIDs == nil {
		run.CampaignIDs = []string{}
	}
	if run.ProductsPromoted == nil {
		run.ProductsPromoted = []string{}
	}
	return run, nil
}

// FetchResults retrieves the full result bundle for a run. Absent
// collections are normalized to empty slices so consumers can iterate
// unconditionally. Callable any number of times to refresh a known run.
func (c *Client) FetchResults(ctx context.Context, runID string) (*ResultsBundle, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, &ValidationError{Field: "runId", Reason: "must not be empty"}
	}

	respBody, err := c.doRequest(ctx, http.MethodGet, "/v1/experiments/"+runID, nil)
	if err != nil {
		return nil, err
	}

	var bundle ResultsBundle
	if err := json.Unmarshal(respBody, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse results bundle: %w", err)
	}
	bundle.Normalize()
	return &bundle, nil
}

// ListExperiments retrieves the experiment history, most recent first as
// returned by the backend.
func (c *Client) ListExperiments(ctx context.Context) ([]ResultsBundle, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/v1/experiments/", nil)
	if err != nil {
		return nil, err
	}

	var bundles []ResultsBundle
	if err := json.Unmarshal(respBody, &bundles); err != nil {
		return nil, fmt.Errorf("failed to parse experiment history: %w", err)
	}
	for i := range bundles {
		bundles[i].Normalize()
	}
	if bundles == nil {
		bundles = []ResultsBundle{}
	}
	return bundles, nil
}

// ListProducts retrieves the promotable product catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/v1/products/", nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse products response: %w", err)
	}
	if response.Products == nil {
		response.Products = []Product{}
	}
	return response.Products, nil
}

// GenerateCampaign submits a generation request and returns the structured
// email artifact. Request validation is owned by the generate package; this
// is the raw wire call.
func (c *Client) GenerateCampaign(ctx context.Context, req EmailCampaignRequest) (*EmailCampaignResult, error) {
	respBody, err := c.doRequest(ctx, http.MethodPost, "/v1/campaigns/generate", req)
	if err != nil {
		return nil, err
	}

	var result EmailCampaignResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse generation result: %w", err)
	}
	result.Normalize()
	return &result, nil
}

// HealthCheck probes the backend liveness endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	return err
}
