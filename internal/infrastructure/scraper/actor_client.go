package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recipe-sync/internal/config"
	"recipe-sync/internal/domain/platform"
)

// ErrUnavailable is wrapped by every failure of the actor service:
// missing credentials, transport errors, non-2xx replies and bodies
// that cannot be decoded.
var ErrUnavailable = errors.New("extraction actor unavailable")

type RunStatusTag string

const (
	RunReady     RunStatusTag = "READY"
	RunRunning   RunStatusTag = "RUNNING"
	RunSucceeded RunStatusTag = "SUCCEEDED"
	RunFailed    RunStatusTag = "FAILED"
	RunTimingOut RunStatusTag = "TIMING-OUT"
	RunTimedOut  RunStatusTag = "TIMED-OUT"
	RunAborting  RunStatusTag = "ABORTING"
	RunAborted   RunStatusTag = "ABORTED"
)

// Failed reports whether the run ended without producing a dataset.
func (s RunStatusTag) Failed() bool {
	return s == RunFailed || s == RunAborted || s == RunTimedOut
}

func (s RunStatusTag) Terminal() bool {
	return s == RunSucceeded || s.Failed()
}

type RunStatus struct {
	Status    RunStatusTag
	DatasetID string
}

type ActorClient interface {
	Launch(ctx context.Context, targetURL string, p platform.Platform) (runID string, err error)
	RunStatus(ctx context.Context, runID string) (RunStatus, error)
	DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error)
}

const maxErrorBody = 512

type apifyClient struct {
	baseURL string
	token   string
	actorID string
	client  *http.Client
	logger  *log.Logger
}

func NewActorClient(cfg config.ApifyConfig, httpClient *http.Client, logger *log.Logger) ActorClient {
	if logger == nil {
		logger = log.Default()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://api.apify.com/v2"
	}
	return &apifyClient{
		baseURL: base,
		token:   strings.TrimSpace(cfg.Token),
		actorID: strings.TrimSpace(cfg.ActorID),
		client:  httpClient,
		logger:  logger,
	}
}

var _ ActorClient = (*apifyClient)(nil)

type launchRequest struct {
	Input launchInput `json:"input"`
}

type launchInput struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}

type runEnvelope struct {
	ID   string `json:"id"`
	Data *struct {
		ID               string `json:"id"`
		DefaultRunID     string `json:"defaultRunId"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

func (c *apifyClient) enabled() bool {
	return c != nil && c.token != "" && c.actorID != ""
}

func (c *apifyClient) Launch(ctx context.Context, targetURL string, p platform.Platform) (string, error) {
	if !c.enabled() {
		return "", fmt.Errorf("%w: actor credentials not configured", ErrUnavailable)
	}

	body, err := json.Marshal(launchRequest{Input: launchInput{URL: targetURL, Platform: p.String()}})
	if err != nil {
		return "", fmt.Errorf("%w: encode launch input: %v", ErrUnavailable, err)
	}

	var env runEnvelope
	endpoint := c.endpoint("acts", c.actorID, "runs")
	if err := c.do(ctx, http.MethodPost, endpoint, body, &env); err != nil {
		return "", err
	}

	runID := ""
	if env.Data != nil {
		runID = firstNonEmpty(env.Data.ID, env.Data.DefaultRunID)
	}
	runID = firstNonEmpty(runID, env.ID)
	if runID == "" {
		return "", fmt.Errorf("%w: launch response carried no run id", ErrUnavailable)
	}
	return runID, nil
}

func (c *apifyClient) RunStatus(ctx context.Context, runID string) (RunStatus, error) {
	if !c.enabled() {
		return RunStatus{}, fmt.Errorf("%w: actor credentials not configured", ErrUnavailable)
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return RunStatus{}, fmt.Errorf("%w: empty run id", ErrUnavailable)
	}

	var env runEnvelope
	if err := c.do(ctx, http.MethodGet, c.endpoint("actor-runs", runID), nil, &env); err != nil {
		return RunStatus{}, err
	}

	out := RunStatus{Status: RunStatusTag(env.Status), DatasetID: env.DefaultDatasetID}
	if env.Data != nil {
		out.Status = RunStatusTag(firstNonEmpty(env.Data.Status, string(out.Status)))
		out.DatasetID = firstNonEmpty(env.Data.DefaultDatasetID, out.DatasetID)
	}
	if out.Status == "" {
		return RunStatus{}, fmt.Errorf("%w: status response carried no status", ErrUnavailable)
	}
	return out, nil
}

// DatasetItems returns the records of a dataset. A payload that is not a
// JSON array yields no items; array elements that are not objects are
// dropped.
func (c *apifyClient) DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error) {
	if !c.enabled() {
		return nil, fmt.Errorf("%w: actor credentials not configured", ErrUnavailable)
	}
	datasetID = strings.TrimSpace(datasetID)
	if datasetID == "" {
		return nil, fmt.Errorf("%w: empty dataset id", ErrUnavailable)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.endpoint("datasets", datasetID, "items"), nil, &raw); err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []map[string]any{}, nil
	}

	items := make([]map[string]any, 0, len(elems))
	for _, e := range elems {
		var item map[string]any
		if err := json.Unmarshal(e, &item); err != nil || item == nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *apifyClient) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	q := url.Values{}
	q.Set("token", c.token)
	return c.baseURL + "/" + strings.Join(escaped, "/") + "?" + q.Encode()
}

func (c *apifyClient) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Printf("actor_client method=%s path=%s status=error err=%v", method, redact(endpoint), err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, redact(endpoint), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		bodyStr := strings.TrimSpace(string(rb))
		c.logger.Printf("actor_client method=%s path=%s status=%d duration=%s body=%q", method, redact(endpoint), resp.StatusCode, time.Since(start).Round(time.Millisecond), bodyStr)
		return fmt.Errorf("%w: %s %s: status=%d body=%s", ErrUnavailable, method, redact(endpoint), resp.StatusCode, bodyStr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrUnavailable, redact(endpoint), err)
	}
	return nil
}

// redact drops the query string so the token never reaches logs or errors.
func redact(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
