package playtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// submitOutcome classifies one session submission.
type submitOutcome int

const (
	submitAccepted submitOutcome = iota
	submitDuplicate
	submitFailed
)

// apiClient is a small typed client over the service HTTP API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string, timeout time.Duration) *apiClient {
	return &apiClient{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

// health probes GET /healthz and fails on anything but 200.
func (c *apiClient) health(ctx context.Context) error {
	status, body, err := c.get(ctx, "/healthz")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("health returned %d: %s", status, body)
	}
	return nil
}

// submitSession posts one session and classifies the result by status
// code. The service answers 202 for a new sample and 200 when it has
// already seen the sample ID; anything else counts as a failure.
func (c *apiClient) submitSession(ctx context.Context, s Session) submitOutcome {
	payload, err := json.Marshal(s)
	if err != nil {
		return submitFailed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/sessions", bytes.NewReader(payload))
	if err != nil {
		return submitFailed
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return submitFailed
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return submitAccepted
	case http.StatusOK:
		return submitDuplicate
	default:
		return submitFailed
	}
}

// playerTuning fetches the tuning update the service currently serves
// for one player.
func (c *apiClient) playerTuning(ctx context.Context, playerID string) (*TuningUpdate, error) {
	var update TuningUpdate
	if err := c.getJSON(ctx, "/players/"+playerID+"/tuning", &update); err != nil {
		return nil, err
	}
	return &update, nil
}

// rankings fetches the top of the ranking board.
func (c *apiClient) rankings(ctx context.Context, limit int) ([]Entry, error) {
	var board []Entry
	if err := c.getJSON(ctx, fmt.Sprintf("/rankings?limit=%d", limit), &board); err != nil {
		return nil, err
	}
	return board, nil
}

func (c *apiClient) get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read %s response: %w", path, err)
	}
	return resp.StatusCode, body, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, v any) error {
	status, body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s returned %d: %s", path, status, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
