// Package watch polls a running hivesim API and summarizes settlement health.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/engine"
)

// Status mirrors GET /api/v1/status.
type Status struct {
	RunID           string                 `json:"run_id"`
	Cycle           uint64                 `json:"cycle"`
	Phase           string                 `json:"phase"`
	Speed           float64                `json:"speed"`
	Running         bool                   `json:"running"`
	Buildings       int                    `json:"buildings"`
	Counts          map[buildings.Kind]int `json:"counts"`
	Roads           int                    `json:"roads"`
	ConnectedRoads  int                    `json:"connected_roads"`
	Workers         int                    `json:"workers"`
	AssignedWorkers int                    `json:"assigned_workers"`
	ActiveProducers int                    `json:"active_producers"`
	Producers       int                    `json:"producers"`
}

// Sample is one poll of the API.
type Sample struct {
	Status    Status
	Resources []engine.ResourceRate
	TakenAt   time.Time
}

// Observer fetches settlement state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Observe fetches status and resources.
func (o *Observer) Observe(ctx context.Context) (*Sample, error) {
	s := &Sample{TakenAt: time.Now()}

	if err := o.fetchJSON(ctx, "/api/v1/status", &s.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/resources", &s.Resources); err != nil {
		return nil, fmt.Errorf("fetch resources: %w", err)
	}
	return s, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Backoff bounds the readiness wait.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Timeout time.Duration
}

// DefaultBackoff waits up to five minutes, doubling from 2s to 30s.
func DefaultBackoff() Backoff {
	return Backoff{Initial: 2 * time.Second, Max: 30 * time.Second, Timeout: 5 * time.Minute}
}

// WaitForAPI polls the status endpoint with exponential backoff until it
// responds 200, the timeout elapses, or ctx is done.
func (o *Observer) WaitForAPI(ctx context.Context, b Backoff) error {
	backoff := b.Initial
	deadline := time.Now().Add(b.Timeout)

	for {
		var st Status
		err := o.fetchJSON(ctx, "/api/v1/status", &st)
		if err == nil {
			slog.Info("hivesim API is ready", "cycle", st.Cycle)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("API not ready after %s: %w", b.Timeout, err)
		}
		slog.Info("hivesim not ready, retrying...", "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > b.Max {
			backoff = b.Max
		}
	}
}
