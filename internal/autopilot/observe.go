// Package autopilot is a trading bot that plays a game server over its HTTP
// API. Each cycle observes the game, triages the ship, decides on one
// command and sends it.
package autopilot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/orbital-trader/internal/game"
)

// Snapshot holds everything collected during one observation.
type Snapshot struct {
	State  game.State
	Market []game.Quote
	Routes []game.Route
}

// Observer fetches game views from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Observe fetches state, market and routes.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := o.fetchJSON(ctx, "/api/v1/state", &snap.State); err != nil {
		return nil, fmt.Errorf("fetch state: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/market", &snap.Market); err != nil {
		return nil, fmt.Errorf("fetch market: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/routes", &snap.Routes); err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}
	return snap, nil
}

// Ready reports whether the server answers.
func (o *Observer) Ready(ctx context.Context) bool {
	var d map[string]any
	return o.fetchJSON(ctx, "/api/v1/date", &d) == nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return err
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
