package autopilot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/orbital-trader/internal/game"
)

// CommandError is a rejection reported by the server.
type CommandError struct {
	Status  int
	Code    string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Outcome is the server's answer to a command.
type Outcome struct {
	Result game.Result `json:"result"`
	State  *game.State `json:"state"`
}

// Actor sends commands to the API.
type Actor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Act posts the decision's command.
func (a *Actor) Act(ctx context.Context, d Decision) (*Outcome, error) {
	path, ok := actionPaths[d.Action]
	if !ok {
		return nil, fmt.Errorf("no endpoint for action %q", d.Action)
	}
	body, err := json.Marshal(d.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", d.Action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &e) == nil && e.Error.Code != "" {
			return nil, &CommandError{Status: resp.StatusCode, Code: e.Error.Code, Message: e.Error.Message}
		}
		return nil, fmt.Errorf("%s failed (%d): %s", d.Action, resp.StatusCode, string(respBody))
	}

	var out Outcome
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
