package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/john-heyer/madness/internal/ingest"
)

const (
	BaseURL = "https://site.api.espn.com/apis/site/v2/sports"

	// MensCollegeBasketball is the scoreboard path for the tournament.
	MensCollegeBasketball = "basketball/mens-college-basketball"
)

// Client is the scores collaborator. It resolves matchups to ESPN event ids
// via the scoreboard and reports per-game score/status via the summary
// endpoint.
// Note: requests shell out to curl because ESPN blocks Go's HTTP client
// fingerprint.
type Client struct {
	baseURL   string
	sportPath string
}

// New creates a client. Empty arguments fall back to the ESPN defaults.
func New(baseURL, sportPath string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if sportPath == "" {
		sportPath = MensCollegeBasketball
	}
	return &Client{baseURL: baseURL, sportPath: sportPath}
}

// Scoreboard fetches all games around the current date and returns their
// reports keyed by sorted matchup key. The range spans yesterday through two
// days out so timezone skew never hides a game (the end date is exclusive).
func (c *Client) Scoreboard(ctx context.Context) (map[string]ingest.ScoreReport, error) {
	url := fmt.Sprintf("%s/%s/scoreboard?dates=%s", c.baseURL, c.sportPath, currentDateRange(time.Now()))
	raw, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseScoreboard(raw)
}

// GameReport fetches one game's current score and status by provider id.
func (c *Client) GameReport(ctx context.Context, providerID string) (ingest.ScoreReport, error) {
	url := fmt.Sprintf("%s/%s/summary?event=%s", c.baseURL, c.sportPath, providerID)
	raw, err := c.fetch(ctx, url)
	if err != nil {
		return ingest.ScoreReport{}, err
	}
	return ParseSummary(raw, providerID)
}

func currentDateRange(now time.Time) string {
	start := now.AddDate(0, 0, -1)
	end := now.AddDate(0, 0, 2)
	return start.Format("20060102") + "-" + end.Format("20060102")
}

// fetch makes an HTTP GET request using curl; ESPN blocks Go's HTTP client
// but curl works reliably.
func (c *Client) fetch(ctx context.Context, url string) (map[string]interface{}, error) {
	cmd := exec.CommandContext(ctx, "curl", "-s", "-L", "-m", "15", url)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("curl failed: %s (stderr: %s)", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("curl execution failed: %w", err)
	}

	// An HTML body means an error page (403, 404, ...), not data.
	if len(output) > 0 && output[0] == '<' {
		return nil, fmt.Errorf("ESPN returned HTML error page: %s", string(output[:min(len(output), 200)]))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return result, nil
}
