// Package oddsapi is the odds collaborator: point spreads from
// the-odds-api.com. The engine calls it at most twice per event over the
// event's lifetime, so every request here is budget that doesn't come back.
package oddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	BaseURL = "https://api.the-odds-api.com"

	// NCAABSportKey is the provider's key for the tournament's sport.
	NCAABSportKey = "basketball_ncaab"
)

// ErrSpreadUnavailable means the provider answered but listed no spread for
// the requested matchup.
var ErrSpreadUnavailable = errors.New("no spread listed for matchup")

// Client fetches spreads from the historical odds endpoint, which still
// serves future events by returning the latest snapshot at the requested
// timestamp.
type Client struct {
	apiKey   string
	baseURL  string
	sportKey string
	http     *http.Client
}

// New creates a client. Empty baseURL or sportKey fall back to defaults.
func New(apiKey, baseURL, sportKey string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if sportKey == "" {
		sportKey = NCAABSportKey
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		sportKey: sportKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type oddsResponse struct {
	Data []gameOdds `json:"data"`
}

type gameOdds struct {
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	Bookmakers []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key     string   `json:"key"`
	Markets []market `json:"markets"`
}

type market struct {
	Key      string    `json:"key"`
	Outcomes []outcome `json:"outcomes"`
}

type outcome struct {
	Name  string  `json:"name"`
	Point float64 `json:"point"`
}

// Spread returns the consensus point spread for a matchup as a map of
// provider team name to signed points, negative marking the favorite. The
// snapshot is taken five minutes before the game's start so lines are as
// close to closing as the provider has. Team names are matched in either
// orientation because seeding order and the provider's home/away designation
// don't always agree.
func (c *Client) Spread(ctx context.Context, homeName, awayName string, start time.Time) (map[string]float64, error) {
	snapshotAt := start.Add(-5 * time.Minute).UTC().Format(time.RFC3339)

	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", "us")
	q.Set("markets", "spreads")
	q.Set("dateFormat", "iso")
	q.Set("oddsFormat", "american")
	q.Set("date", snapshotAt)
	endpoint := fmt.Sprintf("%s/v4/historical/sports/%s/odds?%s", c.baseURL, c.sportKey, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odds request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("odds api returned %d: %s", resp.StatusCode, string(body))
	}

	var payload oddsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding odds response: %w", err)
	}

	for _, game := range payload.Data {
		if !teamsMatch(game, homeName, awayName) {
			continue
		}
		spread := consensusSpread(game)
		if spread == nil {
			break
		}
		return spread, nil
	}
	return nil, fmt.Errorf("%s vs %s at %s: %w", homeName, awayName, snapshotAt, ErrSpreadUnavailable)
}

func teamsMatch(game gameOdds, homeName, awayName string) bool {
	if game.HomeTeam == homeName && game.AwayTeam == awayName {
		return true
	}
	return game.HomeTeam == awayName && game.AwayTeam == homeName
}

// consensusSpread takes the mode of the first-outcome points across all
// bookmakers carrying a spreads market, then mirrors it onto both teams.
func consensusSpread(game gameOdds) map[string]float64 {
	var spreads []market
	for _, b := range game.Bookmakers {
		for _, m := range b.Markets {
			if m.Key == "spreads" && len(m.Outcomes) == 2 {
				spreads = append(spreads, m)
				break
			}
		}
	}
	if len(spreads) == 0 {
		return nil
	}

	counts := make(map[float64]int)
	for _, m := range spreads {
		counts[m.Outcomes[0].Point]++
	}
	var point float64
	best := 0
	for _, m := range spreads {
		p := m.Outcomes[0].Point
		if counts[p] > best {
			best = counts[p]
			point = p
		}
	}

	return map[string]float64{
		spreads[0].Outcomes[0].Name: point,
		spreads[0].Outcomes[1].Name: -point,
	}
}
