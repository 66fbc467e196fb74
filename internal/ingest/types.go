// Package ingest holds the shared shapes provider clients produce. The
// sources themselves live in subpackages (espn is authoritative for scores
// and status; google is a scrape-based fallback for score freshness only).
package ingest

import (
	"time"

	"github.com/john-heyer/madness/internal/bracket"
)

// ScoreReport is one provider observation of one game.
type ScoreReport struct {
	ProviderID string
	// Status is the mapped status; empty when the provider sent a name we
	// don't track (RawStatus keeps it for logging).
	Status    bracket.Status
	RawStatus string
	Scores    map[string]int
	StartTime time.Time
}

// LiveScore is a fallback-source observation, matched by display name since
// scrapes carry no team codes or provider ids.
type LiveScore struct {
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Live      bool
}
