package scheduler

import (
	"sync"
	"time"
)

// Metadata is the process-wide refresh bookkeeping the UI layer reads:
// provider call counters, health flag, and completion counts.
type Metadata struct {
	mu              sync.Mutex
	updating        bool
	lastSuccess     time.Time
	lastAttempt     time.Time
	totalGames      int
	gamesIncomplete int
	scoresCalls     int64
	oddsCalls       int64
}

// MetadataSnapshot is the JSON form served to consumers.
type MetadataSnapshot struct {
	IsSuccessfullyUpdating bool   `json:"is_successfully_updating"`
	LastSuccessfulUpdate   string `json:"last_successful_update"`
	LastAttemptedUpdate    string `json:"last_attempted_update"`
	TotalGamesInBracket    int    `json:"total_games_in_bracket"`
	TotalGamesIncomplete   int    `json:"total_games_incomplete"`
	CallsToScoresProvider  int64  `json:"calls_to_scores_provider"`
	CallsToOddsProvider    int64  `json:"calls_to_odds_provider"`
}

// NewMetadata creates the record for a bracket of totalGames events. The
// health flag starts true; nothing has failed yet.
func NewMetadata(totalGames int) *Metadata {
	return &Metadata{
		updating:        true,
		totalGames:      totalGames,
		gamesIncomplete: totalGames,
	}
}

// RecordCycle folds one refresh cycle's accounting in: calls actually
// issued, whether the scores pass reached the provider, and the current
// non-final event count.
func (m *Metadata) RecordCycle(scoresCalls, oddsCalls int, success bool, incomplete int, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoresCalls += int64(scoresCalls)
	m.oddsCalls += int64(oddsCalls)
	m.updating = success
	m.lastAttempt = now
	if success {
		m.lastSuccess = now
	}
	m.gamesIncomplete = incomplete
}

// Healthy reports the current health flag.
func (m *Metadata) Healthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updating
}

// Snapshot copies the record for rendering.
func (m *Metadata) Snapshot() MetadataSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetadataSnapshot{
		IsSuccessfullyUpdating: m.updating,
		LastSuccessfulUpdate:   formatTime(m.lastSuccess),
		LastAttemptedUpdate:    formatTime(m.lastAttempt),
		TotalGamesInBracket:    m.totalGames,
		TotalGamesIncomplete:   m.gamesIncomplete,
		CallsToScoresProvider:  m.scoresCalls,
		CallsToOddsProvider:    m.oddsCalls,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
