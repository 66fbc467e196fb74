package bracket

import "time"

// EventView is a deep-copied, render-safe view of one event.
type EventView struct {
	ID         int                `json:"event_id"`
	Round      int                `json:"round"`
	Left       int                `json:"left,omitempty"`
	Right      int                `json:"right,omitempty"`
	Home       *Participant       `json:"home_participant"`
	Away       *Participant       `json:"away_participant"`
	Status     Status             `json:"status"`
	Scores     map[string]int     `json:"team_to_score"`
	Spread     map[string]float64 `json:"spread,omitempty"`
	Winner     *Participant       `json:"winning_participant,omitempty"`
	ProviderID string             `json:"provider_id,omitempty"`
	StartTime  *time.Time         `json:"estimated_start_time,omitempty"`
}

// Snapshot is a point-in-time copy of the whole bracket, in construction
// order so JSON and HTML output are deterministic.
type Snapshot struct {
	NRounds int         `json:"n_rounds"`
	Rounds  []string    `json:"round_descriptions"`
	Events  []EventView `json:"events"`
}

// Snapshot copies the tree under the read lock. Participants are immutable
// once assigned, so sharing their pointers is fine; score and spread maps
// are copied.
func (t *Tree) Snapshot() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := &Snapshot{
		NRounds: t.nRounds,
		Rounds:  make([]string, t.nRounds),
		Events:  make([]EventView, 0, len(t.events)),
	}
	for r := 1; r <= t.nRounds; r++ {
		snap.Rounds[r-1] = t.RoundDescription(r)
	}
	for _, ev := range t.events {
		view := EventView{
			ID:         ev.ID,
			Round:      ev.Round,
			Left:       ev.Left,
			Right:      ev.Right,
			Home:       ev.Home,
			Away:       ev.Away,
			Status:     ev.Status,
			Scores:     make(map[string]int, len(ev.Scores)),
			Winner:     ev.Winner,
			ProviderID: ev.ProviderID,
		}
		for k, v := range ev.Scores {
			view.Scores[k] = v
		}
		if len(ev.Spread) > 0 {
			view.Spread = make(map[string]float64, len(ev.Spread))
			for k, v := range ev.Spread {
				view.Spread[k] = v
			}
		}
		if !ev.StartTime.IsZero() {
			start := ev.StartTime
			view.StartTime = &start
		}
		snap.Events = append(snap.Events, view)
	}
	return snap
}
