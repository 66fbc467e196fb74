package bracket

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Event is one matchup node in the bracket tree. Leaves are built with both
// participants; interior events get theirs filled as child events finish.
// Child and parent links are event ids into the owning Tree's arena (0 means
// none), so the tree stays a flat slice with O(1) lookup.
//
// Event methods are not safe for concurrent use on their own; the Tree
// serializes mutations and snapshots.
type Event struct {
	ID     int `json:"event_id"`
	Round  int `json:"round"`
	Left   int `json:"left,omitempty"`
	Right  int `json:"right,omitempty"`
	Parent int `json:"-"`

	Home *Participant `json:"home_participant"`
	Away *Participant `json:"away_participant"`

	Status Status             `json:"status"`
	Scores map[string]int     `json:"team_to_score"`
	Spread map[string]float64 `json:"spread,omitempty"`

	Winner *Participant `json:"winning_participant,omitempty"`

	// ProviderID correlates this event with the scores provider's record of
	// the same game. Empty until discovery; opaque after that.
	ProviderID string    `json:"provider_id,omitempty"`
	StartTime  time.Time `json:"estimated_start_time,omitempty"`
}

func newLeafEvent(id int, home, away *Participant) *Event {
	return &Event{
		ID:     id,
		Round:  1,
		Home:   home,
		Away:   away,
		Status: StatusTBD,
		Scores: make(map[string]int),
	}
}

func newParentEvent(id int, left, right *Event) *Event {
	return &Event{
		ID:     id,
		Round:  left.Round + 1,
		Left:   left.ID,
		Right:  right.ID,
		Status: StatusTBD,
		Scores: make(map[string]int),
	}
}

// IsLeaf reports whether the event has no child events.
func (e *Event) IsLeaf() bool {
	return e.Left == 0 && e.Right == 0
}

// MatchupDetermined reports whether both participant slots are filled.
func (e *Event) MatchupDetermined() bool {
	return e.Home != nil && e.Away != nil
}

// MatchupKey returns the sorted pair of team codes, the stable key used to
// correlate this event with provider data and the spread cache. Only valid
// once the matchup is determined.
func (e *Event) MatchupKey() (string, bool) {
	if !e.MatchupDetermined() {
		return "", false
	}
	codes := []string{e.Home.Team.Code, e.Away.Team.Code}
	sort.Strings(codes)
	return strings.Join(codes, "/"), true
}

// SetParticipant fills a participant slot. Re-setting a slot with the same
// team is a no-op, so winner propagation can safely re-run on later cycles;
// any other overwrite, or a duplicate of the opposite slot's team, is an
// ErrInvalidState.
func (e *Event) SetParticipant(side Side, p *Participant) error {
	slot := &e.Home
	other := e.Away
	if side == Away {
		slot = &e.Away
		other = e.Home
	}
	if *slot != nil {
		if (*slot).Team.Code == p.Team.Code {
			return nil
		}
		return fmt.Errorf("%s slot of event %d holds %s, refusing %s: %w",
			side, e.ID, (*slot).Team.Code, p.Team.Code, ErrInvalidState)
	}
	if other != nil && other.Team.Code == p.Team.Code {
		return fmt.Errorf("event %d already has %s on the other side: %w",
			e.ID, p.Team.Code, ErrInvalidState)
	}
	*slot = p
	return nil
}

// ApplyScore records the current score for one team. Codes that belong to
// neither participant are rejected with ErrUnknownTeam.
func (e *Event) ApplyScore(teamCode string, score int) error {
	if !e.knowsTeam(teamCode) {
		return fmt.Errorf("event %d has no team %q: %w", e.ID, teamCode, ErrUnknownTeam)
	}
	e.Scores[teamCode] = score
	return nil
}

func (e *Event) knowsTeam(code string) bool {
	if e.Home != nil && e.Home.Team.Code == code {
		return true
	}
	if e.Away != nil && e.Away.Team.Code == code {
		return true
	}
	return false
}

// ApplyStatus advances the event's status. Backward moves are rejected with
// ErrInvalidTransition; IN_PROGRESS and HALFTIME may alternate. Reaching a
// terminal status computes the winner from the current scores. A tie at
// terminal is provider-data inconsistency: the winner stays unset and the
// caller decides how loudly to complain.
func (e *Event) ApplyStatus(next Status) error {
	if next.Rank() < 0 {
		return fmt.Errorf("status %q: %w", next, ErrUnknownStatus)
	}
	if e.Status.Terminal() && next != e.Status {
		return fmt.Errorf("event %d is final: %w", e.ID, ErrInvalidTransition)
	}
	if next.Rank() < e.Status.Rank() {
		return fmt.Errorf("event %d cannot move %s -> %s: %w", e.ID, e.Status, next, ErrInvalidTransition)
	}
	e.Status = next
	if next.Terminal() {
		e.decideWinner()
	}
	return nil
}

// decideWinner sets Winner to the higher-scoring participant. Once set it is
// never cleared or changed. Missing scores or a tie leave it unset; a later
// corrected report may still resolve it.
func (e *Event) decideWinner() {
	if e.Winner != nil || !e.MatchupDetermined() {
		return
	}
	homeScore, homeOK := e.Scores[e.Home.Team.Code]
	awayScore, awayOK := e.Scores[e.Away.Team.Code]
	if !homeOK || !awayOK {
		return
	}
	switch {
	case homeScore > awayScore:
		e.Winner = e.Home
	case awayScore > homeScore:
		e.Winner = e.Away
	}
}

// ApplySpread sets the signed point spread for one team, by the provider's
// convention: negative marks the favorite. Overwrites are allowed; the line
// is fetched at most twice over the event's life.
func (e *Event) ApplySpread(teamName string, value float64) {
	if e.Spread == nil {
		e.Spread = make(map[string]float64)
	}
	e.Spread[teamName] = value
}
