package bracket

import (
	"fmt"
	"sync"
	"time"
)

// Tree owns every Event of one tournament, wired into a complete binary tree
// over an arena slice in construction order (leaves first, championship
// last). Tree structure never changes after Build; live fields mutate only
// through the locked methods below, each of which is one atomic unit, so
// renderers reading a snapshot mid-cycle see consistent per-event state.
type Tree struct {
	mu           sync.RWMutex
	events       []*Event
	index        map[int]*Event
	root         *Event
	nRounds      int
	participants []*Participant
}

// NRounds is fixed at construction: log2 of the leaf participant count.
func (t *Tree) NRounds() int { return t.nRounds }

// Len returns the total event count, 2^nRounds - 1.
func (t *Tree) Len() int { return len(t.events) }

// RootID returns the championship event's id.
func (t *Tree) RootID() int { return t.root.ID }

// Participants returns the entrants in seeded order.
func (t *Tree) Participants() []*Participant { return t.participants }

// Events returns the events in construction order. The slice is a fresh
// copy; the *Event values are the live nodes, so callers that aren't the
// sync engine should treat them as read-only.
func (t *Tree) Events() []*Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Event, len(t.events))
	copy(out, t.events)
	return out
}

// EventByID looks an event up by id.
func (t *Tree) EventByID(id int) (*Event, error) {
	ev, ok := t.index[id]
	if !ok {
		return nil, fmt.Errorf("event %d: %w", id, ErrNoSuchEvent)
	}
	return ev, nil
}

// RoundDescription maps a round number to its human label, by how many teams
// are still alive entering that round.
func (t *Tree) RoundDescription(round int) string {
	teamsLeft := (len(t.participants) * 2) / (1 << round)
	switch teamsLeft {
	case 2:
		return "Championship"
	case 4:
		return "Semi-Finals"
	case 8:
		return "Quarter-Finals"
	default:
		return fmt.Sprintf("Round of %d", teamsLeft)
	}
}

// StatusChange describes the outcome of one AdvanceStatus call.
type StatusChange struct {
	From        Status
	To          Status
	Changed     bool
	BecameFinal bool
}

// AssignProvider records the provider correlation id and estimated start
// time discovered for an event. Assigning the same id again is a no-op.
func (t *Tree) AssignProvider(id int, providerID string, start time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev, err := t.EventByID(id)
	if err != nil {
		return err
	}
	ev.ProviderID = providerID
	if !start.IsZero() {
		ev.StartTime = start
	}
	return nil
}

// ApplyScores merges a provider score report into one event as a single
// atomic unit: every code is validated before anything lands, so an unknown
// team rejects the whole report. Reports whether any score actually moved,
// so callers can tell a fresh observation from a repeat of the last one.
func (t *Tree) ApplyScores(id int, scores map[string]int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev, err := t.EventByID(id)
	if err != nil {
		return false, err
	}
	for code := range scores {
		if !ev.knowsTeam(code) {
			return false, fmt.Errorf("event %d has no team %q: %w", id, code, ErrUnknownTeam)
		}
	}
	changed := false
	for code, score := range scores {
		if cur, ok := ev.Scores[code]; !ok || cur != score {
			ev.Scores[code] = score
			changed = true
		}
	}
	return changed, nil
}

// AdvanceStatus applies a status transition and reports what changed, so the
// engine can fire odds triggers and winner propagation off the edges.
func (t *Tree) AdvanceStatus(id int, next Status) (StatusChange, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev, err := t.EventByID(id)
	if err != nil {
		return StatusChange{}, err
	}
	change := StatusChange{From: ev.Status, To: next}
	if err := ev.ApplyStatus(next); err != nil {
		return StatusChange{}, err
	}
	change.Changed = change.From != ev.Status
	change.BecameFinal = change.Changed && ev.Status.Terminal()
	return change, nil
}

// ApplySpread merges a fetched point-spread map into one event.
func (t *Tree) ApplySpread(id int, spread map[string]float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	ev, err := t.EventByID(id)
	if err != nil {
		return err
	}
	for team, v := range spread {
		ev.ApplySpread(team, v)
	}
	return nil
}

// FillParentSlot propagates a finished child's winner into its parent's
// corresponding slot: left child fills home, right child fills away. Safe to
// re-run on later cycles for an already-propagated event. Returns the parent
// id, or 0 for the championship.
func (t *Tree) FillParentSlot(childID int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	child, err := t.EventByID(childID)
	if err != nil {
		return 0, err
	}
	if child.Parent == 0 {
		return 0, nil
	}
	if !child.Status.Terminal() || child.Winner == nil {
		return 0, fmt.Errorf("event %d has no winner to propagate: %w", childID, ErrInvalidState)
	}
	parent, err := t.EventByID(child.Parent)
	if err != nil {
		return 0, err
	}
	side := Home
	if parent.Right == childID {
		side = Away
	}
	if err := parent.SetParticipant(side, child.Winner); err != nil {
		return 0, err
	}
	return parent.ID, nil
}
