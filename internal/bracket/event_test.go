package bracket

import (
	"errors"
	"math/rand"
	"testing"
)

func testParticipant(name, code string) *Participant {
	return &Participant{
		Name: name + "'s pick",
		Team: Team{Name: name, Code: code, OddsAPIName: name + " University"},
	}
}

func testLeaf(t *testing.T) *Event {
	t.Helper()
	return newLeafEvent(1, testParticipant("Alpha", "ALPHA"), testParticipant("Bravo", "BRAVO"))
}

func TestStatusRanks(t *testing.T) {
	ordered := []Status{StatusTBD, StatusScheduled, StatusInProgress, StatusFinal}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("%s should outrank %s", ordered[i], ordered[i-1])
		}
	}
	if StatusInProgress.Rank() != StatusHalftime.Rank() {
		t.Error("IN_PROGRESS and HALFTIME must be peers")
	}
	if _, ok := ParseStatus("STATUS_POSTPONED"); ok {
		t.Error("unknown status name should not parse")
	}
}

func TestApplyStatusForwardOnly(t *testing.T) {
	ev := testLeaf(t)

	for _, s := range []Status{StatusScheduled, StatusInProgress, StatusHalftime, StatusInProgress} {
		if err := ev.ApplyStatus(s); err != nil {
			t.Fatalf("ApplyStatus(%s): %v", s, err)
		}
	}
	if err := ev.ApplyStatus(StatusScheduled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("backward transition: got %v, want ErrInvalidTransition", err)
	}
	if ev.Status != StatusInProgress {
		t.Fatalf("rejected transition mutated status to %s", ev.Status)
	}
}

// Random transition sequences never leave status at a lower rank than any
// previously accepted status.
func TestApplyStatusNeverRegresses(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	all := []Status{StatusTBD, StatusScheduled, StatusInProgress, StatusHalftime, StatusFinal}

	for trial := 0; trial < 200; trial++ {
		ev := testLeaf(t)
		highWater := ev.Status.Rank()
		for i := 0; i < 20; i++ {
			next := all[rng.Intn(len(all))]
			err := ev.ApplyStatus(next)
			if err == nil && next.Rank() < highWater {
				t.Fatalf("trial %d: accepted %s while at rank %d", trial, next, highWater)
			}
			if ev.Status.Rank() < highWater {
				t.Fatalf("trial %d: rank regressed to %d", trial, ev.Status.Rank())
			}
			highWater = ev.Status.Rank()
		}
	}
}

func TestApplyScoreUnknownTeam(t *testing.T) {
	ev := testLeaf(t)
	if err := ev.ApplyScore("ALPHA", 10); err != nil {
		t.Fatalf("ApplyScore: %v", err)
	}
	if err := ev.ApplyScore("ZULU", 10); !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("got %v, want ErrUnknownTeam", err)
	}
}

func TestSetParticipant(t *testing.T) {
	ev := &Event{ID: 3, Round: 2, Left: 1, Right: 2, Scores: map[string]int{}, Status: StatusTBD}
	alpha := testParticipant("Alpha", "ALPHA")

	if err := ev.SetParticipant(Home, alpha); err != nil {
		t.Fatalf("SetParticipant: %v", err)
	}
	// Re-propagation of the same winner is a no-op.
	if err := ev.SetParticipant(Home, testParticipant("Alpha", "ALPHA")); err != nil {
		t.Fatalf("idempotent re-set: %v", err)
	}
	if err := ev.SetParticipant(Home, testParticipant("Charlie", "CHARL")); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("overwrite: got %v, want ErrInvalidState", err)
	}
	// The same team can never hold both slots.
	if err := ev.SetParticipant(Away, testParticipant("Alpha", "ALPHA")); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("duplicate team: got %v, want ErrInvalidState", err)
	}
}

func TestWinnerFromScores(t *testing.T) {
	ev := testLeaf(t)
	ev.ApplyScore("ALPHA", 70)
	ev.ApplyScore("BRAVO", 65)
	if err := ev.ApplyStatus(StatusFinal); err != nil {
		t.Fatalf("ApplyStatus: %v", err)
	}
	if ev.Winner == nil || ev.Winner.Team.Code != "ALPHA" {
		t.Fatalf("winner = %+v, want ALPHA", ev.Winner)
	}
}

func TestWinnerStableAfterFurtherApplies(t *testing.T) {
	ev := testLeaf(t)
	ev.ApplyScore("ALPHA", 70)
	ev.ApplyScore("BRAVO", 65)
	ev.ApplyStatus(StatusFinal)

	// A later, contradictory report must not flip a decided winner.
	ev.ApplyScore("BRAVO", 99)
	ev.ApplyStatus(StatusFinal)
	if ev.Winner == nil || ev.Winner.Team.Code != "ALPHA" {
		t.Fatalf("winner changed to %+v", ev.Winner)
	}
}

func TestTieLeavesWinnerUnset(t *testing.T) {
	ev := testLeaf(t)
	ev.ApplyScore("ALPHA", 70)
	ev.ApplyScore("BRAVO", 70)
	if err := ev.ApplyStatus(StatusFinal); err != nil {
		t.Fatalf("tie at final should not error: %v", err)
	}
	if ev.Winner != nil {
		t.Fatalf("tie produced winner %+v", ev.Winner)
	}

	// A corrected report may still resolve it.
	ev.ApplyScore("BRAVO", 72)
	ev.ApplyStatus(StatusFinal)
	if ev.Winner == nil || ev.Winner.Team.Code != "BRAVO" {
		t.Fatalf("corrected report did not resolve winner: %+v", ev.Winner)
	}
}

func TestMatchupKeySorted(t *testing.T) {
	ev := newLeafEvent(1, testParticipant("Zulu", "ZULU"), testParticipant("Alpha", "ALPHA"))
	key, ok := ev.MatchupKey()
	if !ok || key != "ALPHA/ZULU" {
		t.Fatalf("key = %q, ok = %v", key, ok)
	}

	interior := &Event{ID: 3, Left: 1, Right: 2}
	if _, ok := interior.MatchupKey(); ok {
		t.Fatal("undetermined matchup should have no key")
	}
}
