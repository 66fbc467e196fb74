package bracket

import (
	"errors"
	"testing"
)

func finalize(t *testing.T, tree *Tree, id int, scores map[string]int) {
	t.Helper()
	if _, err := tree.ApplyScores(id, scores); err != nil {
		t.Fatalf("ApplyScores(%d): %v", id, err)
	}
	change, err := tree.AdvanceStatus(id, StatusFinal)
	if err != nil {
		t.Fatalf("AdvanceStatus(%d): %v", id, err)
	}
	if !change.BecameFinal {
		t.Fatalf("event %d did not become final", id)
	}
	if _, err := tree.FillParentSlot(id); err != nil {
		t.Fatalf("FillParentSlot(%d): %v", id, err)
	}
}

// End-to-end: 4 teams, 3 events; leaf winners fill the
// championship slots, which then accepts scores only for the two advancing
// teams.
func TestWinnerPropagation(t *testing.T) {
	tree, err := Build(seededParticipants(4))
	if err != nil {
		t.Fatal(err)
	}

	finalize(t, tree, 1, map[string]int{"Team01": 70, "Team02": 65})
	finalize(t, tree, 2, map[string]int{"Team03": 81, "Team04": 77})

	root, _ := tree.EventByID(tree.RootID())
	if root.Home == nil || root.Home.Team.Code != "Team01" {
		t.Fatalf("root home = %+v, want Team01", root.Home)
	}
	if root.Away == nil || root.Away.Team.Code != "Team03" {
		t.Fatalf("root away = %+v, want Team03", root.Away)
	}

	if _, err := tree.ApplyScores(root.ID, map[string]int{"Team01": 40, "Team03": 38}); err != nil {
		t.Fatalf("root scores: %v", err)
	}
	// Eliminated teams can't score in the championship.
	if _, err := tree.ApplyScores(root.ID, map[string]int{"Team02": 12}); !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("got %v, want ErrUnknownTeam", err)
	}
	if _, err := tree.ApplyScores(root.ID, map[string]int{"Team04": 3}); !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("got %v, want ErrUnknownTeam", err)
	}
}

// A report carrying any unknown code must be dropped whole, not applied up
// to the bad entry.
func TestApplyScoresRejectsReportAsUnit(t *testing.T) {
	tree, _ := Build(seededParticipants(4))

	_, err := tree.ApplyScores(1, map[string]int{"Team01": 10, "Team09": 7})
	if !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("got %v, want ErrUnknownTeam", err)
	}
	ev, _ := tree.EventByID(1)
	if len(ev.Scores) != 0 {
		t.Fatalf("partial report applied: %v", ev.Scores)
	}
}

func TestApplyScoresReportsChange(t *testing.T) {
	tree, _ := Build(seededParticipants(4))

	changed, err := tree.ApplyScores(1, map[string]int{"Team01": 10, "Team02": 8})
	if err != nil || !changed {
		t.Fatalf("first apply: changed=%v, err=%v", changed, err)
	}
	// A byte-identical repeat of the last report is not a change.
	changed, err = tree.ApplyScores(1, map[string]int{"Team01": 10, "Team02": 8})
	if err != nil || changed {
		t.Fatalf("identical apply: changed=%v, err=%v", changed, err)
	}
	changed, err = tree.ApplyScores(1, map[string]int{"Team01": 12, "Team02": 8})
	if err != nil || !changed {
		t.Fatalf("moved score: changed=%v, err=%v", changed, err)
	}
}

func TestFillParentSlotIdempotent(t *testing.T) {
	tree, _ := Build(seededParticipants(4))
	finalize(t, tree, 1, map[string]int{"Team01": 70, "Team02": 65})

	// Re-running propagation on a later cycle must detect and skip.
	if _, err := tree.FillParentSlot(1); err != nil {
		t.Fatalf("repeat FillParentSlot: %v", err)
	}

	// Propagating an unfinished event is a programming error.
	if _, err := tree.FillParentSlot(2); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("got %v, want ErrInvalidState", err)
	}
}

func TestFillParentSlotAtRoot(t *testing.T) {
	tree, _ := Build(seededParticipants(4))
	finalize(t, tree, 1, map[string]int{"Team01": 70, "Team02": 65})
	finalize(t, tree, 2, map[string]int{"Team03": 81, "Team04": 77})

	root, _ := tree.EventByID(tree.RootID())
	tree.ApplyScores(root.ID, map[string]int{"Team01": 66, "Team03": 60})
	tree.AdvanceStatus(root.ID, StatusFinal)

	parentID, err := tree.FillParentSlot(root.ID)
	if err != nil || parentID != 0 {
		t.Fatalf("root propagation: parent %d, err %v", parentID, err)
	}
	if root.Winner == nil || root.Winner.Team.Code != "Team01" {
		t.Fatalf("champion = %+v", root.Winner)
	}
}

func TestAdvanceStatusReportsChange(t *testing.T) {
	tree, _ := Build(seededParticipants(4))

	change, err := tree.AdvanceStatus(1, StatusScheduled)
	if err != nil || !change.Changed || change.BecameFinal {
		t.Fatalf("change = %+v, err = %v", change, err)
	}
	change, err = tree.AdvanceStatus(1, StatusScheduled)
	if err != nil || change.Changed {
		t.Fatalf("same-status apply should not report change: %+v, %v", change, err)
	}
	if _, err := tree.AdvanceStatus(99, StatusScheduled); !errors.Is(err, ErrNoSuchEvent) {
		t.Fatalf("got %v, want ErrNoSuchEvent", err)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	tree, _ := Build(seededParticipants(4))
	tree.ApplyScores(1, map[string]int{"Team01": 10, "Team02": 8})

	snap := tree.Snapshot()
	if len(snap.Events) != 3 || snap.NRounds != 2 {
		t.Fatalf("snapshot shape: %d events, %d rounds", len(snap.Events), snap.NRounds)
	}
	for i, view := range snap.Events {
		if view.ID != i+1 {
			t.Fatalf("snapshot order broken at %d", i)
		}
	}

	// Mutating the live tree must not leak into an existing snapshot.
	tree.ApplyScores(1, map[string]int{"Team01": 50})
	if snap.Events[0].Scores["Team01"] != 10 {
		t.Fatal("snapshot shares score map with live tree")
	}

	if snap.Rounds[1] != "Championship" {
		t.Fatalf("rounds = %v", snap.Rounds)
	}
}
