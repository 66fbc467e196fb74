package espn

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/john-heyer/madness/internal/bracket"
)

func decodePayload(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return payload
}

const scoreboardFixture = `{
  "events": [
    {
      "id": "401744001",
      "date": "2026-03-19T18:00Z",
      "competitions": [{
        "status": {"type": {"name": "STATUS_IN_PROGRESS"}},
        "competitors": [
          {"team": {"abbreviation": "DUKE"}, "score": "42"},
          {"team": {"abbreviation": "UNC"}, "score": "39"}
        ]
      }]
    },
    {
      "id": "401744002",
      "date": "2026-03-19T20:30Z",
      "competitions": [{
        "status": {"type": {"name": "STATUS_SCHEDULED"}},
        "competitors": [
          {"team": {"abbreviation": "GONZ"}, "score": "0"},
          {"team": {"abbreviation": "UCLA"}, "score": "0"}
        ]
      }]
    },
    {
      "id": "401744003",
      "competitions": [{
        "status": {"type": {"name": "STATUS_SCHEDULED"}},
        "competitors": [
          {"team": {"abbreviation": "TBD"}},
          {"team": {"abbreviation": "TBD"}}
        ]
      }]
    }
  ]
}`

func TestParseScoreboard(t *testing.T) {
	reports, err := ParseScoreboard(decodePayload(t, scoreboardFixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2 (TBD placeholder skipped)", len(reports))
	}

	rep, ok := reports["DUKE/UNC"]
	if !ok {
		t.Fatalf("missing sorted matchup key, have %v", reports)
	}
	if rep.ProviderID != "401744001" {
		t.Errorf("provider id %q", rep.ProviderID)
	}
	if rep.Status != bracket.StatusInProgress {
		t.Errorf("status %q", rep.Status)
	}
	if rep.Scores["DUKE"] != 42 || rep.Scores["UNC"] != 39 {
		t.Errorf("scores %v", rep.Scores)
	}
	want := time.Date(2026, 3, 19, 18, 0, 0, 0, time.UTC)
	if !rep.StartTime.Equal(want) {
		t.Errorf("start time %v, want %v", rep.StartTime, want)
	}

	if _, ok := reports["GONZ/UCLA"]; !ok {
		t.Errorf("missing second matchup, have %v", reports)
	}
}

const summaryFixture = `{
  "header": {
    "competitions": [{
      "date": "2026-03-19T18:00Z",
      "status": {"type": {"name": "STATUS_FINAL"}},
      "competitors": [
        {"team": {"abbreviation": "DUKE"}, "score": 71},
        {"team": {"abbreviation": "UNC"}, "score": "68"}
      ]
    }]
  }
}`

func TestParseSummary(t *testing.T) {
	rep, err := ParseSummary(decodePayload(t, summaryFixture), "401744001")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != bracket.StatusFinal {
		t.Errorf("status %q", rep.Status)
	}
	// ESPN serves scores as strings on the scoreboard and occasionally as
	// numbers in summaries; both must land.
	if rep.Scores["DUKE"] != 71 || rep.Scores["UNC"] != 68 {
		t.Errorf("scores %v", rep.Scores)
	}
}

func TestParseSummaryNoHeader(t *testing.T) {
	if _, err := ParseSummary(decodePayload(t, `{"boxscore": {}}`), "401744001"); err == nil {
		t.Fatal("expected error for missing header")
	}
}

func TestParseSummaryUnknownStatus(t *testing.T) {
	raw := `{
	  "header": {
	    "competitions": [{
	      "status": {"type": {"name": "STATUS_RAIN_DELAY"}},
	      "competitors": [
	        {"team": {"abbreviation": "DUKE"}, "score": "10"},
	        {"team": {"abbreviation": "UNC"}, "score": "12"}
	      ]
	    }]
	  }
	}`
	rep, err := ParseSummary(decodePayload(t, raw), "401744001")
	if err != nil {
		t.Fatal(err)
	}
	// Unknown statuses are surfaced raw and left unmapped so the caller
	// keeps its current state.
	if rep.Status != "" {
		t.Errorf("unknown status mapped to %q", rep.Status)
	}
	if rep.RawStatus != "STATUS_RAIN_DELAY" {
		t.Errorf("raw status %q", rep.RawStatus)
	}
	if rep.Scores["UNC"] != 12 {
		t.Errorf("scores should still parse: %v", rep.Scores)
	}
}

func TestParseGameTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-19T18:00Z", time.Date(2026, 3, 19, 18, 0, 0, 0, time.UTC)},
		{"2026-03-19T18:00:30Z", time.Date(2026, 3, 19, 18, 0, 30, 0, time.UTC)},
		{"not a time", time.Time{}},
	}
	for _, tc := range cases {
		if got := parseGameTime(tc.in); !got.Equal(tc.want) {
			t.Errorf("parseGameTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
