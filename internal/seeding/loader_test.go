package seeding

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teams.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"participant_name,team_name,seed,team_code,odds_api_team_name",
		"Alice,Duke,1,DUKE,Duke Blue Devils",
		"Bob,North Carolina,8,UNC,North Carolina Tar Heels",
		"Carol,Gonzaga,4,GONZ,Gonzaga Bulldogs",
		"Dave,UCLA,5,UCLA,UCLA Bruins",
	}, "\n"))

	participants, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(participants) != 4 {
		t.Fatalf("got %d participants", len(participants))
	}

	first := participants[0]
	if first.Name != "Alice" {
		t.Errorf("participant name %q", first.Name)
	}
	if first.Team.Code != "DUKE" || first.Team.Seed != 1 {
		t.Errorf("team = %+v", first.Team)
	}
	if first.Team.OddsAPIName != "Duke Blue Devils" {
		t.Errorf("odds name %q", first.Team.OddsAPIName)
	}
	// File order is seeded order.
	if participants[3].Team.Code != "UCLA" {
		t.Errorf("order not preserved: %+v", participants[3].Team)
	}
}

func TestLoadColumnOrderIndependent(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"seed,team_code,participant_name,odds_api_team_name,team_name",
		"3,HOU,Erin,Houston Cougars,Houston",
	}, "\n"))

	participants, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	p := participants[0]
	if p.Name != "Erin" || p.Team.Code != "HOU" || p.Team.Seed != 3 {
		t.Errorf("got %+v / %+v", p.Name, p.Team)
	}
}

func TestLoadMissingColumn(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"participant_name,team_name,seed,team_code",
		"Alice,Duke,1,DUKE",
	}, "\n"))

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "odds_api_team_name") {
		t.Fatalf("err = %v, want missing column", err)
	}
}

func TestLoadBadSeed(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"participant_name,team_name,seed,team_code,odds_api_team_name",
		"Alice,Duke,one,DUKE,Duke Blue Devils",
	}, "\n"))

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-numeric seed")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeCSV(t, "participant_name,team_name,seed,team_code,odds_api_team_name\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for header-only file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
