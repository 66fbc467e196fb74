// Package seeding loads the initial bracket seeding from CSV. Row order is
// seeded order: the first two rows meet in round 1, the winner plays the
// winner of the next pair, and so on.
package seeding

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/john-heyer/madness/internal/bracket"
)

// Required column headers.
const (
	ColParticipantName = "participant_name"
	ColTeamName        = "team_name"
	ColSeed            = "seed"
	ColTeamCode        = "team_code"
	ColOddsAPITeamName = "odds_api_team_name"
)

var requiredColumns = []string{
	ColParticipantName, ColTeamName, ColSeed, ColTeamCode, ColOddsAPITeamName,
}

// Load reads the seeding CSV into participants in file order.
func Load(path string) ([]*bracket.Participant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seeding file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading seeding file: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("seeding file %s has no data rows", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("seeding file %s missing column %q", path, required)
		}
	}

	participants := make([]*bracket.Participant, 0, len(records)-1)
	for line, row := range records[1:] {
		seed, err := strconv.Atoi(row[cols[ColSeed]])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad seed %q: %w", line+2, row[cols[ColSeed]], err)
		}
		participants = append(participants, &bracket.Participant{
			Name: row[cols[ColParticipantName]],
			Team: bracket.Team{
				Name:        row[cols[ColTeamName]],
				Code:        row[cols[ColTeamCode]],
				OddsAPIName: row[cols[ColOddsAPITeamName]],
				Seed:        seed,
			},
		})
	}
	return participants, nil
}
