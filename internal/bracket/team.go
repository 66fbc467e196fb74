package bracket

// Team is the immutable identity of a competing team. Code is the stable key
// used for score and spread maps across rounds; OddsAPIName is the (often
// longer) name the odds provider uses for the same team.
type Team struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	OddsAPIName string `json:"odds_api_name"`
	Seed        int    `json:"seed"`
}

// Participant is a team occupying one slot of one event: the entrant who
// picked the team, plus the team itself. Interior events get their
// participants filled as child events resolve; leaf participants are fixed at
// construction.
type Participant struct {
	Name string `json:"name"`
	Team Team   `json:"team"`
}

// Side identifies which slot of an event a participant occupies. The winner
// of the left child always lands in the home slot.
type Side int

const (
	Home Side = iota
	Away
)

func (s Side) String() string {
	if s == Home {
		return "home"
	}
	return "away"
}
