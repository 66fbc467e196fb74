package bracket

// Status tracks an event through its life. The values are ESPN's wire names
// so provider payloads map directly; TBD is ours, for events whose matchup
// (or provider id) is not known yet.
type Status string

const (
	StatusTBD        Status = "TBD"
	StatusScheduled  Status = "STATUS_SCHEDULED"
	StatusInProgress Status = "STATUS_IN_PROGRESS"
	StatusHalftime   Status = "STATUS_HALFTIME"
	StatusFinal      Status = "STATUS_FINAL"
)

// Rank orders statuses for transition checks. IN_PROGRESS and HALFTIME are
// peers and may alternate; everything else only moves forward.
func (s Status) Rank() int {
	switch s {
	case StatusTBD:
		return 0
	case StatusScheduled:
		return 1
	case StatusInProgress, StatusHalftime:
		return 2
	case StatusFinal:
		return 3
	}
	return -1
}

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusFinal
}

// ParseStatus maps a provider status name to a Status. The second return is
// false for names we don't track (period breaks, postponements, ...).
func ParseStatus(name string) (Status, bool) {
	s := Status(name)
	if s.Rank() < 0 {
		return "", false
	}
	return s, true
}
