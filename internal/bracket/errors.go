package bracket

import "errors"

var (
	// ErrInvalidBracketSize is returned at construction when the seeding list
	// is not a power of two, or has fewer than 4 entries.
	ErrInvalidBracketSize = errors.New("bracket size must be a power of two with at least 4 participants")

	// ErrInvalidState is returned when a participant slot is already filled
	// with a different team.
	ErrInvalidState = errors.New("participant slot already filled")

	// ErrInvalidTransition is returned when a status update would move an
	// event backward in the TBD < SCHEDULED < IN_PROGRESS/HALFTIME < FINAL
	// ordering.
	ErrInvalidTransition = errors.New("status transition moves backward")

	// ErrUnknownTeam is returned when a score arrives for a team code that
	// matches neither participant of the event.
	ErrUnknownTeam = errors.New("team is not part of this matchup")

	// ErrUnknownStatus is returned for provider status names we don't
	// recognize.
	ErrUnknownStatus = errors.New("unrecognized event status")

	// ErrNoSuchEvent is returned for lookups with an id outside the tree.
	ErrNoSuchEvent = errors.New("no event with that id")
)
