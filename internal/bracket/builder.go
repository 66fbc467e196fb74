package bracket

import (
	"fmt"
	"math/bits"
)

// Build constructs the tournament tree from participants in seeded order:
// the first two entries play each other in round 1, the winner meets the
// winner of the next pair, and so on up to the championship. Event ids are
// assigned in construction order (round 1 first, root last), so ids are
// stable across restarts given the same seeding.
func Build(participants []*Participant) (*Tree, error) {
	n := len(participants)
	if n < 4 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%d participants: %w", n, ErrInvalidBracketSize)
	}
	nRounds := bits.Len(uint(n)) - 1

	events := make([]*Event, 0, n-1)
	currentRound := make([]*Event, 0, n/2)
	for i := 0; i < n; i += 2 {
		leaf := newLeafEvent(len(events)+1, participants[i], participants[i+1])
		events = append(events, leaf)
		currentRound = append(currentRound, leaf)
	}

	for len(currentRound) > 1 {
		nextRound := make([]*Event, 0, len(currentRound)/2)
		for i := 0; i < len(currentRound); i += 2 {
			left, right := currentRound[i], currentRound[i+1]
			parent := newParentEvent(len(events)+1, left, right)
			left.Parent = parent.ID
			right.Parent = parent.ID
			events = append(events, parent)
			nextRound = append(nextRound, parent)
		}
		currentRound = nextRound
	}

	index := make(map[int]*Event, len(events))
	for _, ev := range events {
		index[ev.ID] = ev
	}

	return &Tree{
		events:       events,
		index:        index,
		root:         currentRound[0],
		nRounds:      nRounds,
		participants: participants,
	}, nil
}
