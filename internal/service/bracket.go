package service

import (
	"github.com/courtside/courtside-api/internal/models"
)

// buildBracket pairs an already-shuffled entrant list into a full
// single-elimination bracket, round by round, until one entrant remains.
//
// An unpaired trailing entrant receives a bye: it advances into the next
// round directly, without a match record. Later-round matches start with nil
// players (or one pre-seeded bye entrant) and are filled in by winner
// advancement.
//
// MatchNumber is a single counter across all rounds in generation order.
// SlotIndex is the match's 0-based position within its round. The winner of
// slot s in round r takes position s in round r+1's entrant ordering: match
// placeholders occupy positions 0..2m-1 for m matches, and a trailing odd
// position byes through to position m of the round after. nextRoundMatch
// follows the same ordering, so both sides agree on where a winner lands
// (the first winner to arrive takes side A, the second side B).
func buildBracket(entrants []models.Entrant) []models.Match {
	current := make([]*models.Entrant, len(entrants))
	for i := range entrants {
		entrant := entrants[i]
		current[i] = &entrant
	}

	var matches []models.Match
	round := 1
	matchNumber := 1

	for len(current) > 1 {
		next := make([]*models.Entrant, 0, (len(current)+1)/2)
		slot := 0
		for i := 0; i < len(current); i += 2 {
			if i+1 >= len(current) {
				// bye: advances without a match
				next = append(next, current[i])
				continue
			}
			matches = append(matches, models.Match{
				Round:       round,
				MatchNumber: matchNumber,
				SlotIndex:   slot,
				PlayerA:     current[i],
				PlayerB:     current[i+1],
				Court:       "TBD",
				Status:      models.MatchStatusUpcoming,
			})
			matchNumber++
			slot++
			next = append(next, nil)
		}
		current = next
		round++
	}

	return matches
}

// nextRoundMatch locates the match fed by the given one, or nil when the
// given match is the final. The lookup replays the generation ordering: the
// winner takes position SlotIndex in the following round; if that position
// is the round's trailing bye (no match covers it), the winner byes through
// to position m of the round after, where m is the bye'd round's match count.
func nextRoundMatch(t *models.Tournament, match *models.Match) *models.Match {
	pos := match.SlotIndex
	round := match.Round
	for {
		round++
		count := roundMatchCount(t, round)
		if count == 0 {
			// no later round exists; match was the final
			return nil
		}
		if pos < 2*count {
			return matchAtSlot(t, round, pos/2)
		}
		pos = count
	}
}

func roundMatchCount(t *models.Tournament, round int) int {
	count := 0
	for i := range t.Matches {
		if t.Matches[i].Round == round {
			count++
		}
	}
	return count
}

func matchAtSlot(t *models.Tournament, round, slot int) *models.Match {
	for i := range t.Matches {
		if t.Matches[i].Round == round && t.Matches[i].SlotIndex == slot {
			return &t.Matches[i]
		}
	}
	return nil
}
