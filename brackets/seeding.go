package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/draft-league/models"
)

// GroupSize - сколько лучших игроков каждой группы выходят в плей-офф.
const GroupSize = 4

var ErrNotEnoughPlayers = errors.New("each group needs at least 4 ranked players")

// Pairing is one quarterfinal: Home is listed first on the bracket.
type Pairing struct {
	Slot int
	Home models.Player
	Away models.Player
}

// SeedQuarterfinals pairs the top four of two ranked groups as
// A1-B4, A2-B3, B1-A4, B2-A3. Slots are numbered 1..4 in that order.
func SeedQuarterfinals(groupA, groupB []models.Player) ([]Pairing, error) {
	if len(groupA) < GroupSize || len(groupB) < GroupSize {
		return nil, fmt.Errorf("seed quarterfinals (A=%d, B=%d): %w", len(groupA), len(groupB), ErrNotEnoughPlayers)
	}

	return []Pairing{
		{Slot: 1, Home: groupA[0], Away: groupB[3]},
		{Slot: 2, Home: groupA[1], Away: groupB[2]},
		{Slot: 3, Home: groupB[0], Away: groupA[3]},
		{Slot: 4, Home: groupB[1], Away: groupA[2]},
	}, nil
}
