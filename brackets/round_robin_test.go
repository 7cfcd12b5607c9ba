package brackets

import (
	"testing"

	"github.com/Dosada05/draft-league/models"
	"github.com/stretchr/testify/assert"
)

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func TestRoundRobin_EveryPairOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 8} {
		names := make([]string, n)
		for i := range names {
			names[i] = string(rune('a' + i))
		}

		fixtures := RoundRobin(names)

		assert.Len(t, fixtures, n*(n-1)/2)
		seen := make(map[[2]string]bool)
		for _, f := range fixtures {
			assert.NotEqual(t, f.Home, f.Away)
			k := pairKey(f.Home, f.Away)
			assert.False(t, seen[k], "pair %v scheduled twice", k)
			seen[k] = true
		}
	}
}

func TestRoundRobin_NobodyPlaysTwicePerRound(t *testing.T) {
	fixtures := RoundRobin([]string{"a", "b", "c", "d", "e", "f"})
	perRound := make(map[int]map[string]bool)
	for _, f := range fixtures {
		if perRound[f.Round] == nil {
			perRound[f.Round] = make(map[string]bool)
		}
		assert.False(t, perRound[f.Round][f.Home])
		assert.False(t, perRound[f.Round][f.Away])
		perRound[f.Round][f.Home] = true
		perRound[f.Round][f.Away] = true
	}
	assert.Len(t, perRound, 5)
}

func TestPendingFixtures(t *testing.T) {
	tour := &models.Tournament{
		Players: []models.Player{
			{Name: "a", Group: "A"}, {Name: "b", Group: "A"}, {Name: "c", Group: "A"},
			{Name: "x", Group: "B"}, {Name: "y", Group: "B"},
			{Name: "hidden", Group: "B", IsHidden: true},
		},
		Matches: []models.Match{
			{PlayerNames: []string{"b", "a"}},
			{PlayerNames: []string{"x", "y"}},
		},
	}

	pending := PendingFixtures(tour)

	got := make(map[[2]string]bool)
	for _, f := range pending {
		got[pairKey(f.Home, f.Away)] = true
	}
	assert.Equal(t, map[[2]string]bool{{"a", "c"}: true, {"b", "c"}: true}, got)
}
