package brackets

import "github.com/Dosada05/draft-league/models"

// Fixture - пара игроков, которая ещё должна сыграть.
type Fixture struct {
	Round int    `json:"round"`
	Home  string `json:"home"`
	Away  string `json:"away"`
}

// RoundRobin builds a single round-robin schedule with the circle method.
// With an odd number of players one player sits out each round.
func RoundRobin(names []string) []Fixture {
	n := len(names)
	if n < 2 {
		return nil
	}

	ring := make([]string, n)
	copy(ring, names)
	if n%2 == 1 {
		ring = append(ring, "")
		n++
	}

	fixtures := make([]Fixture, 0, n*(n-1)/2)
	for round := 0; round < n-1; round++ {
		for i := 0; i < n/2; i++ {
			home, away := ring[i], ring[n-1-i]
			if home == "" || away == "" {
				continue
			}
			fixtures = append(fixtures, Fixture{Round: round + 1, Home: home, Away: away})
		}
		// первый игрок стоит на месте, остальные вращаются
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
	return fixtures
}

// PendingFixtures returns the round-robin pairings within each group that have
// no recorded league match yet. Players without a group form one league table.
func PendingFixtures(t *models.Tournament) []Fixture {
	byGroup := make(map[string][]string)
	order := make([]string, 0)
	for _, p := range t.Players {
		if p.IsHidden {
			continue
		}
		if _, ok := byGroup[p.Group]; !ok {
			order = append(order, p.Group)
		}
		byGroup[p.Group] = append(byGroup[p.Group], p.Name)
	}

	played := make(map[[2]string]bool)
	for _, m := range t.Matches {
		if len(m.PlayerNames) != 2 {
			continue
		}
		a, b := m.PlayerNames[0], m.PlayerNames[1]
		played[[2]string{a, b}] = true
		played[[2]string{b, a}] = true
	}

	pending := make([]Fixture, 0)
	for _, g := range order {
		for _, f := range RoundRobin(byGroup[g]) {
			if !played[[2]string{f.Home, f.Away}] {
				pending = append(pending, f)
			}
		}
	}
	return pending
}
