package scoring

import (
	"sort"
	"strings"

	"github.com/Dosada05/draft-league/models"
)

// Totals - агрегаты игрока для таблицы.
type Totals struct {
	Kills        int `json:"kills"`
	Faints       int `json:"faints"`
	Differential int `json:"differential"`
	GamesPlayed  int `json:"games_played"`
}

// PlayerTotals sums kills and faints over the current and the archived roster.
func PlayerTotals(p models.Player) Totals {
	var t Totals
	for _, pk := range p.Pokemon {
		t.Kills += pk.Record.Kills
		t.Faints += pk.Record.Faints
	}
	for _, pk := range p.PreviousPokemon {
		t.Kills += pk.Record.Kills
		t.Faints += pk.Record.Faints
	}
	t.Differential = t.Kills - t.Faints
	t.GamesPlayed = p.Record.GamesPlayed()
	return t
}

// Less reports whether a ranks above b.
func Less(a, b models.Player) bool {
	if a.Record.Wins != b.Record.Wins {
		return a.Record.Wins > b.Record.Wins
	}
	ta, tb := PlayerTotals(a), PlayerTotals(b)
	if ta.Differential != tb.Differential {
		return ta.Differential > tb.Differential
	}
	if ta.GamesPlayed != tb.GamesPlayed {
		return ta.GamesPlayed < tb.GamesPlayed
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// SortPlayers returns a sorted copy; the input is left untouched.
func SortPlayers(players []models.Player) []models.Player {
	out := make([]models.Player, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// VisibleStandings drops hidden players and sorts the rest.
func VisibleStandings(players []models.Player) []models.Player {
	visible := make([]models.Player, 0, len(players))
	for _, p := range players {
		if !p.IsHidden {
			visible = append(visible, p)
		}
	}
	return SortPlayers(visible)
}

type Row struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	TeamName string `json:"team_name"`
	Group    string `json:"group,omitempty"`
	Wins     int    `json:"wins"`
	Loses    int    `json:"loses"`
	Totals
}

type Table struct {
	Group string `json:"group,omitempty"`
	Rows  []Row  `json:"rows"`
}

// BuildTable ranks visible players.
func BuildTable(group string, players []models.Player) Table {
	sorted := VisibleStandings(players)
	rows := make([]Row, 0, len(sorted))
	for i, p := range sorted {
		rows = append(rows, Row{
			Rank:     i + 1,
			PlayerID: p.ID,
			Name:     p.Name,
			TeamName: p.TeamName,
			Group:    p.Group,
			Wins:     p.Record.Wins,
			Loses:    p.Record.Loses,
			Totals:   PlayerTotals(p),
		})
	}
	return Table{Group: group, Rows: rows}
}

// GroupTables splits players by Group and ranks each group. Groups come out
// in name order; players without a group are ignored.
func GroupTables(players []models.Player) []Table {
	byGroup := make(map[string][]models.Player)
	for _, p := range players {
		if p.Group == "" {
			continue
		}
		byGroup[p.Group] = append(byGroup[p.Group], p)
	}
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	tables := make([]Table, 0, len(groups))
	for _, g := range groups {
		tables = append(tables, BuildTable(g, byGroup[g]))
	}
	return tables
}

type LeaderboardEntry struct {
	PlayerName string `json:"player_name"`
	TeamName   string `json:"team_name"`
	Slug       string `json:"github_name"`
	Name       string `json:"name"`
	Kills      int    `json:"kills"`
	Faints     int    `json:"faints"`
}

// Leaderboards returns the top n current-roster pokemon by kills and by faints.
// Pokemon with a zero count are left out of the respective board.
func Leaderboards(players []models.Player, n int) (kills, faints []LeaderboardEntry) {
	all := make([]LeaderboardEntry, 0)
	for _, p := range players {
		if p.IsHidden {
			continue
		}
		for _, pk := range p.Pokemon {
			all = append(all, LeaderboardEntry{
				PlayerName: p.Name,
				TeamName:   p.TeamName,
				Slug:       pk.Slug,
				Name:       pk.Name,
				Kills:      pk.Record.Kills,
				Faints:     pk.Record.Faints,
			})
		}
	}

	kills = topN(all, n, func(e LeaderboardEntry) int { return e.Kills })
	faints = topN(all, n, func(e LeaderboardEntry) int { return e.Faints })
	return kills, faints
}

func topN(entries []LeaderboardEntry, n int, key func(LeaderboardEntry) int) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, n)
	for _, e := range entries {
		if key(e) > 0 {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) > key(out[j]) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
