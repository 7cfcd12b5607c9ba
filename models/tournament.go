package models

import "time"

// TournamentFormat определяет формат турнира.
type TournamentFormat string

const (
	FormatKnockout       TournamentFormat = "knockout"
	FormatLeague         TournamentFormat = "league"
	FormatKnockoutLeague TournamentFormat = "knockout_league"
)

// Formats lists the formats offered by the new-tournament form, in display order.
var Formats = []TournamentFormat{FormatKnockout, FormatLeague, FormatKnockoutLeague}

func (f TournamentFormat) Valid() bool {
	switch f {
	case FormatKnockout, FormatLeague, FormatKnockoutLeague:
		return true
	}
	return false
}

// HasKnockout сообщает, есть ли в формате стадия плей-офф.
func (f TournamentFormat) HasKnockout() bool {
	return f == FormatKnockout || f == FormatKnockoutLeague
}

// Tournament представляет турнир. Документ хранится целиком:
// игроки, матчи и матчи плей-офф встроены в него.
type Tournament struct {
	ID        string           `json:"id" firestore:"id"`
	Name      string           `json:"name" firestore:"name"`
	PlayerNum int              `json:"player_num" firestore:"player_num"`
	Format    TournamentFormat `json:"format" firestore:"format"`
	OwnerID   string           `json:"owner_id,omitempty" firestore:"owner_id"`
	StartDate time.Time        `json:"start_date" firestore:"start_date"`
	EndDate   *time.Time       `json:"end_date" firestore:"end_date"`
	Players   []Player         `json:"players" firestore:"players"`
	Matches   []Match          `json:"matches" firestore:"matches"`
	KoMatches []KoMatch        `json:"ko_matches" firestore:"ko_matches"`
	CreatedAt time.Time        `json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" firestore:"updated_at"`
}

// TournamentSummary is the list-view projection used on the home page.
type TournamentSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	PlayerNum   int              `json:"player_num"`
	Format      TournamentFormat `json:"format"`
	PlayerCount int              `json:"player_count"`
	MatchCount  int              `json:"match_count"`
	StartDate   time.Time        `json:"start_date"`
}

func (t *Tournament) Summary() TournamentSummary {
	return TournamentSummary{
		ID:          t.ID,
		Name:        t.Name,
		PlayerNum:   t.PlayerNum,
		Format:      t.Format,
		PlayerCount: len(t.Players),
		MatchCount:  len(t.Matches),
		StartDate:   t.StartDate,
	}
}

func (t *Tournament) PlayerByID(id string) *Player {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return &t.Players[i]
		}
	}
	return nil
}

func (t *Tournament) PlayerByName(name string) *Player {
	for i := range t.Players {
		if t.Players[i].Name == name {
			return &t.Players[i]
		}
	}
	return nil
}

func (t *Tournament) MatchByID(id string) *Match {
	for i := range t.Matches {
		if t.Matches[i].ID == id {
			return &t.Matches[i]
		}
	}
	return nil
}

func (t *Tournament) KoMatchByID(round KoRound, id string) *KoMatch {
	for i := range t.KoMatches {
		if t.KoMatches[i].Round == round && t.KoMatches[i].ID == id {
			return &t.KoMatches[i]
		}
	}
	return nil
}

func (t *Tournament) KoMatchesByRound(round KoRound) []KoMatch {
	out := make([]KoMatch, 0)
	for _, m := range t.KoMatches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}
