package brackets

import (
	"fmt"

	"github.com/Dosada05/draft-league/models"
)

type Round struct {
	ID    models.KoRound
	Title string
	Slots int
}

// Rounds lists the knockout stage in play order.
var Rounds = []Round{
	{ID: models.RoundQuarterfinals, Title: "Quarterfinals", Slots: 4},
	{ID: models.RoundSemifinals, Title: "Semifinals", Slots: 2},
	{ID: models.RoundFinal, Title: "Final", Slots: 1},
}

func RoundByID(id models.KoRound) (Round, bool) {
	for _, r := range Rounds {
		if r.ID == id {
			return r, true
		}
	}
	return Round{}, false
}

// LinkKind - какую страницу открывает ячейка сетки.
type LinkKind string

const (
	LinkNone           LinkKind = ""
	LinkWinner         LinkKind = "winner"
	LinkSpecifyResults LinkKind = "specify-results"
	LinkSelectPokemon  LinkKind = "select-pokemon"
)

// KoMatchLink decides the next view for a bracket cell. Visitors only get a
// link once the match is completed.
func KoMatchLink(m models.KoMatch, isAdmin bool) LinkKind {
	switch {
	case m.HasResult():
		return LinkWinner
	case !isAdmin:
		return LinkNone
	case m.HasTeams():
		return LinkSpecifyResults
	default:
		return LinkSelectPokemon
	}
}

// Path builds the tournament-relative path for a link kind.
func Path(tournamentID string, m models.KoMatch, kind LinkKind) string {
	if kind == LinkNone {
		return ""
	}
	return fmt.Sprintf("/tournament/%s/ko/%s/%s/%s", tournamentID, m.Round, m.ID, kind)
}

// Cell is one bracket position for rendering; Match is nil for an empty slot.
type Cell struct {
	Slot  int
	Match *models.KoMatch
	Link  string
}

type RoundView struct {
	Round
	Cells []Cell
}

// BuildView lays out the recorded knockout matches by round and slot.
func BuildView(t *models.Tournament, isAdmin bool) []RoundView {
	views := make([]RoundView, 0, len(Rounds))
	for _, r := range Rounds {
		rv := RoundView{Round: r, Cells: make([]Cell, r.Slots)}
		for i := range rv.Cells {
			rv.Cells[i].Slot = i + 1
		}
		for _, m := range t.KoMatchesByRound(r.ID) {
			if m.Slot < 1 || m.Slot > r.Slots {
				continue
			}
			m := m
			rv.Cells[m.Slot-1].Match = &m
			rv.Cells[m.Slot-1].Link = Path(t.ID, m, KoMatchLink(m, isAdmin))
		}
		views = append(views, rv)
	}
	return views
}
