package scoring

import (
	"fmt"

	"github.com/Dosada05/draft-league/models"
)

// FaintsRequiredForLoss - сторона, у которой 6 фейнтов, проигрывает.
const FaintsRequiredForLoss = 6

// Line holds what one pokemon did in a single match.
type Line struct {
	Kills  int
	Faints int
}

// ScoreInput describes a submitted result. Lines are keyed by player name, then slug.
// Players is used only to resolve display names and may be empty.
type ScoreInput struct {
	Match   *models.Match
	Players []models.Player
	Lines   map[string]map[string]Line
}

type ScoreOutcome struct {
	Winner  string
	Loser   string
	Results map[string]models.MatchResult
}

// ScoreMatch проверяет введённые линии и определяет победителя.
func ScoreMatch(in ScoreInput) (*ScoreOutcome, error) {
	m := in.Match
	if m == nil || len(m.PlayerNames) != 2 {
		return nil, fmt.Errorf("score match: %w", ErrUnknownPlayer)
	}
	for name := range in.Lines {
		if !m.Involves(name) {
			return nil, fmt.Errorf("score match: %q: %w", name, ErrUnknownPlayer)
		}
	}

	names := displayNames(in.Players)
	out := &ScoreOutcome{Results: make(map[string]models.MatchResult, 2)}
	var losers []string

	for _, player := range m.PlayerNames {
		team := m.PokemonTeams[player]
		lines := in.Lines[player]
		for slug := range lines {
			if !contains(team, slug) {
				return nil, fmt.Errorf("score match: %s for %s: %w", slug, player, ErrPokemonNotInTeam)
			}
		}

		res := models.MatchResult{Pokemon: make([]models.StatLine, 0, len(team))}
		for _, slug := range team {
			l := lines[slug]
			if l.Kills < 0 || l.Faints < 0 {
				return nil, fmt.Errorf("score match: %s for %s: %w", slug, player, ErrNegativeCount)
			}
			res.Kos += l.Kills
			res.Faints += l.Faints
			res.Pokemon = append(res.Pokemon, models.StatLine{
				Slug:   slug,
				Name:   nameFor(names, player, slug),
				Kills:  l.Kills,
				Faints: l.Faints,
			})
		}
		if res.Kos > FaintsRequiredForLoss || res.Faints > FaintsRequiredForLoss {
			return nil, fmt.Errorf("score match: %s: %w", player, ErrTotalAboveThreshold)
		}
		if res.Faints == FaintsRequiredForLoss {
			losers = append(losers, player)
		}
		out.Results[player] = res
	}

	if len(losers) != 1 {
		return nil, ErrMatchUndecided
	}
	out.Loser = losers[0]
	if m.PlayerNames[0] == out.Loser {
		out.Winner = m.PlayerNames[1]
	} else {
		out.Winner = m.PlayerNames[0]
	}
	return out, nil
}

// ApplyLeagueOutcome переносит результат на игроков и матч: счётчики покемонов,
// рекорды победителя и проигравшего, UserRecords. Вызывается один раз на матч.
func ApplyLeagueOutcome(t *models.Tournament, m *models.Match, out *ScoreOutcome) error {
	winner := t.PlayerByName(out.Winner)
	loser := t.PlayerByName(out.Loser)
	if winner == nil || loser == nil {
		return fmt.Errorf("apply outcome: %w", ErrUnknownPlayer)
	}

	for _, p := range []*models.Player{winner, loser} {
		for _, line := range out.Results[p.Name].Pokemon {
			// покемон мог уйти трансфером после выбора команд
			slot := p.ResultSlot(line.Slug)
			if slot == nil {
				continue
			}
			slot.Record.Kills += line.Kills
			slot.Record.Faints += line.Faints
		}
	}
	winner.Record.Wins++
	loser.Record.Loses++

	m.Results = out.Results
	m.Winner = out.Winner
	m.UserRecords = map[string]models.Record{
		winner.Name: winner.Record,
		loser.Name:  loser.Record,
	}
	return nil
}

func displayNames(players []models.Player) map[string]map[string]string {
	out := make(map[string]map[string]string, len(players))
	for _, p := range players {
		byslug := make(map[string]string, len(p.Pokemon)+len(p.PreviousPokemon))
		for _, pk := range p.PreviousPokemon {
			byslug[pk.Slug] = pk.Name
		}
		for _, pk := range p.Pokemon {
			byslug[pk.Slug] = pk.Name
		}
		out[p.Name] = byslug
	}
	return out
}

func nameFor(names map[string]map[string]string, player, slug string) string {
	if n, ok := names[player][slug]; ok && n != "" {
		return n
	}
	return slug
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
