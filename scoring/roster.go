package scoring

import (
	"fmt"

	"github.com/Dosada05/draft-league/models"
)

// MaxRosterSize - максимум активных покемонов в составе.
const MaxRosterSize = 6

func RosterCost(p models.Player) int {
	total := 0
	for _, pk := range p.Pokemon {
		total += pk.Pts
	}
	return total
}

func RemainingPoints(p models.Player) int {
	return budget(p) - RosterCost(p)
}

// CanAddMore mirrors the dashboard button: open while there is a free slot
// and the roster costs less than the budget.
func CanAddMore(p models.Player) bool {
	return len(p.Pokemon) < MaxRosterSize && RosterCost(p) < budget(p)
}

// NewSlot builds a fresh roster slot from a catalog entry.
func NewSlot(entry models.CatalogEntry, id string) models.Pokemon {
	return models.Pokemon{
		ID:   id,
		Slug: entry.Slug,
		Name: entry.Name,
		Pts:  entry.Pts,
	}
}

// AddPokemon appends a catalog entry to the roster with zeroed counters.
func AddPokemon(p *models.Player, entry models.CatalogEntry, id string) error {
	if p.PokemonBySlug(entry.Slug) != nil {
		return fmt.Errorf("add %s: %w", entry.Slug, ErrDuplicatePokemon)
	}
	if len(p.Pokemon) >= MaxRosterSize {
		return fmt.Errorf("add %s: %w", entry.Slug, ErrRosterFull)
	}
	if RosterCost(*p)+entry.Pts > budget(*p) {
		return fmt.Errorf("add %s (%d pts, %d left): %w", entry.Slug, entry.Pts, RemainingPoints(*p), ErrOverBudget)
	}
	p.Pokemon = append(p.Pokemon, NewSlot(entry, id))
	return nil
}

func budget(p models.Player) int {
	if p.InitialDraftPoints <= 0 {
		return models.DefaultDraftPoints
	}
	return p.InitialDraftPoints
}
