package scoring

import (
	"fmt"
	"time"

	"github.com/Dosada05/draft-league/models"
)

// MaxTransactions - лимит транзакций на игрока за сезон.
const MaxTransactions = 6

func TransactionsRemaining(p models.Player) int {
	left := MaxTransactions - len(p.Transactions)
	if left < 0 {
		return 0
	}
	return left
}

// ApplyTransfer swaps outSlug for the incoming catalog entry. The outgoing slot
// keeps its counters and moves to PreviousPokemon.
func ApplyTransfer(p *models.Player, outSlug string, incoming models.CatalogEntry, newID string, now time.Time) error {
	if TransactionsRemaining(*p) == 0 {
		return ErrNoTransactionsRemaining
	}
	if outSlug == incoming.Slug {
		return ErrSamePokemon
	}
	idx := slotIndex(p, outSlug)
	if idx < 0 {
		return fmt.Errorf("transfer out %s: %w", outSlug, ErrPokemonNotOnRoster)
	}
	if p.PokemonBySlug(incoming.Slug) != nil {
		return fmt.Errorf("transfer in %s: %w", incoming.Slug, ErrDuplicatePokemon)
	}

	outgoing := p.Pokemon[idx]
	if RosterCost(*p)-outgoing.Pts+incoming.Pts > budget(*p) {
		return fmt.Errorf("transfer in %s: %w", incoming.Slug, ErrOverBudget)
	}

	slot := NewSlot(incoming, newID)
	outgoing.IsTeraCaptain = false

	roster := make([]models.Pokemon, 0, len(p.Pokemon))
	roster = append(roster, p.Pokemon[:idx]...)
	roster = append(roster, p.Pokemon[idx+1:]...)
	p.Pokemon = append(roster, slot)
	p.PreviousPokemon = append(p.PreviousPokemon, outgoing)
	p.Transactions = append(p.Transactions, models.Transaction{
		PlayerName: p.Name,
		In:         incoming.Slug,
		Out:        outSlug,
		Type:       models.TransactionTransfer,
		CreatedAt:  now,
	})
	return nil
}

// ApplyTeraCaptain moves the tera captain flag from outSlug to inSlug.
func ApplyTeraCaptain(p *models.Player, outSlug, inSlug string, now time.Time) error {
	if TransactionsRemaining(*p) == 0 {
		return ErrNoTransactionsRemaining
	}
	if outSlug == inSlug {
		return ErrSamePokemon
	}
	out := p.PokemonBySlug(outSlug)
	if out == nil {
		return fmt.Errorf("tera captain out %s: %w", outSlug, ErrPokemonNotOnRoster)
	}
	in := p.PokemonBySlug(inSlug)
	if in == nil {
		return fmt.Errorf("tera captain in %s: %w", inSlug, ErrPokemonNotOnRoster)
	}
	if in.IsTeraCaptain {
		return fmt.Errorf("tera captain in %s: %w", inSlug, ErrAlreadyTeraCaptain)
	}

	out.IsTeraCaptain = false
	in.IsTeraCaptain = true
	p.Transactions = append(p.Transactions, models.Transaction{
		PlayerName: p.Name,
		In:         inSlug,
		Out:        outSlug,
		Type:       models.TransactionTeraCaptain,
		CreatedAt:  now,
	})
	return nil
}

func slotIndex(p *models.Player, slug string) int {
	for i := range p.Pokemon {
		if p.Pokemon[i].Slug == slug {
			return i
		}
	}
	return -1
}
