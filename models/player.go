package models

// DefaultDraftPoints - бюджет драфта каждого игрока.
const DefaultDraftPoints = 120

type Record struct {
	Wins  int `json:"wins" firestore:"wins"`
	Loses int `json:"loses" firestore:"loses"`
}

func (r Record) GamesPlayed() int {
	return r.Wins + r.Loses
}

// Player - участник турнира вместе с его составом и историей трансферов.
type Player struct {
	ID                 string        `json:"id" firestore:"id"`
	Name               string        `json:"name" firestore:"name"`
	TeamName           string        `json:"team_name" firestore:"team_name"`
	Group              string        `json:"group,omitempty" firestore:"group"`
	InitialDraftPoints int           `json:"initialDraftPoints" firestore:"initialDraftPoints"`
	Pokemon            []Pokemon     `json:"pokemon" firestore:"pokemon"`
	PreviousPokemon    []Pokemon     `json:"previousPokemon" firestore:"previousPokemon"`
	Record             Record        `json:"record" firestore:"record"`
	Transactions       []Transaction `json:"transactions" firestore:"transactions"`
	IsHidden           bool          `json:"isHidden,omitempty" firestore:"isHidden"`
}

func (p *Player) PokemonBySlug(slug string) *Pokemon {
	for i := range p.Pokemon {
		if p.Pokemon[i].Slug == slug {
			return &p.Pokemon[i]
		}
	}
	return nil
}

// ResultSlot ищет слот для зачёта результата: сначала текущий состав, затем
// последний ушедший в PreviousPokemon с тем же slug.
func (p *Player) ResultSlot(slug string) *Pokemon {
	if slot := p.PokemonBySlug(slug); slot != nil {
		return slot
	}
	for i := len(p.PreviousPokemon) - 1; i >= 0; i-- {
		if p.PreviousPokemon[i].Slug == slug {
			return &p.PreviousPokemon[i]
		}
	}
	return nil
}
