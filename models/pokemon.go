package models

type PokemonRecord struct {
	Kills  int `json:"kills" firestore:"kills"`
	Faints int `json:"faints" firestore:"faints"`
}

// Pokemon is one roster slot. Slug references the catalog entry; ID identifies
// the slot itself so the same species can be archived and re-drafted.
type Pokemon struct {
	ID            string        `json:"id" firestore:"id"`
	Slug          string        `json:"githubName" firestore:"githubName"`
	Name          string        `json:"name" firestore:"name"`
	Pts           int           `json:"pts" firestore:"pts"`
	Record        PokemonRecord `json:"record" firestore:"record"`
	IsTeraCaptain bool          `json:"isTeraCaptain,omitempty" firestore:"isTeraCaptain"`
}

// CatalogEntry - запись статического справочника покемонов.
type CatalogEntry struct {
	Slug      string `json:"github_name"`
	Name      string `json:"name"`
	Pts       int    `json:"pts"`
	SpriteURL string `json:"spriteUrl"`
}
