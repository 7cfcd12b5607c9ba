package models

import "time"

// StatLine - KO и фейнты одного покемона за матч.
type StatLine struct {
	Slug   string `json:"githubName" firestore:"githubName"`
	Name   string `json:"name" firestore:"name"`
	Kills  int    `json:"kills" firestore:"kills"`
	Faints int    `json:"faints" firestore:"faints"`
}

// MatchResult is one side's outcome: per-pokemon lines and side totals.
type MatchResult struct {
	Pokemon []StatLine `json:"pokemon" firestore:"pokemon"`
	Kos     int        `json:"kos" firestore:"kos"`
	Faints  int        `json:"faints" firestore:"faints"`
}

type Match struct {
	ID           string                 `json:"id" firestore:"id"`
	PlayerNames  []string               `json:"playerNames" firestore:"playerNames"`
	PokemonTeams map[string][]string    `json:"pokemonTeams" firestore:"pokemonTeams"`
	Results      map[string]MatchResult `json:"results,omitempty" firestore:"results"`
	UserRecords  map[string]Record      `json:"userRecords,omitempty" firestore:"userRecords"`
	Winner       string                 `json:"winner,omitempty" firestore:"winner"`
	PlayedOn     string                 `json:"playedOn" firestore:"playedOn"`
	CreatedAt    time.Time              `json:"created_at" firestore:"created_at"`
}

func (m *Match) HasResult() bool {
	return m.Winner != ""
}

func (m *Match) HasTeams() bool {
	return len(m.PokemonTeams) > 0
}

func (m *Match) Involves(name string) bool {
	for _, n := range m.PlayerNames {
		if n == name {
			return true
		}
	}
	return false
}

// KoRound - идентификатор раунда плей-офф.
type KoRound string

const (
	RoundQuarterfinals KoRound = "quarterfinals"
	RoundSemifinals    KoRound = "semifinals"
	RoundFinal         KoRound = "final"
)

// KoMatch - матч плей-офф. Победитель не переносится в следующий раунд автоматически.
type KoMatch struct {
	Match
	Round KoRound `json:"round" firestore:"round"`
	Slot  int     `json:"slot" firestore:"slot"`
}
