package scoring

import "errors"

// Ошибки правил лиги. Сервисы оборачивают их через %w, обработчики
// показывают текст ошибки рядом с формой.
var (
	ErrMatchUndecided          = errors.New("exactly one side must reach 6 faints")
	ErrNegativeCount           = errors.New("kills and faints cannot be negative")
	ErrTotalAboveThreshold     = errors.New("a side cannot record more than 6 kills or faints")
	ErrPokemonNotInTeam        = errors.New("pokemon did not play for this side")
	ErrUnknownPlayer           = errors.New("player is not part of this match")
	ErrRosterFull              = errors.New("roster already has 6 pokemon")
	ErrOverBudget              = errors.New("not enough draft points")
	ErrDuplicatePokemon        = errors.New("pokemon is already on the roster")
	ErrPokemonNotOnRoster      = errors.New("pokemon is not on the roster")
	ErrNoTransactionsRemaining = errors.New("no transactions remaining")
	ErrSamePokemon             = errors.New("incoming and outgoing pokemon must differ")
	ErrAlreadyTeraCaptain      = errors.New("pokemon is already the tera captain")
)
