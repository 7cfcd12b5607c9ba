package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)
	ErrPlayerNotFound     = fmt.Errorf("player %w", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("match %w", ErrNotFound)
	ErrPokemonNotFound    = fmt.Errorf("pokemon %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed      = errors.New("validation failed")
	ErrPlayerOneRequired     = errors.New("Please provide player one")
	ErrPlayerTwoRequired     = errors.New("Please provide player two")
	ErrSamePlayers           = errors.New("Player one, and player two can't be the same.")
	ErrPokemonRequired       = errors.New("Please choose at least one Pokemon")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrTournamentFull        = errors.New("tournament already has all its players")
	ErrTeamsNotSelected      = errors.New("pokemon for this match have not been selected")
	ErrTeamsAlreadySelected  = errors.New("pokemon for this match are already selected")
	ErrNotKnockoutFormat     = errors.New("tournament format has no knockout stage")
	ErrInvalidRound          = errors.New("unknown knockout round")
	ErrInvalidSlot           = errors.New("bracket slot is out of range")
	ErrInvalidTransaction    = errors.New("unknown transaction type")
	ErrPlayerNumBelowPlayers = errors.New("player count cannot be lower than registered players")

	// Ошибки конфликтов
	ErrPlayerNameConflict    = errors.New("a player with this name is already registered")
	ErrResultAlreadyRecorded = errors.New("match result is already recorded")
	ErrSlotTaken             = errors.New("bracket slot already has a match")
	ErrBracketLocked         = errors.New("quarterfinals already have results and cannot be reseeded")
	ErrEmailTaken            = errors.New("email is already taken")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	ErrCatalogUnavailable = errors.New("catalog bucket is not configured")
)

// FieldErrors - ошибки валидации формы по имени поля.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

// invalid marks a rule violation as a validation failure while keeping the
// original error reachable through errors.Is.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}
