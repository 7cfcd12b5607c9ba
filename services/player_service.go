package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dosada05/draft-league/brackets"
	"github.com/Dosada05/draft-league/catalog"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/scoring"
	"github.com/google/uuid"
)

type PlayerInput struct {
	Name     string `json:"name"`
	TeamName string `json:"team_name"`
	Group    string `json:"group"`
}

type PlayerUpdate struct {
	TeamName string `json:"team_name"`
	Group    string `json:"group"`
	IsHidden bool   `json:"is_hidden"`
}

type PlayerService interface {
	AddPlayer(ctx context.Context, tournamentID string, input PlayerInput) (*models.Player, error)
	UpdatePlayer(ctx context.Context, tournamentID, playerID string, input PlayerUpdate) (*models.Player, error)
	GetPlayer(ctx context.Context, tournamentID, playerID string) (*models.Player, error)
	AddPokemon(ctx context.Context, tournamentID, playerID, slug string) (*models.Player, error)
	PreviousPokemon(ctx context.Context, tournamentID, playerID string) (*models.Player, []models.Pokemon, error)
}

type playerService struct {
	tournamentStore
	catalog *catalog.Catalog
}

func NewPlayerService(deps Deps, cat *catalog.Catalog) PlayerService {
	return &playerService{tournamentStore: newTournamentStore(deps), catalog: cat}
}

func normalizeGroup(g string) (string, error) {
	g = strings.ToUpper(strings.TrimSpace(g))
	switch g {
	case "", "A", "B":
		return g, nil
	}
	return "", FieldErrors{"group": "Group must be A, B or empty"}
}

func (s *playerService) AddPlayer(ctx context.Context, tournamentID string, input PlayerInput) (*models.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.TeamName = strings.TrimSpace(input.TeamName)
	errs := FieldErrors{}
	if input.Name == "" {
		errs["name"] = "Please provide a player name"
	}
	if input.TeamName == "" {
		errs["team_name"] = "Please provide a team name"
	}
	group, err := normalizeGroup(input.Group)
	if err != nil {
		for k, v := range err.(FieldErrors) {
			errs[k] = v
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	player := models.Player{
		ID:                 uuid.NewString(),
		Name:               input.Name,
		TeamName:           input.TeamName,
		Group:              group,
		InitialDraftPoints: models.DefaultDraftPoints,
		Pokemon:            []models.Pokemon{},
		PreviousPokemon:    []models.Pokemon{},
		Transactions:       []models.Transaction{},
	}

	_, err = s.mutate(ctx, tournamentID, brackets.EventPlayerAdded, player, func(t *models.Tournament) error {
		if len(t.Players) >= t.PlayerNum {
			return invalid(ErrTournamentFull)
		}
		for _, p := range t.Players {
			if strings.EqualFold(p.Name, player.Name) {
				return FieldErrors{"name": ErrPlayerNameConflict.Error()}
			}
		}
		t.Players = append(t.Players, player)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, tournamentID, playerID string, input PlayerUpdate) (*models.Player, error) {
	input.TeamName = strings.TrimSpace(input.TeamName)
	if input.TeamName == "" {
		return nil, FieldErrors{"team_name": "Please provide a team name"}
	}
	group, err := normalizeGroup(input.Group)
	if err != nil {
		return nil, err
	}

	var updated models.Player
	_, err = s.mutate(ctx, tournamentID, brackets.EventRosterUpdated, map[string]string{"player_id": playerID}, func(t *models.Tournament) error {
		p, err := findPlayer(t, playerID)
		if err != nil {
			return err
		}
		p.TeamName = input.TeamName
		p.Group = group
		p.IsHidden = input.IsHidden
		updated = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *playerService) GetPlayer(ctx context.Context, tournamentID, playerID string) (*models.Player, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return findPlayer(t, playerID)
}

func (s *playerService) AddPokemon(ctx context.Context, tournamentID, playerID, slug string) (*models.Player, error) {
	entry, ok := s.catalog.Lookup(strings.TrimSpace(slug))
	if !ok {
		return nil, fmt.Errorf("add pokemon %q: %w", slug, ErrPokemonNotFound)
	}
	slotID := uuid.NewString()

	var updated models.Player
	_, err := s.mutate(ctx, tournamentID, brackets.EventRosterUpdated, map[string]string{"player_id": playerID, "pokemon": entry.Slug}, func(t *models.Tournament) error {
		p, err := findPlayer(t, playerID)
		if err != nil {
			return err
		}
		if err := scoring.AddPokemon(p, entry, slotID); err != nil {
			return invalid(err)
		}
		updated = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// PreviousPokemon returns the roster entries a player transferred out, with
// the counters they had when they left.
func (s *playerService) PreviousPokemon(ctx context.Context, tournamentID, playerID string) (*models.Player, []models.Pokemon, error) {
	p, err := s.GetPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return nil, nil, err
	}
	return p, p.PreviousPokemon, nil
}
