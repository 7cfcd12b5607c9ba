package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/draft-league/brackets"
	"github.com/Dosada05/draft-league/models"
	"github.com/Dosada05/draft-league/scoring"
	"github.com/google/uuid"
)

const minTournamentNameLength = 3

type TournamentInput struct {
	Name      string                  `json:"name"`
	PlayerNum int                     `json:"player_num"`
	Format    models.TournamentFormat `json:"format"`
	StartDate time.Time               `json:"start_date"`
}

// PlayerCard - игрок на дашборде вместе с производными значениями.
type PlayerCard struct {
	models.Player
	RosterCost            int
	RemainingPoints       int
	CanAddMore            bool
	TransactionsRemaining int
	Totals                scoring.Totals
}

type DashboardView struct {
	Tournament      *models.Tournament
	Players         []PlayerCard
	OpenSlots       int
	PendingFixtures []brackets.Fixture
}

type TournamentService interface {
	Create(ctx context.Context, ownerID string, input TournamentInput) (*models.Tournament, error)
	Update(ctx context.Context, id string, input TournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context) ([]models.TournamentSummary, error)
	Dashboard(ctx context.Context, id string) (*DashboardView, error)
}

type tournamentService struct {
	tournamentStore
}

func NewTournamentService(deps Deps) TournamentService {
	return &tournamentService{tournamentStore: newTournamentStore(deps)}
}

func validateTournamentInput(input *TournamentInput) error {
	input.Name = strings.TrimSpace(input.Name)
	errs := FieldErrors{}
	if len([]rune(input.Name)) < minTournamentNameLength {
		errs["name"] = fmt.Sprintf("Name must be at least %d characters", minTournamentNameLength)
	}
	if input.PlayerNum < 2 {
		errs["player_num"] = "Number of players must be at least 2"
	}
	if !input.Format.Valid() {
		errs["format"] = "Please choose a format"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *tournamentService) Create(ctx context.Context, ownerID string, input TournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(&input); err != nil {
		return nil, err
	}

	now := nowUTC()
	start := input.StartDate
	if start.IsZero() {
		start = now
	}
	t := &models.Tournament{
		ID:        uuid.NewString(),
		Name:      input.Name,
		PlayerNum: input.PlayerNum,
		Format:    input.Format,
		OwnerID:   ownerID,
		StartDate: start,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", mapRepoError(err))
	}
	s.Logger.InfoContext(ctx, "tournament created", "tournament_id", t.ID, "format", t.Format)
	return t, nil
}

func (s *tournamentService) Update(ctx context.Context, id string, input TournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(&input); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, brackets.EventTournamentUpdated, map[string]string{"tournament_id": id}, func(t *models.Tournament) error {
		if input.PlayerNum < len(t.Players) {
			return FieldErrors{"player_num": ErrPlayerNumBelowPlayers.Error()}
		}
		t.Name = input.Name
		t.PlayerNum = input.PlayerNum
		t.Format = input.Format
		if !input.StartDate.IsZero() {
			t.StartDate = input.StartDate
		}
		return nil
	})
}

func (s *tournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	return s.load(ctx, id)
}

func (s *tournamentService) List(ctx context.Context) ([]models.TournamentSummary, error) {
	tournaments, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	summaries := make([]models.TournamentSummary, 0, len(tournaments))
	for i := range tournaments {
		summaries = append(summaries, tournaments[i].Summary())
	}
	return summaries, nil
}

func (s *tournamentService) Dashboard(ctx context.Context, id string) (*DashboardView, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	cards := make([]PlayerCard, 0, len(t.Players))
	for _, p := range t.Players {
		cards = append(cards, PlayerCard{
			Player:                p,
			RosterCost:            scoring.RosterCost(p),
			RemainingPoints:       scoring.RemainingPoints(p),
			CanAddMore:            scoring.CanAddMore(p),
			TransactionsRemaining: scoring.TransactionsRemaining(p),
			Totals:                scoring.PlayerTotals(p),
		})
	}

	open := t.PlayerNum - len(t.Players)
	if open < 0 {
		open = 0
	}
	return &DashboardView{
		Tournament:      t,
		Players:         cards,
		OpenSlots:       open,
		PendingFixtures: brackets.PendingFixtures(t),
	}, nil
}
