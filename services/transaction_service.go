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

type TransactionInput struct {
	PlayerID string                 `json:"player_id"`
	Type     models.TransactionType `json:"type"`
	Out      string                 `json:"out"`
	In       string                 `json:"in"`
}

// TransactionLog - журнал всех игроков в исходном порядке и остаток по каждому.
type TransactionLog struct {
	Tournament   *models.Tournament
	Transactions []models.Transaction
	Remaining    map[string]int
}

type TransactionService interface {
	Apply(ctx context.Context, tournamentID string, input TransactionInput) (*models.Transaction, error)
	List(ctx context.Context, tournamentID string) (*TransactionLog, error)
}

type transactionService struct {
	tournamentStore
	catalog *catalog.Catalog
}

func NewTransactionService(deps Deps, cat *catalog.Catalog) TransactionService {
	return &transactionService{tournamentStore: newTournamentStore(deps), catalog: cat}
}

func (s *transactionService) Apply(ctx context.Context, tournamentID string, input TransactionInput) (*models.Transaction, error) {
	input.Out = strings.TrimSpace(input.Out)
	input.In = strings.TrimSpace(input.In)

	errs := FieldErrors{}
	if input.PlayerID == "" {
		errs["player_id"] = "Please choose a player"
	}
	if !input.Type.Valid() {
		errs["type"] = ErrInvalidTransaction.Error()
	}
	if input.Out == "" {
		errs["out"] = "Please choose the outgoing Pokemon"
	}
	if input.In == "" {
		errs["in"] = "Please choose the incoming Pokemon"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	var incoming models.CatalogEntry
	if input.Type == models.TransactionTransfer {
		entry, ok := s.catalog.Lookup(input.In)
		if !ok {
			return nil, fmt.Errorf("transfer in %q: %w", input.In, ErrPokemonNotFound)
		}
		incoming = entry
	}
	slotID := uuid.NewString()
	now := nowUTC()

	var applied models.Transaction
	_, err := s.mutate(ctx, tournamentID, brackets.EventTransaction, input, func(t *models.Tournament) error {
		p, err := findPlayer(t, input.PlayerID)
		if err != nil {
			return err
		}
		switch input.Type {
		case models.TransactionTransfer:
			err = scoring.ApplyTransfer(p, input.Out, incoming, slotID, now)
		case models.TransactionTeraCaptain:
			err = scoring.ApplyTeraCaptain(p, input.Out, input.In, now)
		}
		if err != nil {
			return invalid(err)
		}
		applied = p.Transactions[len(p.Transactions)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.TransactionsApplied.WithLabelValues(string(input.Type)).Inc()
	}
	return &applied, nil
}

func (s *transactionService) List(ctx context.Context, tournamentID string) (*TransactionLog, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	txLog := &TransactionLog{
		Tournament:   t,
		Transactions: make([]models.Transaction, 0),
		Remaining:    make(map[string]int, len(t.Players)),
	}
	for _, p := range t.Players {
		txLog.Transactions = append(txLog.Transactions, p.Transactions...)
		txLog.Remaining[p.Name] = scoring.TransactionsRemaining(p)
	}
	return txLog, nil
}
