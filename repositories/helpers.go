package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/draft-league/models"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// MutateFunc изменяет загруженный документ. Ошибка отменяет запись
// и возвращается вызывающему без обёртки.
type MutateFunc func(t *models.Tournament) error

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

func encodeTournament(t *models.Tournament) ([]byte, error) {
	doc, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	return doc, nil
}

func decodeTournament(doc []byte) (*models.Tournament, error) {
	var t models.Tournament
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament document: %w", err)
	}
	normalize(&t)
	return &t, nil
}

// normalize replaces nil slices so templates and JSON always see empty lists.
func normalize(t *models.Tournament) {
	if t.Players == nil {
		t.Players = []models.Player{}
	}
	if t.Matches == nil {
		t.Matches = []models.Match{}
	}
	if t.KoMatches == nil {
		t.KoMatches = []models.KoMatch{}
	}
	for i := range t.Players {
		p := &t.Players[i]
		if p.Pokemon == nil {
			p.Pokemon = []models.Pokemon{}
		}
		if p.PreviousPokemon == nil {
			p.PreviousPokemon = []models.Pokemon{}
		}
		if p.Transactions == nil {
			p.Transactions = []models.Transaction{}
		}
	}
}
