package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/draft-league/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament id conflict")
)

// TournamentRepository хранит турнир одним документом вместе с игроками и матчами.
// Mutate - единственный способ изменить существующий документ: чтение,
// изменение и запись выполняются атомарно для одного турнира.
type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Mutate(ctx context.Context, id string, fn MutateFunc) (*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	normalize(t)
	doc, err := encodeTournament(t)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tournaments (id, name, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.ExecContext(ctx, query, t.ID, t.Name, doc, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return ErrTournamentConflict
		}
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	return r.getByID(ctx, r.db, id, false)
}

func (r *postgresTournamentRepository) getByID(ctx context.Context, exec SQLExecutor, id string, forUpdate bool) (*models.Tournament, error) {
	query := `SELECT doc FROM tournaments WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var doc []byte
	if err := exec.QueryRowContext(ctx, query, id).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}
	return decodeTournament(doc)
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `SELECT doc FROM tournaments ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		t, err := decodeTournament(doc)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (result *models.Tournament, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
			if err != nil {
				result = nil
				err = fmt.Errorf("failed to commit tournament %s: %w", id, err)
			}
		}
	}()

	t, err := r.getByID(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if err = fn(t); err != nil {
		return nil, err
	}
	t.ID = id
	t.UpdatedAt = time.Now().UTC()
	normalize(t)

	doc, err := encodeTournament(t)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE tournaments SET name = $2, doc = $3, updated_at = $4 WHERE id = $1`,
		id, t.Name, doc, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update tournament %s: %w", id, err)
	}
	if err = checkAffectedRows(res, ErrTournamentNotFound); err != nil {
		return nil, err
	}
	return t, nil
}
