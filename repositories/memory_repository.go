package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/draft-league/models"
)

// memoryTournamentRepository хранит документы в JSON, поэтому вызывающий
// никогда не получает ссылку на внутреннее состояние.
type memoryTournamentRepository struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryTournamentRepository() TournamentRepository {
	return &memoryTournamentRepository{docs: make(map[string][]byte)}
}

func (r *memoryTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	normalize(t)
	doc, err := encodeTournament(t)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[t.ID]; exists {
		return ErrTournamentConflict
	}
	r.docs[t.ID] = doc
	return nil
}

func (r *memoryTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	doc, ok := r.docs[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return decodeTournament(doc)
}

func (r *memoryTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	r.mu.Lock()
	docs := make([][]byte, 0, len(r.docs))
	for _, doc := range r.docs {
		docs = append(docs, doc)
	}
	r.mu.Unlock()

	tournaments := make([]models.Tournament, 0, len(docs))
	for _, doc := range docs {
		t, err := decodeTournament(doc)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	sort.Slice(tournaments, func(i, j int) bool {
		if !tournaments[i].CreatedAt.Equal(tournaments[j].CreatedAt) {
			return tournaments[i].CreatedAt.After(tournaments[j].CreatedAt)
		}
		return tournaments[i].ID < tournaments[j].ID
	})
	return tournaments, nil
}

func (r *memoryTournamentRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	t, err := decodeTournament(doc)
	if err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	t.ID = id
	t.UpdatedAt = time.Now().UTC()
	normalize(t)

	updated, err := encodeTournament(t)
	if err != nil {
		return nil, err
	}
	r.docs[id] = updated
	return decodeTournament(updated)
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]models.User)}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrUserEmailConflict
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}
