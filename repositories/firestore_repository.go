package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Dosada05/draft-league/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	tournamentsCollection = "tournaments"
	usersCollection       = "app_users"
)

type firestoreTournamentRepository struct {
	client *firestore.Client
}

func NewFirestoreTournamentRepository(client *firestore.Client) TournamentRepository {
	return &firestoreTournamentRepository{client: client}
}

func (r *firestoreTournamentRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(tournamentsCollection).Doc(id)
}

func (r *firestoreTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	normalize(t)
	if _, err := r.doc(t.ID).Create(ctx, t); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrTournamentConflict
		}
		return fmt.Errorf("failed to create tournament document: %w", err)
	}
	return nil
}

func (r *firestoreTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}
	return snapshotToTournament(snap)
}

func (r *firestoreTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	iter := r.client.Collection(tournamentsCollection).OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	tournaments := make([]models.Tournament, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list tournaments: %w", err)
		}
		t, err := snapshotToTournament(snap)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *t)
	}
	return tournaments, nil
}

// Mutate выполняется в транзакции Firestore; при конфликте клиент сам
// повторяет функцию, поэтому fn не должна иметь побочных эффектов.
func (r *firestoreTournamentRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.Tournament, error) {
	ref := r.doc(id)
	var result *models.Tournament

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrTournamentNotFound
			}
			return err
		}
		t, err := snapshotToTournament(snap)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		t.ID = id
		t.UpdatedAt = time.Now().UTC()
		normalize(t)
		if err := tx.Set(ref, t); err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func snapshotToTournament(snap *firestore.DocumentSnapshot) (*models.Tournament, error) {
	var t models.Tournament
	if err := snap.DataTo(&t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %s: %w", snap.Ref.ID, err)
	}
	if t.ID == "" {
		t.ID = snap.Ref.ID
	}
	normalize(&t)
	return &t, nil
}

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

// Create проверяет уникальность email внутри транзакции.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	users := r.client.Collection(usersCollection)
	ref := users.Doc(user.ID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(users.Where("email", "==", user.Email).Limit(1)).GetAll()
		if err != nil {
			return fmt.Errorf("failed to check user email: %w", err)
		}
		if len(existing) > 0 {
			return ErrUserEmailConflict
		}
		return tx.Create(ref, user)
	})
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	snap, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return snapshotToUser(snap)
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	iter := r.client.Collection(usersCollection).
		Where("email", "==", strings.ToLower(email)).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return snapshotToUser(snap)
}

func snapshotToUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", snap.Ref.ID, err)
	}
	if user.ID == "" {
		user.ID = snap.Ref.ID
	}
	return &user, nil
}
