// Package memory is a process-local UserRepository used for local runs
// without MySQL (DB_DRIVER=memory) and in tests. It enforces the same
// unique cpf/email constraints as the users table.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sm8ta/users_crud_service/internal/core/domain"
	"github.com/sm8ta/users_crud_service/internal/core/ports"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	store  map[int64]domain.User
	now    func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		nextID: 1,
		store:  make(map[int64]domain.User),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.store))
	for _, user := range r.store {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(0, user.CPF, user.Email); err != nil {
		return 0, err
	}

	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.nextID++
	r.store[stored.ID] = stored
	return stored.ID, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id int64, changes domain.UserChanges) error {
	if len(changes) == 0 {
		return fmt.Errorf("UpdateUser: no columns to update")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.store[id]
	if !ok {
		return nil
	}

	for column, value := range changes {
		if err := apply(&user, column, value); err != nil {
			return err
		}
	}
	if err := r.checkUnique(id, user.CPF, user.Email); err != nil {
		return err
	}

	user.UpdatedAt = r.now()
	r.store[id] = user
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *UserRepository) checkUnique(self int64, cpf, email string) error {
	for id, other := range r.store {
		if id == self {
			continue
		}
		if other.CPF == cpf {
			return &domain.ConflictError{Field: "cpf"}
		}
		if other.Email == email {
			return &domain.ConflictError{Field: "email"}
		}
	}
	return nil
}

func apply(user *domain.User, column string, value any) error {
	if column == "birthDate" {
		t, ok := value.(time.Time)
		if !ok {
			return fmt.Errorf("UpdateUser: birthDate must be a time.Time, got %T", value)
		}
		user.BirthDate = t
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("UpdateUser: %s must be a string, got %T", column, value)
	}
	switch column {
	case "name":
		user.Name = s
	case "cpf":
		user.CPF = s
	case "nickname":
		user.Nickname = s
	case "gender":
		user.Gender = domain.Gender(s)
	case "email":
		user.Email = s
	case "telephone":
		user.Telephone = s
	case "state":
		user.State = s
	case "country":
		user.Country = s
	default:
		return fmt.Errorf("UpdateUser: column %q is not updatable", column)
	}
	return nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
