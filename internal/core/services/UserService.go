package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sm8ta/users_crud_service/internal/core/domain"
	"github.com/sm8ta/users_crud_service/internal/core/ports"
)

const (
	MsgMissingFields   = "Todos os campos obrigatórios devem ser preenchidos."
	MsgInvalidGender   = "Gênero inválido. Escolha Masculino, Feminino ou Outros."
	MsgInvalidDate     = "Formato de data inválido. Use dd-MM-yyyy."
	MsgNothingToUpdate = "Nenhum campo para atualizar."
	MsgEmptyField      = "Campo %s não pode ser vazio."
)

const genderRule = "oneof=Masculino Feminino Outros"

type UserService struct {
	repo     ports.UserRepository
	logger   ports.LoggerPort
	validate *validator.Validate
	cache    ports.CachePort
	cacheTTL time.Duration
}

func NewUserService(
	repo ports.UserRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
	cacheTTL time.Duration,
) *UserService {
	return &UserService{
		repo:     repo,
		logger:   logger,
		validate: validate,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (us *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := us.repo.ListUsers(ctx)
	if err != nil {
		us.logger.ErrorCtx(ctx, "Failed to list users", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return users, nil
}

// GetUser reads through the cache. An entry is only served while its
// generation matches the current one; every write bumps the generation.
func (us *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	gen, genErr := us.generation(ctx, id)
	if genErr == nil {
		if user, ok := us.cached(ctx, id, gen); ok {
			return user, nil
		}
	}

	// Going to db
	user, err := us.repo.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			us.logger.ErrorCtx(ctx, "Failed to get user", map[string]interface{}{
				"id":    id,
				"error": err.Error(),
			})
		}
		return nil, err
	}

	if genErr == nil {
		us.store(ctx, id, gen, user)
	}
	return user, nil
}

func (us *UserService) CreateUser(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	user, err := us.validateInput(input)
	if err != nil {
		return nil, err
	}

	id, err := us.repo.CreateUser(ctx, user)
	if err != nil {
		us.logWriteError(ctx, "Failed to create user in database", err, nil)
		return nil, err
	}

	created, err := us.repo.GetUserByID(ctx, id)
	if err != nil {
		us.logger.ErrorCtx(ctx, "Failed to load created user", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return nil, err
	}

	us.logger.InfoCtx(ctx, "User created", map[string]interface{}{
		"id": id,
	})
	return created, nil
}

// UpdateUser writes the supplied fields, then re-reads the row. A missing id
// is only detected by the re-read.
func (us *UserService) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	changes, err := us.buildChanges(patch)
	if err != nil {
		return nil, err
	}

	if err := us.repo.UpdateUser(ctx, id, changes); err != nil {
		us.logWriteError(ctx, "Failed to update user", err, map[string]interface{}{"id": id})
		return nil, err
	}

	us.invalidate(ctx, id)

	updated, err := us.repo.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			us.logger.ErrorCtx(ctx, "Failed to load updated user", map[string]interface{}{
				"id":    id,
				"error": err.Error(),
			})
		}
		return nil, err
	}

	us.logger.InfoCtx(ctx, "User updated", map[string]interface{}{
		"id":     id,
		"fields": len(changes),
	})
	return updated, nil
}

func (us *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := us.repo.DeleteUser(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			us.logger.ErrorCtx(ctx, "Failed to delete user", map[string]interface{}{
				"id":    id,
				"error": err.Error(),
			})
		}
		return err
	}

	us.invalidate(ctx, id)

	us.logger.InfoCtx(ctx, "User deleted", map[string]interface{}{
		"id": id,
	})
	return nil
}

func (us *UserService) validateInput(input domain.UserInput) (*domain.User, error) {
	if err := us.validate.Struct(input); err != nil {
		return nil, domain.NewValidationError(MsgMissingFields)
	}

	if err := us.validate.Var(input.Gender, genderRule); err != nil {
		return nil, domain.NewValidationError(MsgInvalidGender)
	}

	birthDate, err := domain.ParseBirthDate(input.BirthDate)
	if err != nil {
		return nil, domain.NewValidationError(MsgInvalidDate)
	}

	return &domain.User{
		Name:      input.Name,
		BirthDate: birthDate,
		CPF:       input.CPF,
		Nickname:  input.Nickname,
		Gender:    domain.Gender(input.Gender),
		Email:     input.Email,
		Telephone: input.Telephone,
		State:     input.State,
		Country:   input.Country,
	}, nil
}

// buildChanges maps every supplied field to its column.
func (us *UserService) buildChanges(patch domain.UserPatch) (domain.UserChanges, error) {
	if patch.Gender != nil {
		if err := us.validate.Var(*patch.Gender, genderRule); err != nil {
			return nil, domain.NewValidationError(MsgInvalidGender)
		}
	}

	changes := domain.UserChanges{}

	if patch.BirthDate != nil {
		birthDate, err := domain.ParseBirthDate(*patch.BirthDate)
		if err != nil {
			return nil, domain.NewValidationError(MsgInvalidDate)
		}
		changes["birthDate"] = birthDate
	}

	text := []struct {
		column string
		value  *string
	}{
		{"name", patch.Name},
		{"cpf", patch.CPF},
		{"nickname", patch.Nickname},
		{"gender", patch.Gender},
		{"email", patch.Email},
		{"telephone", patch.Telephone},
		{"state", patch.State},
		{"country", patch.Country},
	}
	for _, field := range text {
		if field.value == nil {
			continue
		}
		if *field.value == "" {
			return nil, domain.NewValidationError(fmt.Sprintf(MsgEmptyField, field.column))
		}
		changes[field.column] = *field.value
	}

	if len(changes) == 0 {
		return nil, domain.NewValidationError(MsgNothingToUpdate)
	}
	return changes, nil
}

func (us *UserService) generation(ctx context.Context, id int64) (string, error) {
	data, err := us.cache.Get(ctx, userGenKey(id))
	if errors.Is(err, ports.ErrCacheMiss) {
		return "", nil
	}
	if err != nil {
		us.logger.Warn("Failed to read user cache generation", map[string]interface{}{
			"error": err.Error(),
			"id":    id,
		})
		return "", err
	}
	return string(data), nil
}

func (us *UserService) cached(ctx context.Context, id int64, gen string) (*domain.User, bool) {
	data, err := us.cache.Get(ctx, userCacheKey(id))
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			us.logger.Warn("Failed to read user cache", map[string]interface{}{
				"error": err.Error(),
				"id":    id,
			})
		}
		return nil, false
	}

	var entry cachedUser
	if err := json.Unmarshal(data, &entry); err != nil || entry.Gen != gen {
		return nil, false
	}
	us.logger.Debug("User found in cache", map[string]interface{}{
		"id": id,
	})
	return &entry.User, true
}

func (us *UserService) store(ctx context.Context, id int64, gen string, user *domain.User) {
	data, err := json.Marshal(cachedUser{Gen: gen, User: *user})
	if err != nil {
		us.logger.Warn("Failed to marshal user for cache", map[string]interface{}{
			"error": err.Error(),
			"id":    id,
		})
		return
	}
	if err := us.cache.Set(ctx, userCacheKey(id), data, us.cacheTTL); err != nil {
		us.logger.Warn("Failed to cache user", map[string]interface{}{
			"error": err.Error(),
			"id":    id,
		})
	}
}

// invalidate bumps the generation before dropping the entry. The generation
// outlives any entry written under the previous one.
func (us *UserService) invalidate(ctx context.Context, id int64) {
	if err := us.cache.Set(ctx, userGenKey(id), []byte(uuid.NewString()), 2*us.cacheTTL); err != nil {
		us.logger.Warn("Failed to bump user cache generation", map[string]interface{}{
			"error": err.Error(),
			"id":    id,
		})
	}
	if err := us.cache.Delete(ctx, userCacheKey(id)); err != nil {
		us.logger.Warn("Failed to invalidate user cache", map[string]interface{}{
			"error": err.Error(),
			"id":    id,
		})
	}
}

func (us *UserService) logWriteError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["error"] = err.Error()

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		fields["field"] = conflict.Field
		us.logger.InfoCtx(ctx, msg+": duplicate value", fields)
		return
	}
	us.logger.ErrorCtx(ctx, msg, fields)
}

type cachedUser struct {
	Gen  string      `json:"gen"`
	User domain.User `json:"user"`
}

func userCacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func userGenKey(id int64) string {
	return fmt.Sprintf("user:%d:gen", id)
}

var _ ports.UserService = (*UserService)(nil)
