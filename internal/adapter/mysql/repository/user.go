package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/sm8ta/users_crud_service/internal/core/domain"
	"github.com/sm8ta/users_crud_service/internal/core/ports"
)

// ER_DUP_ENTRY
const errDuplicateEntry = 1062

const selectUser = `SELECT id, name, birthDate, cpf, nickname, gender, email, telephone, state, country, createdAt, updatedAt
	FROM users`

// updatableColumns are the only keys accepted in domain.UserChanges.
var updatableColumns = map[string]bool{
	"name":      true,
	"birthDate": true,
	"cpf":       true,
	"nickname":  true,
	"gender":    true,
	"email":     true,
	"telephone": true,
	"state":     true,
	"country":   true,
}

// DBTX is satisfied by *sql.DB and by the lazy mysql.Pool.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type MySQLUserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *MySQLUserRepository {
	return &MySQLUserRepository{
		db,
	}
}

func (r *MySQLUserRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser)
	if err != nil {
		return nil, storageError("ListUsers", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, storageError("ListUsers", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("ListUsers", err)
	}
	return users, nil
}

func (r *MySQLUserRepository) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	query := `INSERT INTO users
	(name, birthDate, cpf, nickname, gender, email, telephone, state, country, createdAt, updatedAt)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.BirthDate, user.CPF, user.Nickname, string(user.Gender),
		user.Email, user.Telephone, user.State, user.Country)
	if err != nil {
		return 0, translateError("CreateUser", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, storageError("CreateUser", err)
	}
	return id, nil
}

func (r *MySQLUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+" WHERE id = ?", id)
	if err != nil {
		return nil, storageError("GetUserByID", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, storageError("GetUserByID", err)
		}
		return nil, domain.ErrUserNotFound
	}

	user, err := scanUser(rows)
	if err != nil {
		return nil, storageError("GetUserByID", err)
	}
	return user, nil
}

// UpdateUser sets exactly the columns in changes and refreshes updatedAt.
// A missing row is not an error here.
func (r *MySQLUserRepository) UpdateUser(ctx context.Context, id int64, changes domain.UserChanges) error {
	if len(changes) == 0 {
		return fmt.Errorf("UpdateUser: no columns to update")
	}

	columns := make([]string, 0, len(changes))
	for column := range changes {
		if !updatableColumns[column] {
			return fmt.Errorf("UpdateUser: column %q is not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+1)
	for _, column := range columns {
		assignments = append(assignments, column+" = ?")
		args = append(args, changes[column])
	}
	assignments = append(assignments, "updatedAt = NOW()")
	args = append(args, id)

	query := "UPDATE users SET " + strings.Join(assignments, ", ") + " WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return translateError("UpdateUser", err)
	}
	return nil
}

func (r *MySQLUserRepository) DeleteUser(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return storageError("DeleteUser", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageError("DeleteUser", err)
	}

	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func scanUser(rows *sql.Rows) (*domain.User, error) {
	user := &domain.User{}
	var gender string
	err := rows.Scan(
		&user.ID,
		&user.Name,
		&user.BirthDate,
		&user.CPF,
		&user.Nickname,
		&gender,
		&user.Email,
		&user.Telephone,
		&user.State,
		&user.Country,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Gender = domain.Gender(gender)
	return user, nil
}

func translateError(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == errDuplicateEntry {
		return &domain.ConflictError{Field: duplicateKey(myErr.Message), Err: err}
	}
	return storageError(op, err)
}

func storageError(op string, err error) error {
	return &domain.StorageError{Op: op, Err: err}
}

// duplicateKey extracts the index name from
// "Duplicate entry 'x' for key 'users.cpf'" (older servers omit the table).
func duplicateKey(message string) string {
	const marker = "for key '"
	i := strings.LastIndex(message, marker)
	if i < 0 {
		return ""
	}
	key := message[i+len(marker):]
	key = strings.TrimSuffix(key, "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key
}

var _ ports.UserRepository = (*MySQLUserRepository)(nil)
