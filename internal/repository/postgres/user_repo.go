package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"techtalks/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, email, password_hash, name, role, created_at`

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Name, string(u.Role), u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	var role string
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

// ListByRoles returns users holding any of roles, oldest first.
func (r *userRepository) ListByRoles(ctx context.Context, roles ...domain.Role) ([]*domain.User, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ANY($1) ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = domain.Role(role)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
