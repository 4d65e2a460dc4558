package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"POSTS_BACK-END/internal/models"
)

const userColumns = `id, email, password, phone_number, created_at`

// UserRepository persists users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.PhoneNumber, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and returns it with its server-assigned fields.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, phoneNumber *string) (*models.User, error) {
	var user *models.User
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		user, err = scanUser(tx.QueryRow(ctx,
			`INSERT INTO users (email, password, phone_number) VALUES ($1, $2, $3) RETURNING `+userColumns,
			email, passwordHash, phoneNumber))
		return err
	})
	if err != nil {
		return nil, classify("create user", err)
	}
	return user, nil
}

// GetByID returns ErrNotFound when no user has the given id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, classify("get user", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, classify("get user by email", err)
	}
	return user, nil
}
