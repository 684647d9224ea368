package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrEthical07/otpauth"
)

const userColumns = `id::text, name, email, role, password_hash, is_verified, created_at, updated_at`

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	db DB
}

func New(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (otpauth.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *Store) FindByID(ctx context.Context, id string) (otpauth.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return otpauth.User{}, otpauth.ErrUserNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) Create(ctx context.Context, nu otpauth.NewUser) (otpauth.User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return otpauth.User{}, fmt.Errorf("generate user id: %w", err)
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, role, password_hash, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		id.String(), nu.Name, nu.Email, nu.Role, nu.PasswordHash, nu.IsVerified,
	)
	user, err := scanUser(row)
	if err != nil {
		if isDuplicateKey(err) {
			return otpauth.User{}, otpauth.ErrUserExists
		}
		return otpauth.User{}, err
	}
	return user, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return otpauth.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (otpauth.User, error) {
	var u otpauth.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return otpauth.User{}, otpauth.ErrUserNotFound
		}
		return otpauth.User{}, err
	}
	return u, nil
}

// isDuplicateKey reports a unique violation (SQLSTATE 23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ otpauth.UserStore = (*Store)(nil)
