package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/database"
	"github.com/interview-prep/backend/internal/models"
)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const userColumns = `id, name, email, password_hash, avatar_url, role, created_at`

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	AvatarURL    string    `db:"avatar_url"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		AvatarURL:    r.AvatarURL,
		Role:         models.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}

func (s *Store) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, avatar_url, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.AvatarURL, string(u.Role), u.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrEmailTaken
	}
	if err != nil {
		return apperr.Storage("insert user", err)
	}
	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("find user by email", err)
	}
	return row.toModel(), nil
}

// FindByID returns apperr.ErrNotFound for unknown or malformed ids.
func (s *Store) FindByID(ctx context.Context, id string) (*models.User, error) {
	if !database.IsUUID(id) {
		return nil, apperr.ErrNotFound
	}
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("find user", err)
	}
	return row.toModel(), nil
}

// UpsertAdmin creates an admin account, or promotes and re-keys the existing
// account with the same email.
func (s *Store) UpsertAdmin(ctx context.Context, u *models.User) (*models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, 'admin', NOW())
		 ON CONFLICT (email) DO UPDATE
		   SET role = 'admin', password_hash = EXCLUDED.password_hash, name = EXCLUDED.name
		 RETURNING `+userColumns,
		u.ID, u.Name, u.Email, u.PasswordHash,
	)
	if err != nil {
		return nil, apperr.Storage("upsert admin", err)
	}
	return row.toModel(), nil
}
