package resumes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/database"
	"github.com/interview-prep/backend/internal/models"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const resumeColumns = `id, user_id, filename, original_name, mime_type, size, url, created_at`

type resumeRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Filename     string    `db:"filename"`
	OriginalName string    `db:"original_name"`
	MimeType     string    `db:"mime_type"`
	Size         int64     `db:"size"`
	URL          string    `db:"url"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r resumeRow) toModel() models.Resume {
	return models.Resume(r)
}

func (s *Store) Create(ctx context.Context, r *models.Resume) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resumes (`+resumeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.UserID, r.Filename, r.OriginalName, r.MimeType, r.Size, r.URL, r.CreatedAt,
	)
	return apperr.Storage("insert resume", err)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Resume, error) {
	if !database.IsUUID(userID) {
		return []models.Resume{}, nil
	}
	var rows []resumeRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, apperr.Storage("list resumes", err)
	}
	out := make([]models.Resume, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id, userID string) (*models.Resume, error) {
	if !database.IsUUID(id) {
		return nil, apperr.ErrNotFound
	}
	var row resumeRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("get resume", err)
	}
	r := row.toModel()
	return &r, nil
}

// Delete removes the caller's resume row and returns what was deleted.
func (s *Store) Delete(ctx context.Context, id, userID string) (*models.Resume, error) {
	if !database.IsUUID(id) {
		return nil, apperr.ErrNotFound
	}
	var row resumeRow
	err := s.db.GetContext(ctx, &row,
		`DELETE FROM resumes WHERE id = $1 AND user_id = $2 RETURNING `+resumeColumns, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("delete resume", err)
	}
	r := row.toModel()
	return &r, nil
}

// Filenames returns every stored filename that a resume row references.
func (s *Store) Filenames(ctx context.Context) (map[string]bool, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT filename FROM resumes`); err != nil {
		return nil, apperr.Storage("list resume filenames", err)
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out, nil
}
