package mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

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

const mockColumns = `m.id, m.user_id, m.type, m.questions, m.responses, m.score, m.feedback,
	m.draft_feedback, m.created_at, m.submitted_at, m.reviewed_at`

const mockOrder = ` ORDER BY m.submitted_at DESC NULLS LAST, m.created_at DESC`

type mockRow struct {
	ID            string         `db:"id"`
	UserID        string         `db:"user_id"`
	Type          string         `db:"type"`
	Questions     pq.StringArray `db:"questions"`
	Responses     pq.StringArray `db:"responses"`
	Score         int            `db:"score"`
	Feedback      string         `db:"feedback"`
	DraftFeedback string         `db:"draft_feedback"`
	CreatedAt     time.Time      `db:"created_at"`
	SubmittedAt   *time.Time     `db:"submitted_at"`
	ReviewedAt    *time.Time     `db:"reviewed_at"`
}

func (r mockRow) toModel() models.MockInterview {
	return models.MockInterview{
		ID:            r.ID,
		UserID:        r.UserID,
		Type:          models.MockType(r.Type),
		Questions:     nonNil(r.Questions),
		Responses:     nonNil(r.Responses),
		Score:         r.Score,
		Feedback:      r.Feedback,
		DraftFeedback: r.DraftFeedback,
		CreatedAt:     r.CreatedAt,
		SubmittedAt:   r.SubmittedAt,
		ReviewedAt:    r.ReviewedAt,
	}
}

type adminMockRow struct {
	mockRow
	UserName  string `db:"user_name"`
	UserEmail string `db:"user_email"`
}

func (r adminMockRow) toModel() models.AdminMock {
	return models.AdminMock{
		MockInterview: r.mockRow.toModel(),
		User:          models.Submitter{ID: r.UserID, Name: r.UserName, Email: r.UserEmail},
	}
}

func nonNil(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

func (s *Store) Create(ctx context.Context, m *models.MockInterview) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mock_interviews (id, user_id, type, questions, responses, score, feedback, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.UserID, string(m.Type), pq.Array(m.Questions), pq.Array(m.Responses), m.Score, m.Feedback, m.CreatedAt,
	)
	return apperr.Storage("insert mock", err)
}

func (s *Store) Get(ctx context.Context, id string) (*models.MockInterview, error) {
	if !database.IsUUID(id) {
		return nil, apperr.ErrNotFound
	}
	var row mockRow
	err := s.db.GetContext(ctx, &row, `SELECT `+mockColumns+` FROM mock_interviews m WHERE m.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("get mock", err)
	}
	m := row.toModel()
	return &m, nil
}

func (s *Store) SaveSubmission(ctx context.Context, m *models.MockInterview) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE mock_interviews
		 SET responses = $2, score = $3, feedback = $4, draft_feedback = $5, submitted_at = $6
		 WHERE id = $1`,
		m.ID, pq.Array(m.Responses), m.Score, m.Feedback, m.DraftFeedback, m.SubmittedAt,
	)
	return apperr.Storage("save mock submission", err)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.MockInterview, error) {
	if !database.IsUUID(userID) {
		return []models.MockInterview{}, nil
	}
	var rows []mockRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+mockColumns+` FROM mock_interviews m WHERE m.user_id = $1`+mockOrder, userID)
	if err != nil {
		return nil, apperr.Storage("list mocks", err)
	}
	out := make([]models.MockInterview, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

const adminMockSelect = `SELECT ` + mockColumns + `, u.name AS user_name, u.email AS user_email
	FROM mock_interviews m JOIN users u ON u.id = m.user_id`

func (s *Store) ListAdmin(ctx context.Context, f models.MockFilter) ([]models.AdminMock, error) {
	query := adminMockSelect
	args := []interface{}{}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" WHERE m.type = $%d", len(args))
	}
	args = append(args, f.Limit, f.Skip)
	query += mockOrder + fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var rows []adminMockRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperr.Storage("list admin mocks", err)
	}
	out := make([]models.AdminMock, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) GetAdmin(ctx context.Context, id string) (*models.AdminMock, error) {
	if !database.IsUUID(id) {
		return nil, apperr.ErrNotFound
	}
	var row adminMockRow
	err := s.db.GetContext(ctx, &row, adminMockSelect+` WHERE m.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("get admin mock", err)
	}
	m := row.toModel()
	return &m, nil
}

// Review sets the non-nil fields and stamps reviewed_at.
func (s *Store) Review(ctx context.Context, id string, score *int, feedback *string, reviewedAt time.Time) (*models.MockInterview, error) {
	if !database.IsUUID(id) {
		return nil, apperr.ErrNotFound
	}
	var row mockRow
	err := s.db.GetContext(ctx, &row,
		`UPDATE mock_interviews m
		 SET score = COALESCE($2, m.score), feedback = COALESCE($3, m.feedback), reviewed_at = $4
		 WHERE m.id = $1
		 RETURNING `+mockColumns,
		id, score, feedback, reviewedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("review mock", err)
	}
	m := row.toModel()
	return &m, nil
}
