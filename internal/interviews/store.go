package interviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
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

const interviewColumns = `id, user_id, company, role, date, package, status, notes, topics, created_at`

type interviewRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Company   string         `db:"company"`
	Role      string         `db:"role"`
	Date      time.Time      `db:"date"`
	Package   string         `db:"package"`
	Status    string         `db:"status"`
	Notes     string         `db:"notes"`
	Topics    pq.StringArray `db:"topics"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r interviewRow) toModel() models.Interview {
	topics := []string(r.Topics)
	if topics == nil {
		topics = []string{}
	}
	return models.Interview{
		ID:        r.ID,
		UserID:    r.UserID,
		Company:   r.Company,
		Role:      r.Role,
		Date:      r.Date,
		Package:   r.Package,
		Status:    models.InterviewStatus(r.Status),
		Notes:     r.Notes,
		Topics:    topics,
		CreatedAt: r.CreatedAt,
	}
}

func (s *Store) Create(ctx context.Context, iv *models.Interview) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interviews (`+interviewColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		iv.ID, iv.UserID, iv.Company, iv.Role, iv.Date, iv.Package, string(iv.Status), iv.Notes,
		pq.Array(iv.Topics), iv.CreatedAt,
	)
	return apperr.Storage("insert interview", err)
}

// whereClause builds the owner-scoped filter for List.
func whereClause(userID string, f models.InterviewFilter, now time.Time) (string, []interface{}) {
	conds := []string{"user_id = $1"}
	args := []interface{}{userID}
	argIdx := 2

	if f.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, f.Status)
		argIdx++
	}
	if f.Query != "" {
		conds = append(conds, fmt.Sprintf("(company ILIKE $%d OR role ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(f.Query)+"%")
		argIdx++
	}
	if f.Upcoming != nil {
		op := "<"
		if *f.Upcoming {
			op = ">="
		}
		conds = append(conds, fmt.Sprintf("date %s $%d", op, argIdx))
		args = append(args, now)
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *Store) List(ctx context.Context, userID string, f models.InterviewFilter, now time.Time) ([]models.Interview, int, error) {
	if !database.IsUUID(userID) {
		return []models.Interview{}, 0, nil
	}
	where, args := whereClause(userID, f, now)

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM interviews WHERE `+where, args...); err != nil {
		return nil, 0, apperr.Storage("count interviews", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM interviews WHERE %s ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		interviewColumns, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	var rows []interviewRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, apperr.Storage("list interviews", err)
	}
	out := make([]models.Interview, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, total, nil
}

func (s *Store) Get(ctx context.Context, id, userID string) (*models.Interview, error) {
	if !database.IsUUID(id) {
		return nil, apperr.ErrNotFound
	}
	var row interviewRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("get interview", err)
	}
	iv := row.toModel()
	return &iv, nil
}

func (s *Store) Update(ctx context.Context, iv *models.Interview) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE interviews
		 SET company = $3, role = $4, date = $5, package = $6, status = $7, notes = $8, topics = $9
		 WHERE id = $1 AND user_id = $2`,
		iv.ID, iv.UserID, iv.Company, iv.Role, iv.Date, iv.Package, string(iv.Status), iv.Notes, pq.Array(iv.Topics),
	)
	if err != nil {
		return apperr.Storage("update interview", err)
	}
	return requireRow(res)
}

func (s *Store) Delete(ctx context.Context, id, userID string) error {
	if !database.IsUUID(id) {
		return apperr.ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM interviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperr.Storage("delete interview", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("rows affected", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
