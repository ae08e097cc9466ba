package practice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/database"
	"github.com/interview-prep/backend/internal/models"
)

// Store is the Postgres implementation of QuestionBank and ResultStore. It
// also serves the admin review queries.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// ── Question Bank ──────────────────────────────────────

const questionColumns = `id, text, options, correct_index, explanation, category, difficulty, topics, created_at`

type questionRow struct {
	ID           string         `db:"id"`
	Text         string         `db:"text"`
	Options      pq.StringArray `db:"options"`
	CorrectIndex *int           `db:"correct_index"`
	Explanation  string         `db:"explanation"`
	Category     string         `db:"category"`
	Difficulty   string         `db:"difficulty"`
	Topics       pq.StringArray `db:"topics"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r questionRow) toModel() models.Question {
	return models.Question{
		ID:           r.ID,
		Text:         r.Text,
		Options:      []string(r.Options),
		CorrectIndex: r.CorrectIndex,
		Explanation:  r.Explanation,
		Category:     r.Category,
		Difficulty:   r.Difficulty,
		Topics:       []string(r.Topics),
		CreatedAt:    r.CreatedAt,
	}
}

// sampleQuery matches the requested difficulty for the exact pass and every
// other difficulty for the fill pass.
func sampleQuery(otherDifficulty bool) string {
	op := "="
	if otherDifficulty {
		op = "<>"
	}
	return fmt.Sprintf(`SELECT %s FROM questions
		WHERE category = $1 AND difficulty %s $2
		ORDER BY random()
		LIMIT $3`, questionColumns, op)
}

func (s *Store) Sample(ctx context.Context, q SampleQuery) ([]models.Question, error) {
	var rows []questionRow
	if err := s.db.SelectContext(ctx, &rows, sampleQuery(q.OtherDifficulty), q.Category, q.Difficulty, q.Size); err != nil {
		return nil, apperr.Storage("sample questions", err)
	}
	return toQuestions(rows), nil
}

func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if database.IsUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []models.Question{}, nil
	}

	var rows []questionRow
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = ANY($1::uuid[])`
	if err := s.db.SelectContext(ctx, &rows, query, pq.Array(valid)); err != nil {
		return nil, apperr.Storage("find questions", err)
	}
	return toQuestions(rows), nil
}

func toQuestions(rows []questionRow) []models.Question {
	out := make([]models.Question, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

// InsertQuestions writes questions in one transaction and returns how many
// were inserted.
func (s *Store) InsertQuestions(ctx context.Context, questions []models.Question) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperr.Storage("begin insert questions", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, q := range questions {
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		createdAt := q.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id, text, options, correct_index, explanation, category, difficulty, topics, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, q.Text, pq.StringArray(nonNil(q.Options)), q.CorrectIndex, q.Explanation,
			q.Category, q.Difficulty, pq.StringArray(nonNil(q.Topics)), createdAt,
		)
		if err != nil {
			return 0, apperr.Storage("insert question", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Storage("commit questions", err)
	}
	return len(questions), nil
}

func (s *Store) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	var counts []models.CategoryCount
	err := s.db.SelectContext(ctx, &counts,
		`SELECT category, COUNT(*) AS count FROM questions GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, apperr.Storage("count questions", err)
	}
	return counts, nil
}

// ── Results ────────────────────────────────────────────

const resultColumns = `r.id, r.user_id, r.category, r.difficulty, r.score, r.total, r.correct_answers,
	r.wrong_answers, r.time_taken, r.submission_code, r.language, r.status, r.topic_results,
	r.correct_answers_map, r.questions_snapshot, r.admin_notes, r.reviewed_at, r.submitted_at`

type resultRow struct {
	ID                string     `db:"id"`
	UserID            string     `db:"user_id"`
	Category          string     `db:"category"`
	Difficulty        string     `db:"difficulty"`
	Score             int        `db:"score"`
	Total             int        `db:"total"`
	CorrectAnswers    int        `db:"correct_answers"`
	WrongAnswers      int        `db:"wrong_answers"`
	TimeTaken         string     `db:"time_taken"`
	SubmissionCode    string     `db:"submission_code"`
	Language          string     `db:"language"`
	Status            string     `db:"status"`
	TopicResults      []byte     `db:"topic_results"`
	CorrectAnswersMap []byte     `db:"correct_answers_map"`
	QuestionsSnapshot []byte     `db:"questions_snapshot"`
	AdminNotes        string     `db:"admin_notes"`
	ReviewedAt        *time.Time `db:"reviewed_at"`
	SubmittedAt       time.Time  `db:"submitted_at"`
}

func (r resultRow) toModel() (models.TestResult, error) {
	res := models.TestResult{
		ID:             r.ID,
		UserID:         r.UserID,
		Category:       r.Category,
		Difficulty:     r.Difficulty,
		Score:          r.Score,
		Total:          r.Total,
		CorrectAnswers: r.CorrectAnswers,
		WrongAnswers:   r.WrongAnswers,
		TimeTaken:      r.TimeTaken,
		SubmissionCode: r.SubmissionCode,
		Language:       r.Language,
		Status:         models.ResultStatus(r.Status),
		AdminNotes:     r.AdminNotes,
		ReviewedAt:     r.ReviewedAt,
		SubmittedAt:    r.SubmittedAt,
	}
	if err := json.Unmarshal(r.TopicResults, &res.TopicResults); err != nil {
		return res, fmt.Errorf("decode topic_results: %w", err)
	}
	if err := json.Unmarshal(r.CorrectAnswersMap, &res.CorrectAnswersMap); err != nil {
		return res, fmt.Errorf("decode correct_answers_map: %w", err)
	}
	if err := json.Unmarshal(r.QuestionsSnapshot, &res.QuestionsSnapshot); err != nil {
		return res, fmt.Errorf("decode questions_snapshot: %w", err)
	}
	return res, nil
}

func (s *Store) Save(ctx context.Context, r *models.TestResult) error {
	topics, err := json.Marshal(nonNilTopics(r.TopicResults))
	if err != nil {
		return fmt.Errorf("encode topic results: %w", err)
	}
	answers := r.CorrectAnswersMap
	if answers == nil {
		answers = map[string]int{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode correct answers: %w", err)
	}
	snapshot := r.QuestionsSnapshot
	if snapshot == nil {
		snapshot = []models.QuestionSnapshot{}
	}
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO test_results (id, user_id, category, difficulty, score, total, correct_answers,
			wrong_answers, time_taken, submission_code, language, status, topic_results,
			correct_answers_map, questions_snapshot, admin_notes, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		r.ID, r.UserID, r.Category, r.Difficulty, r.Score, r.Total, r.CorrectAnswers,
		r.WrongAnswers, r.TimeTaken, r.SubmissionCode, r.Language, string(r.Status), topics,
		answersJSON, snapshotJSON, r.AdminNotes, r.SubmittedAt,
	)
	if err != nil {
		return apperr.Storage("insert result", err)
	}
	return nil
}

const listResultsQuery = `SELECT ` + resultColumns + ` FROM test_results r WHERE r.user_id = $1 ORDER BY r.submitted_at DESC`

func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.TestResult, error) {
	if !database.IsUUID(userID) {
		return []models.TestResult{}, nil
	}
	var rows []resultRow
	err := s.db.SelectContext(ctx, &rows, listResultsQuery, userID)
	if err != nil {
		return nil, apperr.Storage("list results", err)
	}

	out := make([]models.TestResult, 0, len(rows))
	for _, row := range rows {
		res, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.TestResult, error) {
	if !database.IsUUID(id) {
		return nil, apperr.ErrNotFound
	}
	var row resultRow
	err := s.db.GetContext(ctx, &row, `SELECT `+resultColumns+` FROM test_results r WHERE r.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("get result", err)
	}
	res, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ── Admin Review ───────────────────────────────────────

type submissionRow struct {
	resultRow
	UserName  string `db:"user_name"`
	UserEmail string `db:"user_email"`
}

// ListSubmissions returns results for the review console, newest first, with
// the submitter's name and email.
func (s *Store) ListSubmissions(ctx context.Context, f models.SubmissionFilter) ([]models.AdminSubmission, error) {
	var where []string
	var args []interface{}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("r.category = $%d", len(args)))
	}

	query := `SELECT ` + resultColumns + `, u.name AS user_name, u.email AS user_email
		FROM test_results r JOIN users u ON u.id = r.user_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Skip)
	query += fmt.Sprintf(" ORDER BY r.submitted_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var rows []submissionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperr.Storage("list submissions", err)
	}

	out := make([]models.AdminSubmission, 0, len(rows))
	for _, row := range rows {
		res, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, models.AdminSubmission{
			TestResult: res,
			User:       models.Submitter{ID: row.UserID, Name: row.UserName, Email: row.UserEmail},
		})
	}
	return out, nil
}

// ReviewSubmission applies the non-nil review fields and stamps reviewed_at.
func (s *Store) ReviewSubmission(ctx context.Context, id string, review models.SubmissionReview, reviewedAt time.Time) (*models.TestResult, error) {
	if !database.IsUUID(id) {
		return nil, apperr.ErrNotFound
	}

	sets := []string{"reviewed_at = $1"}
	args := []interface{}{reviewedAt}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if review.Status != nil {
		add("status", string(*review.Status))
	}
	if review.Score != nil {
		add("score", *review.Score)
	}
	if review.CorrectAnswers != nil {
		add("correct_answers", *review.CorrectAnswers)
	}
	if review.WrongAnswers != nil {
		add("wrong_answers", *review.WrongAnswers)
	}
	if review.AdminNotes != nil {
		add("admin_notes", *review.AdminNotes)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE test_results r SET %s WHERE r.id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), resultColumns)

	var row resultRow
	err := s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("review submission", err)
	}
	res, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilTopics(t []models.TopicResult) []models.TopicResult {
	if t == nil {
		return []models.TopicResult{}
	}
	return t
}
