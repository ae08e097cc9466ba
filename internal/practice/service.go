package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/events"
	"github.com/interview-prep/backend/internal/models"
)

const defaultLanguage = "javascript"

// ResultStore persists graded attempts.
type ResultStore interface {
	Save(ctx context.Context, result *models.TestResult) error
	// ListByUser returns every result of userID, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.TestResult, error)
	// GetByID returns apperr.ErrNotFound when no result has the id.
	GetByID(ctx context.Context, id string) (*models.TestResult, error)
}

type Service struct {
	bank      QuestionBank
	results   ResultStore
	publisher events.Publisher
	now       func() time.Time
}

func NewService(bank QuestionBank, results ResultStore, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		bank:      bank,
		results:   results,
		publisher: publisher,
		now:       time.Now,
	}
}

// GradingSummary is the headline of a submit response.
type GradingSummary struct {
	Total          int `json:"total"`
	CorrectAnswers int `json:"correctAnswers"`
	WrongAnswers   int `json:"wrongAnswers"`
	Score          int `json:"score"`
}

type SubmitResponse struct {
	Result         *models.TestResult   `json:"result"`
	Grading        GradingSummary       `json:"grading"`
	CorrectAnswers map[string]int       `json:"correctAnswers"`
	TopicResults   []models.TopicResult `json:"topicResults"`
}

// ── Question Sampling ──────────────────────────────────

func (s *Service) Questions(ctx context.Context, category, difficulty string, limit int) ([]models.Question, error) {
	questions, err := Sample(ctx, s.bank, category, difficulty, limit)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []models.Question{}
	}
	return questions, nil
}

// ── Grading ────────────────────────────────────────────

// Grade resolves the referenced questions and scores the answers. A bank
// failure aborts the whole call.
func (s *Service) Grade(ctx context.Context, sub models.Submission) (GradingResult, error) {
	if err := validateSubmission(sub); err != nil {
		return GradingResult{}, err
	}
	questions, err := s.bank.FindByIDs(ctx, distinctIDs(sub.Answers))
	if err != nil {
		return GradingResult{}, fmt.Errorf("resolve questions: %w", err)
	}
	return Grade(sub.Answers, questions), nil
}

func validateSubmission(sub models.Submission) error {
	if strings.TrimSpace(sub.Category) == "" {
		return apperr.Validation("Missing required fields (category and answers array)")
	}
	if sub.Answers == nil {
		return apperr.Validation("Missing required fields (category and answers array)")
	}
	return nil
}

// Submit grades a submission and stores it as a new result owned by userID.
func (s *Service) Submit(ctx context.Context, userID string, sub models.Submission) (*SubmitResponse, error) {
	graded, err := s.Grade(ctx, sub)
	if err != nil {
		return nil, err
	}

	language := sub.Language
	if language == "" {
		language = defaultLanguage
	}

	result := &models.TestResult{
		ID:                uuid.NewString(),
		UserID:            userID,
		Category:          sub.Category,
		Difficulty:        sub.Difficulty,
		Score:             graded.Score,
		Total:             graded.Total,
		CorrectAnswers:    graded.CorrectAnswers,
		WrongAnswers:      graded.WrongAnswers,
		TimeTaken:         sub.TimeTaken,
		SubmissionCode:    sub.SubmissionCode,
		Language:          language,
		Status:            models.StatusManualReview,
		TopicResults:      graded.TopicResults,
		CorrectAnswersMap: graded.CorrectAnswersMap,
		QuestionsSnapshot: graded.QuestionsSnapshot,
		SubmittedAt:       s.now().UTC(),
	}

	if err := s.results.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	submissionsTotal.WithLabelValues(categoryLabel(result.Category)).Inc()
	scoreHistogram.Observe(float64(result.Score))
	events.Emit(ctx, s.publisher, events.PracticeSubmitted, map[string]any{
		"resultId": result.ID,
		"userId":   userID,
		"category": result.Category,
		"score":    result.Score,
	})

	return &SubmitResponse{
		Result: result,
		Grading: GradingSummary{
			Total:          graded.Total,
			CorrectAnswers: graded.CorrectAnswers,
			WrongAnswers:   graded.WrongAnswers,
			Score:          graded.Score,
		},
		CorrectAnswers: graded.CorrectAnswersMap,
		TopicResults:   graded.TopicResults,
	}, nil
}

// ── History ────────────────────────────────────────────

func (s *Service) Results(ctx context.Context, userID string) ([]models.TestResult, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []models.TestResult{}
	}
	return results, nil
}

// Result returns one result if it belongs to userID.
func (s *Service) Result(ctx context.Context, id, userID string) (*models.TestResult, error) {
	result, err := s.results.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Result not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	if result.UserID != userID {
		return nil, apperr.Forbidden("Forbidden")
	}
	return result, nil
}

// ── Reports ────────────────────────────────────────────

func (s *Service) Report(ctx context.Context, userID string) (*models.UserReport, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	report := BuildReport(results)
	return &report, nil
}
