// Package mocks runs HR and Technical mock interviews and their admin review.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/events"
	"github.com/interview-prep/backend/internal/models"
)

const (
	SubmittedFeedback = "Responses recorded. Awaiting review."

	DefaultAdminLimit = 50
	MaxAdminLimit     = 200
)

type Repository interface {
	Create(ctx context.Context, m *models.MockInterview) error
	Get(ctx context.Context, id string) (*models.MockInterview, error)
	SaveSubmission(ctx context.Context, m *models.MockInterview) error
	ListByUser(ctx context.Context, userID string) ([]models.MockInterview, error)
	ListAdmin(ctx context.Context, filter models.MockFilter) ([]models.AdminMock, error)
	GetAdmin(ctx context.Context, id string) (*models.AdminMock, error)
	Review(ctx context.Context, id string, score *int, feedback *string, reviewedAt time.Time) (*models.MockInterview, error)
}

// Drafter writes reviewer-facing feedback for a submitted interview.
type Drafter interface {
	Draft(ctx context.Context, mock *models.MockInterview) (string, error)
}

type Service struct {
	repo      Repository
	questions QuestionSets
	drafter   Drafter
	publisher events.Publisher
	now       func() time.Time
}

// NewService wires the mock interview flow. drafter and publisher may be nil.
func NewService(repo Repository, questions QuestionSets, drafter Drafter, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:      repo,
		questions: questions,
		drafter:   drafter,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *Service) Start(ctx context.Context, userID string, mockType models.MockType) (*models.MockInterview, error) {
	questions, ok := s.questions[mockType]
	if !ok {
		return nil, apperr.Validation("Invalid mock interview type")
	}

	m := &models.MockInterview{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      mockType,
		Questions: append([]string(nil), questions...),
		Responses: []string{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create mock: %w", err)
	}
	return m, nil
}

// Submit records the responses of the caller's own interview and scores them
// by completion.
func (s *Service) Submit(ctx context.Context, userID, interviewID string, responses []string) (*models.MockInterview, error) {
	if strings.TrimSpace(interviewID) == "" || responses == nil {
		return nil, apperr.Validation("Missing fields")
	}

	m, err := s.repo.Get(ctx, interviewID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Interview not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get mock: %w", err)
	}
	if m.UserID != userID {
		return nil, apperr.NotFound("Interview not found")
	}

	submittedAt := s.now().UTC()
	m.Responses = responses
	m.Score = CompletionScore(responses, len(m.Questions))
	m.Feedback = SubmittedFeedback
	m.SubmittedAt = &submittedAt
	m.DraftFeedback = s.draft(ctx, m)

	if err := s.repo.SaveSubmission(ctx, m); err != nil {
		return nil, fmt.Errorf("save mock submission: %w", err)
	}

	submissionsTotal.WithLabelValues(string(m.Type)).Inc()
	events.Emit(ctx, s.publisher, events.MockSubmitted, map[string]any{
		"mockId": m.ID,
		"userId": userID,
		"type":   m.Type,
		"score":  m.Score,
	})
	return m, nil
}

func (s *Service) draft(ctx context.Context, m *models.MockInterview) string {
	if s.drafter == nil {
		return ""
	}
	text, err := s.drafter.Draft(ctx, m)
	if err != nil {
		slog.Warn("feedback draft failed", "mock", m.ID, "error", err)
		return ""
	}
	return text
}

// CompletionScore is the rounded percentage of non-blank responses over the
// number of questions asked.
func CompletionScore(responses []string, questions int) int {
	if questions == 0 {
		return 0
	}
	answered := 0
	for _, r := range responses {
		if strings.TrimSpace(r) != "" {
			answered++
		}
	}
	return int(math.Round(float64(answered) / float64(questions) * 100))
}

func (s *Service) List(ctx context.Context, userID string) ([]models.MockInterview, error) {
	mocks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list mocks: %w", err)
	}
	if mocks == nil {
		mocks = []models.MockInterview{}
	}
	return mocks, nil
}

// ── Admin Review ───────────────────────────────────────

func (s *Service) AdminList(ctx context.Context, filter models.MockFilter) ([]models.AdminMock, error) {
	if filter.Type != "" {
		if _, ok := s.questions[models.MockType(filter.Type)]; !ok {
			return nil, apperr.Validation("type must be HR or Technical")
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultAdminLimit
	}
	filter.Limit = min(filter.Limit, MaxAdminLimit)
	filter.Skip = max(filter.Skip, 0)

	mocks, err := s.repo.ListAdmin(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list mocks: %w", err)
	}
	if mocks == nil {
		mocks = []models.AdminMock{}
	}
	return mocks, nil
}

func (s *Service) AdminGet(ctx context.Context, id string) (*models.AdminMock, error) {
	m, err := s.repo.GetAdmin(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Mock not found")
	}
	return m, err
}

// Review stores an admin's score and feedback. Scores are rounded and clamped
// to 0..100.
func (s *Service) Review(ctx context.Context, id string, review models.MockReview) (*models.MockInterview, error) {
	var score *int
	if review.Score != nil {
		if math.IsNaN(*review.Score) {
			return nil, apperr.Validation("score must be a number")
		}
		v := int(math.Round(min(max(*review.Score, 0), 100)))
		score = &v
	}

	m, err := s.repo.Review(ctx, id, score, review.Feedback, s.now().UTC())
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Mock not found")
	}
	if err != nil {
		return nil, fmt.Errorf("review mock: %w", err)
	}

	events.Emit(ctx, s.publisher, events.MockReviewed, map[string]any{
		"mockId": m.ID,
		"userId": m.UserID,
		"score":  m.Score,
	})
	return m, nil
}
