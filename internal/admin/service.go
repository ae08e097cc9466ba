// Package admin serves the review console: practice submissions and mock
// interviews across all users.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/events"
	"github.com/interview-prep/backend/internal/models"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// SubmissionStore is the review side of the practice result store.
type SubmissionStore interface {
	ListSubmissions(ctx context.Context, filter models.SubmissionFilter) ([]models.AdminSubmission, error)
	ReviewSubmission(ctx context.Context, id string, review models.SubmissionReview, reviewedAt time.Time) (*models.TestResult, error)
}

// MockReviewer is the admin side of the mock interview service.
type MockReviewer interface {
	AdminList(ctx context.Context, filter models.MockFilter) ([]models.AdminMock, error)
	AdminGet(ctx context.Context, id string) (*models.AdminMock, error)
	Review(ctx context.Context, id string, review models.MockReview) (*models.MockInterview, error)
}

type Service struct {
	submissions SubmissionStore
	mocks       MockReviewer
	publisher   events.Publisher
	now         func() time.Time
}

func NewService(submissions SubmissionStore, mocks MockReviewer, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{submissions: submissions, mocks: mocks, publisher: publisher, now: time.Now}
}

func clampPage(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return min(limit, MaxLimit), max(skip, 0)
}

func (s *Service) Submissions(ctx context.Context, filter models.SubmissionFilter) ([]models.AdminSubmission, error) {
	if filter.Status != "" && !models.ValidResultStatuses[models.ResultStatus(filter.Status)] {
		return nil, apperr.Validation("unknown status %q", filter.Status)
	}
	filter.Limit, filter.Skip = clampPage(filter.Limit, filter.Skip)

	list, err := s.submissions.ListSubmissions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if list == nil {
		list = []models.AdminSubmission{}
	}
	return list, nil
}

func (s *Service) ReviewSubmission(ctx context.Context, id string, review models.SubmissionReview) (*models.TestResult, error) {
	if err := validateReview(review); err != nil {
		return nil, err
	}

	result, err := s.submissions.ReviewSubmission(ctx, id, review, s.now().UTC())
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Submission not found")
	}
	if err != nil {
		return nil, fmt.Errorf("review submission: %w", err)
	}

	events.Emit(ctx, s.publisher, events.SubmissionReviewed, map[string]any{
		"resultId": result.ID,
		"userId":   result.UserID,
		"status":   result.Status,
		"score":    result.Score,
	})
	return result, nil
}

func validateReview(r models.SubmissionReview) error {
	if r.Status != nil && !models.ValidResultStatuses[*r.Status] {
		return apperr.Validation("unknown status %q", *r.Status)
	}
	for name, v := range map[string]*int{
		"score":          r.Score,
		"correctAnswers": r.CorrectAnswers,
		"wrongAnswers":   r.WrongAnswers,
	} {
		if v != nil && *v < 0 {
			return apperr.Validation("%s cannot be negative", name)
		}
	}
	if r.Score != nil && *r.Score > 100 {
		return apperr.Validation("score cannot exceed 100")
	}
	return nil
}

func (s *Service) Mocks(ctx context.Context, filter models.MockFilter) ([]models.AdminMock, error) {
	filter.Limit, filter.Skip = clampPage(filter.Limit, filter.Skip)
	return s.mocks.AdminList(ctx, filter)
}

func (s *Service) Mock(ctx context.Context, id string) (*models.AdminMock, error) {
	return s.mocks.AdminGet(ctx, id)
}

func (s *Service) ReviewMock(ctx context.Context, id string, review models.MockReview) (*models.MockInterview, error) {
	return s.mocks.Review(ctx, id, review)
}
