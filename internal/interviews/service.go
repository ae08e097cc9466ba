// Package interviews tracks the real interviews a user has scheduled or sat.
package interviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Repository persists interviews. Every lookup is scoped to the owner and
// reports apperr.ErrNotFound for rows the user does not own.
type Repository interface {
	Create(ctx context.Context, iv *models.Interview) error
	List(ctx context.Context, userID string, filter models.InterviewFilter, now time.Time) ([]models.Interview, int, error)
	Get(ctx context.Context, id, userID string) (*models.Interview, error)
	Update(ctx context.Context, iv *models.Interview) error
	Delete(ctx context.Context, id, userID string) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, userID string, in models.InterviewInput) (*models.Interview, error) {
	if blank(in.Company) || blank(in.Role) || blank(in.Date) {
		return nil, apperr.Validation("company, role and date are required")
	}

	iv := &models.Interview{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    models.InterviewPending,
		Topics:    []string{},
		CreatedAt: s.now().UTC(),
	}
	if err := apply(iv, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, iv); err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}
	return iv, nil
}

func (s *Service) List(ctx context.Context, userID string, filter models.InterviewFilter) (*models.InterviewList, error) {
	filter = normalizeFilter(filter)
	interviews, total, err := s.repo.List(ctx, userID, filter, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	if interviews == nil {
		interviews = []models.Interview{}
	}
	return &models.InterviewList{
		Interviews: interviews,
		Meta: models.PageMeta{
			Total: total,
			Page:  filter.Page,
			Pages: pageCount(total, filter.Limit),
			Limit: filter.Limit,
		},
	}, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*models.Interview, error) {
	iv, err := s.repo.Get(ctx, id, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Interview not found")
	}
	return iv, err
}

// Update applies the fields present in the input and leaves the rest alone.
func (s *Service) Update(ctx context.Context, id, userID string, in models.InterviewInput) (*models.Interview, error) {
	iv, err := s.repo.Get(ctx, id, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Interview not found or not allowed")
	}
	if err != nil {
		return nil, err
	}
	if err := apply(iv, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, iv); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Interview not found or not allowed")
		}
		return nil, fmt.Errorf("update interview: %w", err)
	}
	return iv, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("Interview not found or not allowed")
	}
	return err
}

func apply(iv *models.Interview, in models.InterviewInput) error {
	if in.Company != nil {
		company := strings.TrimSpace(*in.Company)
		if company == "" {
			return apperr.Validation("company cannot be empty")
		}
		if len([]rune(company)) > models.MaxCompanyLength {
			return apperr.Validation("company must be at most %d characters", models.MaxCompanyLength)
		}
		iv.Company = company
	}
	if in.Role != nil {
		role := strings.TrimSpace(*in.Role)
		if role == "" {
			return apperr.Validation("role cannot be empty")
		}
		iv.Role = role
	}
	if in.Date != nil {
		date, err := ParseDate(*in.Date)
		if err != nil {
			return err
		}
		iv.Date = date
	}
	if in.Package != nil {
		iv.Package = *in.Package
	}
	if in.Status != nil && *in.Status != "" {
		if !models.ValidInterviewStatuses[*in.Status] {
			return apperr.Validation("status must be one of Passed, Failed, Pending")
		}
		iv.Status = *in.Status
	}
	if in.Notes != nil {
		iv.Notes = *in.Notes
	}
	if in.Topics != nil {
		iv.Topics = in.Topics
	}
	return nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts an RFC 3339 timestamp, a datetime-local value or a bare
// calendar date (midnight UTC).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("invalid date %q", s)
}

func normalizeFilter(f models.InterviewFilter) models.InterviewFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit < 1:
		f.Limit = DefaultPageSize
	case f.Limit > MaxPageSize:
		f.Limit = MaxPageSize
	}
	f.Query = strings.TrimSpace(f.Query)
	return f
}

func pageCount(total, limit int) int {
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
