// Package resumes stores uploaded resume documents and their metadata.
package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/models"
)

// MaxUploadSize is the largest accepted resume, in bytes.
const MaxUploadSize = 5 << 20

var allowedTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

type Repository interface {
	Create(ctx context.Context, r *models.Resume) error
	ListByUser(ctx context.Context, userID string) ([]models.Resume, error)
	Get(ctx context.Context, id, userID string) (*models.Resume, error)
	Delete(ctx context.Context, id, userID string) (*models.Resume, error)
	Filenames(ctx context.Context) (map[string]bool, error)
}

// Upload describes one incoming file.
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64
	Body         io.Reader
}

type Service struct {
	repo  Repository
	files FileStorage
	now   func() time.Time
}

func NewService(repo Repository, files FileStorage) *Service {
	return &Service{repo: repo, files: files, now: time.Now}
}

func (s *Service) Upload(ctx context.Context, userID string, up Upload) (*models.Resume, error) {
	mimeType := strings.ToLower(strings.TrimSpace(up.MimeType))
	if !allowedTypes[mimeType] {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return nil, apperr.Validation("Only PDF/DOC/DOCX allowed")
	}
	if up.Size > MaxUploadSize {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return nil, apperr.Validation("File too large (max 5MB)")
	}

	now := s.now().UTC()
	filename := StoredFilename(now, userID, up.OriginalName)
	if err := s.files.Put(ctx, filename, up.Body, up.Size, mimeType); err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store resume file: %w", err)
	}

	r := &models.Resume{
		ID:           uuid.NewString(),
		UserID:       userID,
		Filename:     filename,
		OriginalName: up.OriginalName,
		MimeType:     mimeType,
		Size:         up.Size,
		URL:          s.files.URL(filename),
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		if rmErr := s.files.Remove(ctx, filename); rmErr != nil {
			slog.Warn("remove unrecorded upload", "file", filename, "error", rmErr)
		}
		return nil, fmt.Errorf("record resume: %w", err)
	}

	uploadsTotal.WithLabelValues("ok").Inc()
	return r, nil
}

// StoredFilename is "<unix millis>-<user id><ext>", with the extension taken
// from the client's filename.
func StoredFilename(at time.Time, userID, originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	return fmt.Sprintf("%d-%s%s", at.UnixMilli(), userID, ext)
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Resume, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	if list == nil {
		list = []models.Resume{}
	}
	return list, nil
}

// Open returns the caller's resume and a reader over its stored bytes.
func (s *Service) Open(ctx context.Context, id, userID string) (*models.Resume, io.ReadCloser, error) {
	r, err := s.repo.Get(ctx, id, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, apperr.NotFound("Resume not found")
	}
	if err != nil {
		return nil, nil, err
	}

	body, err := s.files.Open(ctx, r.Filename)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, apperr.NotFound("Resume file missing")
	}
	if err != nil {
		return nil, nil, err
	}
	return r, body, nil
}

// Delete removes the record first; a stored file left behind is swept later.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	r, err := s.repo.Delete(ctx, id, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("Resume not found")
	}
	if err != nil {
		return err
	}
	if err := s.files.Remove(ctx, r.Filename); err != nil {
		slog.Warn("failed to delete resume file", "file", r.Filename, "error", err)
	}
	return nil
}
