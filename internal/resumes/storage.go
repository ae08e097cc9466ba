package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/config"
)

// StoredObject is one file held by a FileStorage.
type StoredObject struct {
	Name    string
	ModTime time.Time
}

// FileStorage holds uploaded resume files by name.
type FileStorage interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	// Open returns apperr.ErrNotFound when no file has the name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]StoredObject, error)
	// URL is the public address of a stored file, or "" when files are only
	// reachable through the API.
	URL(name string) string
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid object name %q", name)
	}
	return nil
}

// ── LocalStorage: files on disk ───────────────────────

type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	if err := validName(name); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return apperr.Storage("create upload", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return apperr.Storage("write upload", err)
	}
	return apperr.Storage("close upload", f.Close())
}

func (s *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if err := validName(name); err != nil {
		return nil, apperr.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("open upload", err)
	}
	return f, nil
}

func (s *LocalStorage) Remove(_ context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Storage("remove upload", err)
	}
	return nil
}

func (s *LocalStorage) List(_ context.Context) ([]StoredObject, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperr.Storage("list uploads", err)
	}
	var out []StoredObject
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, StoredObject{Name: e.Name(), ModTime: info.ModTime()})
	}
	return out, nil
}

func (s *LocalStorage) URL(name string) string {
	return s.baseURL + "/" + name
}

// ── MinIOStorage: S3-compatible bucket ────────────────

type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage connects to the endpoint and creates the bucket if needed.
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &MinIOStorage{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinIOStorage) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if err := validName(name); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return apperr.Storage("put object", err)
}

func (s *MinIOStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperr.Storage("get object", err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Storage("stat object", err)
	}
	return obj, nil
}

func (s *MinIOStorage) Remove(ctx context.Context, name string) error {
	return apperr.Storage("remove object", s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}))
}

func (s *MinIOStorage) List(ctx context.Context) ([]StoredObject, error) {
	var out []StoredObject
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, apperr.Storage("list objects", object.Err)
		}
		out = append(out, StoredObject{Name: object.Key, ModTime: object.LastModified})
	}
	return out, nil
}

func (s *MinIOStorage) URL(string) string {
	return ""
}
