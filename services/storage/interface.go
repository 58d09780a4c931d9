package storage

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"chelmassage/utils"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ArchiveService keeps a copy of every rendered intake form.
type ArchiveService interface {
	ArchiveIntake(ctx context.Context, fileName string, data []byte, submittedAt time.Time) (string, error)
}

// GCSArchiveService writes intake PDFs to a Cloud Storage bucket, encrypted when a key is set.
type GCSArchiveService struct {
	client        *storage.Client
	bucketName    string
	encryptionKey string
}

// NewGCSArchiveService creates a client from the configured service account.
func NewGCSArchiveService(ctx context.Context, bucketName, encryptionKey string) (*GCSArchiveService, error) {
	opts, err := utils.GoogleClientOptions(utils.ScopeStorage)
	if err != nil {
		return nil, err
	}
	return NewGCSArchiveServiceWithOptions(ctx, bucketName, encryptionKey, opts...)
}

func NewGCSArchiveServiceWithOptions(ctx context.Context, bucketName, encryptionKey string, opts ...option.ClientOption) (*GCSArchiveService, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("storage: bucket name is empty")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSArchiveService{
		client:        client,
		bucketName:    bucketName,
		encryptionKey: encryptionKey,
	}, nil
}

// ArchiveIntake uploads the document and returns its object path.
func (s *GCSArchiveService) ArchiveIntake(ctx context.Context, fileName string, data []byte, submittedAt time.Time) (string, error) {
	objectPath := ObjectPath(fileName, submittedAt, s.encryptionKey != "")
	contentType := "application/pdf"

	if s.encryptionKey != "" {
		sealed, err := encryptBytes(data, s.encryptionKey)
		if err != nil {
			return "", err
		}
		data = sealed
		contentType = "application/octet-stream"
	}

	w := s.client.Bucket(s.bucketName).Object(objectPath).NewWriter(ctx)
	w.ObjectAttrs.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write archive object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}
	return objectPath, nil
}

// Close releases the underlying client.
func (s *GCSArchiveService) Close() error {
	return s.client.Close()
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectPath files archives by month: intake/2025/06/20250601T140000Z_IntakeForm_Lee_Ann.pdf[.enc].
func ObjectPath(fileName string, submittedAt time.Time, encrypted bool) string {
	ts := submittedAt.UTC()
	name := unsafeName.ReplaceAllString(strings.TrimSpace(fileName), "_")
	if name == "" {
		name = "intake.pdf"
	}
	obj := path.Join("intake", ts.Format("2006"), ts.Format("01"), ts.Format("20060102T150405Z")+"_"+name)
	if encrypted {
		obj += ".enc"
	}
	return obj
}
