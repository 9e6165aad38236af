package receipt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/field-expense/internal"
)

type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
}

type Service struct {
	store   BlobStore
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store BlobStore, publicBaseURL string, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// Upload stores a receipt as <owner>/<unix millis>_<name> and returns its
// public URL. Failures surface as ErrUploadFailed; the expense row can still
// be submitted without an image.
func (s *Service) Upload(ctx context.Context, ownerID int64, filename string, r io.Reader) (string, error) {
	name := sanitizeName(filename)
	if name == "" {
		return "", internal.ErrUploadFailed.WithDetails(map[string]string{"file": "missing file name"})
	}

	key := fmt.Sprintf("%d/%d_%s", ownerID, s.now().UnixMilli(), name)
	if err := s.store.Put(ctx, key, r); err != nil {
		s.logger.Error("receipt upload failed", "error", err, "user_id", ownerID, "key", key)
		return "", internal.ErrUploadFailed.WithCause(err)
	}

	s.logger.Info("receipt uploaded", "user_id", ownerID, "key", key)
	return s.baseURL + "/" + key, nil
}

func sanitizeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == '/' || r == '?' || r == '#' || r == '%':
			return -1
		}
		return r
	}, name)
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
