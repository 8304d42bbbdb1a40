package service

import (
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetworks/workorder-api/internal/payload"
	"github.com/fleetworks/workorder-api/pkg/config"
	appErrors "github.com/fleetworks/workorder-api/pkg/errors"
	"github.com/fleetworks/workorder-api/pkg/storage"
)

// UploadService accepts photo attachments from the public submission form.
// It is the only place externally-supplied binary data enters the system, so
// both the file count and the per-file size are hard-bounded.
type UploadService struct {
	store  *storage.LocalStorage
	cfg    config.UploadsConfig
	logger *zap.Logger
}

// NewUploadService constructs the upload service.
func NewUploadService(store *storage.LocalStorage, cfg config.UploadsConfig, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{store: store, cfg: cfg, logger: logger}
}

// Save stores the uploaded files and returns the attachment references to be
// embedded in a service payload. The stored filename is randomised; the
// original name survives only in the returned attachment metadata.
func (s *UploadService) Save(files []*multipart.FileHeader) ([]payload.Attachment, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files provided")
	}
	if s.cfg.MaxFiles > 0 && len(files) > s.cfg.MaxFiles {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d files allowed", s.cfg.MaxFiles))
	}

	attachments := make([]payload.Attachment, 0, len(files))
	for _, header := range files {
		if s.cfg.MaxFileBytes > 0 && header.Size > s.cfg.MaxFileBytes {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("%s exceeds the %d byte limit", header.Filename, s.cfg.MaxFileBytes))
		}

		src, err := header.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
		}

		stored := uuid.NewString() + sanitizeExt(header.Filename)
		if _, err := s.store.SaveStream(stored, src, s.cfg.MaxFileBytes); err != nil {
			_ = src.Close()
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
		}
		_ = src.Close()

		attachments = append(attachments, payload.Attachment{
			Name: filepath.Base(header.Filename),
			URL:  path.Join(s.cfg.PublicPath, stored),
		})
	}

	s.logger.Info("attachments stored", zap.Int("count", len(attachments)))
	return attachments, nil
}

// sanitizeExt keeps a short, harmless extension for the stored filename.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
