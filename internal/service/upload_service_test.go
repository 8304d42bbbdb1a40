package service

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/workorder-api/pkg/config"
	appErrors "github.com/fleetworks/workorder-api/pkg/errors"
	"github.com/fleetworks/workorder-api/pkg/storage"
)

func newUploadService(t *testing.T, cfg config.UploadsConfig) *UploadService {
	t.Helper()
	cfg.Dir = t.TempDir()
	store, err := storage.NewLocalStorage(cfg.Dir)
	require.NoError(t, err)
	return NewUploadService(store, cfg, nil)
}

func multipartFiles(t *testing.T, names map[string]string) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range names {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["files"]
}

func TestUploadServiceSave(t *testing.T) {
	svc := newUploadService(t, config.UploadsConfig{PublicPath: "/uploads", MaxFiles: 6, MaxFileBytes: 1024})

	attachments, err := svc.Save(multipartFiles(t, map[string]string{"engine.jpg": "fake image bytes"}))
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "engine.jpg", attachments[0].Name)
	assert.True(t, strings.HasPrefix(attachments[0].URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(attachments[0].URL, ".jpg"))
	assert.NotContains(t, attachments[0].URL, "engine")
}

func TestUploadServiceSaveEmpty(t *testing.T) {
	svc := newUploadService(t, config.UploadsConfig{MaxFiles: 6})

	_, err := svc.Save(nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUploadServiceSaveTooMany(t *testing.T) {
	svc := newUploadService(t, config.UploadsConfig{MaxFiles: 1})

	files := multipartFiles(t, map[string]string{"a.jpg": "a", "b.jpg": "b"})
	_, err := svc.Save(files)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUploadServiceSaveTooLarge(t *testing.T) {
	svc := newUploadService(t, config.UploadsConfig{MaxFiles: 6, MaxFileBytes: 4})

	files := multipartFiles(t, map[string]string{"big.jpg": "way more than four bytes"})
	_, err := svc.Save(files)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPayloadTooLarge.Code, appErrors.FromError(err).Code)
}
