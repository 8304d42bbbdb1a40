package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/workorder-api/internal/repository"
	"github.com/fleetworks/workorder-api/internal/service"
	"github.com/fleetworks/workorder-api/pkg/config"
	"github.com/fleetworks/workorder-api/pkg/export"
	"github.com/fleetworks/workorder-api/pkg/storage"
)

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	validate := service.NewValidator()
	requests := service.NewRequestService(store.Requests(), nil, 0, nil, validate, nil, 6)
	invoices := service.NewInvoiceService(store.Invoices(), store.Requests(), validate, nil)
	auth := service.NewAuthService(store.Users(), validate, nil, service.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "workorder-api",
	})
	require.NoError(t, auth.EnsureBootstrapStaff(context.Background(), "staff@example.com", "changeme"))

	fileStore, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	uploads := service.NewUploadService(fileStore, config.UploadsConfig{PublicPath: "/uploads", MaxFiles: 6, MaxFileBytes: 1 << 20}, nil)

	h := Handlers{
		Auth:     NewAuthHandler(auth),
		Requests: NewRequestHandler(requests),
		Invoices: NewInvoiceHandler(invoices, requests, export.NewInvoicePDFExporter(config.ShopConfig{Name: "Test Shop"})),
		Uploads:  NewUploadHandler(uploads),
		Metrics:  NewMetricsHandler(nil),
	}

	r := gin.New()
	RegisterRoutes(r, "/api", h, auth)

	login := doJSON(r, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "staff@example.com",
		"password": "changeme",
	}, "")
	require.Equal(t, http.StatusOK, login.Code)
	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	return r, envelope.Data.AccessToken
}

func doJSON(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func submissionBody() map[string]interface{} {
	return map[string]interface{}{
		"customerName": "John Doe",
		"contactInfo":  "555-0123",
		"vehicleInfo":  "2018 Ford F-150",
		"services": map[string]interface{}{
			"filters":   map[string]interface{}{"items": []string{"Oil filter"}},
			"issueText": "Routine service.",
		},
	}
}

func TestRequestRoutesPublicSubmission(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/requests", submissionBody(), "")
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data struct {
			ID     int    `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.ID)
	assert.Equal(t, "pending", envelope.Data.Status)
}

func TestRequestRoutesValidationError(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/requests", map[string]interface{}{"customerName": "John Doe"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestRequestRoutesRequireToken(t *testing.T) {
	r, token := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/requests", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/requests", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequestRoutesStatusUpdate(t *testing.T) {
	r, token := newTestRouter(t)

	created := doJSON(r, http.MethodPost, "/api/requests", submissionBody(), "")
	require.Equal(t, http.StatusCreated, created.Code)

	w := doJSON(r, http.MethodPatch, "/api/requests/1", map[string]string{"status": "in_progress"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPatch, "/api/requests/1", map[string]string{"status": "archived"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceRoutesLifecycle(t *testing.T) {
	r, token := newTestRouter(t)

	created := doJSON(r, http.MethodPost, "/api/requests", submissionBody(), "")
	require.Equal(t, http.StatusCreated, created.Code)

	w := doJSON(r, http.MethodGet, "/api/invoices/request/1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &probe))
	assert.Equal(t, "null", string(probe.Data))

	w = doJSON(r, http.MethodPost, "/api/invoices", map[string]interface{}{
		"requestId":  1,
		"laborHours": "2.5",
		"laborRate":  "80",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/invoices", map[string]interface{}{"requestId": 1}, token)
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodGet, "/api/invoices/1/pdf", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}
