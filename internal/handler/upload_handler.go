package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetworks/workorder-api/internal/service"
	appErrors "github.com/fleetworks/workorder-api/pkg/errors"
	"github.com/fleetworks/workorder-api/pkg/response"
)

// UploadHandler receives customer photo uploads.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload godoc
// @Summary Upload attachment files
// @Description Accepts multipart form files and returns attachment descriptors
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart form"))
		return
	}

	attachments, err := h.uploads.Save(form.File["files"])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attachments)
}
