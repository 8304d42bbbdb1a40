package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fleetworks/workorder-api/internal/middleware"
	"github.com/fleetworks/workorder-api/internal/service"
)

// Handlers bundles the HTTP handlers registered on the API router.
type Handlers struct {
	Auth     *AuthHandler
	Requests *RequestHandler
	Invoices *InvoiceHandler
	Uploads  *UploadHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes attaches API routes under the configured prefix. Customer
// intake and uploads are public; everything else requires a staff token.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/requests", h.Requests.Create)
	api.POST("/uploads", h.Uploads.Upload)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))

	secured.GET("/me", h.Auth.Me)

	secured.GET("/requests", h.Requests.List)
	secured.GET("/requests/:id", h.Requests.Get)
	secured.PATCH("/requests/:id", h.Requests.Update)
	secured.DELETE("/requests/:id", h.Requests.Delete)
	secured.POST("/requests/:id/checklist", h.Requests.InitChecklist)
	secured.PATCH("/requests/:id/checklist/:index", h.Requests.UpdateChecklistItem)
	secured.PATCH("/requests/:id/payload", h.Requests.MergePayload)

	secured.GET("/invoices", h.Invoices.List)
	secured.POST("/invoices", h.Invoices.Create)
	secured.GET("/invoices/request/:requestId", h.Invoices.GetByRequest)
	secured.GET("/invoices/:id", h.Invoices.Get)
	secured.PATCH("/invoices/:id", h.Invoices.Update)
	secured.GET("/invoices/:id/pdf", h.Invoices.PDF)
}
