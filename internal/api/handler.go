package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tmutasa/herdmarket-server/internal/logger"
	"github.com/tmutasa/herdmarket-server/internal/metrics"
	"github.com/tmutasa/herdmarket-server/internal/models"
	"github.com/tmutasa/herdmarket-server/internal/service"
)

// Handler contains the HTTP handlers for the API
type Handler struct {
	svc service.Service
	log logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service, log logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// SetupRoutes configures all the API routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
	}

	// Public intake endpoint, no auth required
	router.POST("/api/compliance-applications", h.SubmitComplianceApplication)

	admin := router.Group("/api/admin")
	admin.Use(AuthMiddleware())
	{
		admin.GET("/breeding-events", h.ListBreedingEvents)
		admin.POST("/breeding-events", h.CreateBreedingEvent)
		admin.GET("/breeding-events/:id", h.GetBreedingEvent)
		admin.PUT("/breeding-events/:id", h.UpdateBreedingEvent)
		admin.DELETE("/breeding-events/:id", h.DeleteBreedingEvent)
		admin.POST("/breeding-events/:id/offspring/batch", h.AddOffspringBatch)
		admin.POST("/breeding-events/:id/offspring", h.AddOffspring)
		admin.POST("/offspring/:id", h.UpdateOffspring) // multipart with _method=PUT
		admin.DELETE("/offspring/:id", h.DeleteOffspring)

		admin.GET("/buyer-profiles", h.profileLister(models.BuyerSide))
		admin.POST("/buyer-profiles", h.profileCreator(models.BuyerSide))
		admin.GET("/buyer-profiles/:id", h.profileGetter(models.BuyerSide))
		admin.POST("/buyer-profiles/:id/verify", h.profileVerifier(models.BuyerSide))
		admin.POST("/buyer-profiles/:id/reject", h.profileRejecter(models.BuyerSide))
		admin.PUT("/buyer-profiles/:id/fractional-asset", h.profileAssetLinker(models.BuyerSide))

		admin.GET("/seller-profiles", h.profileLister(models.SellerSide))
		admin.POST("/seller-profiles", h.profileCreator(models.SellerSide))
		admin.GET("/seller-profiles/:id", h.profileGetter(models.SellerSide))
		admin.POST("/seller-profiles/:id/verify", h.profileVerifier(models.SellerSide))
		admin.POST("/seller-profiles/:id/reject", h.profileRejecter(models.SellerSide))
		admin.PUT("/seller-profiles/:id/fractional-asset", h.profileAssetLinker(models.SellerSide))

		admin.GET("/fractional-assets", h.ListFractionalAssets)
		admin.POST("/fractional-assets", h.CreateFractionalAsset)
		admin.PUT("/fractional-assets/:id/status", h.UpdateAssetStatus)

		admin.GET("/tags", h.ListTags)
		admin.POST("/tags/generate", h.GenerateTags)
		admin.POST("/tags/:id/assign", h.AssignTag)
		admin.POST("/tags/:id/unassign", h.UnassignTag)
		admin.PUT("/tags/:id/fractional-asset", h.LinkTagAsset)

		admin.GET("/listings", h.ListListings)
		admin.POST("/listings/:id/remove", h.RemoveListing)

		admin.GET("/payouts", h.ListPayouts)
		admin.POST("/payouts/:id/approve", h.ApprovePayout)

		admin.GET("/compliance-applications", h.ListComplianceApplications)
		admin.GET("/compliance-applications/:id", h.GetComplianceApplication)
		admin.POST("/compliance-applications/:id/review", h.ReviewComplianceApplication)
	}
}

// Auth handlers

func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		// Do not leak which part of the credentials was wrong
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Code:    "UNAUTHORIZED",
				Message: "Invalid email or password",
			})
			return
		}
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Shared helpers

// listFilter reads the combinable filter query parameters
func listFilter(c *gin.Context) models.ListFilter {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	return models.ListFilter{
		Search:        strings.TrimSpace(c.Query("search")),
		Status:        c.Query("status"),
		Country:       c.Query("country"),
		Method:        c.Query("method"),
		PaymentStatus: c.Query("payment_status"),
		Page:          page,
		PerPage:       perPage,
	}
}

// serviceError translates service-layer errors into HTTP responses
func (h *Handler) serviceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
			Status: "error",
			Errors: verr.Fields,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Code:    "NOT_FOUND",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrConflict):
		metrics.MutationsFailed.WithLabelValues(c.FullPath(), "conflict").Inc()
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Status:  "error",
			Code:    "CONFLICT",
			Message: err.Error(),
		})
	default:
		h.log.Error("internal error", map[string]interface{}{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		metrics.MutationsFailed.WithLabelValues(c.FullPath(), "internal").Inc()
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Code:    "INTERNAL_ERROR",
			Message: "An internal error occurred",
		})
	}
}

// bindingError maps gin binding failures to the field-keyed validation shape
// the admin forms render under their inputs
func (h *Handler) bindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			name := fieldName(fe)
			fields[name] = append(fields[name], validationMessage(fe))
		}
		c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
			Status: "error",
			Errors: fields,
		})
		return
	}
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "BAD_REQUEST",
		Message: "Invalid request body",
	})
}

// fieldName derives the json-style key from a validator namespace like
// "BatchOffspringRequest.Offspring[2].BirthDate"
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	ns = strings.ReplaceAll(ns, "]", "")

	parts := strings.Split(ns, ".")
	for i, part := range parts {
		parts[i] = toSnake(part)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (s[i-1] < 'A' || s[i-1] > 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "alpha":
		return "must contain only letters"
	default:
		return "is invalid"
	}
}
