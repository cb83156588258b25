package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

// SubmitComplianceApplication is the public intake endpoint. It accepts
// multipart form data with optional supporting documents.
func (h *Handler) SubmitComplianceApplication(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "BAD_REQUEST",
			Message: "Expected multipart form data",
		})
		return
	}

	req := models.ComplianceIntakeRequest{
		OrganizationName: c.PostForm("organization_name"),
		ContactEmail:     c.PostForm("contact_email"),
	}
	req.AssistanceTypes = form.Value["assistance_types[]"]
	if len(req.AssistanceTypes) == 0 {
		req.AssistanceTypes = form.Value["assistance_types"]
	}

	documents, err := formUploads(form, "documents[]", "documents")
	if err != nil {
		h.log.Error("failed to read uploaded file", map[string]interface{}{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Code:    "INTERNAL_ERROR",
			Message: "Failed to read an uploaded file",
		})
		return
	}
	defer closeUploads(documents)

	detail, err := h.svc.SubmitComplianceApplication(c.Request.Context(), req, documents)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *Handler) ListComplianceApplications(c *gin.Context) {
	filter := listFilter(c)
	// The review queue filters on review_status rather than the generic status key
	if rs := c.Query("review_status"); rs != "" {
		filter.Status = rs
	}
	result, err := h.svc.ListComplianceApplications(c.Request.Context(), filter)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	result.Links = BuildPageLinks(c.Request.URL.Path, c.Request.URL.Query(), result.CurrentPage, result.LastPage)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetComplianceApplication(c *gin.Context) {
	detail, err := h.svc.GetComplianceApplicationDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) ReviewComplianceApplication(c *gin.Context) {
	var req models.ReviewComplianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	app, err := h.svc.ReviewComplianceApplication(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
