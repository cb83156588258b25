package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tmutasa/herdmarket-server/internal/models"
	"github.com/tmutasa/herdmarket-server/internal/storage"
)

func (h *Handler) ListBreedingEvents(c *gin.Context) {
	result, err := h.svc.ListBreedingEvents(c.Request.Context(), listFilter(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	result.Links = BuildPageLinks(c.Request.URL.Path, c.Request.URL.Query(), result.CurrentPage, result.LastPage)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateBreedingEvent(c *gin.Context) {
	var req models.CreateBreedingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	event, err := h.svc.CreateBreedingEvent(c.Request.Context(), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *Handler) GetBreedingEvent(c *gin.Context) {
	detail, err := h.svc.GetBreedingEventDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) UpdateBreedingEvent(c *gin.Context) {
	var req models.CreateBreedingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	event, err := h.svc.UpdateBreedingEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *Handler) DeleteBreedingEvent(c *gin.Context) {
	detached, err := h.svc.DeleteBreedingEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteBreedingEventResponse{
		Status:            "success",
		DetachedOffspring: detached,
	})
}

func (h *Handler) AddOffspringBatch(c *gin.Context) {
	var req models.BatchOffspringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	created, err := h.svc.AddOffspringBatch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "offspring": created})
}

// AddOffspring accepts one child row as multipart form data with photos
func (h *Handler) AddOffspring(c *gin.Context) {
	draft, uploads, _, ok := h.offspringForm(c)
	if !ok {
		return
	}
	defer closeUploads(uploads)

	result, err := h.svc.AddOffspringWithPhotos(c.Request.Context(), c.Param("id"), draft, uploads)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UpdateOffspring handles the multipart form POST with a _method=PUT
// override, the way browser forms submit file uploads for edits
func (h *Handler) UpdateOffspring(c *gin.Context) {
	if c.PostForm("_method") != "PUT" {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{
			Status:  "error",
			Code:    "METHOD_NOT_ALLOWED",
			Message: "POST to this endpoint requires _method=PUT",
		})
		return
	}

	draft, uploads, existingPhotoIDs, ok := h.offspringForm(c)
	if !ok {
		return
	}
	defer closeUploads(uploads)

	result, err := h.svc.UpdateOffspring(c.Request.Context(), c.Param("id"), draft, uploads, existingPhotoIDs)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) DeleteOffspring(c *gin.Context) {
	if err := h.svc.DeleteOffspring(c.Request.Context(), c.Param("id")); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "success"})
}

// offspringForm decodes the shared multipart shape of the single-offspring
// create and update forms. On failure it writes the response and returns
// ok=false.
func (h *Handler) offspringForm(c *gin.Context) (models.OffspringDraft, []storage.Upload, []string, bool) {
	var draft models.OffspringDraft

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "BAD_REQUEST",
			Message: "Expected multipart form data",
		})
		return draft, nil, nil, false
	}

	draft = models.OffspringDraft{
		Name:      c.PostForm("name"),
		Species:   c.PostForm("species"),
		Breed:     c.PostForm("breed"),
		Sex:       c.PostForm("sex"),
		EarTag:    c.PostForm("ear_tag"),
		BirthDate: c.PostForm("birth_date"),
		Markings:  c.PostForm("markings"),
	}
	if weight := c.PostForm("weight_kg"); weight != "" {
		w, err := strconv.ParseFloat(weight, 64)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
				Status: "error",
				Errors: map[string][]string{"weight_kg": {"must be a number"}},
			})
			return draft, nil, nil, false
		}
		draft.WeightKg = &w
	}

	fields := map[string][]string{}
	if draft.Name == "" {
		fields["name"] = []string{"is required"}
	}
	if draft.Species == "" {
		fields["species"] = []string{"is required"}
	}
	if draft.Breed == "" {
		fields["breed"] = []string{"is required"}
	}
	if draft.Sex != "male" && draft.Sex != "female" {
		fields["sex"] = []string{"must be one of: male female"}
	}
	if draft.BirthDate == "" {
		fields["birth_date"] = []string{"is required"}
	}
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
			Status: "error",
			Errors: fields,
		})
		return draft, nil, nil, false
	}

	uploads, err := formUploads(form, "photos[]", "photos")
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
		return draft, nil, nil, false
	}

	existing := form.Value["existing_photo_ids[]"]
	if len(existing) == 0 {
		existing = form.Value["existing_photo_ids"]
	}
	return draft, uploads, existing, true
}

// formUploads collects file parts under the first field name that has any.
// A part that cannot be opened fails the whole form rather than being
// silently dropped.
func formUploads(form *multipart.Form, names ...string) ([]storage.Upload, error) {
	var files []*multipart.FileHeader
	for _, name := range names {
		if fs := form.File[name]; len(fs) > 0 {
			files = fs
			break
		}
	}

	uploads := make([]storage.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeUploads(uploads)
			return nil, fmt.Errorf("failed to open uploaded file %q: %w", fh.Filename, err)
		}
		uploads = append(uploads, storage.Upload{
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			SizeBytes:    fh.Size,
			Reader:       f,
		})
	}
	return uploads, nil
}

// closeUploads releases the multipart file handles behind a set of uploads
func closeUploads(uploads []storage.Upload) {
	for _, up := range uploads {
		if closer, ok := up.Reader.(io.Closer); ok {
			closer.Close()
		}
	}
}
