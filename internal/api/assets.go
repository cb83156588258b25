package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

func (h *Handler) ListFractionalAssets(c *gin.Context) {
	result, err := h.svc.ListFractionalAssets(c.Request.Context(), listFilter(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	result.Links = BuildPageLinks(c.Request.URL.Path, c.Request.URL.Query(), result.CurrentPage, result.LastPage)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateFractionalAsset(c *gin.Context) {
	var req models.CreateFractionalAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	asset, err := h.svc.CreateFractionalAsset(c.Request.Context(), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, asset)
}

func (h *Handler) UpdateAssetStatus(c *gin.Context) {
	var req models.UpdateAssetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	asset, err := h.svc.UpdateAssetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *Handler) ListTags(c *gin.Context) {
	result, err := h.svc.ListTags(c.Request.Context(), listFilter(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	result.Links = BuildPageLinks(c.Request.URL.Path, c.Request.URL.Query(), result.CurrentPage, result.LastPage)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GenerateTags(c *gin.Context) {
	var req models.GenerateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	tags, err := h.svc.GenerateTags(c.Request.Context(), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "tags": tags})
}

func (h *Handler) AssignTag(c *gin.Context) {
	var req models.AssignTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	tag, err := h.svc.AssignTag(c.Request.Context(), c.Param("id"), req.AnimalID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *Handler) UnassignTag(c *gin.Context) {
	tag, err := h.svc.UnassignTag(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *Handler) LinkTagAsset(c *gin.Context) {
	var req models.LinkAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindingError(c, err)
		return
	}

	tag, err := h.svc.LinkTagAsset(c.Request.Context(), c.Param("id"), req.FractionalAssetID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}
