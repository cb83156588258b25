package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tmutasa/herdmarket-server/internal/models"
)

// The buyer and seller screens are the same screen pointed at different
// tables, so each handler is a closure over the side.

func (h *Handler) profileLister(side models.ProfileSide) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.svc.ListProfiles(c.Request.Context(), side, listFilter(c))
		if err != nil {
			h.serviceError(c, err)
			return
		}
		result.Links = BuildPageLinks(c.Request.URL.Path, c.Request.URL.Query(), result.CurrentPage, result.LastPage)
		c.JSON(http.StatusOK, result)
	}
}

func (h *Handler) profileCreator(side models.ProfileSide) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.bindingError(c, err)
			return
		}

		profile, err := h.svc.CreateProfile(c.Request.Context(), side, req)
		if err != nil {
			h.serviceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, profile)
	}
}

func (h *Handler) profileGetter(side models.ProfileSide) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := h.svc.GetProfileDetail(c.Request.Context(), side, c.Param("id"))
		if err != nil {
			h.serviceError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func (h *Handler) profileVerifier(side models.ProfileSide) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := h.svc.VerifyProfile(c.Request.Context(), side, c.Param("id"))
		if err != nil {
			h.serviceError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

func (h *Handler) profileRejecter(side models.ProfileSide) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RejectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.bindingError(c, err)
			return
		}

		profile, err := h.svc.RejectProfile(c.Request.Context(), side, c.Param("id"), req.Reason)
		if err != nil {
			h.serviceError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// profileAssetLinker handles PUT with either an asset id or an explicit JSON
// null, which unlinks
func (h *Handler) profileAssetLinker(side models.ProfileSide) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LinkAssetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.bindingError(c, err)
			return
		}

		detail, err := h.svc.LinkProfileAsset(c.Request.Context(), side, c.Param("id"), req.FractionalAssetID)
		if err != nil {
			h.serviceError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}
