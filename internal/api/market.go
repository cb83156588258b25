package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListListings(c *gin.Context) {
	result, err := h.svc.ListListings(c.Request.Context(), listFilter(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	result.Links = BuildPageLinks(c.Request.URL.Path, c.Request.URL.Query(), result.CurrentPage, result.LastPage)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) RemoveListing(c *gin.Context) {
	listing, err := h.svc.RemoveListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *Handler) ListPayouts(c *gin.Context) {
	result, err := h.svc.ListPayouts(c.Request.Context(), listFilter(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	result.Links = BuildPageLinks(c.Request.URL.Path, c.Request.URL.Query(), result.CurrentPage, result.LastPage)
	c.JSON(http.StatusOK, result)
}

// ApprovePayout records the authenticated admin as the approver
func (h *Handler) ApprovePayout(c *gin.Context) {
	approverID := c.GetString("userId")

	payout, err := h.svc.ApprovePayout(c.Request.Context(), c.Param("id"), approverID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payout)
}
