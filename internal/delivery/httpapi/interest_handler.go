package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AllInterests(c *gin.Context) {
	interests, err := h.services.Interests.All(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch interests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": interests})
}

func (h *Handler) InterestCategories(c *gin.Context) {
	categories, err := h.services.Interests.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) InterestsByCategory(c *gin.Context) {
	interests, err := h.services.Interests.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch interests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": interests})
}
