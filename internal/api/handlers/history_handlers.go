package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListSwaps gibt den Auftrags-Verlauf mit Pagination zurück
func (h *APIHandler) ListSwaps(c *gin.Context) {
	// Paginierung
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	records, total, err := h.repo.GetSwaps(pageSize, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to fetch swaps: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"swaps": records,
		"pagination": gin.H{
			"page":     page,
			"pageSize": pageSize,
			"total":    total,
		},
	})
}

// GetSwap gibt einen einzelnen Auftrag zurück
func (h *APIHandler) GetSwap(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid swap ID"})
		return
	}

	record, err := h.repo.GetSwapByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to fetch swap: %v", err)})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Swap not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteSwap löscht einen Auftrag aus dem Verlauf
func (h *APIHandler) DeleteSwap(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid swap ID"})
		return
	}

	record, err := h.repo.GetSwapByID(uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to fetch swap: %v", err)})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Swap not found"})
		return
	}

	if err := h.repo.DeleteSwap(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to delete swap: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Swap deleted"})
}
