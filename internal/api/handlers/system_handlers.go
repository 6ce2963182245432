package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"faceswap-go/internal/utils"
)

// GetHealth ist der Liveness-Endpunkt
func (h *APIHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStatus gibt den Zustand des Dienstes zurück: Modell-Bereitschaft,
// Auftrags-Statistiken und Systemauslastung
func (h *APIHandler) GetStatus(c *gin.Context) {
	stats, err := h.repo.GetStatistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to fetch statistics: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"model_ready": h.model.Ready(),
		"statistics":  stats,
		"system":      utils.GetSystemStats(h.workerPool),
	})
}
