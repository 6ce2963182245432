package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"faceswap-go/internal/config"
	"faceswap-go/internal/core/processor"
	"faceswap-go/internal/core/swap"
	"faceswap-go/internal/db/repository"
)

// SwapService führt Swap-Aufträge aus (implementiert vom Worker-Pool)
type SwapService interface {
	ProcessSwap(ctx context.Context, request *processor.SwapRequest) (*swap.Result, error)
}

// ModelStatus meldet, ob das Modell geladen ist
type ModelStatus interface {
	Ready() bool
}

// APIHandler behandelt API-Anfragen für das System
type APIHandler struct {
	cfg        *config.Config
	service    SwapService
	repo       repository.Repository
	model      ModelStatus
	workerPool *processor.WorkerPool // optional, nur für Statistiken
}

// NewAPIHandler erstellt einen neuen API-Handler
func NewAPIHandler(cfg *config.Config, service SwapService, repo repository.Repository, model ModelStatus, workerPool *processor.WorkerPool) *APIHandler {
	return &APIHandler{
		cfg:        cfg,
		service:    service,
		repo:       repo,
		model:      model,
		workerPool: workerPool,
	}
}

// RegisterRoutes registriert alle API-Routen
func (h *APIHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Verarbeitungs-Endpunkte
	router.POST("/swap", h.ProcessSwap)

	// Verlaufs-Endpunkte
	router.GET("/swaps", h.ListSwaps)
	router.GET("/swaps/:id", h.GetSwap)
	router.DELETE("/swaps/:id", h.DeleteSwap)

	// System-Endpunkte
	router.GET("/health", h.GetHealth)
	router.GET("/status", h.GetStatus)
}
