package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"faceswap-go/internal/core/models"
	"faceswap-go/internal/core/swap"
	"faceswap-go/internal/db/repository"
	"faceswap-go/internal/faces"
)

// Engine abstrahiert die Swap-Pipeline für den Prozessor
type Engine interface {
	Swap(ctx context.Context, sourceData, destData []byte, opts swap.Options) (*swap.Result, error)
}

// EventPublisher wird nach jedem abgeschlossenen Auftrag benachrichtigt
type EventPublisher interface {
	PublishSwapEvent(record *models.SwapRecord)
}

// SwapRequest enthält die Eingaben eines Swap-Auftrags
type SwapRequest struct {
	SourceData []byte
	DestData   []byte
	Options    swap.Options
}

// SwapProcessor führt Swap-Aufträge aus und protokolliert sie in der Datenbank
type SwapProcessor struct {
	engine    Engine
	repo      repository.Repository
	publisher EventPublisher // optional, darf nil sein
}

// NewSwapProcessor erstellt einen neuen Swap-Prozessor
func NewSwapProcessor(engine Engine, repo repository.Repository, publisher EventPublisher) *SwapProcessor {
	return &SwapProcessor{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
	}
}

// processSwapInternal führt einen einzelnen Auftrag aus. Erfolg und
// Fehlschlag werden beide als SwapRecord festgehalten; der Fehler wird
// unverändert an den Aufrufer durchgereicht, damit die API-Schicht ihn
// auf einen Statuscode abbilden kann.
func (p *SwapProcessor) processSwapInternal(ctx context.Context, req *SwapRequest) (*swap.Result, error) {
	start := time.Now()

	record := &models.SwapRecord{
		SourceHash: contentHash(req.SourceData),
		DestHash:   contentHash(req.DestData),
	}

	result, err := p.engine.Swap(ctx, req.SourceData, req.DestData, req.Options)

	record.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		record.Status = models.StatusFailed
		record.Error = err.Error()
		p.persist(record)
		return nil, err
	}

	record.Status = models.StatusCompleted
	record.OutputFormat = string(result.Format)
	record.Width = result.Width
	record.Height = result.Height
	record.SourceFace = faceJSON(result.SourceFace)
	record.DestFace = faceJSON(result.DestFace)
	p.persist(record)

	log.Infof("Swap completed in %dms (%dx%d, %s)",
		record.DurationMs, record.Width, record.Height, record.OutputFormat)

	return result, nil
}

// persist speichert den Auftrag und benachrichtigt den Publisher.
// Persistenzfehler brechen den Auftrag nicht ab.
func (p *SwapProcessor) persist(record *models.SwapRecord) {
	if err := p.repo.SaveSwap(record); err != nil {
		log.Errorf("Failed to save swap record: %v", err)
		return
	}
	if p.publisher != nil {
		p.publisher.PublishSwapEvent(record)
	}
}

// contentHash berechnet den SHA-256-Hash der Bilddaten
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// faceJSON serialisiert ein erkanntes Gesicht für den SwapRecord
func faceJSON(d faces.Descriptor) datatypes.JSON {
	summary := models.FaceSummary{
		X1:    d.Box.X1,
		Y1:    d.Box.Y1,
		X2:    d.Box.X2,
		Y2:    d.Box.Y2,
		Score: d.Score,
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
