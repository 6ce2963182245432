package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status-Werte für einen Swap-Auftrag
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// SwapRecord repräsentiert einen abgeschlossenen Face-Swap-Auftrag.
// Die Bilddaten selbst werden nicht gespeichert, nur Metadaten und
// Inhalts-Hashes zur Nachvollziehbarkeit.
type SwapRecord struct {
	gorm.Model
	SourceHash   string         `gorm:"index"` // SHA-256 des Quellbilds
	DestHash     string         `gorm:"index"` // SHA-256 des Zielbilds
	Status       string         `gorm:"index"` // 'completed' oder 'failed'
	Error        string         // Fehlertext bei Status 'failed'
	OutputFormat string         // 'jpg' oder 'png'
	Width        int            // Breite des Ergebnisbilds
	Height       int            // Höhe des Ergebnisbilds
	DurationMs   int64          // Gesamtdauer der Verarbeitung
	SourceFace   datatypes.JSON `gorm:"type:json"` // Bounding-Box und Score des Quellgesichts
	DestFace     datatypes.JSON `gorm:"type:json"` // Bounding-Box und Score des Zielgesichts
}

// FaceSummary ist die JSON-Form eines erkannten Gesichts im SwapRecord
type FaceSummary struct {
	X1    float32 `json:"x1"`
	Y1    float32 `json:"y1"`
	X2    float32 `json:"x2"`
	Y2    float32 `json:"y2"`
	Score float32 `json:"score"`
}

// Statistics repräsentiert Statistiken über die verarbeiteten Swap-Aufträge
type Statistics struct {
	TotalSwaps     int64     // Gesamtzahl der Aufträge
	CompletedSwaps int64     // Erfolgreich abgeschlossene Aufträge
	FailedSwaps    int64     // Fehlgeschlagene Aufträge
	AvgDurationMs  float64   // Durchschnittliche Dauer erfolgreicher Aufträge
	LatestSwap     time.Time // Zeitstempel des neuesten Auftrags
}
