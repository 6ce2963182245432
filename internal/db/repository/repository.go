package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"faceswap-go/internal/core/models"
)

// Repository definiert die Schnittstelle für die Datenbank-Operationen
type Repository interface {
	// SwapRecord-Methoden
	GetSwapByID(id uint) (*models.SwapRecord, error)
	GetSwaps(limit, offset int) ([]models.SwapRecord, int64, error)
	SaveSwap(record *models.SwapRecord) error
	DeleteSwap(id uint) error
	DeleteSwapsOlderThan(cutoff time.Time) (int64, error)

	// Statistik-Methoden
	GetStatistics() (models.Statistics, error)
}

// SQLiteRepository implementiert die Repository-Schnittstelle für SQLite
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository erstellt eine neue SQLite-Repository-Instanz
func NewSQLiteRepository(db *gorm.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetSwapByID holt einen Swap-Auftrag anhand seiner ID
func (r *SQLiteRepository) GetSwapByID(id uint) (*models.SwapRecord, error) {
	var record models.SwapRecord
	result := r.db.First(&record, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &record, nil
}

// GetSwaps holt Swap-Aufträge mit Pagination, neueste zuerst
func (r *SQLiteRepository) GetSwaps(limit, offset int) ([]models.SwapRecord, int64, error) {
	var records []models.SwapRecord
	var total int64

	r.db.Model(&models.SwapRecord{}).Count(&total)
	result := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records)

	if result.Error != nil {
		return nil, 0, result.Error
	}

	return records, total, nil
}

// SaveSwap speichert einen Swap-Auftrag
func (r *SQLiteRepository) SaveSwap(record *models.SwapRecord) error {
	return r.db.Save(record).Error
}

// DeleteSwap löscht einen Swap-Auftrag
func (r *SQLiteRepository) DeleteSwap(id uint) error {
	return r.db.Delete(&models.SwapRecord{}, id).Error
}

// DeleteSwapsOlderThan löscht alle Aufträge, die vor dem Stichtag angelegt wurden
func (r *SQLiteRepository) DeleteSwapsOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Unscoped().Where("created_at < ?", cutoff).Delete(&models.SwapRecord{})
	return result.RowsAffected, result.Error
}

// GetStatistics gibt Statistiken über die gespeicherten Aufträge zurück
func (r *SQLiteRepository) GetStatistics() (models.Statistics, error) {
	var stats models.Statistics

	// Zähle alle Aufträge
	if err := r.db.Model(&models.SwapRecord{}).Count(&stats.TotalSwaps).Error; err != nil {
		return stats, err
	}

	// Zähle erfolgreiche Aufträge
	if err := r.db.Model(&models.SwapRecord{}).
		Where("status = ?", models.StatusCompleted).
		Count(&stats.CompletedSwaps).Error; err != nil {
		return stats, err
	}

	stats.FailedSwaps = stats.TotalSwaps - stats.CompletedSwaps

	// Durchschnittliche Dauer der erfolgreichen Aufträge
	if stats.CompletedSwaps > 0 {
		if err := r.db.Model(&models.SwapRecord{}).
			Where("status = ?", models.StatusCompleted).
			Select("AVG(duration_ms)").
			Scan(&stats.AvgDurationMs).Error; err != nil {
			return stats, err
		}
	}

	// Ermittle den neuesten Auftrag
	var latest models.SwapRecord
	if err := r.db.Order("created_at DESC").First(&latest).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return stats, err
		}
	} else {
		stats.LatestSwap = latest.CreatedAt
	}

	return stats, nil
}
