package cleanup

import (
	"time"

	log "github.com/sirupsen/logrus"

	"faceswap-go/internal/db/repository"
)

// Service handles the automatic cleanup of old swap records.
type Service struct {
	repo          repository.Repository
	retentionDays int
	checkInterval time.Duration
	stopChan      chan struct{} // Channel to signal stopping the background routine
}

// NewService creates a new cleanup service.
func NewService(repo repository.Repository, retentionDays int, checkInterval time.Duration) *Service {
	if retentionDays <= 0 {
		log.Info("Automatic cleanup disabled (retention_days <= 0).")
		return nil // Return nil if cleanup is disabled
	}
	if repo == nil {
		log.Error("Cannot initialize cleanup service: repository is nil")
		return nil
	}
	log.Infof("Initializing cleanup service: RetentionDays=%d, CheckInterval=%s", retentionDays, checkInterval)
	return &Service{
		repo:          repo,
		retentionDays: retentionDays,
		checkInterval: checkInterval,
		stopChan:      make(chan struct{}),
	}
}

// StartBackgroundCleanup starts a goroutine that periodically runs the cleanup cycle.
func (s *Service) StartBackgroundCleanup() {
	if s == nil {
		return // Service was not initialized (cleanup disabled)
	}
	log.Info("Starting background cleanup routine...")

	// Run cleanup once immediately on start
	go func() {
		log.Info("Running initial cleanup check on startup...")
		s.RunCleanupCycle()
	}()

	ticker := time.NewTicker(s.checkInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				log.Info("Running scheduled cleanup cycle...")
				s.RunCleanupCycle()
			case <-s.stopChan:
				log.Info("Stopping background cleanup routine.")
				return
			}
		}
	}()
}

// StopBackgroundCleanup signals the background cleanup routine to stop.
func (s *Service) StopBackgroundCleanup() {
	if s == nil || s.stopChan == nil {
		return
	}
	// Check if channel is already closed to prevent panic
	select {
	case <-s.stopChan:
		// Already closed
	default:
		close(s.stopChan)
	}
}

// RunCleanupCycle performs one cleanup cycle, deleting records older than the retention period.
func (s *Service) RunCleanupCycle() {
	if s == nil || s.retentionDays <= 0 {
		log.Debug("Skipping cleanup cycle: service not initialized or cleanup disabled.")
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -s.retentionDays)
	log.Infof("Cleanup: Deleting swap records older than %s", cutoffTime.Format(time.RFC3339))

	deleted, err := s.repo.DeleteSwapsOlderThan(cutoffTime)
	if err != nil {
		log.Errorf("Cleanup: Error deleting old swap records: %v", err)
		return
	}

	if deleted == 0 {
		log.Info("Cleanup: No old swap records found to delete.")
		return
	}

	log.Infof("Cleanup cycle finished. Deleted %d swap record(s).", deleted)
}
