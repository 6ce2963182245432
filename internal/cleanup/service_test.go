package cleanup

import (
	"sync"
	"testing"
	"time"

	"faceswap-go/internal/core/models"
)

type stubRepo struct {
	mu      sync.Mutex
	cutoffs []time.Time
	deleted int64
}

func (r *stubRepo) DeleteSwapsOlderThan(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffs = append(r.cutoffs, cutoff)
	return r.deleted, nil
}

func (r *stubRepo) GetSwapByID(id uint) (*models.SwapRecord, error) { return nil, nil }
func (r *stubRepo) GetSwaps(limit, offset int) ([]models.SwapRecord, int64, error) {
	return nil, 0, nil
}
func (r *stubRepo) SaveSwap(record *models.SwapRecord) error  { return nil }
func (r *stubRepo) DeleteSwap(id uint) error                  { return nil }
func (r *stubRepo) GetStatistics() (models.Statistics, error) { return models.Statistics{}, nil }

func TestNewServiceDisabledWhenRetentionZero(t *testing.T) {
	if svc := NewService(&stubRepo{}, 0, time.Hour); svc != nil {
		t.Fatal("expected nil service when retention is disabled")
	}
	if svc := NewService(nil, 7, time.Hour); svc != nil {
		t.Fatal("expected nil service without a repository")
	}
}

func TestRunCleanupCycleUsesRetentionCutoff(t *testing.T) {
	repo := &stubRepo{deleted: 3}
	svc := NewService(repo, 7, time.Hour)
	if svc == nil {
		t.Fatal("expected an initialized service")
	}

	svc.RunCleanupCycle()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.cutoffs) != 1 {
		t.Fatalf("expected one delete call, got %d", len(repo.cutoffs))
	}

	wantCutoff := time.Now().AddDate(0, 0, -7)
	diff := repo.cutoffs[0].Sub(wantCutoff)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff %s not within a minute of expected %s", repo.cutoffs[0], wantCutoff)
	}
}

func TestNilServiceIsSafe(t *testing.T) {
	var svc *Service
	svc.StartBackgroundCleanup()
	svc.StopBackgroundCleanup()
	svc.RunCleanupCycle()
}
