package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"faceswap-go/internal/core/models"
	"faceswap-go/internal/core/swap"
	"faceswap-go/internal/faces"
	"faceswap-go/internal/imaging"
)

type stubEngine struct {
	result *swap.Result
	err    error
	calls  int
}

func (e *stubEngine) Swap(ctx context.Context, sourceData, destData []byte, opts swap.Options) (*swap.Result, error) {
	e.calls++
	return e.result, e.err
}

type recordingRepo struct {
	mu    sync.Mutex
	saved []*models.SwapRecord
}

func (r *recordingRepo) SaveSwap(record *models.SwapRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, record)
	return nil
}

func (r *recordingRepo) GetSwapByID(id uint) (*models.SwapRecord, error) { return nil, nil }
func (r *recordingRepo) GetSwaps(limit, offset int) ([]models.SwapRecord, int64, error) {
	return nil, 0, nil
}
func (r *recordingRepo) DeleteSwap(id uint) error                             { return nil }
func (r *recordingRepo) DeleteSwapsOlderThan(cutoff time.Time) (int64, error) { return 0, nil }
func (r *recordingRepo) GetStatistics() (models.Statistics, error)            { return models.Statistics{}, nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.SwapRecord
}

func (p *recordingPublisher) PublishSwapEvent(record *models.SwapRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, record)
}

func testResult() *swap.Result {
	return &swap.Result{
		Data:       []byte("out"),
		Format:     imaging.FormatJPEG,
		Width:      640,
		Height:     480,
		SourceFace: faces.Descriptor{Box: faces.BoundingBox{X1: 1, Y1: 2, X2: 3, Y2: 4}, Score: 0.9},
		DestFace:   faces.Descriptor{Box: faces.BoundingBox{X1: 5, Y1: 6, X2: 7, Y2: 8}, Score: 0.8},
	}
}

func TestProcessSwapRecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	publisher := &recordingPublisher{}
	p := NewSwapProcessor(&stubEngine{result: testResult()}, repo, publisher)

	result, err := p.processSwapInternal(context.Background(), &SwapRequest{
		SourceData: []byte("source-image"),
		DestData:   []byte("dest-image"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Data) != "out" {
		t.Errorf("unexpected result payload: %q", result.Data)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected one saved record, got %d", len(repo.saved))
	}
	record := repo.saved[0]
	if record.Status != models.StatusCompleted {
		t.Errorf("expected status completed, got %q", record.Status)
	}
	if record.Width != 640 || record.Height != 480 {
		t.Errorf("unexpected dimensions in record: %dx%d", record.Width, record.Height)
	}
	if record.SourceHash == "" || record.DestHash == "" {
		t.Error("expected content hashes to be set")
	}
	if record.SourceHash == record.DestHash {
		t.Error("different payloads must hash differently")
	}
	if len(record.SourceFace) == 0 || len(record.DestFace) == 0 {
		t.Error("expected face summaries to be recorded")
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
}

func TestProcessSwapRecordsFailure(t *testing.T) {
	repo := &recordingRepo{}
	cause := &swap.NoFaceDetectedError{Role: swap.RoleSource}
	p := NewSwapProcessor(&stubEngine{err: cause}, repo, nil)

	_, err := p.processSwapInternal(context.Background(), &SwapRequest{
		SourceData: []byte("a"),
		DestData:   []byte("b"),
	})

	var noFaceErr *swap.NoFaceDetectedError
	if !errors.As(err, &noFaceErr) {
		t.Fatalf("expected the engine error to pass through, got %v", err)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected a failure record, got %d records", len(repo.saved))
	}
	record := repo.saved[0]
	if record.Status != models.StatusFailed {
		t.Errorf("expected status failed, got %q", record.Status)
	}
	if record.Error == "" {
		t.Error("expected the error text in the record")
	}
}

func TestProcessSwapWorksWithoutPublisher(t *testing.T) {
	p := NewSwapProcessor(&stubEngine{result: testResult()}, &recordingRepo{}, nil)

	if _, err := p.processSwapInternal(context.Background(), &SwapRequest{
		SourceData: []byte("a"),
		DestData:   []byte("b"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
