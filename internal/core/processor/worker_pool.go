package processor

import (
	"context"
	"runtime"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"faceswap-go/internal/core/swap"
)

// WorkerPool verwaltet einen Pool von Worker-Goroutinen für die Swap-Verarbeitung
type WorkerPool struct {
	processor       *SwapProcessor
	jobs            chan *swapJob
	workerCount     int
	activeJobs      int
	activeJobsMutex sync.Mutex
	shutdown        chan struct{}
}

// swapJob repräsentiert einen einzelnen Swap-Auftrag im Pool
type swapJob struct {
	ctx      context.Context
	request  *SwapRequest
	resultCh chan *swapResult // Individueller Ergebniskanal pro Job
}

// swapResult enthält das Ergebnis eines Swap-Auftrags
type swapResult struct {
	result *swap.Result
	err    error
}

// NewWorkerPool erstellt einen neuen Worker-Pool für die Swap-Verarbeitung
func NewWorkerPool(processor *SwapProcessor) *WorkerPool {
	// Container-bewusste Konfiguration: Verwende 75% der verfügbaren CPUs, mindestens 2
	availableCPUs := runtime.NumCPU()
	workerCount := max(2, (availableCPUs*3)/4)

	log.Infof("Initializing swap worker pool with %d workers", workerCount)

	pool := &WorkerPool{
		processor:   processor,
		jobs:        make(chan *swapJob, workerCount*2), // Puffer für Jobs
		workerCount: workerCount,
		shutdown:    make(chan struct{}),
	}

	pool.startWorkers()

	return pool
}

// startWorkers startet die Worker-Goroutinen
func (p *WorkerPool) startWorkers() {
	for i := 0; i < p.workerCount; i++ {
		go func(workerID int) {
			log.Debugf("Worker %d started", workerID)

			for {
				select {
				case job, ok := <-p.jobs:
					if !ok {
						log.Debugf("Worker %d shutting down (job channel closed)", workerID)
						return
					}

					p.activeJobsMutex.Lock()
					p.activeJobs++
					jobCount := p.activeJobs
					p.activeJobsMutex.Unlock()

					log.Debugf("Worker %d processing swap job (active jobs: %d)", workerID, jobCount)

					startTime := time.Now()

					result, err := p.processor.processSwapInternal(job.ctx, job.request)

					p.activeJobsMutex.Lock()
					p.activeJobs--
					p.activeJobsMutex.Unlock()

					// Direkt an die anfragende Goroutine senden
					select {
					case job.resultCh <- &swapResult{result: result, err: err}:
					default:
						log.Warnf("Worker %d: Could not send result, channel might be closed", workerID)
					}

					elapsed := time.Since(startTime)
					log.Debugf("Worker %d completed swap job in %v", workerID, elapsed)

				case <-p.shutdown:
					log.Debugf("Worker %d received shutdown signal", workerID)
					return
				}
			}
		}(i)
	}
}

// ProcessSwap führt einen Swap-Auftrag asynchron über den Worker-Pool aus
func (p *WorkerPool) ProcessSwap(ctx context.Context, request *SwapRequest) (*swap.Result, error) {
	// Ergebniskanal für diesen spezifischen Job
	resultCh := make(chan *swapResult, 1)

	job := &swapJob{
		ctx:      ctx,
		request:  request,
		resultCh: resultCh,
	}

	// Job an den Pool senden
	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Auf Ergebnis warten
	select {
	case res := <-resultCh:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ActiveJobCount gibt die Anzahl der aktuell aktiven Jobs zurück
func (p *WorkerPool) ActiveJobCount() int {
	p.activeJobsMutex.Lock()
	defer p.activeJobsMutex.Unlock()
	return p.activeJobs
}

// GetWorkerCount gibt die Anzahl der Worker im Pool zurück
func (p *WorkerPool) GetWorkerCount() int {
	return p.workerCount
}

// GetQueueCapacity gibt die Kapazität der Job-Queue zurück
func (p *WorkerPool) GetQueueCapacity() int {
	return cap(p.jobs)
}

// Shutdown fährt den Worker-Pool herunter
func (p *WorkerPool) Shutdown() {
	close(p.shutdown)
	close(p.jobs)
}
