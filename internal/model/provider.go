package model

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"faceswap-go/internal/config"
)

// Provider hands out the process-wide swap model. The underlying ONNX
// sessions are loaded at most once, on the first call to Get; every
// later call returns the same instance (or the same load error).
type Provider struct {
	once   sync.Once
	loader func() (*SwapModel, error)
	ready  atomic.Bool

	model *SwapModel
	err   error
}

// NewProvider creates a provider that loads the model bundle described
// by cfg on first use.
func NewProvider(cfg config.ModelConfig) *Provider {
	return newProvider(func() (*SwapModel, error) {
		return load(cfg)
	})
}

func newProvider(loader func() (*SwapModel, error)) *Provider {
	return &Provider{loader: loader}
}

// Get returns the shared model, loading it on the first call. Safe for
// concurrent use from any number of goroutines.
func (p *Provider) Get() (*SwapModel, error) {
	p.once.Do(func() {
		log.Info("Loading face swap model bundle")
		p.model, p.err = p.loader()
		if p.err != nil {
			log.Errorf("Model load failed: %v", p.err)
			return
		}
		p.ready.Store(true)
		log.Info("Face swap model bundle ready")
	})
	return p.model, p.err
}

// Ready reports whether a successful load has completed. It never
// triggers a load itself and is safe to call while a first Get is
// still in flight.
func (p *Provider) Ready() bool {
	return p.ready.Load()
}

// Close releases the loaded model, if any.
func (p *Provider) Close() {
	if p.model != nil {
		p.model.Close()
	}
}
