// Package inference wraps the ONNX Runtime bindings behind small,
// concurrency-safe session handles used by the face locator and the
// swap model.
package inference

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	initialized bool
	initMu      sync.Mutex
)

// Initialize sets up the ONNX Runtime environment. Call once at startup
// before any session is created. libraryPath points at the
// libonnxruntime shared library; an empty path leaves the binding's
// default lookup in place.
func Initialize(libraryPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	initialized = true
	return nil
}

// Shutdown tears down the ONNX Runtime environment.
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return nil
	}

	if err := ort.DestroyEnvironment(); err != nil {
		return err
	}

	initialized = false
	return nil
}

// Session wraps an ONNX Runtime inference session.
//
// Run is serialized with a per-session mutex. The ORT C API documents
// session Run as thread-safe on the CPU provider, but not every
// execution provider honors that, so inference on a given model is a
// single critical section. Distinct models still run concurrently with
// each other; throughput-sensitive deployments can scale out with more
// processes.
type Session struct {
	mu          sync.Mutex
	session     *ort.DynamicAdvancedSession
	modelPath   string
	inputNames  []string
	outputNames []string
}

// NewSession creates an inference session from an ONNX model file.
func NewSession(modelPath string, inputNames, outputNames []string) (*Session, error) {
	if !initialized {
		return nil, fmt.Errorf("ONNX Runtime not initialized, call Initialize() first")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", modelPath, err)
	}

	return &Session{
		session:     session,
		modelPath:   modelPath,
		inputNames:  inputNames,
		outputNames: outputNames,
	}, nil
}

// Run executes inference with the given inputs.
func (s *Session) Run(inputs []ort.Value, outputs []ort.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Run(inputs, outputs)
}

// ModelPath returns the path of the loaded model file.
func (s *Session) ModelPath() string {
	return s.modelPath
}

// Destroy releases session resources.
func (s *Session) Destroy() error {
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}

// CreateEmptyTensor creates a zeroed tensor for inference output.
func CreateEmptyTensor[T ort.TensorData](shape []int64) (*ort.Tensor[T], error) {
	size := int64(1)
	for _, dim := range shape {
		size *= dim
	}
	data := make([]T, size)
	return ort.NewTensor(ort.NewShape(shape...), data)
}
