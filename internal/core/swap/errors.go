package swap

import "fmt"

// Role names which of the two input images an error refers to.
type Role string

const (
	RoleSource      Role = "source"
	RoleDestination Role = "destination"
)

// InvalidImageError reports a payload that could not be decoded.
// Recoverable: the request is rejected, nothing else ran.
type InvalidImageError struct {
	Role Role
	Err  error
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("%s image is not decodable: %v", e.Role, e.Err)
}

func (e *InvalidImageError) Unwrap() error { return e.Err }

// NoFaceDetectedError reports a valid image in which no face cleared
// the detection threshold. Recoverable, reported per image; the
// service never silently returns the unmodified destination instead.
type NoFaceDetectedError struct {
	Role Role
}

func (e *NoFaceDetectedError) Error() string {
	return fmt.Sprintf("no face detected in %s image", e.Role)
}

// ModelLoadError reports a missing or corrupt model artifact. Fatal:
// it is raised once during startup and aborts service readiness
// instead of being retried per request.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model artifact %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// SwapExecutionError reports a runtime failure in the detection or
// swap pipeline. Recoverable per request; never retried automatically,
// since rerunning a deterministic computation on the same inputs is
// expected to fail the same way.
type SwapExecutionError struct {
	Stage string // "detect", "swap" or "encode"
	Err   error
}

func (e *SwapExecutionError) Error() string {
	return fmt.Sprintf("swap execution failed at stage %s: %v", e.Stage, e.Err)
}

func (e *SwapExecutionError) Unwrap() error { return e.Err }
