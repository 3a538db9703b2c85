package reload

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMetadataUnavailable occurs when the artifact can't be stat'ed.
	ErrMetadataUnavailable = errors.New("artifact metadata unavailable")
	// ErrTimestampUnavailable occurs when the artifact has no modification time.
	ErrTimestampUnavailable = errors.New("artifact timestamp unavailable")
	// ErrCopyFailed occurs when the versioned copy can't be written.
	ErrCopyFailed = errors.New("copy artifact failed")
	// ErrLoadFailed occurs when the image loader rejects the versioned copy.
	ErrLoadFailed = errors.New("load image failed")
	// ErrSymbolNotFound occurs when an entry symbol is missing or has the wrong type.
	ErrSymbolNotFound = errors.New("missing symbol")
	// ErrConstructionFailed occurs when the create entry point returns nil.
	ErrConstructionFailed = errors.New("construction failed")
	// ErrNullInstance occurs when the created instance has an incomplete capability table.
	ErrNullInstance = errors.New("null instance")
	// ErrUnloadUnsupported is reported by images which can't be released by their platform.
	ErrUnloadUnsupported = errors.New("image unload unsupported")
	// ErrClosed occurs when a closed manager is used.
	ErrClosed = errors.New("manager closed")
)

// LoadError describes a failed load attempt.
type LoadError struct {
	Module   string
	Path     string    //the file involved in the failing step
	Modified time.Time //artifact modification time if it was observed before the failure
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %s: %v", e.Module, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SymbolNotFoundError names the entry symbol which could not be resolved.
type SymbolNotFoundError struct {
	Name   string
	Reason string
}

func (e *SymbolNotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s: %s", ErrSymbolNotFound, e.Name, e.Reason)
	}
	return fmt.Sprintf("%s %s", ErrSymbolNotFound, e.Name)
}

func (e *SymbolNotFoundError) Is(target error) bool {
	return target == ErrSymbolNotFound
}

// observed returns the modification time carried by a LoadError.
func observed(err error) (t time.Time, ok bool) {
	var le *LoadError
	if errors.As(err, &le) && !le.Modified.IsZero() {
		return le.Modified, true
	}
	return
}
