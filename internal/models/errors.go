package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInput is returned when the source selection is missing, ambiguous or unusable
	ErrInput = errors.New("input error")
	// ErrStructure is returned when images/ or labels/ is missing from the source root
	ErrStructure = errors.New("structure error")
	// ErrRatio is returned when ratios are out of range or do not sum to 1.0
	ErrRatio = errors.New("ratio error")
	// ErrEmptyDataset is returned when no image/label pairs were matched
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrIO is matched by every *IOError
	ErrIO = errors.New("io error")
)

// IOError wraps a filesystem or archive failure with the offending path
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// NewIOError returns nil when err is nil
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// ErrorKind names the taxonomy bucket of err, or "unknown"
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInput):
		return "InputError"
	case errors.Is(err, ErrStructure):
		return "StructureError"
	case errors.Is(err, ErrRatio):
		return "RatioError"
	case errors.Is(err, ErrEmptyDataset):
		return "EmptyDatasetError"
	case errors.Is(err, ErrIO):
		return "IOError"
	default:
		return "unknown"
	}
}
