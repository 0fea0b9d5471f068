package geotess

import "fmt"

// ErrInvalidArgument indicates an input value is out of range or otherwise
// malformed: a non-unit vector, an out-of-bounds layer or attribute index, a
// degenerate polygon.
type ErrInvalidArgument struct {
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

// ErrIoFailure indicates a file could not be read: missing, truncated, or a
// magic/version mismatch.
type ErrIoFailure struct {
	Path   string
	Reason string
}

func (e *ErrIoFailure) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io failure reading %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("io failure: %s", e.Reason)
}

// ErrFormatMismatch indicates cross-referenced content disagrees: a model's
// declared gridID does not match the referenced grid file, or an attribute
// count in a profile disagrees with the model header.
type ErrFormatMismatch struct {
	Reason string
}

func (e *ErrFormatMismatch) Error() string {
	return fmt.Sprintf("format mismatch: %s", e.Reason)
}

// ErrStateError indicates a contract violation was reached on the query hot
// path: a Position was asked for a layer with no tessellation, or the
// triangle walk terminated without locating a containing triangle.
type ErrStateError struct {
	Reason string
}

func (e *ErrStateError) Error() string {
	return fmt.Sprintf("state error: %s", e.Reason)
}

// ErrNotFound indicates a requested station, phase, or attribute has no
// associated model (used by the LibCorr3D station-lookup interface).
type ErrNotFound struct {
	Subject string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Subject)
}
