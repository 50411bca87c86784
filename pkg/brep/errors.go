package brep

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed build.
type ErrorKind int

const (
	// NonPlanarFace: a face has no well defined plane. The only kind that
	// is retried, once, with triangulated input.
	NonPlanarFace ErrorKind = iota + 1
	// NotClosed: some edge has no matching reverse edge.
	NotClosed
	// Invalid: the input is not a valid oriented 2-manifold.
	Invalid
	// KernelFault: construction failed internally.
	KernelFault
)

// Sentinels for use with errors.Is.
var (
	ErrNonPlanarFace = errors.New("brep: non-planar face")
	ErrNotClosed     = errors.New("brep: mesh is not closed")
	ErrInvalid       = errors.New("brep: invalid mesh")
	ErrKernelFault   = errors.New("brep: kernel fault")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case NonPlanarFace:
		return ErrNonPlanarFace
	case NotClosed:
		return ErrNotClosed
	case Invalid:
		return ErrInvalid
	case KernelFault:
		return ErrKernelFault
	}
	return nil
}

func (k ErrorKind) String() string {
	switch k {
	case NonPlanarFace:
		return "NonPlanarFace"
	case NotClosed:
		return "NotClosed"
	case Invalid:
		return "Invalid"
	case KernelFault:
		return "KernelFault"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// BuildError is the error returned by Converter.Build.
type BuildError struct {
	Kind ErrorKind
	Err  error
}

func buildErr(k ErrorKind, format string, args ...any) *BuildError {
	return &BuildError{Kind: k, Err: fmt.Errorf(format, args...)}
}

func (e *BuildError) Error() string {
	msg := "brep: " + e.Kind.String()
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *BuildError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
