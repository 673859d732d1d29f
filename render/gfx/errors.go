package gfx

import (
	"errors"
	"fmt"
)

var (
	ErrNoRenderTarget  = errors.New("no render target bound")
	ErrInvalidSize     = errors.New("invalid texture size")
	ErrReleased        = errors.New("resource already released")
	ErrSizeMismatch    = errors.New("attachment sizes differ")
	ErrTargetBusy      = errors.New("a render target is already bound")
	ErrForeignResource = errors.New("resource belongs to another context")
)

// Stage names the part of a pipeline call that failed.
type Stage uint8

const (
	StageUnknown Stage = iota
	StageAllocate
	StageDraw
	StageReadback
)

func (s Stage) String() string {
	switch s {
	case StageAllocate:
		return "allocate"
	case StageDraw:
		return "draw"
	case StageReadback:
		return "readback"
	}
	return "unknown"
}

// Error carries the failing stage and operation of a graphics call.
type Error struct {
	Stage Stage
	Op    string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func AllocateError(op string, err error) error {
	return &Error{Stage: StageAllocate, Op: op, Err: err}
}

func DrawError(op string, err error) error {
	return &Error{Stage: StageDraw, Op: op, Err: err}
}

func ReadbackError(op string, err error) error {
	return &Error{Stage: StageReadback, Op: op, Err: err}
}

// StageOf returns the stage of the first *Error in err's chain.
func StageOf(err error) Stage {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Stage
	}
	return StageUnknown
}
