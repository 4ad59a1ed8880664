package mrf

import (
	"errors"
	"fmt"
)

var (
	ErrShapeMismatch       = errors.New("shape mismatch")
	ErrBeliefCountMismatch = errors.New("belief count mismatch")
	ErrInvalidDirection    = errors.New("invalid direction")
	ErrNumericFault        = errors.New("numeric fault")
)

// FaultError locates the first non-finite value found by CheckFinite. When
// Smoothness is set, Y and X are the row and column of the smoothness table
// and Channel is unused.
type FaultError struct {
	Y, X       int
	Channel    Direction
	Index      int
	Value      float64
	Smoothness bool
}

func (e *FaultError) Error() string {
	if e.Smoothness {
		return fmt.Sprintf("mrf: non-finite value %v in smoothness row %d column %d", e.Value, e.Y, e.X)
	}
	return fmt.Sprintf("mrf: non-finite value %v at cell (%d,%d) channel %s index %d",
		e.Value, e.Y, e.X, e.Channel, e.Index)
}

func (e *FaultError) Unwrap() error {
	return ErrNumericFault
}
