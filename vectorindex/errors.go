package vectorindex

import "errors"

var (
	// ErrLengthMismatch is returned when vectors and fragments differ in count.
	ErrLengthMismatch = errors.New("vectors and fragments differ in length")

	// ErrDimensionMismatch is returned when vectors differ in length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIncompatibleIndex is returned when a persisted index was produced
	// by a different embedding model or dimensionality.
	ErrIncompatibleIndex = errors.New("incompatible index")

	// ErrIDCollision is returned when two distinct fragment keys share an ID.
	ErrIDCollision = errors.New("fragment id collision")

	// ErrIndexNotFound is returned when no persisted index exists.
	ErrIndexNotFound = errors.New("index not found")
)
