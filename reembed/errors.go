package reembed

import (
	"fmt"

	"github.com/poiesic/tabula/core"
)

var (
	// ErrClientRequired is returned when an embedding client is not provided.
	ErrClientRequired = fmt.Errorf("%w: embedding client required", core.ErrConfiguration)

	// ErrSourceRequired is returned when Run is given no source index.
	ErrSourceRequired = fmt.Errorf("%w: source index required", core.ErrConfiguration)
)
