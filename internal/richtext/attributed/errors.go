package attributed

import (
	"fmt"

	"github.com/dshills/richlight/internal/richtext/core"
)

// InvalidRangeError reports a range outside [0, Len].
type InvalidRangeError struct {
	Range  core.Range
	Length int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("range %s out of bounds for text of length %d", e.Range, e.Length)
}
