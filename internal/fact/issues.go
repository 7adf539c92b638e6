package fact

import (
	"errors"
	"fmt"
	"time"
)

// Issues collects data-quality problems found while building rows so one
// corrupt field does not hide the others.
type Issues struct {
	errs []error
}

// Date renders t and records any data-quality error against field.
func (is *Issues) Date(field string, t *time.Time) Value {
	v, err := Date(t)
	if err != nil {
		is.errs = append(is.errs, fmt.Errorf("%s: %w", field, err))
	}
	return v
}

// Len returns the number of recorded issues.
func (is *Issues) Len() int { return len(is.errs) }

// Err joins every recorded issue, or returns nil.
func (is *Issues) Err() error {
	return errors.Join(is.errs...)
}
