package resolution

import (
	"errors"
	"fmt"
)

// ErrEmptyHistogram is returned for histograms without positive content.
var ErrEmptyHistogram = errors.New("resolution: empty histogram")

// HistNotFoundError is returned when a file has no object with the
// requested name.
type HistNotFoundError struct {
	File string
	Name string
	Err  error
}

func (e *HistNotFoundError) Error() string {
	return fmt.Sprintf("resolution: no histogram %q in %q: %v", e.Name, e.File, e.Err)
}

func (e *HistNotFoundError) Unwrap() error { return e.Err }

// HistTypeError is returned when the named object is not a 1-dim histogram.
type HistTypeError struct {
	File  string
	Name  string
	Class string
}

func (e *HistTypeError) Error() string {
	return fmt.Sprintf("resolution: %q in %q is a %s, not a 1-dim histogram", e.Name, e.File, e.Class)
}

// FitError explains why no Gaussian width could be extracted. It is not
// fatal: Compute reports it and falls back to NaN estimators.
type FitError struct {
	Reason string
	Err    error
}

func (e *FitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolution: gauss fit: %s: %v", e.Reason, e.Err)
	}
	return "resolution: gauss fit: " + e.Reason
}

func (e *FitError) Unwrap() error { return e.Err }
