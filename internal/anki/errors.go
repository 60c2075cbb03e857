package anki

import "errors"

// The two export refusals are reported separately so the user can tell an
// empty feed from a feed with nothing card-worthy in it.
var (
	ErrNothingToExport = errors.New("nothing to export")
	ErrNoEligibleItems = errors.New("no eligible items")
)
