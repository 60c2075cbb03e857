package api

import "errors"

// Failure kinds reported by the client. Use errors.Is to check:
// errors.Is(err, api.ErrNetwork)
var (
	ErrNetwork = errors.New("network failure")
	ErrParse   = errors.New("unexpected response")
)
