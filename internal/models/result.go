package models

import "net/http"

// SuccessBody is the body returned for a committed load.
const SuccessBody = "Success!"

// LoadResult is what the loader function returns to its invoker.
type LoadResult struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`

	// Err is set on failure so callers can branch on the kind without
	// parsing Body.
	Err *LoadError `json:"-"`
}

// Success returns the result of a committed load.
func Success() LoadResult {
	return LoadResult{StatusCode: http.StatusOK, Body: SuccessBody}
}

// Failure returns a 500 result carrying err's message.
func Failure(err *LoadError) LoadResult {
	return LoadResult{
		StatusCode: http.StatusInternalServerError,
		Body:       err.Error(),
		Err:        err,
	}
}

// OK reports whether the load was committed.
func (r LoadResult) OK() bool {
	return r.StatusCode == http.StatusOK
}
