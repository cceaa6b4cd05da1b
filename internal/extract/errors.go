// Package extract runs a single constrained LLM call over document text and
// materializes the model's output as a typed, ordered result.
package extract

import "errors"

// Sentinel errors. Callers branch on these to map failures to response codes:
// a transport failure is the backend's fault, a validation failure is the
// model's.
var (
	// ErrNoFields means the record declares no fields, so there is nothing
	// to extract. Detected before any network call.
	ErrNoFields = errors.New("no fields defined")

	// ErrNoText means the document produced no extractable text.
	ErrNoText = errors.New("no extractable text")

	// ErrTransport wraps failures reaching the model backend.
	ErrTransport = errors.New("model request failed")

	// ErrValidation wraps model output that could not be parsed or does not
	// conform to the declared record.
	ErrValidation = errors.New("model output failed validation")
)
