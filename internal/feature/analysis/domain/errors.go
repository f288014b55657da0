// Package domain defines domain-level errors for the analysis feature.
package domain

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable category of an analysis failure.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindUpstreamFetch      Kind = "upstream_fetch"
	KindUpstreamCompletion Kind = "upstream_completion"
	KindExtraction         Kind = "extraction"
)

// Stage is a step of the analysis pipeline.
type Stage string

const (
	StageValidating          Stage = "validating"
	StageFetchingCandles     Stage = "fetching_candles"
	StageComputingIndicators Stage = "computing_indicators"
	StageBuildingPrompt      Stage = "building_prompt"
	StageAwaitingCompletion  Stage = "awaiting_completion"
	StageExtractingResponse  Stage = "extracting_response"
	StageDone                Stage = "done"
)

// Request validation errors.
var (
	// ErrMissingAsset indicates that the request did not name an instrument.
	ErrMissingAsset = errors.New("asset is required")

	// ErrMissingTimeframe indicates that the request did not name a timeframe.
	ErrMissingTimeframe = errors.New("timeframe is required")

	// ErrUnknownStrategy indicates that the requested prompt strategy does not exist.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Upstream errors. Adapters wrap these so callers can classify failures with errors.Is.
var (
	// ErrNoCandles indicates that the candle source answered without any candles.
	ErrNoCandles = errors.New("no candles returned")

	// ErrUpstreamRequest indicates a transport-level failure or an SDK error.
	ErrUpstreamRequest = errors.New("upstream request failed")

	// ErrUpstreamStatus indicates a non-2xx HTTP status from an upstream service.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")

	// ErrMalformedEnvelope indicates that the completion response lacks the
	// candidates/content/parts/text path (or its equivalent).
	ErrMalformedEnvelope = errors.New("malformed completion envelope")
)

// Extraction errors. Each one is a distinct failure mode of the response extractor.
var (
	// ErrNoJSONRegion indicates that the model text contains neither a fenced block nor braces.
	ErrNoJSONRegion = errors.New("no JSON object found in model response")

	// ErrInvalidJSON indicates that no candidate region parsed as a JSON object.
	ErrInvalidJSON = errors.New("model response is not valid JSON")

	// ErrMissingField indicates that a required recommendation key is absent or null.
	ErrMissingField = errors.New("required field missing")

	// ErrNonNumericField indicates that a required recommendation key is not numeric.
	ErrNonNumericField = errors.New("required field is not numeric")
)

// Error is a classified analysis failure. Message is safe to show to end users;
// Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error.
func NewError(kind Kind, stage Stage, message string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message, Err: err}
}

// KindOf returns the kind of err, or "" when err is not a classified analysis error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
