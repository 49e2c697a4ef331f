package domain

import (
	"errors"
	"fmt"
)

type LoadErrorKind string

const (
	LoadMalformed        LoadErrorKind = "malformed"
	LoadUnreachable      LoadErrorKind = "unreachable"
	LoadUnsupported      LoadErrorKind = "unsupported"
	LoadInvalidReference LoadErrorKind = "invalid_reference"
	LoadNoCaptions       LoadErrorKind = "no_captions"
)

// Sentinels allow errors.Is(err, domain.ErrNoCaptions) against a *LoadError.
var (
	ErrMalformed        = errors.New("malformed content")
	ErrUnreachable      = errors.New("source unreachable")
	ErrUnsupported      = errors.New("unsupported content")
	ErrInvalidReference = errors.New("invalid reference")
	ErrNoCaptions       = errors.New("no captions available")

	ErrServiceFailure = errors.New("completion service failure")
)

//nolint:gochecknoglobals // Immutable lookup table.
var loadKindSentinels = map[LoadErrorKind]error{
	LoadMalformed:        ErrMalformed,
	LoadUnreachable:      ErrUnreachable,
	LoadUnsupported:      ErrUnsupported,
	LoadInvalidReference: ErrInvalidReference,
	LoadNoCaptions:       ErrNoCaptions,
}

type LoadError struct {
	Kind   LoadErrorKind
	Source SourceKind
	Err    error
}

func NewLoadError(kind LoadErrorKind, source SourceKind, err error) *LoadError {
	return &LoadError{Kind: kind, Source: source, Err: err}
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Source, loadKindSentinels[e.Kind])
	}

	return fmt.Sprintf("load %s: %s: %v", e.Source, loadKindSentinels[e.Kind], e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return loadKindSentinels[e.Kind] == target
}

type SummarizationErrorKind string

const SummarizationServiceFailure SummarizationErrorKind = "service_failure"

type SummarizationError struct {
	Kind SummarizationErrorKind
	Err  error
}

func NewServiceFailure(err error) *SummarizationError {
	return &SummarizationError{Kind: SummarizationServiceFailure, Err: err}
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize: %s: %v", ErrServiceFailure, e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

func (e *SummarizationError) Is(target error) bool {
	return target == ErrServiceFailure
}

// LoadErrorKindOf reports the kind of the first *LoadError in err's chain.
func LoadErrorKindOf(err error) (LoadErrorKind, bool) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Kind, true
	}

	return "", false
}
