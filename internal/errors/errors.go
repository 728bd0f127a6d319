package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrLoad           = errors.New("load failed")
	ErrNoContent      = errors.New("no content loaded")
	ErrSampleLoad     = errors.New("sample load failed")
	ErrSizing         = errors.New("cannot size surface")
	ErrValidation     = errors.New("invalid value")
	ErrStopped        = errors.New("playback stopped")
	ErrNotFound       = errors.New("not found")
	ErrTimeout        = errors.New("request timeout")
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// LoadError reports that a source could not be decoded into a sequence,
// or that decoding produced an empty sequence.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load: %v", e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}

// SampleLoadError reports that an audio profile asset could not be fetched or decoded.
type SampleLoadError struct {
	Location string
	Pitch    int
	Err      error
}

func (e *SampleLoadError) Error() string {
	return fmt.Sprintf("load sample for pitch %d from %s: %v", e.Pitch, e.Location, e.Err)
}

func (e *SampleLoadError) Unwrap() []error {
	return []error{ErrSampleLoad, e.Err}
}

// SizingError reports that a sequence lacks the duration or step field the
// active rendering mode needs to size its surface.
type SizingError struct {
	Field string
}

func (e *SizingError) Error() string {
	return fmt.Sprintf("the sequence does not have a %s field set, so the surface can't be horizontally sized", e.Field)
}

func (e *SizingError) Unwrap() error {
	return ErrSizing
}

// ValidationError reports an unknown value for an enumerated option.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("unknown %s %q. Allowed values: %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StaveError wraps an error with a user-friendly suggestion.
type StaveError struct {
	Err        error
	Suggestion string
}

func (e *StaveError) Error() string {
	return e.Err.Error()
}

func (e *StaveError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &StaveError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var staveErr *StaveError
	if errors.As(err, &staveErr) && staveErr.Suggestion != "" {
		return staveErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNoContent) {
		return "Pass a MIDI file path or URL, e.g. 'stave play song.mid'"
	}

	if errors.Is(err, ErrLoad) {
		return "Check that the source is a Standard MIDI File containing at least one note"
	}

	if errors.Is(err, ErrSampleLoad) {
		return "Check the sound font location, or omit --sound-font to use the built-in synth"
	}

	var verr *ValidationError
	if errors.As(err, &verr) && len(verr.Allowed) > 0 {
		return "Use one of: " + strings.Join(verr.Allowed, ", ")
	}

	if errors.Is(err, ErrSizing) {
		return "The sequence is missing timing information; try another rendering mode"
	}

	if errors.Is(err, ErrTimeout) || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	if errors.Is(err, ErrConfigNotFound) || strings.Contains(errStr, "config") {
		return "Run 'stave config init' to create a configuration file"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
