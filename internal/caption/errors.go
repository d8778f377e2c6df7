package caption

import "errors"

// Error kinds surfaced by the pipeline. InputMalformed and
// ConfigurationInvalid are user errors detected at stage entry.
// ExternalStageFailed wraps failures from the external collaborators
// (extraction, ASR, alignment, render). ErrInternalInvariant marks a
// defect: the smoother or builder broke its own guarantees, which must
// never happen for well-formed input.
var (
	ErrInputMalformed       = errors.New("input malformed")
	ErrExternalStageFailed  = errors.New("external stage failed")
	ErrConfigurationInvalid = errors.New("configuration invalid")
	ErrInternalInvariant    = errors.New("internal invariant violation")
)

// IsUserError reports whether err should be presented to the submitter
// rather than logged as a defect.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInputMalformed) || errors.Is(err, ErrConfigurationInvalid)
}
