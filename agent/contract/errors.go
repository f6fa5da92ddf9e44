package contract

import (
	"errors"
	"fmt"
)

// Error taxonomy crossed at agent boundaries. Agents retry their own
// transient failures and surface only terminal outcomes; the orchestrator
// never retries a non-retryable kind.
var (
	ErrTransientIO         = errors.New("transient io failure")
	ErrSchemaViolation     = errors.New("schema violation")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrAnalysisFailed      = errors.New("analysis failed")
	ErrRewriteInconsistent = errors.New("rewrite inconsistent with source profile")
	ErrPrerequisiteMissing = errors.New("prerequisite missing")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrInvalidProfileURL   = errors.New("invalid profile url")
	ErrProfileNotFound     = errors.New("profile not found")
)

// SchemaError identifies the offending field of a boundary validation
// failure. It wraps ErrSchemaViolation so callers can classify it with
// errors.Is.
type SchemaError struct {
	Type   string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation: %s.%s: %s", e.Type, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaViolation
}

// Retryable reports whether the orchestrator may retry the operation that
// produced err. Only storage outages qualify at the orchestrator level;
// transient network retries belong to the agent that owns the call.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// FailureKind maps an error to the internal diagnostic code recorded in
// session memory and returned alongside the user-facing message.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, ErrAnalysisFailed):
		return "analysis_failed"
	case errors.Is(err, ErrRewriteInconsistent):
		return "rewrite_inconsistent"
	case errors.Is(err, ErrGenerationFailed):
		return "generation_failed"
	case errors.Is(err, ErrPrerequisiteMissing):
		return "prerequisite_missing"
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, ErrInvalidProfileURL):
		return "invalid_profile_url"
	case errors.Is(err, ErrProfileNotFound):
		return "profile_not_found"
	case errors.Is(err, ErrTransientIO):
		return "transient_io"
	default:
		return "internal_error"
	}
}
