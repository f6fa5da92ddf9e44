// Package schema validates the data shapes crossing agent boundaries.
// A failure is always a *contract.SchemaError wrapping ErrSchemaViolation,
// which the orchestrator treats as non-retryable.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	contractx "github.com/careerninja/learntube/agent/contract"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags on v and returns a typed schema error
// identifying the first offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &contractx.SchemaError{
			Type:   typeName(v),
			Field:  fe.Field(),
			Reason: fmt.Sprintf("failed %q constraint", fe.Tag()),
		}
	}
	return &contractx.SchemaError{
		Type:   typeName(v),
		Field:  "",
		Reason: err.Error(),
	}
}

// ValidateAnalysis checks tag constraints plus the referential invariant
// that the result points at the given profile.
func ValidateAnalysis(res *contractx.AnalysisResult, profileID string) error {
	if res == nil {
		return &contractx.SchemaError{Type: "AnalysisResult", Field: "", Reason: "result is nil"}
	}
	if err := Validate(res); err != nil {
		return err
	}
	if res.ProfileID != profileID {
		return &contractx.SchemaError{
			Type:   "AnalysisResult",
			Field:  "ProfileID",
			Reason: fmt.Sprintf("references %q, want %q", res.ProfileID, profileID),
		}
	}
	return nil
}

// ValidateJobFit checks tag constraints plus the policy that the rationale
// names at least one concrete attribute of the scored profile. Model output
// is not trusted blindly.
func ValidateJobFit(score *contractx.JobFitScore, profile *contractx.Profile) error {
	if score == nil {
		return &contractx.SchemaError{Type: "JobFitScore", Field: "", Reason: "score is nil"}
	}
	if err := Validate(score); err != nil {
		return err
	}
	if profile != nil && score.ProfileID != profile.ID {
		return &contractx.SchemaError{
			Type:   "JobFitScore",
			Field:  "ProfileID",
			Reason: fmt.Sprintf("references %q, want %q", score.ProfileID, profile.ID),
		}
	}
	if profile != nil && !RationaleReferencesProfile(score.Rationale, profile) {
		return &contractx.SchemaError{
			Type:   "JobFitScore",
			Field:  "Rationale",
			Reason: "does not reference any concrete profile attribute",
		}
	}
	return nil
}

// ValidateRewrite checks tag constraints plus the referential invariants to
// the originating profile and analysis.
func ValidateRewrite(res *contractx.RewriteResult, profileID, analysisID string) error {
	if res == nil {
		return &contractx.SchemaError{Type: "RewriteResult", Field: "", Reason: "result is nil"}
	}
	if err := Validate(res); err != nil {
		return err
	}
	if res.ProfileID != profileID {
		return &contractx.SchemaError{
			Type:   "RewriteResult",
			Field:  "ProfileID",
			Reason: fmt.Sprintf("references %q, want %q", res.ProfileID, profileID),
		}
	}
	if res.AnalysisID != analysisID {
		return &contractx.SchemaError{
			Type:   "RewriteResult",
			Field:  "AnalysisID",
			Reason: fmt.Sprintf("references %q, want %q", res.AnalysisID, analysisID),
		}
	}
	return nil
}

// RationaleReferencesProfile reports whether text mentions a skill, company,
// or title present in the profile (case-insensitive).
func RationaleReferencesProfile(text string, profile *contractx.Profile) bool {
	if profile == nil {
		return false
	}
	lower := strings.ToLower(text)

	var attrs []string
	attrs = append(attrs, profile.Skills...)
	for _, exp := range profile.Experience {
		attrs = append(attrs, exp.Title, exp.Company)
	}
	if profile.Headline != "" {
		attrs = append(attrs, profile.Headline)
	}

	for _, attr := range attrs {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if attr == "" {
			continue
		}
		if strings.Contains(lower, attr) {
			return true
		}
	}
	return false
}

func typeName(v any) string {
	name := fmt.Sprintf("%T", v)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
