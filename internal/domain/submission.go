package domain

import (
	"fmt"
	"regexp"
)

// SubmissionRequest is the inbound payload of a plugin submission.
//
// It is decoded once from the request body, validated once and never mutated.
// Optional fields keep their zero value and receive defaults during
// document derivation, not here.
type SubmissionRequest struct {
	// ─────────────────────────────
	// Required
	// ─────────────────────────────

	// ID is the unique plugin identifier.
	// Must match ^[a-z][a-z0-9_]*$ (lowercase letter, then lowercase letters, digits, underscores).
	ID string `json:"id"`

	// CNName is the human-readable display name.
	CNName string `json:"cn_name"`

	// Author is the submitter's name.
	Author string `json:"author"`

	// Description is the one-line summary.
	Description string `json:"description"`

	// Code is the raw plugin source text, published verbatim as plugin.py.
	Code string `json:"code"`

	// ─────────────────────────────
	// Optional
	// ─────────────────────────────

	Version         string   `json:"version,omitempty"`
	FullDescription string   `json:"full_description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Commands        []string `json:"commands,omitempty"`
	Features        []string `json:"features,omitempty"`
	Usage           string   `json:"usage,omitempty"`
	Changelog       string   `json:"changelog,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// idPattern is anchored: the whole identifier must match.
var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidationError is a client-input error with a localized, user-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// requiredFields lists the required fields in their declared order.
// Validation short-circuits on the first empty one.
var requiredFields = []struct {
	name  string
	value func(*SubmissionRequest) string
}{
	{"id", func(s *SubmissionRequest) string { return s.ID }},
	{"cn_name", func(s *SubmissionRequest) string { return s.CNName }},
	{"author", func(s *SubmissionRequest) string { return s.Author }},
	{"description", func(s *SubmissionRequest) string { return s.Description }},
	{"code", func(s *SubmissionRequest) string { return s.Code }},
}

// Validate checks required fields (in order) and the identifier format.
// Returns nil when the submission is acceptable.
func (s *SubmissionRequest) Validate() *ValidationError {
	for _, f := range requiredFields {
		if f.value(s) == "" {
			return &ValidationError{
				Field:   f.name,
				Message: fmt.Sprintf("缺少必填字段: %s", f.name),
			}
		}
	}

	if !idPattern.MatchString(s.ID) {
		return &ValidationError{
			Field:   "id",
			Message: "插件ID格式不正确：必须以小写字母开头，只能包含小写字母、数字和下划线",
		}
	}

	return nil
}
