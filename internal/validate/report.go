package validate

import (
	"errors"
	"fmt"
)

// ErrValidationFailed is returned when a report contains errors.
var ErrValidationFailed = errors.New("content validation failed")

// Severity classifies an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding.
type Issue struct {
	File     string
	Field    string
	Message  string
	Severity Severity
}

func (i Issue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("%s (%s): %s", i.File, i.Field, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.File, i.Message)
}

// Report collects issues in the order they were found.
type Report struct {
	Issues []Issue

	// Checked counts validated content files, Passed lists those without errors.
	Checked int
	Passed  []string

	// Notices are informational lines printed before the results.
	Notices []string
}

func (r *Report) addError(file, field, msg string) {
	r.Issues = append(r.Issues, Issue{File: file, Field: field, Message: msg, Severity: SeverityError})
}

func (r *Report) addWarning(file, field, msg string) {
	r.Issues = append(r.Issues, Issue{File: file, Field: field, Message: msg, Severity: SeverityWarning})
}

// Errors returns the error issues.
func (r *Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning issues.
func (r *Report) Warnings() []Issue { return r.filter(SeverityWarning) }

// HasErrors reports whether any error was recorded.
func (r *Report) HasErrors() bool { return len(r.Errors()) > 0 }

func (r *Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Merge appends the contents of other to r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	r.Checked += other.Checked
	r.Passed = append(r.Passed, other.Passed...)
	r.Notices = append(r.Notices, other.Notices...)
}

// Err returns ErrValidationFailed wrapped with the error count, or nil.
// With failOnWarnings, warnings alone also fail.
func (r *Report) Err(failOnWarnings bool) error {
	errs, warns := len(r.Errors()), len(r.Warnings())
	switch {
	case errs > 0:
		return fmt.Errorf("%w: %d error(s)", ErrValidationFailed, errs)
	case failOnWarnings && warns > 0:
		return fmt.Errorf("%w: %d warning(s) with fail_on_warnings set", ErrValidationFailed, warns)
	}
	return nil
}
