package domain

import (
	"fmt"
	"strings"

	"github.com/atvirokodosprendimai/guitarregistry/internal/errors"
)

// ErrorKind classifies a validation issue.
type ErrorKind string

const (
	KindFieldConstraint           ErrorKind = "FieldConstraintViolation"
	KindMissingIdentification     ErrorKind = "MissingIdentification"
	KindConflictingIdentification ErrorKind = "ConflictingIdentification"
	KindUnresolvableModel         ErrorKind = "UnresolvableModel"
	KindEmptyBatch                ErrorKind = "EmptyBatch"
)

var (
	ErrFieldConstraint           = errors.New("field constraint violation")
	ErrMissingIdentification     = errors.New("missing identification")
	ErrConflictingIdentification = errors.New("conflicting identification")
	ErrUnresolvableModel         = errors.New("unresolvable model")
	ErrEmptyBatch                = errors.New("empty batch")
)

// Err returns the sentinel error matching k.
func (k ErrorKind) Err() error {
	switch k {
	case KindMissingIdentification:
		return ErrMissingIdentification
	case KindConflictingIdentification:
		return ErrConflictingIdentification
	case KindUnresolvableModel:
		return ErrUnresolvableModel
	case KindEmptyBatch:
		return ErrEmptyBatch
	default:
		return ErrFieldConstraint
	}
}

// Issue is one entry of a validation report. Component is only set by
// component-wise validation.
type Issue struct {
	Component  string    `json:"component,omitempty"`
	Path       string    `json:"field_path"`
	Kind       ErrorKind `json:"error_kind"`
	Constraint string    `json:"constraint,omitempty"`
	Value      any       `json:"value,omitempty"`
	Message    string    `json:"message"`
}

// Under returns a copy of the issue with prefix prepended to its path.
func (i Issue) Under(prefix string) Issue {
	i.Path = JoinPath(prefix, i.Path)
	return i
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Component != "" {
		b.WriteString(i.Component)
		b.WriteString(": ")
	}
	if i.Path != "" {
		b.WriteString(i.Path)
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	return b.String()
}

// JoinPath joins a parent field path and a child path. Index segments
// ("[2]") attach without a dot.
func JoinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	case strings.HasPrefix(path, "["):
		return prefix + path
	default:
		return prefix + "." + path
	}
}

// IndexPath renders the path of the i-th element of the sequence at name.
func IndexPath(name string, i int) string {
	return fmt.Sprintf("%s[%d]", name, i)
}

// ValidationError is the structured report returned by every validation
// operation. Issues keep the order in which they were found.
type ValidationError struct {
	Title  string
	Issues []Issue
}

func NewValidationError(title string, issues ...Issue) *ValidationError {
	return &ValidationError{Title: title, Issues: issues}
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s: %s", e.Title, strings.Join(parts, "; "))
}

// Unwrap exposes one sentinel per distinct error kind so callers can use
// errors.Is(err, domain.ErrMissingIdentification) and friends.
func (e *ValidationError) Unwrap() []error {
	seen := make(map[ErrorKind]bool, len(e.Issues))
	var errs []error
	for _, issue := range e.Issues {
		if seen[issue.Kind] {
			continue
		}
		seen[issue.Kind] = true
		errs = append(errs, issue.Kind.Err())
	}
	return errs
}

// Has reports whether any issue has the given kind.
func (e *ValidationError) Has(kind ErrorKind) bool {
	for _, issue := range e.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

// Under returns a copy of the error with every issue path prefixed.
func (e *ValidationError) Under(prefix string) *ValidationError {
	out := &ValidationError{Title: e.Title, Issues: make([]Issue, len(e.Issues))}
	for i, issue := range e.Issues {
		out.Issues[i] = issue.Under(prefix)
	}
	return out
}

// IssuesOf extracts the issues of err when it is a *ValidationError.
func IssuesOf(err error) []Issue {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Issues
	}
	return nil
}
