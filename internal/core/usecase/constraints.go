package usecase

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
	"github.com/atvirokodosprendimai/guitarregistry/internal/errors"
)

// newFieldValidator builds the validator that enforces the struct tags on
// the domain wire types.
func newFieldValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterCustomTypeFunc(dateValue, civil.Date{})
	mustRegister(v, "enum", validEnum)
	mustRegister(v, "currency", validCurrency)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func dateValue(field reflect.Value) any {
	if d, ok := field.Interface().(civil.Date); ok {
		return d.String()
	}
	return nil
}

func validEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(domain.Enum)
	return ok && e.Valid()
}

func validCurrency(fl validator.FieldLevel) bool {
	return domain.ValidCurrencyCode(fl.Field().String())
}

// fieldIssues converts validator output into report entries.
func fieldIssues(err error) []domain.Issue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.Issue{{Kind: domain.KindFieldConstraint, Message: err.Error()}}
	}
	issues := make([]domain.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issue := domain.Issue{
			Path:       fieldPath(fe.Namespace()),
			Kind:       domain.KindFieldConstraint,
			Constraint: fe.Tag(),
			Message:    constraintMessage(fe),
		}
		if fe.Param() != "" {
			issue.Constraint += "=" + fe.Param()
		}
		if fe.Tag() != "required" {
			issue.Value = fe.Value()
		}
		issues = append(issues, issue)
	}
	return issues
}

// fieldPath turns a validator namespace ("SubmissionRecord.individual_guitar.
// GuitarDetails.photos[0].file_path") into a field path. The leading type
// name and embedded struct names are dropped; json names are never
// capitalised.
func fieldPath(namespace string) string {
	segments := strings.Split(namespace, ".")
	if len(segments) > 0 {
		segments = segments[1:]
	}
	kept := segments[:0]
	for _, s := range segments {
		if s == "" || unicode.IsUpper([]rune(s)[0]) {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, ".")
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "http_url":
		return "must be a valid http or https URL"
	case "currency":
		return "must be a three-letter uppercase currency code"
	case "enum":
		if e, ok := fe.Value().(domain.Enum); ok {
			return "must be one of: " + strings.Join(e.Options(), ", ")
		}
		return "is not an allowed value"
	}
	return fmt.Sprintf("failed the %q constraint", fe.Tag())
}

// withoutFailedPaths drops issues reported under a path whose value could not
// be decoded; the decode issue already covers them.
func withoutFailedPaths(issues []domain.Issue, failed []string) []domain.Issue {
	if len(failed) == 0 {
		return issues
	}
	out := issues[:0]
	for _, issue := range issues {
		if !underAny(issue.Path, failed) {
			out = append(out, issue)
		}
	}
	return out
}

func underAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if isUnder(path, p) {
			return true
		}
	}
	return false
}

// isUnder reports whether path equals prefix or names a field nested in it.
func isUnder(path, prefix string) bool {
	if prefix == "" || path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+".") || strings.HasPrefix(path, prefix+"[")
}
