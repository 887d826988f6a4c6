package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
	"github.com/atvirokodosprendimai/guitarregistry/internal/errors"
)

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	dateType    = reflect.TypeOf(civil.Date{})
	specSetType = reflect.TypeOf(domain.SpecificationSet{})
)

// decoded is the outcome of turning untyped input into a wire struct.
type decoded struct {
	issues []domain.Issue
	// failed holds the paths whose values could not be converted at all.
	failed []string
	// unused holds input keys that matched no field, sorted.
	unused []string
}

// decodeInto copies raw into out, which must be a pointer to a struct with
// json tags. Conversion failures are reported as issues, not errors; the
// returned error is only set when the decoder cannot be built.
func decodeInto(raw any, out any) (decoded, error) {
	var res decoded
	if kind := reflect.ValueOf(raw).Kind(); kind != reflect.Map {
		res.issues = append(res.issues, domain.Issue{
			Kind:       domain.KindFieldConstraint,
			Constraint: "type",
			Message:    "expected an object, got " + describeValue(raw),
		})
		res.failed = append(res.failed, "")
		return res, nil
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   out,
		TagName:  "json",
		Squash:   true,
		Metadata: &md,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			wholeNumberHook,
			decimalHook,
			dateHook,
			specificationSetHook,
		),
	})
	if err != nil {
		return res, errors.Wrap(err, "build decoder")
	}

	if err := dec.Decode(raw); err != nil {
		res.issues = decodeIssues(err)
		for _, issue := range res.issues {
			res.failed = append(res.failed, issue.Path)
		}
	}
	res.unused = append(res.unused, md.Unused...)
	sort.Strings(res.unused)
	return res, nil
}

// decodeIssues flattens the error tree produced by mapstructure. Field
// errors arrive as *mapstructure.DecodeError, joined per struct, and Decode
// wraps the joined tree once more in a plain fmt error.
func decodeIssues(err error) []domain.Issue {
	switch e := err.(type) {
	case *mapstructure.DecodeError:
		return []domain.Issue{{
			Path:       e.Name(),
			Kind:       domain.KindFieldConstraint,
			Constraint: "type",
			Message:    decodeMessage(e.Unwrap()),
		}}
	case interface{ Unwrap() []error }:
		var out []domain.Issue
		for _, inner := range e.Unwrap() {
			out = append(out, decodeIssues(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		if inner := e.Unwrap(); inner != nil {
			return decodeIssues(inner)
		}
	}
	return []domain.Issue{{
		Kind:       domain.KindFieldConstraint,
		Constraint: "type",
		Message:    err.Error(),
	}}
}

func decodeMessage(err error) string {
	var unconvertible *mapstructure.UnconvertibleTypeError
	if errors.As(err, &unconvertible) {
		return fmt.Sprintf("expected %s, got %s", describeType(unconvertible.Expected.Type()), describeValue(unconvertible.Value))
	}
	var parse *mapstructure.ParseError
	if errors.As(err, &parse) {
		return fmt.Sprintf("expected %s, got %s", describeType(parse.Expected.Type()), describeValue(parse.Value))
	}
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "expected a map or struct"):
		return "expected an object"
	case strings.HasPrefix(msg, "source data must be an array or slice"):
		return "expected an array"
	}
	return msg
}

func describeType(t reflect.Type) string {
	switch t {
	case decimalType:
		return "a decimal number"
	case dateType:
		return "a date"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Ptr:
		return describeType(t.Elem())
	}
	return t.String()
}

func describeValue(v any) string {
	if v == nil {
		return "null"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// wholeNumberHook rejects fractional numbers headed for integer fields;
// mapstructure would otherwise truncate them.
func wholeNumberHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if !isInteger(to.Kind()) {
		return data, nil
	}
	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, errors.Errorf("expected an integer, got %v", f)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return nil, errors.Errorf("integer %v is out of range", f)
	}
	return data, nil
}

// decimalHook accepts JSON numbers and numeric strings for decimal fields.
func decimalHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Errorf("expected a finite decimal number, got %v", v)
		}
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimalHook(nil, to, float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint64:
		return decimal.NewFromUint64(v), nil
	case json.Number:
		return decimalHook(nil, to, v.String())
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, errors.Errorf("expected a decimal number, got %q", v)
		}
		return d, nil
	}
	return nil, errors.Errorf("expected a decimal number, got %s", describeValue(data))
}

// dateHook accepts ISO-8601 calendar dates (YYYY-MM-DD).
func dateHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != dateType {
		return data, nil
	}
	switch v := data.(type) {
	case civil.Date:
		return v, nil
	case time.Time:
		return civil.DateOf(v), nil
	case string:
		d, err := civil.ParseDate(strings.TrimSpace(v))
		if err != nil {
			return nil, errors.Errorf("expected an ISO-8601 date (YYYY-MM-DD), got %q", v)
		}
		return d, nil
	}
	return nil, errors.Errorf("expected an ISO-8601 date string, got %s", describeValue(data))
}

// specificationSetHook lets a single specifications object stand in for a
// one-element set.
func specificationSetHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != specSetType || from.Kind() != reflect.Map {
		return data, nil
	}
	return []any{data}, nil
}
