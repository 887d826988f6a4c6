package usecase

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
)

const jsonSchemaDialect = "https://json-schema.org/draft/2020-12/schema"

var (
	enumType             = reflect.TypeOf((*domain.Enum)(nil)).Elem()
	guitarRecordType     = reflect.TypeOf(domain.IndividualGuitarRecord{})
	submissionRecordType = reflect.TypeOf(domain.SubmissionRecord{})
)

// crossFieldRules adds the rules struct tags cannot express.
var crossFieldRules = map[reflect.Type]func(map[string]any){
	guitarRecordType: func(s map[string]any) {
		s["oneOf"] = []any{
			map[string]any{"required": []string{"model_reference"}},
			map[string]any{
				"required": []string{"manufacturer_name_fallback"},
				"anyOf": []any{
					map[string]any{"required": []string{"model_name_fallback"}},
					map[string]any{"required": []string{"description"}},
				},
			},
		}
	},
	submissionRecordType: func(s map[string]any) {
		s["anyOf"] = []any{
			map[string]any{"required": []string{"manufacturer", "model"}},
			map[string]any{
				"required": []string{"individual_guitar"},
				"properties": map[string]any{
					"individual_guitar": map[string]any{"required": []string{"model_reference"}},
				},
			},
		}
	},
}

// rootSchema wraps the object schema of t as a standalone document.
func rootSchema(title string, t reflect.Type) map[string]any {
	s := objectSchema(t)
	s["$schema"] = jsonSchemaDialect
	s["title"] = title
	return s
}

func batchSchema() map[string]any {
	return map[string]any{
		"$schema":  jsonSchemaDialect,
		"title":    "batch_submission",
		"type":     "object",
		"required": []string{"submissions"},
		"properties": map[string]any{
			"submissions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    objectSchema(submissionRecordType),
			},
		},
	}
}

func objectSchema(t reflect.Type) map[string]any {
	props := map[string]any{}
	required := []string{}
	collectProperties(t, props, &required)

	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	if rule, ok := crossFieldRules[t]; ok {
		rule(s)
	}
	return s
}

func collectProperties(t reflect.Type, props map[string]any, required *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectProperties(f.Type, props, required)
			continue
		}
		name := jsonFieldName(f)
		if name == "" || !f.IsExported() {
			continue
		}

		prop := typeSchema(f.Type)
		isRequired := applyTags(prop, f.Type, f.Tag.Get("validate"))
		if isRequired {
			*required = append(*required, name)
		} else {
			prop = nullable(prop)
		}
		props[name] = prop
	}
}

func typeSchema(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case decimalType:
		return map[string]any{
			"type":    []any{"number", "string"},
			"pattern": `^-?[0-9]+(\.[0-9]+)?$`,
		}
	case dateType:
		return map[string]any{"type": "string", "format": "date"}
	case specSetType:
		item := objectSchema(t.Elem())
		return map[string]any{"oneOf": []any{
			item,
			map[string]any{"type": "array", "items": item},
		}}
	}

	if t.Implements(enumType) {
		e := reflect.Zero(t).Interface().(domain.Enum)
		return map[string]any{"type": "string", "enum": e.Options()}
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice:
		return map[string]any{"type": "array", "items": typeSchema(t.Elem())}
	case reflect.Struct:
		return objectSchema(t)
	}
	return map[string]any{}
}

// applyTags translates validate tags into schema keywords and reports
// whether the field is required.
func applyTags(s map[string]any, t reflect.Type, tag string) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	isString := t.Kind() == reflect.String && !t.Implements(enumType)
	required := false

	for _, rule := range strings.Split(tag, ",") {
		name, param, _ := strings.Cut(rule, "=")
		switch name {
		case "required":
			required = true
			if isString {
				s["minLength"] = 1
			}
		case "min":
			if isString {
				s["minLength"] = atoi(param)
			} else {
				s["minimum"] = atof(param)
			}
		case "max":
			if isString {
				s["maxLength"] = atoi(param)
			} else {
				s["maximum"] = atof(param)
			}
		case "gte":
			s["minimum"] = atof(param)
		case "lte":
			s["maximum"] = atof(param)
		case "http_url":
			s["format"] = "uri"
			s["pattern"] = "^[Hh][Tt][Tt][Pp][Ss]?://"
		case "currency":
			s["pattern"] = "^[A-Z]{3}$"
		}
	}
	return required
}

// nullable lets an optional property be null, which decoding treats as
// absent.
func nullable(s map[string]any) map[string]any {
	switch typ := s["type"].(type) {
	case string:
		s["type"] = []any{typ, "null"}
		if enum, ok := s["enum"].([]string); ok {
			values := make([]any, 0, len(enum)+1)
			for _, v := range enum {
				values = append(values, v)
			}
			s["enum"] = append(values, nil)
		}
	case []any:
		s["type"] = append(typ, "null")
	default:
		if oneOf, ok := s["oneOf"].([]any); ok {
			s["oneOf"] = append(oneOf, map[string]any{"type": "null"})
		}
	}
	return s
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
