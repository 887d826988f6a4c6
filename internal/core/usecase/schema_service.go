package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
	"github.com/atvirokodosprendimai/guitarregistry/internal/errors"
)

var ErrUnknownSchema = errors.New("unknown schema")

// SchemaService exports JSON Schema documents for the registry types and
// validates raw payloads against them, for tooling that works without the
// Go types.
type SchemaService struct {
	docs  map[string]json.RawMessage
	cache sync.Map // key: schema name → *santhosh.Schema
}

func NewSchemaService() (*SchemaService, error) {
	generated := map[string]map[string]any{
		"manufacturer":       rootSchema("manufacturer", reflect.TypeOf(domain.Manufacturer{})),
		"model":              rootSchema("model", reflect.TypeOf(domain.Model{})),
		"individual_guitar":  rootSchema("individual_guitar", guitarRecordType),
		"source_attribution": rootSchema("source_attribution", reflect.TypeOf(domain.SourceAttribution{})),
		"specifications":     rootSchema("specifications", reflect.TypeOf(domain.Specifications{})),
		"finish":             rootSchema("finish", reflect.TypeOf(domain.Finish{})),
		"photo":              rootSchema("photo", reflect.TypeOf(domain.Photo{})),
		"guitar_submission":  rootSchema("guitar_submission", submissionRecordType),
		"batch_submission":   batchSchema(),
	}

	docs := make(map[string]json.RawMessage, len(generated))
	for name, doc := range generated {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %s schema", name)
		}
		docs[name] = raw
	}
	return &SchemaService{docs: docs}, nil
}

// Names returns the exported schema names in sorted order.
func (s *SchemaService) Names() []string {
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Documents returns every schema document keyed by name.
func (s *SchemaService) Documents() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(s.docs))
	for name, doc := range s.docs {
		out[name] = append(json.RawMessage(nil), doc...)
	}
	return out
}

func (s *SchemaService) Document(name string) (json.RawMessage, error) {
	doc, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	return append(json.RawMessage(nil), doc...), nil
}

// Validate checks data against the named schema. Returns
// *domain.ErrSchemaViolation on failure.
func (s *SchemaService) Validate(name string, data json.RawMessage) error {
	if cached, ok := s.cache.Load(name); ok {
		return runValidation(name, cached.(*santhosh.Schema), data)
	}

	doc, err := s.Document(name)
	if err != nil {
		return err
	}
	compiled, err := compileSchema(name, doc)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	s.cache.Store(name, compiled)
	return runValidation(name, compiled, data)
}

// compileSchema builds a *santhosh.Schema from raw JSON.
func compileSchema(name string, schemaJSON json.RawMessage) (*santhosh.Schema, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft2020
	compiler.AssertFormat = true
	url := name + ".json"
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// runValidation validates data against a pre-compiled schema.
func runValidation(name string, sch *santhosh.Schema, data json.RawMessage) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return &domain.ErrSchemaViolation{Schema: name, Errors: collectValidationErrors(ve)}
		}
		return &domain.ErrSchemaViolation{Schema: name, Errors: []string{err.Error()}}
	}
	return nil
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(ve.Causes) == 0 {
		msgs = append(msgs, fmt.Sprintf("%s: %s", instancePath(ve.InstanceLocation), ve.Message))
	}
	return msgs
}

func instancePath(loc string) string {
	if loc == "" {
		return "/"
	}
	return loc
}
