package usecase

import (
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
)

// UnknownKeyPolicy decides what happens to input keys that match no field.
type UnknownKeyPolicy int

const (
	// IgnoreUnknownKeys drops unrecognised keys silently.
	IgnoreUnknownKeys UnknownKeyPolicy = iota
	// RejectUnknownKeys reports each unrecognised key as a field constraint
	// violation.
	RejectUnknownKeys
)

func (p UnknownKeyPolicy) String() string {
	if p == RejectUnknownKeys {
		return "reject"
	}
	return "ignore"
}

type ValidatorOption func(*Validator)

func WithUnknownKeys(policy UnknownKeyPolicy) ValidatorOption {
	return func(v *Validator) { v.unknownKeys = policy }
}

// Validator turns untyped payloads into validated registry structures. It
// keeps no state between calls and is safe for concurrent use.
type Validator struct {
	fields      *validator.Validate
	unknownKeys UnknownKeyPolicy
}

func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{fields: newFieldValidator()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// construct decodes raw into out, applies defaults and collects every field
// level issue.
func (v *Validator) construct(raw any, out any) []domain.Issue {
	res, err := decodeInto(raw, out)
	if err != nil {
		return []domain.Issue{{Kind: domain.KindFieldConstraint, Message: err.Error()}}
	}
	issues := res.issues
	if slices.Contains(res.failed, "") {
		return issues
	}

	if d, ok := out.(domain.Defaulter); ok {
		d.ApplyDefaults()
	}
	if err := v.fields.Struct(out); err != nil {
		issues = append(issues, withoutFailedPaths(fieldIssues(err), res.failed)...)
	}
	if v.unknownKeys == RejectUnknownKeys {
		for _, key := range res.unused {
			issues = append(issues, unknownKeyIssue(key))
		}
	}
	return issues
}

func unknownKeyIssue(path string) domain.Issue {
	return domain.Issue{
		Path:       path,
		Kind:       domain.KindFieldConstraint,
		Constraint: "unknown_field",
		Message:    "unknown field",
	}
}

func constructEntity[T any](v *Validator, title string, raw any) (T, error) {
	var out T
	if issues := v.construct(raw, &out); len(issues) > 0 {
		var zero T
		return zero, domain.NewValidationError(title, issues...)
	}
	return out, nil
}

func (v *Validator) Manufacturer(raw any) (domain.Manufacturer, error) {
	return constructEntity[domain.Manufacturer](v, "manufacturer validation failed", raw)
}

func (v *Validator) Model(raw any) (domain.Model, error) {
	return constructEntity[domain.Model](v, "model validation failed", raw)
}

func (v *Validator) ModelReference(raw any) (domain.ModelReference, error) {
	return constructEntity[domain.ModelReference](v, "model reference validation failed", raw)
}

func (v *Validator) SourceAttribution(raw any) (domain.SourceAttribution, error) {
	return constructEntity[domain.SourceAttribution](v, "source attribution validation failed", raw)
}

func (v *Validator) Specifications(raw any) (domain.Specifications, error) {
	return constructEntity[domain.Specifications](v, "specifications validation failed", raw)
}

func (v *Validator) Photo(raw any) (domain.Photo, error) {
	return constructEntity[domain.Photo](v, "photo validation failed", raw)
}

func (v *Validator) Finish(raw any) (domain.Finish, error) {
	return constructEntity[domain.Finish](v, "finish validation failed", raw)
}

// IndividualGuitar validates the guitar's fields and then resolves its
// identification. The identification rule only runs once every field is
// valid, so a malformed model_reference surfaces as a field issue.
func (v *Validator) IndividualGuitar(raw any) (domain.IndividualGuitar, error) {
	rec, err := constructEntity[domain.IndividualGuitarRecord](v, "individual guitar validation failed", raw)
	if err != nil {
		return domain.IndividualGuitar{}, err
	}
	return rec.Identify()
}

// ValidateSubmission validates one guitar submission.
func (v *Validator) ValidateSubmission(raw any) (domain.GuitarSubmission, error) {
	sub, issues := v.submission(raw)
	if len(issues) > 0 {
		return domain.GuitarSubmission{}, domain.NewValidationError("guitar submission validation failed", issues...)
	}
	return sub, nil
}

func (v *Validator) submission(raw any) (domain.GuitarSubmission, []domain.Issue) {
	var rec domain.SubmissionRecord
	issues := v.construct(raw, &rec)
	if rec.IndividualGuitar == nil || hasIssuesUnder(issues, domain.ComponentIndividualGuitar) {
		return domain.GuitarSubmission{}, issues
	}

	guitar, err := rec.IndividualGuitar.Identify()
	if err != nil {
		for _, issue := range domain.IssuesOf(err) {
			issues = append(issues, issue.Under(domain.ComponentIndividualGuitar))
		}
		return domain.GuitarSubmission{}, issues
	}
	if len(issues) > 0 {
		return domain.GuitarSubmission{}, issues
	}

	sub, err := domain.NewGuitarSubmission(rec.Manufacturer, rec.Model, guitar, rec.SourceAttribution)
	if err != nil {
		return domain.GuitarSubmission{}, domain.IssuesOf(err)
	}
	return sub, nil
}

func hasIssuesUnder(issues []domain.Issue, prefix string) bool {
	for _, issue := range issues {
		if isUnder(issue.Path, prefix) {
			return true
		}
	}
	return false
}

// ValidateBatch validates every submission independently. An empty sequence
// fails with EmptyBatch before any element is looked at. Element issues are
// reported under submissions[i].
func (v *Validator) ValidateBatch(raw []any) (domain.BatchSubmission, error) {
	if len(raw) == 0 {
		return domain.BatchSubmission{}, domain.EmptyBatchError()
	}

	var issues []domain.Issue
	subs := make([]domain.GuitarSubmission, 0, len(raw))
	for i, item := range raw {
		sub, itemIssues := v.submission(item)
		prefix := domain.IndexPath("submissions", i)
		for _, issue := range itemIssues {
			issues = append(issues, issue.Under(prefix))
		}
		subs = append(subs, sub)
	}
	if len(issues) > 0 {
		return domain.BatchSubmission{}, domain.NewValidationError("batch submission validation failed", issues...)
	}
	return domain.NewBatchSubmission(subs)
}

// ValidateBatchEnvelope accepts the {"submissions": [...]} form of a batch.
func (v *Validator) ValidateBatchEnvelope(raw any) (domain.BatchSubmission, error) {
	fail := func(issues ...domain.Issue) (domain.BatchSubmission, error) {
		return domain.BatchSubmission{}, domain.NewValidationError("batch submission validation failed", issues...)
	}

	envelope, ok := raw.(map[string]any)
	if !ok {
		return fail(domain.Issue{
			Kind:       domain.KindFieldConstraint,
			Constraint: "type",
			Message:    "expected an object, got " + describeValue(raw),
		})
	}
	if v.unknownKeys == RejectUnknownKeys {
		var unknown []domain.Issue
		for _, key := range sortedKeys(envelope) {
			if key != "submissions" {
				unknown = append(unknown, unknownKeyIssue(key))
			}
		}
		if len(unknown) > 0 {
			return fail(unknown...)
		}
	}

	items, present := envelope["submissions"]
	if !present || items == nil {
		return fail(domain.Issue{
			Path:       "submissions",
			Kind:       domain.KindFieldConstraint,
			Constraint: "required",
			Message:    "field required",
		})
	}
	list, ok := items.([]any)
	if !ok {
		return fail(domain.Issue{
			Path:       "submissions",
			Kind:       domain.KindFieldConstraint,
			Constraint: "type",
			Message:    "expected an array, got " + describeValue(items),
		})
	}
	return v.ValidateBatch(list)
}

// ValidateComponents validates each recognised top-level component on its
// own. Every present component is attempted; the returned Components holds
// the ones that passed even when err reports failures in others.
func (v *Validator) ValidateComponents(raw map[string]any) (domain.Components, error) {
	var (
		comps  domain.Components
		issues []domain.Issue
	)
	collect := func(component string, err error) {
		for _, issue := range domain.IssuesOf(err) {
			issue = issue.Under(component)
			issue.Component = component
			issues = append(issues, issue)
		}
	}

	if data, ok := raw[domain.ComponentManufacturer]; ok {
		if m, err := v.Manufacturer(data); err != nil {
			collect(domain.ComponentManufacturer, err)
		} else {
			comps.Manufacturer = &m
		}
	}
	if data, ok := raw[domain.ComponentModel]; ok {
		if m, err := v.Model(data); err != nil {
			collect(domain.ComponentModel, err)
		} else {
			comps.Model = &m
		}
	}
	if data, ok := raw[domain.ComponentIndividualGuitar]; ok {
		if g, err := v.IndividualGuitar(data); err != nil {
			collect(domain.ComponentIndividualGuitar, err)
		} else {
			comps.IndividualGuitar = &g
		}
	}
	if data, ok := raw[domain.ComponentSourceAttribution]; ok {
		if s, err := v.SourceAttribution(data); err != nil {
			collect(domain.ComponentSourceAttribution, err)
		} else {
			comps.SourceAttribution = &s
		}
	}
	if data, ok := raw[domain.ComponentSpecifications]; ok {
		if s, err := v.Specifications(data); err != nil {
			collect(domain.ComponentSpecifications, err)
		} else {
			comps.Specifications = &s
		}
	}

	if v.unknownKeys == RejectUnknownKeys {
		for _, key := range sortedKeys(raw) {
			if !slices.Contains(domain.ComponentNames, key) {
				issues = append(issues, unknownKeyIssue(key))
			}
		}
	}

	if len(issues) > 0 {
		return comps, domain.NewValidationError("component validation failed", issues...)
	}
	return comps, nil
}

// Summary reports which components raw carries and whether it validates as
// a full submission.
func (v *Validator) Summary(raw map[string]any) domain.Summary {
	has := func(key string) bool {
		_, ok := raw[key]
		return ok
	}
	summary := domain.Summary{
		HasManufacturer:      has(domain.ComponentManufacturer),
		HasModel:             has(domain.ComponentModel),
		HasIndividualGuitar:  has(domain.ComponentIndividualGuitar),
		HasSourceAttribution: has(domain.ComponentSourceAttribution),
		HasSpecifications:    has(domain.ComponentSpecifications),
		ValidationErrors:     []domain.Issue{},
		IsValid:              true,
	}
	if _, err := v.ValidateSubmission(raw); err != nil {
		summary.ValidationErrors = domain.IssuesOf(err)
		summary.IsValid = false
	}
	return summary
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
