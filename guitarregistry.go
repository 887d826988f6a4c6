// Package guitarregistry validates guitar registry submissions: catalogue
// entries, individual instruments, provenance and batches of them. Inputs
// are untyped decoded JSON (maps, slices and scalars); outputs are either
// fully validated values or a *ValidationError listing every issue found.
package guitarregistry

import (
	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
	"github.com/atvirokodosprendimai/guitarregistry/internal/core/usecase"
)

type (
	Manufacturer           = domain.Manufacturer
	Model                  = domain.Model
	ModelReference         = domain.ModelReference
	SourceAttribution      = domain.SourceAttribution
	Specifications         = domain.Specifications
	SpecificationSet       = domain.SpecificationSet
	Photo                  = domain.Photo
	Finish                 = domain.Finish
	IndividualGuitar       = domain.IndividualGuitar
	IndividualGuitarRecord = domain.IndividualGuitarRecord
	GuitarDetails          = domain.GuitarDetails
	Identification         = domain.Identification
	Referenced             = domain.Referenced
	Fallback               = domain.Fallback
	GuitarSubmission       = domain.GuitarSubmission
	BatchSubmission        = domain.BatchSubmission
	Components             = domain.Components
	Summary                = domain.Summary

	ManufacturerStatus = domain.ManufacturerStatus
	ProductionType     = domain.ProductionType
	SignificanceLevel  = domain.SignificanceLevel
	ConditionRating    = domain.ConditionRating
	SourceType         = domain.SourceType
	FinishRarity       = domain.FinishRarity

	ErrorKind          = domain.ErrorKind
	Issue              = domain.Issue
	ValidationError    = domain.ValidationError
	ErrSchemaViolation = domain.ErrSchemaViolation

	Validator        = usecase.Validator
	ValidatorOption  = usecase.ValidatorOption
	UnknownKeyPolicy = usecase.UnknownKeyPolicy
	SchemaService    = usecase.SchemaService
)

const (
	FieldConstraintViolation  = domain.KindFieldConstraint
	MissingIdentification     = domain.KindMissingIdentification
	ConflictingIdentification = domain.KindConflictingIdentification
	UnresolvableModel         = domain.KindUnresolvableModel
	EmptyBatch                = domain.KindEmptyBatch

	IgnoreUnknownKeys = usecase.IgnoreUnknownKeys
	RejectUnknownKeys = usecase.RejectUnknownKeys
)

var (
	ErrFieldConstraint           = domain.ErrFieldConstraint
	ErrMissingIdentification     = domain.ErrMissingIdentification
	ErrConflictingIdentification = domain.ErrConflictingIdentification
	ErrUnresolvableModel         = domain.ErrUnresolvableModel
	ErrEmptyBatch                = domain.ErrEmptyBatch
	ErrUnknownSchema             = usecase.ErrUnknownSchema
)

var defaultValidator = usecase.NewValidator()

func NewValidator(opts ...ValidatorOption) *Validator { return usecase.NewValidator(opts...) }

func WithUnknownKeys(policy UnknownKeyPolicy) ValidatorOption {
	return usecase.WithUnknownKeys(policy)
}

func NewSchemaService() (*SchemaService, error) { return usecase.NewSchemaService() }

// ValidateSubmission validates one submission with the default validator.
func ValidateSubmission(raw any) (GuitarSubmission, error) {
	return defaultValidator.ValidateSubmission(raw)
}

// ValidateBatch validates a sequence of submissions with the default
// validator. Issues are reported under submissions[i].
func ValidateBatch(raw []any) (BatchSubmission, error) {
	return defaultValidator.ValidateBatch(raw)
}

// ValidateComponents validates every recognised component of raw on its own.
func ValidateComponents(raw map[string]any) (Components, error) {
	return defaultValidator.ValidateComponents(raw)
}

func ComponentSummary(raw map[string]any) Summary {
	return defaultValidator.Summary(raw)
}

// IssuesOf returns the issues carried by err, or nil when err is not a
// *ValidationError.
func IssuesOf(err error) []Issue { return domain.IssuesOf(err) }

func ValidSerialNumber(s string) bool { return domain.ValidSerialNumber(s) }

func YearInRange(year, lo, hi int) bool { return domain.YearInRange(year, lo, hi) }

func ValidCurrencyCode(s string) bool { return domain.ValidCurrencyCode(s) }
