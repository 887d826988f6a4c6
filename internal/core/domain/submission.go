package domain

import "encoding/json"

// Top-level component names of a submission payload.
const (
	ComponentManufacturer      = "manufacturer"
	ComponentModel             = "model"
	ComponentIndividualGuitar  = "individual_guitar"
	ComponentSourceAttribution = "source_attribution"
	ComponentSpecifications    = "specifications"
)

// ComponentNames lists the components in the order they are validated.
var ComponentNames = []string{
	ComponentManufacturer,
	ComponentModel,
	ComponentIndividualGuitar,
	ComponentSourceAttribution,
	ComponentSpecifications,
}

// GuitarSubmission combines an individual guitar with the catalogue entries
// it may introduce and where the data came from.
type GuitarSubmission struct {
	Manufacturer      *Manufacturer      `json:"manufacturer,omitempty"`
	Model             *Model             `json:"model,omitempty"`
	IndividualGuitar  IndividualGuitar   `json:"individual_guitar"`
	SourceAttribution *SourceAttribution `json:"source_attribution,omitempty"`
}

// NewGuitarSubmission assembles a submission and checks that it establishes a
// path to a model: a new manufacturer and model, a reference to an existing
// model, or both.
func NewGuitarSubmission(manufacturer *Manufacturer, model *Model, guitar IndividualGuitar, source *SourceAttribution) (GuitarSubmission, error) {
	s := GuitarSubmission{
		Manufacturer:      manufacturer,
		Model:             model,
		IndividualGuitar:  guitar,
		SourceAttribution: source,
	}
	if err := s.CheckStructure(); err != nil {
		return GuitarSubmission{}, err
	}
	return s, nil
}

// CheckStructure enforces the model-resolution rule. Unlike guitar
// identification, both paths may hold at once.
func (s GuitarSubmission) CheckStructure() error {
	hasNewModel := s.Manufacturer != nil && s.Model != nil
	hasExistingReference := s.IndividualGuitar.Reference() != nil
	if !hasNewModel && !hasExistingReference {
		return NewValidationError("guitar submission structure invalid", Issue{
			Kind:    KindUnresolvableModel,
			Message: "must provide either manufacturer and model, or individual_guitar with model_reference",
		})
	}
	return nil
}

// UnmarshalJSON decodes the wire form, identifies the individual guitar and
// applies the model-resolution rule. Field constraints are not checked here;
// use the usecase validator for untrusted input.
func (s *GuitarSubmission) UnmarshalJSON(data []byte) error {
	var wire struct {
		Manufacturer      *Manufacturer      `json:"manufacturer"`
		Model             *Model             `json:"model"`
		IndividualGuitar  *IndividualGuitar  `json:"individual_guitar"`
		SourceAttribution *SourceAttribution `json:"source_attribution"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.IndividualGuitar == nil {
		return NewValidationError("guitar submission validation failed", Issue{
			Path:       ComponentIndividualGuitar,
			Kind:       KindFieldConstraint,
			Constraint: "required",
			Message:    "field required",
		})
	}
	if wire.Manufacturer != nil {
		wire.Manufacturer.ApplyDefaults()
	}
	if wire.Model != nil {
		wire.Model.ApplyDefaults()
	}

	sub, err := NewGuitarSubmission(wire.Manufacturer, wire.Model, *wire.IndividualGuitar, wire.SourceAttribution)
	if err != nil {
		return err
	}
	*s = sub
	return nil
}

// Record returns the wire form of the submission.
func (s GuitarSubmission) Record() SubmissionRecord {
	guitar := s.IndividualGuitar.Record()
	return SubmissionRecord{
		Manufacturer:      s.Manufacturer,
		Model:             s.Model,
		IndividualGuitar:  &guitar,
		SourceAttribution: s.SourceAttribution,
	}
}

// SubmissionRecord is the wire form of a GuitarSubmission before the
// individual guitar has been identified.
type SubmissionRecord struct {
	Manufacturer      *Manufacturer           `json:"manufacturer,omitempty" validate:"omitempty"`
	Model             *Model                  `json:"model,omitempty" validate:"omitempty"`
	IndividualGuitar  *IndividualGuitarRecord `json:"individual_guitar" validate:"required"`
	SourceAttribution *SourceAttribution      `json:"source_attribution,omitempty" validate:"omitempty"`
}

func (r *SubmissionRecord) ApplyDefaults() {
	if r.Manufacturer != nil {
		r.Manufacturer.ApplyDefaults()
	}
	if r.Model != nil {
		r.Model.ApplyDefaults()
	}
	if r.IndividualGuitar != nil {
		r.IndividualGuitar.ApplyDefaults()
	}
}

// BatchSubmission is a non-empty ordered sequence of submissions.
type BatchSubmission struct {
	Submissions []GuitarSubmission `json:"submissions"`
}

func NewBatchSubmission(submissions []GuitarSubmission) (BatchSubmission, error) {
	if len(submissions) == 0 {
		return BatchSubmission{}, EmptyBatchError()
	}
	return BatchSubmission{Submissions: submissions}, nil
}

func EmptyBatchError() *ValidationError {
	return NewValidationError("batch submission validation failed", Issue{
		Path:    "submissions",
		Kind:    KindEmptyBatch,
		Message: "must provide at least one submission",
	})
}

// Components holds the independently validated parts of a heterogeneous
// payload. Absent or failing components are nil.
type Components struct {
	Manufacturer      *Manufacturer      `json:"manufacturer,omitempty"`
	Model             *Model             `json:"model,omitempty"`
	IndividualGuitar  *IndividualGuitar  `json:"individual_guitar,omitempty"`
	SourceAttribution *SourceAttribution `json:"source_attribution,omitempty"`
	Specifications    *Specifications    `json:"specifications,omitempty"`
}

// Summary reports which components a payload carries and whether it forms a
// valid submission.
type Summary struct {
	HasManufacturer      bool    `json:"has_manufacturer"`
	HasModel             bool    `json:"has_model"`
	HasIndividualGuitar  bool    `json:"has_individual_guitar"`
	HasSourceAttribution bool    `json:"has_source_attribution"`
	HasSpecifications    bool    `json:"has_specifications"`
	ValidationErrors     []Issue `json:"validation_errors"`
	IsValid              bool    `json:"is_valid"`
}

// Delivery is a validated submission handed to the downstream registry.
type Delivery struct {
	Source     string           `json:"source"`
	Index      int              `json:"index"`
	Submission GuitarSubmission `json:"submission"`
}
