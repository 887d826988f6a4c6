package domain

import (
	"encoding/json"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Identification ties an individual guitar to a model. The only
// implementations are Referenced and Fallback.
type Identification interface {
	isIdentification()
}

// Referenced points at an already catalogued model. The hint fields keep any
// partial fallback text that was supplied alongside the reference without
// amounting to a fallback identification of its own.
type Referenced struct {
	Reference            ModelReference
	ManufacturerNameHint *string
	ModelNameHint        *string
}

// Fallback describes an uncatalogued instrument by text. It is only built when
// a model name or a description accompanies the manufacturer name.
type Fallback struct {
	ManufacturerName string
	ModelName        *string
}

func (Referenced) isIdentification() {}
func (Fallback) isIdentification()   {}

// GuitarDetails are the instance fields of an individual guitar that carry no
// cross-field rules.
type GuitarDetails struct {
	YearEstimate          *string           `json:"year_estimate,omitempty" validate:"omitempty,max=50"`
	Description           *string           `json:"description,omitempty"`
	SerialNumber          *string           `json:"serial_number,omitempty" validate:"omitempty,max=50"`
	ProductionDate        *civil.Date       `json:"production_date,omitempty"`
	ProductionNumber      *int              `json:"production_number,omitempty"`
	SignificanceLevel     SignificanceLevel `json:"significance_level" validate:"enum"`
	SignificanceNotes     *string           `json:"significance_notes,omitempty"`
	CurrentEstimatedValue *decimal.Decimal  `json:"current_estimated_value,omitempty" validate:"omitempty,gte=0"`
	LastValuationDate     *civil.Date       `json:"last_valuation_date,omitempty"`
	ConditionRating       *ConditionRating  `json:"condition_rating,omitempty" validate:"omitempty,enum"`
	Modifications         *string           `json:"modifications,omitempty"`
	ProvenanceNotes       *string           `json:"provenance_notes,omitempty"`
	Specifications        *Specifications   `json:"specifications,omitempty" validate:"omitempty"`
	Photos                []Photo           `json:"photos,omitempty" validate:"omitempty,dive"`
}

// IndividualGuitarRecord is the flat wire form of an individual guitar, as
// exchanged with producers. Identify turns it into an IndividualGuitar.
type IndividualGuitarRecord struct {
	ModelReference           *ModelReference `json:"model_reference,omitempty" validate:"omitempty"`
	ManufacturerNameFallback *string         `json:"manufacturer_name_fallback,omitempty" validate:"omitempty,max=100"`
	ModelNameFallback        *string         `json:"model_name_fallback,omitempty" validate:"omitempty,max=150"`
	GuitarDetails
}

func (r *IndividualGuitarRecord) ApplyDefaults() {
	if r.SignificanceLevel == "" {
		r.SignificanceLevel = SignificanceNotable
	}
}

// Identify resolves the record into exactly one identification variant. It
// fails with MissingIdentification when neither a reference nor sufficient
// fallback text is present, and with ConflictingIdentification when both are.
func (r IndividualGuitarRecord) Identify() (IndividualGuitar, error) {
	hasReference := r.ModelReference != nil
	hasFallback := r.ManufacturerNameFallback != nil &&
		(r.ModelNameFallback != nil || r.Description != nil)

	var id Identification
	switch {
	case !hasReference && !hasFallback:
		return IndividualGuitar{}, NewValidationError("individual guitar identification failed", Issue{
			Kind:    KindMissingIdentification,
			Message: "must provide either model_reference or manufacturer_name_fallback together with model_name_fallback or description",
		})
	case hasReference && hasFallback:
		return IndividualGuitar{}, NewValidationError("individual guitar identification failed", Issue{
			Kind:    KindConflictingIdentification,
			Message: "cannot provide both model_reference and fallback identification fields",
		})
	case hasReference:
		id = Referenced{
			Reference:            *r.ModelReference,
			ManufacturerNameHint: r.ManufacturerNameFallback,
			ModelNameHint:        r.ModelNameFallback,
		}
	default:
		id = Fallback{
			ManufacturerName: *r.ManufacturerNameFallback,
			ModelName:        r.ModelNameFallback,
		}
	}

	g := IndividualGuitar{Identification: id, GuitarDetails: r.GuitarDetails}
	g.ApplyDefaults()
	return g, nil
}

// IndividualGuitar is a physical instrument with a resolved identification.
type IndividualGuitar struct {
	Identification Identification
	GuitarDetails
}

func (g *IndividualGuitar) ApplyDefaults() {
	if g.SignificanceLevel == "" {
		g.SignificanceLevel = SignificanceNotable
	}
}

// Reference returns the model reference of a Referenced guitar, nil otherwise.
func (g IndividualGuitar) Reference() *ModelReference {
	if ref, ok := g.Identification.(Referenced); ok {
		r := ref.Reference
		return &r
	}
	return nil
}

// Record flattens g back into its wire form.
func (g IndividualGuitar) Record() IndividualGuitarRecord {
	rec := IndividualGuitarRecord{GuitarDetails: g.GuitarDetails}
	switch id := g.Identification.(type) {
	case Referenced:
		ref := id.Reference
		rec.ModelReference = &ref
		rec.ManufacturerNameFallback = id.ManufacturerNameHint
		rec.ModelNameFallback = id.ModelNameHint
	case Fallback:
		name := id.ManufacturerName
		rec.ManufacturerNameFallback = &name
		rec.ModelNameFallback = id.ModelName
	}
	return rec
}

func (g IndividualGuitar) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Record())
}

// UnmarshalJSON decodes the wire form and applies the identification rule.
// Field constraints are not checked here; use the usecase validator for
// untrusted input.
func (g *IndividualGuitar) UnmarshalJSON(data []byte) error {
	var rec IndividualGuitarRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	rec.ApplyDefaults()
	identified, err := rec.Identify()
	if err != nil {
		return err
	}
	*g = identified
	return nil
}
