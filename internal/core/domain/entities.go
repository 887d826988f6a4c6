package domain

import (
	"encoding/json"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const DefaultCurrency = "USD"

// Defaulter fills in per-entity default values for fields left unset by the
// caller. It never overwrites a value that was supplied.
type Defaulter interface {
	ApplyDefaults()
}

type Manufacturer struct {
	Name        string             `json:"name" validate:"required,min=1,max=100"`
	Country     *string            `json:"country,omitempty" validate:"omitempty,max=50"`
	FoundedYear *int               `json:"founded_year,omitempty" validate:"omitempty,gte=1800,lte=2030"`
	Website     *string            `json:"website,omitempty" validate:"omitempty,http_url"`
	Status      ManufacturerStatus `json:"status" validate:"enum"`
	Notes       *string            `json:"notes,omitempty"`
	LogoSource  *string            `json:"logo_source,omitempty"`
}

func NewManufacturer(name string) Manufacturer {
	m := Manufacturer{Name: name}
	m.ApplyDefaults()
	return m
}

func (m *Manufacturer) ApplyDefaults() {
	if m.Status == "" {
		m.Status = ManufacturerActive
	}
}

// Model is a catalogued guitar model. ManufacturerName is a soft reference
// resolved by name downstream, not an identifier.
type Model struct {
	ManufacturerName            string           `json:"manufacturer_name" validate:"required,max=100"`
	ProductLineName             *string          `json:"product_line_name,omitempty" validate:"omitempty,max=100"`
	Name                        string           `json:"name" validate:"required,min=1,max=150"`
	Year                        int              `json:"year" validate:"required,gte=1900,lte=2030"`
	ProductionType              ProductionType   `json:"production_type" validate:"enum"`
	ProductionStartDate         *civil.Date      `json:"production_start_date,omitempty"`
	ProductionEndDate           *civil.Date      `json:"production_end_date,omitempty"`
	EstimatedProductionQuantity *int             `json:"estimated_production_quantity,omitempty" validate:"omitempty,gte=1"`
	MSRPOriginal                *decimal.Decimal `json:"msrp_original,omitempty" validate:"omitempty,gte=0"`
	Currency                    string           `json:"currency" validate:"currency"`
	Description                 *string          `json:"description,omitempty"`
	Specifications              SpecificationSet `json:"specifications,omitempty" validate:"omitempty,dive"`
	Finishes                    []Finish         `json:"finishes,omitempty" validate:"omitempty,dive"`
}

func NewModel(manufacturerName, name string, year int) Model {
	m := Model{ManufacturerName: manufacturerName, Name: name, Year: year}
	m.ApplyDefaults()
	return m
}

func (m *Model) ApplyDefaults() {
	if m.ProductionType == "" {
		m.ProductionType = ProductionMass
	}
	if m.Currency == "" {
		m.Currency = DefaultCurrency
	}
}

// ModelReference identifies an existing Model by natural key.
type ModelReference struct {
	ManufacturerName string `json:"manufacturer_name" validate:"required"`
	ModelName        string `json:"model_name" validate:"required"`
	Year             int    `json:"year" validate:"required"`
}

// Matches reports whether m is the model r points at: names compare after
// Unicode normalization and case folding, the year must be equal.
func (r ModelReference) Matches(m Model) bool {
	return r.Year == m.Year &&
		sameName(r.ManufacturerName, m.ManufacturerName) &&
		sameName(r.ModelName, m.Name)
}

func sameName(a, b string) bool {
	// Casers keep state; one per call.
	fold := cases.Fold()
	return fold.String(norm.NFC.String(a)) == fold.String(norm.NFC.String(b))
}

type SourceAttribution struct {
	SourceName       string      `json:"source_name" validate:"required,min=1,max=100"`
	SourceType       *SourceType `json:"source_type,omitempty" validate:"omitempty,enum"`
	URL              *string     `json:"url,omitempty" validate:"omitempty,max=500,http_url"`
	ISBN             *string     `json:"isbn,omitempty" validate:"omitempty,max=20"`
	PublicationDate  *civil.Date `json:"publication_date,omitempty"`
	ReliabilityScore *int        `json:"reliability_score,omitempty" validate:"omitempty,gte=1,lte=10"`
	Notes            *string     `json:"notes,omitempty"`
}

type Specifications struct {
	BodyWood               *string  `json:"body_wood,omitempty" validate:"omitempty,max=50"`
	NeckWood               *string  `json:"neck_wood,omitempty" validate:"omitempty,max=50"`
	FingerboardWood        *string  `json:"fingerboard_wood,omitempty" validate:"omitempty,max=50"`
	ScaleLengthInches      *float64 `json:"scale_length_inches,omitempty" validate:"omitempty,gte=20,lte=30"`
	NumFrets               *int     `json:"num_frets,omitempty" validate:"omitempty,gte=12,lte=36"`
	NutWidthInches         *float64 `json:"nut_width_inches,omitempty" validate:"omitempty,gte=1,lte=2.5"`
	NeckProfile            *string  `json:"neck_profile,omitempty" validate:"omitempty,max=50"`
	BridgeType             *string  `json:"bridge_type,omitempty" validate:"omitempty,max=50"`
	PickupConfiguration    *string  `json:"pickup_configuration,omitempty" validate:"omitempty,max=150"`
	PickupBrand            *string  `json:"pickup_brand,omitempty" validate:"omitempty,max=100"`
	PickupModel            *string  `json:"pickup_model,omitempty" validate:"omitempty,max=100"`
	ElectronicsDescription *string  `json:"electronics_description,omitempty"`
	HardwareFinish         *string  `json:"hardware_finish,omitempty" validate:"omitempty,max=50"`
	BodyFinish             *string  `json:"body_finish,omitempty"`
	WeightLbs              *float64 `json:"weight_lbs,omitempty" validate:"omitempty,gte=1,lte=20"`
	CaseIncluded           *bool    `json:"case_included,omitempty"`
	CaseType               *string  `json:"case_type,omitempty" validate:"omitempty,max=50"`
}

// SpecificationSet holds the specifications of a model. Single-variant models
// carry one entry and serialize as a bare object; multi-variant models
// serialize as an array.
type SpecificationSet []Specifications

func (s SpecificationSet) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]Specifications(s))
}

func (s *SpecificationSet) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var single Specifications
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = SpecificationSet{single}
		return nil
	}
	var many []Specifications
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

type Photo struct {
	FilePath    string  `json:"file_path" validate:"required"`
	PhotoType   string  `json:"photo_type" validate:"required"`
	Description *string `json:"description,omitempty"`
	IsPrimary   bool    `json:"is_primary"`
}

type Finish struct {
	FinishName string        `json:"finish_name" validate:"required,min=1,max=100"`
	FinishType *string       `json:"finish_type,omitempty" validate:"omitempty,max=50"`
	Rarity     *FinishRarity `json:"rarity,omitempty" validate:"omitempty,enum"`
	Notes      *string       `json:"notes,omitempty"`
}
