package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	m := NewManufacturer("Gibson")
	assert.Equal(t, ManufacturerActive, m.Status)

	model := NewModel("Gibson", "ES-335", 1958)
	assert.Equal(t, ProductionMass, model.ProductionType)
	assert.Equal(t, DefaultCurrency, model.Currency)

	model = Model{ProductionType: ProductionLimited, Currency: "GBP"}
	model.ApplyDefaults()
	assert.Equal(t, ProductionLimited, model.ProductionType)
	assert.Equal(t, "GBP", model.Currency)
}

func TestModelReferenceMatches(t *testing.T) {
	model := NewModel("Gibson", "Les Paul Standard", 1959)
	assert.True(t, ModelReference{ManufacturerName: "gibson", ModelName: "LES PAUL STANDARD", Year: 1959}.Matches(model))
	assert.False(t, ModelReference{ManufacturerName: "Gibson", ModelName: "Les Paul Standard", Year: 1960}.Matches(model))
	assert.False(t, ModelReference{ManufacturerName: "Epiphone", ModelName: "Les Paul Standard", Year: 1959}.Matches(model))

	violin := NewModel("Höfner", "500/1", 1963)
	decomposed := "Ho\u0308fner"
	assert.True(t, ModelReference{ManufacturerName: decomposed, ModelName: "500/1", Year: 1963}.Matches(violin))
	assert.True(t, ModelReference{ManufacturerName: "HÖFNER", ModelName: "500/1", Year: 1963}.Matches(violin))
}

func TestSpecificationSetJSON(t *testing.T) {
	single := SpecificationSet{{BodyWood: ptr("Mahogany")}}
	data, err := json.Marshal(single)
	require.NoError(t, err)
	assert.JSONEq(t, `{"body_wood":"Mahogany"}`, string(data))

	var back SpecificationSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, single, back)

	many := SpecificationSet{{BodyWood: ptr("Alder")}, {BodyWood: ptr("Ash")}}
	data, err = json.Marshal(many)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"body_wood":"Alder"},{"body_wood":"Ash"}]`, string(data))

	back = nil
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, many, back)
}

func TestEnums(t *testing.T) {
	values := []Enum{
		ManufacturerDefunct, ProductionOneOff, SignificanceHistoric,
		ConditionRelic, SourcePriceGuide, RarityVeryRare,
	}
	for _, v := range values {
		assert.True(t, v.Valid(), "%v", v)
		assert.NotEmpty(t, v.Options())
	}
	assert.False(t, ManufacturerStatus("closed").Valid())
	assert.False(t, ConditionRating("Mint").Valid())
	assert.Equal(t, []string{"active", "defunct", "acquired"}, ManufacturerStatus("").Options())
}
