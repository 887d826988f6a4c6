package guitarregistry_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/guitarregistry"
)

func TestValidateSubmission(t *testing.T) {
	sub, err := guitarregistry.ValidateSubmission(map[string]any{
		"manufacturer": map[string]any{"name": "Rickenbacker"},
		"model":        map[string]any{"manufacturer_name": "Rickenbacker", "name": "360/12", "year": 1964.0},
		"individual_guitar": map[string]any{
			"manufacturer_name_fallback": "Rickenbacker",
			"description":                "Fireglo twelve-string",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, guitarregistry.Fallback{ManufacturerName: "Rickenbacker"}, sub.IndividualGuitar.Identification)
	assert.Equal(t, "USD", sub.Model.Currency)
}

func TestSentinelErrors(t *testing.T) {
	_, err := guitarregistry.ValidateSubmission(map[string]any{
		"individual_guitar": map[string]any{"manufacturer_name_fallback": "Unknown"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, guitarregistry.ErrMissingIdentification))

	var verr *guitarregistry.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has(guitarregistry.MissingIdentification))

	_, err = guitarregistry.ValidateBatch(nil)
	assert.ErrorIs(t, err, guitarregistry.ErrEmptyBatch)
	issues := guitarregistry.IssuesOf(err)
	require.Len(t, issues, 1)
	assert.Equal(t, guitarregistry.EmptyBatch, issues[0].Kind)
}

func TestComponentsAndSummary(t *testing.T) {
	raw := map[string]any{
		"manufacturer": map[string]any{"name": "Gretsch", "founded_year": 1883.0},
		"model":        map[string]any{"manufacturer_name": "Gretsch", "name": "6120"},
	}
	comps, err := guitarregistry.ValidateComponents(raw)
	require.Error(t, err)
	require.NotNil(t, comps.Manufacturer)
	assert.Nil(t, comps.Model)

	summary := guitarregistry.ComponentSummary(raw)
	assert.True(t, summary.HasManufacturer)
	assert.False(t, summary.IsValid)
}

func TestStrictValidator(t *testing.T) {
	v := guitarregistry.NewValidator(guitarregistry.WithUnknownKeys(guitarregistry.RejectUnknownKeys))
	_, err := v.Manufacturer(map[string]any{"name": "Gibson", "hq": "Nashville"})
	assert.ErrorIs(t, err, guitarregistry.ErrFieldConstraint)
}

func TestHelpers(t *testing.T) {
	assert.True(t, guitarregistry.ValidSerialNumber("00123-45"))
	assert.False(t, guitarregistry.ValidSerialNumber("#1"))
	assert.True(t, guitarregistry.YearInRange(1959, 1900, 2030))
	assert.True(t, guitarregistry.ValidCurrencyCode("JPY"))
}

func TestSchemaService(t *testing.T) {
	svc, err := guitarregistry.NewSchemaService()
	require.NoError(t, err)
	_, err = svc.Document("batch_submission")
	require.NoError(t, err)
	_, err = svc.Document("strings")
	assert.ErrorIs(t, err, guitarregistry.ErrUnknownSchema)
}
