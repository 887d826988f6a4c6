package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func ptr[T any](v T) *T { return &v }

func lesPaulReference() *ModelReference {
	return &ModelReference{ManufacturerName: "Gibson", ModelName: "Les Paul Standard", Year: 1959}
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		name     string
		record   IndividualGuitarRecord
		wantKind ErrorKind
		wantErr  error
		want     Identification
	}{
		{
			name:   "reference only",
			record: IndividualGuitarRecord{ModelReference: lesPaulReference()},
			want:   Referenced{Reference: *lesPaulReference()},
		},
		{
			name: "fallback with model name",
			record: IndividualGuitarRecord{
				ManufacturerNameFallback: ptr("Harmony"),
				ModelNameFallback:        ptr("Stratotone"),
			},
			want: Fallback{ManufacturerName: "Harmony", ModelName: ptr("Stratotone")},
		},
		{
			name: "fallback with description",
			record: IndividualGuitarRecord{
				ManufacturerNameFallback: ptr("Unknown"),
				GuitarDetails:            GuitarDetails{Description: ptr("sunburst archtop, no labels")},
			},
			want: Fallback{ManufacturerName: "Unknown"},
		},
		{
			name:     "manufacturer fallback alone",
			record:   IndividualGuitarRecord{ManufacturerNameFallback: ptr("Unknown")},
			wantKind: KindMissingIdentification,
			wantErr:  ErrMissingIdentification,
		},
		{
			name:     "nothing",
			record:   IndividualGuitarRecord{},
			wantKind: KindMissingIdentification,
			wantErr:  ErrMissingIdentification,
		},
		{
			name: "model name without manufacturer",
			record: IndividualGuitarRecord{
				ModelNameFallback: ptr("Les Paul"),
			},
			wantKind: KindMissingIdentification,
			wantErr:  ErrMissingIdentification,
		},
		{
			name: "reference and fallback",
			record: IndividualGuitarRecord{
				ModelReference:           lesPaulReference(),
				ManufacturerNameFallback: ptr("X"),
				ModelNameFallback:        ptr("Y"),
			},
			wantKind: KindConflictingIdentification,
			wantErr:  ErrConflictingIdentification,
		},
		{
			name: "reference with partial fallback keeps hints",
			record: IndividualGuitarRecord{
				ModelReference:           lesPaulReference(),
				ManufacturerNameFallback: ptr("Gibson USA"),
			},
			want: Referenced{Reference: *lesPaulReference(), ManufacturerNameHint: ptr("Gibson USA")},
		},
		{
			name: "empty strings count as present",
			record: IndividualGuitarRecord{
				ManufacturerNameFallback: ptr(""),
				ModelNameFallback:        ptr(""),
			},
			want: Fallback{ManufacturerName: "", ModelName: ptr("")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.record.Identify()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				issues := IssuesOf(err)
				require.Len(t, issues, 1)
				assert.Equal(t, tt.wantKind, issues[0].Kind)
				assert.Empty(t, issues[0].Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Identification)
			assert.Equal(t, SignificanceNotable, got.SignificanceLevel)
		})
	}
}

func TestIdentifyExactlyOneVariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var rec IndividualGuitarRecord
		hasRef := rapid.Bool().Draw(t, "ref")
		hasManufacturer := rapid.Bool().Draw(t, "manufacturer")
		hasModel := rapid.Bool().Draw(t, "model")
		hasDescription := rapid.Bool().Draw(t, "description")
		if hasRef {
			rec.ModelReference = lesPaulReference()
		}
		if hasManufacturer {
			rec.ManufacturerNameFallback = ptr(rapid.String().Draw(t, "manufacturer_name"))
		}
		if hasModel {
			rec.ModelNameFallback = ptr(rapid.String().Draw(t, "model_name"))
		}
		if hasDescription {
			rec.Description = ptr(rapid.String().Draw(t, "description_text"))
		}

		hasFallback := hasManufacturer && (hasModel || hasDescription)
		g, err := rec.Identify()
		switch {
		case hasRef && hasFallback:
			if !errors.Is(err, ErrConflictingIdentification) {
				t.Fatalf("expected conflicting identification, got %v", err)
			}
		case !hasRef && !hasFallback:
			if !errors.Is(err, ErrMissingIdentification) {
				t.Fatalf("expected missing identification, got %v", err)
			}
		case hasRef:
			if _, ok := g.Identification.(Referenced); !ok || err != nil {
				t.Fatalf("expected referenced guitar, got %T, %v", g.Identification, err)
			}
		default:
			if _, ok := g.Identification.(Fallback); !ok || err != nil {
				t.Fatalf("expected fallback guitar, got %T, %v", g.Identification, err)
			}
		}
	})
}

func TestIndividualGuitarRecordRoundTrip(t *testing.T) {
	rec := IndividualGuitarRecord{
		ModelReference:           lesPaulReference(),
		ManufacturerNameFallback: ptr("Gibson USA"),
		GuitarDetails: GuitarDetails{
			SerialNumber:      ptr("9-0824"),
			SignificanceLevel: SignificanceHistoric,
		},
	}
	g, err := rec.Identify()
	require.NoError(t, err)
	assert.Equal(t, rec, g.Record())
	assert.Equal(t, lesPaulReference(), g.Reference())
}

func TestIndividualGuitarJSON(t *testing.T) {
	g, err := IndividualGuitarRecord{
		ManufacturerNameFallback: ptr("Kay"),
		ModelNameFallback:        ptr("K-161 Thin Twin"),
	}.Identify()
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"manufacturer_name_fallback": "Kay",
		"model_name_fallback": "K-161 Thin Twin",
		"significance_level": "notable"
	}`, string(data))

	var back IndividualGuitar
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g, back)
	assert.Nil(t, back.Reference())
}

func TestIndividualGuitarUnmarshalAppliesIdentification(t *testing.T) {
	var g IndividualGuitar
	err := json.Unmarshal([]byte(`{"manufacturer_name_fallback": "Unknown"}`), &g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingIdentification)
}
