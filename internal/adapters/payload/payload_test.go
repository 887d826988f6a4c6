package payload

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
)

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("batch.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("/tmp/BATCH.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("batch.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("batch"))
}

func TestReadJSON(t *testing.T) {
	v, err := Read(strings.NewReader(`{"manufacturer": {"name": "Gibson", "founded_year": 1902}}`), FormatJSON)
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	manufacturer := m["manufacturer"].(map[string]any)
	assert.Equal(t, "Gibson", manufacturer["name"])
	assert.Equal(t, 1902.0, manufacturer["founded_year"])

	_, err = Read(strings.NewReader(`{"a": 1} {"b": 2}`), FormatJSON)
	require.Error(t, err)

	_, err = Read(strings.NewReader(`{"a": `), FormatJSON)
	require.Error(t, err)

	_, err = Read(strings.NewReader(`{}`), Format("toml"))
	require.Error(t, err)
}

func TestReadYAML(t *testing.T) {
	doc := `
submissions:
  - individual_guitar:
      model_reference:
        manufacturer_name: Gibson
        model_name: Les Paul Standard
        year: 1959
      production_date: "1959-08-24"
`
	v, err := Read(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	subs := m["submissions"].([]any)
	require.Len(t, subs, 1)
	guitar := subs[0].(map[string]any)["individual_guitar"].(map[string]any)
	ref := guitar["model_reference"].(map[string]any)
	assert.Equal(t, 1959, ref["year"])
	assert.Equal(t, "1959-08-24", guitar["production_date"])
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guitar.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: Martin\n"), 0o600))

	v, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Martin"}, v)

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestExportSubmissions(t *testing.T) {
	guitar, err := domain.IndividualGuitarRecord{
		ModelReference: &domain.ModelReference{ManufacturerName: "Fender", ModelName: "Telecaster", Year: 1951},
	}.Identify()
	require.NoError(t, err)
	sub, err := domain.NewGuitarSubmission(nil, nil, guitar, nil)
	require.NoError(t, err)
	batch, err := domain.NewBatchSubmission([]domain.GuitarSubmission{sub, sub})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := ExportSubmissions(dir, batch)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "guitar_submission_1.json"),
		filepath.Join(dir, "guitar_submission_2.json"),
		filepath.Join(dir, "batch_submission.json"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var single map[string]any
	require.NoError(t, json.Unmarshal(data, &single))
	ref := single["individual_guitar"].(map[string]any)["model_reference"].(map[string]any)
	assert.Equal(t, "Telecaster", ref["model_name"])

	data, err = os.ReadFile(paths[2])
	require.NoError(t, err)
	var all struct {
		Submissions []json.RawMessage `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Len(t, all.Submissions, 2)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))
}
