package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceSubmission = `{
	"individual_guitar": {
		"model_reference": {"manufacturer_name": "Gibson", "model_name": "Les Paul Standard", "year": 1959},
		"serial_number": "9-0824",
		"significance_level": "historic"
	}
}`

const unresolvableSubmission = `{
	"individual_guitar": {"manufacturer_name_fallback": "Kay", "description": "thin twin"}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestApp(t *testing.T, environ []string, strict bool) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a, err := New(Options{Environ: environ, Strict: strict, LogLevel: "error"}, &out, io.Discard)
	require.NoError(t, err)
	return a, &out
}

// decodeReports splits the concatenated JSON documents written to out.
func decodeReports(t *testing.T, out *bytes.Buffer) []Report {
	t.Helper()
	var reports []Report
	dec := json.NewDecoder(out)
	for dec.More() {
		var r Report
		require.NoError(t, dec.Decode(&r))
		reports = append(reports, r)
	}
	return reports
}

func TestNewRejectsBadOverrides(t *testing.T) {
	_, err := New(Options{Environ: []string{}, LogLevel: "chatty"}, io.Discard, io.Discard)
	require.Error(t, err)

	_, err = New(Options{Environ: []string{"GUITARREG_VALIDATION__UNKNOWN_KEYS=sometimes"}}, io.Discard, io.Discard)
	require.Error(t, err)
}

func TestValidateReportsPerFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", referenceSubmission)
	bad := writeFile(t, dir, "bad.yaml", "individual_guitar:\n  manufacturer_name_fallback: Unknown\n")

	a, out := newTestApp(t, []string{}, false)
	err := a.Validate(context.Background(), ValidateRequest{Files: []string{good, bad}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	reports := decodeReports(t, out)
	require.Len(t, reports, 2)
	assert.True(t, reports[0].Valid)
	assert.Equal(t, 1, reports[0].Submissions)
	assert.False(t, reports[1].Valid)
	require.Len(t, reports[1].Issues, 1)
	assert.Equal(t, "individual_guitar", reports[1].Issues[0].Path)
	assert.Equal(t, "MissingIdentification", string(reports[1].Issues[0].Kind))
}

func TestValidateStrictMode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "extra.json", `{"owner": "me", "individual_guitar": {"model_reference": {"manufacturer_name": "Gibson", "model_name": "SG", "year": 1961}}}`)

	a, _ := newTestApp(t, []string{}, false)
	require.NoError(t, a.Validate(context.Background(), ValidateRequest{Files: []string{path}}))

	strict, out := newTestApp(t, []string{}, true)
	err := strict.Validate(context.Background(), ValidateRequest{Files: []string{path}})
	assert.ErrorIs(t, err, ErrInvalid)
	reports := decodeReports(t, out)
	require.Len(t, reports, 1)
	assert.Equal(t, "owner", reports[0].Issues[0].Path)
}

func TestValidateBatchExportAndDeliver(t *testing.T) {
	var (
		mu      sync.Mutex
		headers []http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = append(headers, r.Header.Clone())
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	dir := t.TempDir()
	batch := writeFile(t, dir, "batch.json", `{"submissions": [`+referenceSubmission+`,`+referenceSubmission+`]}`)
	exportDir := filepath.Join(dir, "export")

	a, out := newTestApp(t, []string{
		"GUITARREG_DELIVERY__WEBHOOK_URL=" + srv.URL,
		"GUITARREG_DELIVERY__WEBHOOK_SECRET=s3cret",
	}, false)
	err := a.Validate(context.Background(), ValidateRequest{
		Files:     []string{batch},
		Batch:     true,
		Deliver:   true,
		ExportDir: exportDir,
	})
	require.NoError(t, err)

	reports := decodeReports(t, out)
	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0].Submissions)
	assert.Len(t, reports[0].Exported, 3)
	for _, path := range reports[0].Exported {
		assert.FileExists(t, path)
	}

	require.Len(t, headers, 2)
	assert.Equal(t, "0", headers[0].Get("X-Guitarreg-Index"))
	assert.Equal(t, "1", headers[1].Get("X-Guitarreg-Index"))
	assert.Equal(t, batch, headers[0].Get("X-Guitarreg-Source"))
	assert.True(t, strings.HasPrefix(headers[0].Get("X-Hub-Signature-256"), "sha256="))

	m := a.dispatcher.Metrics()
	assert.EqualValues(t, 2, m.DeliveredTotal)
}

func TestValidateBatchArrayForm(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "list.json", `[`+referenceSubmission+`,`+unresolvableSubmission+`]`)

	a, out := newTestApp(t, []string{}, false)
	err := a.Validate(context.Background(), ValidateRequest{Files: []string{path}, Batch: true})
	assert.ErrorIs(t, err, ErrInvalid)

	reports := decodeReports(t, out)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Issues, 1)
	assert.Equal(t, "submissions[1]", reports[0].Issues[0].Path)
}

func TestValidateUnreadableFile(t *testing.T) {
	a, _ := newTestApp(t, []string{}, false)
	err := a.Validate(context.Background(), ValidateRequest{Files: []string{filepath.Join(t.TempDir(), "nope.json")}})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))

	require.Error(t, a.Validate(context.Background(), ValidateRequest{}))
}

func TestComponentsAndSummary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mixed.json", `{
		"manufacturer": {"name": "Gibson"},
		"model": {"manufacturer_name": "Gibson", "name": "Les Paul"}
	}`)

	a, out := newTestApp(t, []string{}, false)
	err := a.Components(path)
	assert.ErrorIs(t, err, ErrInvalid)

	var report struct {
		Components map[string]any   `json:"components"`
		Issues     []map[string]any `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Contains(t, report.Components, "manufacturer")
	assert.NotContains(t, report.Components, "model")
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "model", report.Issues[0]["component"])
	assert.Equal(t, "model.year", report.Issues[0]["field_path"])

	out.Reset()
	require.NoError(t, a.Summary(path))
	var summary map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, true, summary["has_manufacturer"])
	assert.Equal(t, false, summary["has_individual_guitar"])
	assert.Equal(t, false, summary["is_valid"])

	list := writeFile(t, dir, "list.json", `[]`)
	require.Error(t, a.Summary(list))
}

func TestSchemaOutput(t *testing.T) {
	a, out := newTestApp(t, []string{}, false)

	require.NoError(t, a.Schema("photo", ""))
	var photo map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &photo))
	assert.Equal(t, "photo", photo["title"])

	out.Reset()
	require.NoError(t, a.Schema("", ""))
	var all map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &all))
	assert.Len(t, all, 9)

	dir := filepath.Join(t.TempDir(), "schemas")
	require.NoError(t, a.Schema("", dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 9)
	assert.FileExists(t, filepath.Join(dir, "batch_submission.json"))

	require.Error(t, a.Schema("pickguard", ""))
}

func TestCheckSchema(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", referenceSubmission)
	bad := writeFile(t, dir, "bad.json", unresolvableSubmission)

	a, out := newTestApp(t, []string{}, false)
	require.NoError(t, a.CheckSchema("guitar_submission", good))
	assert.Zero(t, out.Len())

	err := a.CheckSchema("guitar_submission", bad)
	assert.ErrorIs(t, err, ErrInvalid)
	var violation struct {
		Schema string   `json:"schema"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &violation))
	assert.Equal(t, "guitar_submission", violation.Schema)
	assert.NotEmpty(t, violation.Errors)
}
