// Package payload reads untyped submission payloads from JSON or YAML files
// and writes validated structures back out as canonical JSON.
package payload

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
	"github.com/atvirokodosprendimai/guitarregistry/internal/errors"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension; anything that is
// not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Read decodes one document from r into untyped maps, slices and scalars.
func Read(r io.Reader, format Format) (any, error) {
	var v any
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&v); err != nil {
			return nil, errors.Wrap(err, "decode yaml")
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrap(err, "decode json")
		}
		if dec.More() {
			return nil, errors.New("decode json: unexpected data after document")
		}
	default:
		return nil, errors.Errorf("unsupported payload format %q", format)
	}
	return v, nil
}

func ReadFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return Read(f, FormatFromPath(path))
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ExportSubmissions writes guitar_submission_<n>.json for every submission
// (n starting at 1) and batch_submission.json holding the whole batch. It
// returns the written paths.
func ExportSubmissions(dir string, batch domain.BatchSubmission) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	var paths []string
	for i, sub := range batch.Submissions {
		path := filepath.Join(dir, fmt.Sprintf("guitar_submission_%d.json", i+1))
		if err := writeFile(path, sub); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	path := filepath.Join(dir, "batch_submission.json")
	if err := writeFile(path, batch); err != nil {
		return paths, err
	}
	return append(paths, path), nil
}

func writeFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
