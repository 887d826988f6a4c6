package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/atvirokodosprendimai/guitarregistry/internal/adapters/payload"
	"github.com/atvirokodosprendimai/guitarregistry/internal/adapters/sink"
	"github.com/atvirokodosprendimai/guitarregistry/internal/config"
	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
	"github.com/atvirokodosprendimai/guitarregistry/internal/core/ports"
	"github.com/atvirokodosprendimai/guitarregistry/internal/core/usecase"
	"github.com/atvirokodosprendimai/guitarregistry/internal/errors"
	"github.com/atvirokodosprendimai/guitarregistry/internal/logs"
)

// ErrInvalid is returned when at least one checked payload failed validation.
var ErrInvalid = errors.New("payload is invalid")

// Options carries the command line overrides applied on top of the loaded
// configuration. Empty strings leave the configured value in place.
type Options struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Strict     bool
	// Environ replaces the process environment when non-nil.
	Environ []string
}

// App wires the validator, the schema service and the delivery pipeline for
// the command line tool.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	validator  *usecase.Validator
	schemas    *usecase.SchemaService
	dispatcher *usecase.Dispatcher
	out        io.Writer
}

func New(opts Options, stdout, stderr io.Writer) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.Environ)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	if opts.Strict {
		cfg.Validation.UnknownKeys = usecase.RejectUnknownKeys.String()
	}

	logger, err := logs.New(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}

	policy := usecase.IgnoreUnknownKeys
	if cfg.Validation.UnknownKeys == usecase.RejectUnknownKeys.String() {
		policy = usecase.RejectUnknownKeys
	}

	schemas, err := usecase.NewSchemaService()
	if err != nil {
		return nil, errors.Wrap(err, "build schemas")
	}

	dispatcher := usecase.NewDispatcher(newSink(cfg.Delivery, logger),
		usecase.WithMaxAttempts(cfg.Delivery.MaxAttempts),
		usecase.WithMaxBackoff(cfg.Delivery.MaxBackoff),
		usecase.WithDispatchLogger(logger),
	)

	return &App{
		cfg:        cfg,
		logger:     logger,
		validator:  usecase.NewValidator(usecase.WithUnknownKeys(policy)),
		schemas:    schemas,
		dispatcher: dispatcher,
		out:        stdout,
	}, nil
}

func newSink(cfg config.Delivery, logger *slog.Logger) ports.SubmissionSink {
	if cfg.WebhookURL != "" {
		return sink.NewWebhookSink(cfg.WebhookURL, cfg.WebhookSecret, cfg.Timeout)
	}
	return sink.NewLogSink(logger)
}

// Report is the per-file result printed by the validate command.
type Report struct {
	File        string         `json:"file"`
	Valid       bool           `json:"valid"`
	Submissions int            `json:"submissions,omitempty"`
	Issues      []domain.Issue `json:"issues,omitempty"`
	Exported    []string       `json:"exported,omitempty"`
}

// ValidateRequest selects how the validate command treats its files.
type ValidateRequest struct {
	Files     []string
	Batch     bool
	Deliver   bool
	ExportDir string
}

// Validate checks every file and prints one report per file. Valid
// submissions are optionally exported and handed to the delivery sink.
// It returns ErrInvalid when any file failed.
func (a *App) Validate(ctx context.Context, req ValidateRequest) error {
	if len(req.Files) == 0 {
		return errors.New("no input files")
	}

	invalid := 0
	for _, file := range req.Files {
		report, batch, err := a.validateFile(file, req.Batch)
		if err != nil {
			return err
		}
		if report.Valid && req.ExportDir != "" {
			dir := req.ExportDir
			if len(req.Files) > 1 {
				dir = filepath.Join(dir, stem(file))
			}
			paths, err := payload.ExportSubmissions(dir, batch)
			if err != nil {
				return err
			}
			report.Exported = paths
		}
		if err := payload.WriteJSON(a.out, report); err != nil {
			return errors.Wrap(err, "write report")
		}

		if !report.Valid {
			invalid++
			a.logger.Info("payload rejected", "file", file, "issues", len(report.Issues))
			continue
		}
		a.logger.Info("payload accepted", "file", file, "submissions", report.Submissions)
		if req.Deliver {
			if err := a.dispatcher.Dispatch(ctx, deliveries(file, batch)); err != nil {
				return errors.Wrapf(err, "deliver %s", file)
			}
		}
	}

	if req.Deliver {
		m := a.dispatcher.Metrics()
		a.logger.Info("delivery finished",
			"delivered", m.DeliveredTotal,
			"failed_attempts", m.FailedAttemptsTotal,
			"dropped", m.DroppedTotal,
		)
	}
	if invalid > 0 {
		return errors.Wrapf(ErrInvalid, "%d of %d files", invalid, len(req.Files))
	}
	return nil
}

func (a *App) validateFile(file string, asBatch bool) (Report, domain.BatchSubmission, error) {
	raw, err := payload.ReadFile(file)
	if err != nil {
		return Report{}, domain.BatchSubmission{}, err
	}

	var batch domain.BatchSubmission
	if asBatch {
		if list, ok := raw.([]any); ok {
			batch, err = a.validator.ValidateBatch(list)
		} else {
			batch, err = a.validator.ValidateBatchEnvelope(raw)
		}
	} else {
		var sub domain.GuitarSubmission
		if sub, err = a.validator.ValidateSubmission(raw); err == nil {
			batch, err = domain.NewBatchSubmission([]domain.GuitarSubmission{sub})
		}
	}

	report := Report{File: file}
	if err != nil {
		issues := domain.IssuesOf(err)
		if issues == nil {
			return Report{}, domain.BatchSubmission{}, err
		}
		report.Issues = issues
		return report, batch, nil
	}
	report.Valid = true
	report.Submissions = len(batch.Submissions)
	return report, batch, nil
}

func deliveries(file string, batch domain.BatchSubmission) []domain.Delivery {
	out := make([]domain.Delivery, len(batch.Submissions))
	for i, sub := range batch.Submissions {
		out[i] = domain.Delivery{Source: file, Index: i, Submission: sub}
	}
	return out
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// ComponentsReport is printed by the components command.
type ComponentsReport struct {
	Components domain.Components `json:"components"`
	Issues     []domain.Issue    `json:"issues,omitempty"`
}

// Components validates each top-level component of file independently and
// prints what passed alongside every issue found.
func (a *App) Components(file string) error {
	obj, err := a.readObject(file)
	if err != nil {
		return err
	}
	comps, err := a.validator.ValidateComponents(obj)
	report := ComponentsReport{Components: comps, Issues: domain.IssuesOf(err)}
	if err != nil && report.Issues == nil {
		return err
	}
	if err := payload.WriteJSON(a.out, report); err != nil {
		return errors.Wrap(err, "write report")
	}
	if len(report.Issues) > 0 {
		return ErrInvalid
	}
	return nil
}

// Summary prints the component summary of file.
func (a *App) Summary(file string) error {
	obj, err := a.readObject(file)
	if err != nil {
		return err
	}
	return errors.Wrap(payload.WriteJSON(a.out, a.validator.Summary(obj)), "write summary")
}

func (a *App) readObject(file string) (map[string]any, error) {
	raw, err := payload.ReadFile(file)
	if err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.Errorf("%s: expected a JSON object at the top level", file)
	}
	return obj, nil
}

// Schema writes the named JSON Schema document, or all of them keyed by name
// when name is empty. With dir set, each document goes to <dir>/<name>.json.
func (a *App) Schema(name, dir string) error {
	names := a.schemas.Names()
	if name != "" {
		names = []string{name}
	}

	docs := make(map[string]json.RawMessage, len(names))
	for _, n := range names {
		doc, err := a.schemas.Document(n)
		if err != nil {
			return err
		}
		docs[n] = doc
	}

	if dir == "" {
		if name != "" {
			return payload.WriteJSON(a.out, docs[name])
		}
		return payload.WriteJSON(a.out, docs)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	for _, n := range names {
		path := filepath.Join(dir, n+".json")
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create %s", path)
		}
		if err := payload.WriteJSON(f, docs[n]); err != nil {
			f.Close()
			return errors.Wrapf(err, "write %s", path)
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "close %s", path)
		}
		a.logger.Debug("schema written", "name", n, "path", path)
	}
	return nil
}

// CheckSchema validates file against the named exported schema, for producers
// that only consume the JSON Schema documents.
func (a *App) CheckSchema(name, file string) error {
	raw, err := payload.ReadFile(file)
	if err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrapf(err, "re-encode %s", file)
	}

	err = a.schemas.Validate(name, data)
	var violation *domain.ErrSchemaViolation
	if errors.As(err, &violation) {
		if werr := payload.WriteJSON(a.out, violation); werr != nil {
			return errors.Wrap(werr, "write report")
		}
		return ErrInvalid
	}
	return err
}
