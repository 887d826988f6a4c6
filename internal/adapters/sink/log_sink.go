package sink

import (
	"context"
	"log/slog"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
)

// LogSink records deliveries in the log instead of sending them anywhere.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, delivery domain.Delivery) error {
	attrs := []any{
		"source", delivery.Source,
		"index", delivery.Index,
		"identification", identificationKind(delivery.Submission.IndividualGuitar),
		"new_model", delivery.Submission.Model != nil,
	}
	if ref := delivery.Submission.IndividualGuitar.Reference(); ref != nil {
		attrs = append(attrs, "model_reference", ref.ManufacturerName+" "+ref.ModelName)
	}
	s.logger.InfoContext(ctx, "submission delivered", attrs...)
	return nil
}

func identificationKind(g domain.IndividualGuitar) string {
	switch g.Identification.(type) {
	case domain.Referenced:
		return "referenced"
	case domain.Fallback:
		return "fallback"
	}
	return "unknown"
}
