package ports

import (
	"context"

	"github.com/atvirokodosprendimai/guitarregistry/internal/core/domain"
)

// SubmissionSink receives validated submissions on behalf of the downstream
// registry.
type SubmissionSink interface {
	Deliver(ctx context.Context, delivery domain.Delivery) error
}
