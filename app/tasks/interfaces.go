package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/headlines/app/headlines"
)

// Refresher recomputes a variant once its cached entry has expired and
// reports whether it did.
type Refresher interface {
	Refresh(ctx context.Context, q headlines.Query) (bool, error)
}

type Purger interface {
	Purge(ctx context.Context, olderThan time.Duration) (int, error)
}
