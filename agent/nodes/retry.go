package turnnode

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	storageMaxRetries      = 2
	storageInitialInterval = 200 * time.Millisecond
)

// retryStorage runs op with bounded exponential backoff. op decides which
// errors are worth retrying by wrapping permanent ones in backoff.Permanent.
func retryStorage(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = storageInitialInterval
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, storageMaxRetries), ctx))
}
