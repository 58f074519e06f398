package fetcher

import (
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

const (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 8 * time.Second
)

// newRetryExecutor builds the per-page retry executor: exponential
// backoff with jitter so concurrent workers don't retry in lockstep.
func newRetryExecutor(maxRetries int) failsafe.Executor[*PageContent] {
	if maxRetries < 0 {
		maxRetries = 0
	}
	policy := retrypolicy.NewBuilder[*PageContent]().
		WithBackoff(retryBaseDelay, retryMaxDelay).
		WithMaxRetries(maxRetries).
		WithJitterFactor(0.1).
		Build()
	return failsafe.With(policy)
}
