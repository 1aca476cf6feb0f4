package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// RetryClient applies a per-request timeout and retries failed requests with
// exponential backoff. With maxRetries == 0 every request is tried once.
type RetryClient struct {
	next       Client
	maxRetries int
	timeout    time.Duration
	newBackOff func() backoff.BackOff
}

// NewRetryClient wraps next.
func NewRetryClient(next Client, maxRetries int, timeout time.Duration) *RetryClient {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryClient{
		next:       next,
		maxRetries: maxRetries,
		timeout:    timeout,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

func (rc *RetryClient) Name() string { return rc.next.Name() }

func (rc *RetryClient) Generate(ctx context.Context, systemMessage, userPrompt string) (Response, error) {
	attempt := 0
	operation := func() (Response, error) {
		attempt++
		resp, err := rc.generateOnce(ctx, systemMessage, userPrompt)
		if err != nil && ctx.Err() != nil {
			return Response{}, backoff.Permanent(ctx.Err())
		}
		return resp, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(rc.newBackOff()),
		backoff.WithMaxTries(uint(rc.maxRetries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logrus.Warnf("%s request failed (attempt %d/%d): %v; retrying in %s",
				rc.next.Name(), attempt, rc.maxRetries+1, err, next)
		}),
	)
}

func (rc *RetryClient) generateOnce(ctx context.Context, systemMessage, userPrompt string) (Response, error) {
	if rc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.timeout)
		defer cancel()
	}
	return rc.next.Generate(ctx, systemMessage, userPrompt)
}
