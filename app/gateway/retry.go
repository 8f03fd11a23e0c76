package gateway

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"postfeed/app/apperr"
	"postfeed/app/logger"
	"postfeed/app/models"
)

// RetryingGateway retries idempotent reads on transient failures.
// DeletePost is passed through untouched.
type RetryingGateway struct {
	next            Gateway
	retries         uint
	initialInterval time.Duration
	maxInterval     time.Duration
	log             *logger.Logger
}

// NewRetryingGateway wraps next with up to retries extra attempts per GET.
// retries == 0 returns next unchanged.
func NewRetryingGateway(next Gateway, retries int, log *logger.Logger) Gateway {
	if retries <= 0 {
		return next
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RetryingGateway{
		next:            next,
		retries:         uint(retries),
		initialInterval: 200 * time.Millisecond,
		maxInterval:     2 * time.Second,
		log:             log.With("component", "gateway_retry"),
	}
}

// WithIntervals overrides the backoff intervals.
func (r *RetryingGateway) WithIntervals(initial, maxInterval time.Duration) *RetryingGateway {
	r.initialInterval = initial
	r.maxInterval = maxInterval
	return r
}

func (r *RetryingGateway) ListPosts(ctx context.Context) ([]models.Post, error) {
	return retry(ctx, r, "list_posts", func() ([]models.Post, error) {
		return r.next.ListPosts(ctx)
	})
}

func (r *RetryingGateway) GetUser(ctx context.Context, id int) (*models.User, error) {
	return retry(ctx, r, "get_user", func() (*models.User, error) {
		return r.next.GetUser(ctx, id)
	})
}

func (r *RetryingGateway) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	return retry(ctx, r, "list_comments", func() ([]models.Comment, error) {
		return r.next.ListComments(ctx, postID)
	})
}

func (r *RetryingGateway) DeletePost(ctx context.Context, id int) error {
	return r.next.DeletePost(ctx, id)
}

func retry[T any](ctx context.Context, r *RetryingGateway, op string, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !retryable(err) {
			return v, backoff.Permanent(err)
		}
		r.log.Warn("transient remote failure", "op", op, "attempt", attempt, "error", err)
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(r.retries+1))
}

func retryable(err error) bool {
	switch apperr.KindOf(err) {
	case apperr.ServiceUnavailable, apperr.ServiceTimeout:
		return true
	default:
		return false
	}
}
