// Package throttle wraps an LLM service with a client-side request rate limit.
package throttle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
	"github.com/custodia-labs/pdfiq/internal/core/ports/driven"
	"github.com/custodia-labs/pdfiq/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultBackoff is how long calls are held after the provider reports
// a rate limit.
const DefaultBackoff = 30 * time.Second

// LLMService limits Generate calls to a fixed number per minute and backs
// off after the provider rejects a call for exceeding its own quota.
type LLMService struct {
	inner   driven.LLMService
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
	now     func() time.Time
}

// Option configures the throttled service.
type Option func(*LLMService)

// WithBackoff sets the pause applied after a provider rate limit error.
func WithBackoff(d time.Duration) Option {
	return func(s *LLMService) {
		if d > 0 {
			s.backoff = d
		}
	}
}

// New wraps inner. A non-positive requestsPerMinute returns inner unchanged.
func New(inner driven.LLMService, requestsPerMinute int, opts ...Option) driven.LLMService {
	if requestsPerMinute <= 0 {
		return inner
	}

	s := &LLMService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		backoff: DefaultBackoff,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate waits for a slot, then delegates.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	out, err := s.inner.Generate(ctx, prompt, opts)
	if err != nil && isRateLimit(err) {
		s.mu.Lock()
		s.retryAt = s.now().Add(s.backoff)
		s.mu.Unlock()
		logger.Warn("LLM provider rate limited, pausing for %s", s.backoff)
		return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return out, err
}

func (s *LLMService) wait(ctx context.Context) error {
	s.mu.Lock()
	pause := s.retryAt.Sub(s.now())
	s.mu.Unlock()

	if pause > 0 {
		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return s.limiter.Wait(ctx)
}

// isRateLimit recognises provider quota errors by their status code or message.
func isRateLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}

// ModelName returns the wrapped model name.
func (s *LLMService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates without consuming a slot.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (s *LLMService) Close() error {
	return s.inner.Close()
}
