package assistant

import (
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

// ErrExceedsBudget is returned for a single request larger than the whole
// per-minute token budget.
var ErrExceedsBudget = errors.New("request exceeds the assistant token budget")

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Limiter enforces the process-local assistant budget: a request count and
// an estimated token count, both refilled continuously over one minute.
type Limiter struct {
	mu       sync.Mutex
	clock    Clock
	requests *rate.Limiter
	tokens   *rate.Limiter
}

// NewLimiter builds a limiter; a nil clock uses wall time.
func NewLimiter(requestsPerMinute, tokensPerMinute int, clock Clock) *Limiter {
	if clock == nil {
		clock = systemClock{}
	}
	return &Limiter{
		clock:    clock,
		requests: rate.NewLimiter(perMinute(requestsPerMinute), requestsPerMinute),
		tokens:   rate.NewLimiter(perMinute(tokensPerMinute), tokensPerMinute),
	}
}

func perMinute(n int) rate.Limit {
	return rate.Limit(float64(n) / time.Minute.Seconds())
}

// Reserve charges one request and n tokens. When either budget is short
// nothing is charged and the wait until both would be available is returned.
func (l *Limiter) Reserve(n int) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > l.tokens.Burst() {
		return 0, ErrExceedsBudget
	}

	now := l.clock.Now()
	req := l.requests.ReserveN(now, 1)
	tok := l.tokens.ReserveN(now, n)

	wait := req.DelayFrom(now)
	if d := tok.DelayFrom(now); d > wait {
		wait = d
	}
	if wait > 0 {
		req.CancelAt(now)
		tok.CancelAt(now)
		return wait, nil
	}
	return 0, nil
}

// EstimateTokens approximates the provider's token count for a prompt plus
// the reply it may generate, at four characters per token.
func EstimateTokens(message string, maxReplyTokens int) int {
	return utf8.RuneCountInString(message)/4 + 1 + maxReplyTokens
}
