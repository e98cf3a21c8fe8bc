// Package binding wraps the rate limit client in inspectable state for UI
// layers: last fetched data, per-operation loading flags and a shared error.
package binding

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sudobility/ratelimit-client/internal/ratelimit"
)

const (
	defaultConfigError  = "Failed to fetch rate limits config"
	defaultHistoryError = "Failed to fetch rate limit history"
)

// Fetcher is the client capability the binding drives.
type Fetcher interface {
	GetRateLimitsConfig(ctx context.Context, token, identifier string) (*ratelimit.BaseResponse[ratelimit.RateLimitsConfigData], error)
	GetRateLimitHistory(ctx context.Context, periodType ratelimit.PeriodType, token, identifier string) (*ratelimit.BaseResponse[ratelimit.RateLimitHistoryData], error)
}

// Logger receives diagnostics for unexpected failures. *zap.Logger and the
// gofulmen logger both satisfy it.
type Logger interface {
	Error(msg string, fields ...zap.Field)
}

// State is a snapshot of the binding.
type State struct {
	Config           *ratelimit.RateLimitsConfigData
	History          *ratelimit.RateLimitHistoryData
	IsLoadingConfig  bool
	IsLoadingHistory bool
	Error            *string
}

// ErrorMessage returns the error text, or "" when there is none.
func (s State) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// Handles are the operations exposed to consumers. The pointer returned by
// Binding.Handles stays the same until the binding's dependencies change.
type Handles struct {
	RefreshConfig  func(ctx context.Context, token string)
	RefreshHistory func(ctx context.Context, periodType ratelimit.PeriodType, token string)
	ClearError     func()
	Reset          func()
}

// Option configures a Binding.
type Option func(*Binding)

// WithIdentifier sets the caller identifier sent with every fetch.
func WithIdentifier(identifier string) Option {
	return func(b *Binding) {
		b.identifier = identifier
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger Logger) Option {
	return func(b *Binding) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Binding holds rate limit state for one owner. It has no background work;
// dropping the last reference is enough to dispose of it.
type Binding struct {
	mu    sync.Mutex
	state State

	fetcher    Fetcher
	identifier string
	logger     Logger
	handles    memo[*Handles]

	listenerMu sync.Mutex
	listeners  map[int]func(State)
	nextID     int
}

// New returns an empty binding over fetcher.
func New(fetcher Fetcher, opts ...Option) *Binding {
	b := &Binding{
		fetcher:   fetcher,
		logger:    zap.NewNop(),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current snapshot.
func (b *Binding) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Handles returns the operation handles for the current dependencies.
func (b *Binding) Handles() *Handles {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handlesLocked()
}

// Rebind swaps the fetcher and identifier, keeping state. The returned
// handles are identical to the previous ones when nothing changed.
func (b *Binding) Rebind(fetcher Fetcher, identifier string) *Handles {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetcher = fetcher
	b.identifier = identifier
	return b.handlesLocked()
}

func (b *Binding) handlesLocked() *Handles {
	fetcher, identifier := b.fetcher, b.identifier
	return b.handles.get([]any{fetcher, identifier}, func() *Handles {
		return &Handles{
			RefreshConfig: func(ctx context.Context, token string) {
				b.refreshConfig(ctx, fetcher, identifier, token)
			},
			RefreshHistory: func(ctx context.Context, periodType ratelimit.PeriodType, token string) {
				b.refreshHistory(ctx, fetcher, identifier, periodType, token)
			},
			ClearError: b.clearError,
			Reset:      b.reset,
		}
	})
}

// RefreshConfig fetches the limits snapshot using the current handles.
func (b *Binding) RefreshConfig(ctx context.Context, token string) {
	b.Handles().RefreshConfig(ctx, token)
}

// RefreshHistory fetches usage history using the current handles.
func (b *Binding) RefreshHistory(ctx context.Context, periodType ratelimit.PeriodType, token string) {
	b.Handles().RefreshHistory(ctx, periodType, token)
}

// ClearError nulls the error slot and nothing else.
func (b *Binding) ClearError() {
	b.clearError()
}

// Reset returns every slot to its initial value.
func (b *Binding) Reset() {
	b.reset()
}

// Subscribe registers fn to receive a snapshot after every state change.
// Calling the returned function removes the subscription.
func (b *Binding) Subscribe(fn func(State)) (unsubscribe func()) {
	b.listenerMu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.listenerMu.Lock()
			delete(b.listeners, id)
			b.listenerMu.Unlock()
		})
	}
}

func (b *Binding) refreshConfig(ctx context.Context, fetcher Fetcher, identifier, token string) {
	b.update(func(s *State) {
		s.IsLoadingConfig = true
		s.Error = nil
	})
	defer b.update(func(s *State) {
		s.IsLoadingConfig = false
	})

	if fetcher == nil {
		b.setError(defaultConfigError)
		return
	}

	resp, err := fetcher.GetRateLimitsConfig(ctx, token, identifier)
	if err != nil {
		msg := failureMessage(err, defaultConfigError)
		b.setError(msg)
		b.logger.Error("refreshConfig failed",
			zap.Stringer("query_key", ratelimit.ConfigQueryKey()),
			zap.String("message", msg),
			zap.Error(err))
		return
	}

	if resp != nil && resp.Success && resp.Data != nil {
		data := resp.Data
		b.update(func(s *State) {
			s.Config = data
		})
		return
	}
	b.setError(envelopeMessage(resp, defaultConfigError))
}

func (b *Binding) refreshHistory(ctx context.Context, fetcher Fetcher, identifier string, periodType ratelimit.PeriodType, token string) {
	b.update(func(s *State) {
		s.IsLoadingHistory = true
		s.Error = nil
	})
	defer b.update(func(s *State) {
		s.IsLoadingHistory = false
	})

	if fetcher == nil {
		b.setError(defaultHistoryError)
		return
	}

	resp, err := fetcher.GetRateLimitHistory(ctx, periodType, token, identifier)
	if err != nil {
		msg := failureMessage(err, defaultHistoryError)
		b.setError(msg)
		b.logger.Error("refreshHistory failed",
			zap.Stringer("query_key", ratelimit.HistoryQueryKey(periodType)),
			zap.String("message", msg),
			zap.Error(err))
		return
	}

	if resp != nil && resp.Success && resp.Data != nil {
		data := resp.Data
		b.update(func(s *State) {
			s.History = data
		})
		return
	}
	b.setError(envelopeMessage(resp, defaultHistoryError))
}

func (b *Binding) clearError() {
	b.update(func(s *State) {
		s.Error = nil
	})
}

func (b *Binding) reset() {
	b.update(func(s *State) {
		*s = State{}
	})
}

func (b *Binding) setError(msg string) {
	b.update(func(s *State) {
		s.Error = &msg
	})
}

// update applies fn under the state lock, then notifies listeners with the
// resulting snapshot outside of it.
func (b *Binding) update(fn func(*State)) {
	b.mu.Lock()
	fn(&b.state)
	snapshot := b.state
	b.mu.Unlock()

	b.listenerMu.Lock()
	listeners := make([]func(State), 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.listenerMu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

func failureMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

func envelopeMessage[T any](resp *ratelimit.BaseResponse[T], fallback string) string {
	if resp == nil || resp.Error == "" {
		return fallback
	}
	return resp.Error
}
