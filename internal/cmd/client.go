package cmd

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sudobility/ratelimit-client/internal/binding"
	"github.com/sudobility/ratelimit-client/internal/config"
	apperrors "github.com/sudobility/ratelimit-client/internal/errors"
	"github.com/sudobility/ratelimit-client/internal/network"
	"github.com/sudobility/ratelimit-client/internal/observability"
	"github.com/sudobility/ratelimit-client/internal/ratelimit"
)

// trackedFetcher remembers the last client failure so the CLI can pick an
// exit code; the binding itself only keeps the message.
type trackedFetcher struct {
	binding.Fetcher

	mu      sync.Mutex
	lastErr error
}

func (f *trackedFetcher) GetRateLimitsConfig(ctx context.Context, token, identifier string) (*ratelimit.BaseResponse[ratelimit.RateLimitsConfigData], error) {
	resp, err := f.Fetcher.GetRateLimitsConfig(ctx, token, identifier)
	f.record(err)
	return resp, err
}

func (f *trackedFetcher) GetRateLimitHistory(ctx context.Context, periodType ratelimit.PeriodType, token, identifier string) (*ratelimit.BaseResponse[ratelimit.RateLimitHistoryData], error) {
	resp, err := f.Fetcher.GetRateLimitHistory(ctx, periodType, token, identifier)
	f.record(err)
	return resp, err
}

func (f *trackedFetcher) record(err error) {
	f.mu.Lock()
	f.lastErr = err
	f.mu.Unlock()
}

func (f *trackedFetcher) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// session is one CLI invocation's view of the service.
type session struct {
	binding *binding.Binding
	fetcher *trackedFetcher
	token   string
}

// newClient builds the transport client described by cfg.
func newClient(cfg *config.Config, nc network.Client) (*ratelimit.Client, error) {
	mode, err := ratelimit.ParseAddressing(cfg.Client.Addressing)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewClient(ratelimit.Config{
		BaseURL:       cfg.Client.BaseURL,
		NetworkClient: nc,
		Addressing:    mode,
		PathPrefix:    cfg.Client.PathPrefix,
	})
}

// newSession validates cfg and wires network, client and binding together.
// identifier and token override the configured values when non-empty.
func newSession(ctx context.Context, cfg *config.Config, nc network.Client, identifier, token string) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.WrapConfigInvalid(ctx, err, "invalid client configuration")
	}

	client, err := newClient(cfg, nc)
	if err != nil {
		return nil, apperrors.WrapConfigInvalid(ctx, err, "invalid client configuration")
	}

	if strings.TrimSpace(identifier) == "" {
		identifier = cfg.Client.Identifier
	}
	if strings.TrimSpace(token) == "" {
		token = cfg.Client.Token
	}

	fetcher := &trackedFetcher{Fetcher: client}
	b := binding.New(fetcher,
		binding.WithIdentifier(strings.TrimSpace(identifier)),
		binding.WithLogger(cliLogger()),
	)

	if logger := observability.CLILogger; logger != nil {
		b.Subscribe(func(s binding.State) {
			logger.Debug("Binding state changed",
				zap.Bool("loading_config", s.IsLoadingConfig),
				zap.Bool("loading_history", s.IsLoadingHistory),
				zap.Bool("has_config", s.Config != nil),
				zap.Bool("has_history", s.History != nil),
				zap.String("error", s.ErrorMessage()))
		})
	}

	return &session{binding: b, fetcher: fetcher, token: token}, nil
}

// newHTTPSession uses the real network client.
func newHTTPSession(ctx context.Context, cfg *config.Config, identifier, token string) (*session, error) {
	nc := network.NewHTTPClient(cfg.Client.Timeout)
	nc.UserAgent = config.AppName + "/" + versionInfo.Version
	return newSession(ctx, cfg, nc, identifier, token)
}

func cliLogger() binding.Logger {
	if observability.CLILogger == nil {
		return zap.NewNop()
	}
	return observability.CLILogger
}

// failure converts the binding's error slot into an envelope, preferring the
// typed client error when one was recorded.
func (s *session) failure(ctx context.Context) error {
	state := s.binding.State()
	if state.Error == nil {
		return nil
	}
	if err := s.fetcher.err(); err != nil {
		return apperrors.FromClientError(ctx, err)
	}
	return apperrors.Wrap(ctx, apperrors.CodeExternalService, nil, *state.Error)
}

// fetchConfig refreshes the limits snapshot through the binding.
func (s *session) fetchConfig(ctx context.Context) (*ratelimit.RateLimitsConfigData, error) {
	s.binding.RefreshConfig(ctx, s.token)
	if err := s.failure(ctx); err != nil {
		return nil, err
	}
	return s.binding.State().Config, nil
}

// fetchHistory refreshes usage history through the binding.
func (s *session) fetchHistory(ctx context.Context, period ratelimit.PeriodType) (*ratelimit.RateLimitHistoryData, error) {
	s.binding.RefreshHistory(ctx, period, s.token)
	if err := s.failure(ctx); err != nil {
		return nil, err
	}
	return s.binding.State().History, nil
}
