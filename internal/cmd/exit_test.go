package cmd

import (
	"context"
	"fmt"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/sudobility/ratelimit-client/internal/errors"
)

func TestExitCodeFor(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want foundry.ExitCode
	}{
		{"plain error", fmt.Errorf("boom"), foundry.ExitFailure},
		{"config invalid", apperrors.WrapConfigInvalid(ctx, fmt.Errorf("bad"), "invalid"), foundry.ExitConfigInvalid},
		{"unauthorized", apperrors.Wrap(ctx, apperrors.CodeUnauthorized, nil, "nope"), foundry.ExitExternalServiceUnavailable},
		{"external", apperrors.Wrap(ctx, apperrors.CodeExternalService, nil, "down"), foundry.ExitExternalServiceUnavailable},
		{"rate limited", apperrors.Wrap(ctx, apperrors.CodeRateLimited, nil, "slow down"), foundry.ExitExternalServiceUnavailable},
		{"invalid input", apperrors.NewInvalidInputError("bad period"), foundry.ExitFailure},
		{"wrapped envelope", fmt.Errorf("run: %w", apperrors.NewConfigInvalidError("x")), foundry.ExitConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}
