package cmd

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apperrors "github.com/sudobility/ratelimit-client/internal/errors"
	"github.com/sudobility/ratelimit-client/internal/observability"
	"github.com/sudobility/ratelimit-client/internal/output"
)

// fetchRun is one render pass: fetch through the session and write to w.
type fetchRun func(ctx context.Context, w io.Writer) error

// runFetchCommand handles the shared plumbing of the fetch commands: config,
// session, output sink and optional watch loop.
func runFetchCommand(cmd *cobra.Command, stem, identifier, token string, every time.Duration, run func(*session, output.Format) fetchRun) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return apperrors.Wrap(ctx, apperrors.CodeInvalidInput, err, err.Error())
	}

	cfg, err := loadConfig()
	if err != nil {
		return apperrors.WrapConfigInvalid(ctx, err, "failed to load configuration")
	}

	sess, err := newHTTPSession(ctx, cfg, identifier, token)
	if err != nil {
		return err
	}

	path, err := resolveSinkPath(cmd, format, stem)
	if err != nil {
		return apperrors.Wrap(ctx, apperrors.CodeInvalidInput, err, err.Error())
	}
	sink, err := openSink(path, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = sink.close() }()

	pass := func(ctx context.Context) error {
		err := run(sess, format)(ctx, sink.writer)
		if err != nil {
			reportFailure(sink.writer, cmd.ErrOrStderr(), format, err)
		}
		return err
	}

	if every <= 0 {
		return pass(ctx)
	}
	return watch(ctx, every, pass)
}

// watch repeats pass every interval until interrupted. Failures are logged
// and the loop keeps going.
func watch(ctx context.Context, interval time.Duration, pass func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := pass(ctx); err != nil && observability.CLILogger != nil {
			observability.CLILogger.Warn("Refresh failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// reportFailure writes err for the user. Structured formats go to the
// output sink so machine readers see them; tables go to stderr.
func reportFailure(out, errOut io.Writer, format output.Format, err error) {
	target := errOut
	if format == output.FormatJSON || format == output.FormatYAML {
		target = out
	}
	_ = output.RenderError(target, format, failureText(err))
}

func failureText(err error) string {
	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil && envelope.Message != "" {
		return envelope.Message
	}
	return err.Error()
}
