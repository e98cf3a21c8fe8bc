package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	apperrors "github.com/sudobility/ratelimit-client/internal/errors"
)

// ExitCodeFor maps a command error to a foundry exit code. Envelope codes
// decide; anything else is a generic failure.
func ExitCodeFor(err error) foundry.ExitCode {
	var envelope *errors.ErrorEnvelope
	if !stderrors.As(err, &envelope) || envelope == nil {
		return foundry.ExitFailure
	}

	switch envelope.Code {
	case apperrors.CodeConfigInvalid:
		return foundry.ExitConfigInvalid
	case apperrors.CodeExternalService,
		apperrors.CodeServiceUnavailable,
		apperrors.CodeTimeout,
		apperrors.CodeUnauthorized,
		apperrors.CodeForbidden,
		apperrors.CodeRateLimited,
		apperrors.CodeNotFound:
		return foundry.ExitExternalServiceUnavailable
	default:
		return foundry.ExitFailure
	}
}

// ExitWithCode exits the program with a semantic foundry exit code and logs the error.
//
// Parameters:
//   - logger: The logger to use for error output (can be nil for early failures)
//   - exitCode: The foundry exit code constant (e.g., foundry.ExitConfigInvalid)
//   - msg: Human-readable error message
//   - err: The underlying error (can be nil)
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	if logger == nil {
		ExitWithCodeStderr(exitCode, msg, err)
		return
	}

	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_description", info.Description),
		zap.String("exit_category", info.Category),
	}

	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		fields = append(fields,
			zap.String("error_code", envelope.Code),
			zap.String("error_message", envelope.Message),
			zap.String("correlation_id", envelope.CorrelationID),
		)
		if envelope.Context != nil {
			fields = append(fields, zap.Any("error_context", envelope.Context))
		}
		if originalErr, ok := envelope.Original.(error); ok {
			err = originalErr
		}
	}

	fields = append(fields, zap.Error(err))
	logger.Error(msg, fields...)

	os.Exit(info.Code)
}

// ExitWithCodeStderr is a variant that writes to stderr without a logger.
// Use this for early failures before logger initialization.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: %s (exit code: %d)\n", msg, exitCode)
		}
		os.Exit(int(exitCode))
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)

	os.Exit(info.Code)
}
