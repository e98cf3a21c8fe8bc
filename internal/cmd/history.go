package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/sudobility/ratelimit-client/internal/errors"
	"github.com/sudobility/ratelimit-client/internal/output"
	"github.com/sudobility/ratelimit-client/internal/ratelimit"
)

var (
	historyIdentifier string
	historyToken      string
	historyWatch      time.Duration
)

var historyCmd = &cobra.Command{
	Use:       "history <hour|day|month>",
	Short:     "Show usage history for a period",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"hour", "day", "month"},
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := ratelimit.ParsePeriodType(args[0])
		if err != nil {
			return apperrors.Wrap(cmd.Context(), apperrors.CodeInvalidInput, err, err.Error())
		}

		stem := "ratelimit.history." + string(period)
		return runFetchCommand(cmd, stem, historyIdentifier, historyToken, historyWatch, historyRun(period))
	},
}

func historyRun(period ratelimit.PeriodType) func(*session, output.Format) fetchRun {
	return func(s *session, format output.Format) fetchRun {
		return func(ctx context.Context, w io.Writer) error {
			data, err := s.fetchHistory(ctx, period)
			if err != nil {
				return err
			}
			return output.RenderHistory(w, format, data)
		}
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyIdentifier, "identifier", "", "caller identifier (entity slug)")
	historyCmd.Flags().StringVar(&historyToken, "token", "", "bearer token")
	historyCmd.Flags().DurationVar(&historyWatch, "watch", 0, "refresh at this interval until interrupted")
	addOutputFlags(historyCmd)
}
