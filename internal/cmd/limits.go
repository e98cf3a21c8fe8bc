package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sudobility/ratelimit-client/internal/output"
)

var (
	limitsIdentifier string
	limitsToken      string
	limitsWatch      time.Duration
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show current rate limits for each period",
	Long: `Fetch the rate limit snapshot (limit, remaining, reset time) for the
hour, day and month windows.

The bearer token comes from --token or RATELIMIT_CLIENT_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetchCommand(cmd, "ratelimit.limits", limitsIdentifier, limitsToken, limitsWatch, limitsRun)
	},
}

func limitsRun(s *session, format output.Format) fetchRun {
	return func(ctx context.Context, w io.Writer) error {
		data, err := s.fetchConfig(ctx)
		if err != nil {
			return err
		}
		return output.RenderConfig(w, format, data)
	}
}

func init() {
	rootCmd.AddCommand(limitsCmd)

	limitsCmd.Flags().StringVar(&limitsIdentifier, "identifier", "", "caller identifier (entity slug)")
	limitsCmd.Flags().StringVar(&limitsToken, "token", "", "bearer token")
	limitsCmd.Flags().DurationVar(&limitsWatch, "watch", 0, "refresh at this interval until interrupted")
	addOutputFlags(limitsCmd)
}
