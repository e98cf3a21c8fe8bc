package cmd

import (
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sudobility/ratelimit-client/internal/config"
	"github.com/sudobility/ratelimit-client/internal/observability"
	"github.com/sudobility/ratelimit-client/internal/server/handlers"
)

var (
	cfgFile    string
	verbose    bool
	baseURL    string
	addressing string
	pathPrefix string

	// Version info set by main package
	versionInfo = struct {
		Version   string
		Commit    string
		BuildDate string
	}{Version: "dev", Commit: "unknown", BuildDate: "unknown"}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	handlers.SetVersionInfo(version, commit, buildDate)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Inspect API rate limits and usage history",
	Long: `ratelimit reads rate limit configuration and usage history from a
rate limit service.

Use the subcommands to perform specific operations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/ratelimit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "rate limit service base URL")
	rootCmd.PersistentFlags().StringVar(&addressing, "addressing", "", "identifier addressing: path|query")
	rootCmd.PersistentFlags().StringVar(&pathPrefix, "path-prefix", "", "path prefix for service endpoints (default /api/v1)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("client.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("client.addressing", rootCmd.PersistentFlags().Lookup("addressing"))
	_ = viper.BindPFlag("client.path_prefix", rootCmd.PersistentFlags().Lookup("path-prefix"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	observability.InitCLILogger(config.AppName, verbose)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		appConfigDir := config.DefaultConfigDir()
		if appConfigDir == "" {
			if verbose {
				observability.CLILogger.Warn("Could not resolve XDG config directory, falling back to home directory")
			}
			home, err := os.UserHomeDir()
			if err != nil {
				ExitWithCode(observability.CLILogger, foundry.ExitFileNotFound, "Could not find home directory", err)
			}
			viper.AddConfigPath(home)
			viper.SetConfigName("." + config.AppName)
		} else {
			viper.AddConfigPath(appConfigDir)
			viper.SetConfigName("config")
		}

		// Also search in current directory
		viper.AddConfigPath("./config")
		viper.SetConfigType("yaml")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		observability.CLILogger.Debug("Using config file", zap.String("path", viper.ConfigFileUsed()))
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		observability.CLILogger.Debug("No config file found, using defaults and environment variables")
	} else if cfgFile != "" {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Error reading config file", err)
	} else {
		observability.CLILogger.Warn("Error reading config file", zap.Error(err))
	}

	config.SetDefaults(viper.GetViper())
}

// loadConfig decodes the merged settings for the current invocation.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}
