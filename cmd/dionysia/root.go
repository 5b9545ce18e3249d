package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	envConfig    = "DIONYSIA_TOOLS_CONFIG"
	envCacheFile = "DIONYSIA_TOOLS_CACHEFILE"
	envLogFile   = "DIONYSIA_TOOLS_LOGFILE"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "dionysia",
		Short:         "Keep Plex collections, Radarr and Trakt lists in sync",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&flags.config, "config", "c", envDefault(envConfig), "Configuration file path (env "+envConfig+")")
	persistent.StringVar(&flags.cacheFile, "cachefile", envDefault(envCacheFile), "Cache file path (env "+envCacheFile+")")
	persistent.StringVar(&flags.logFile, "logfile", envDefault(envLogFile), "Log file path (env "+envLogFile+")")
	persistent.BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(newUpdateCollectionsCommand(ctx))
	rootCmd.AddCommand(newUpdateRecentlyAddedCommand(ctx))
	rootCmd.AddCommand(newSearchMissingCommand(ctx))
	rootCmd.AddCommand(newPurgeUnmonitoredCommand(ctx))
	rootCmd.AddCommand(newUpdateExternalListCommand(ctx))
	rootCmd.AddCommand(newOAuthAuthenticateCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))

	return rootCmd
}

func envDefault(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
