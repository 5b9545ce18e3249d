package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dionysia/internal/memo"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the response cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached entries per function",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cacheStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer ctx.close()
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache file: %s\n", stats.Path)
			if stats.Entries == 0 {
				fmt.Fprintln(out, "Cached entries: none")
				return nil
			}
			fmt.Fprintln(out, renderCacheStats(stats))
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cacheStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer ctx.close()
			removed, err := store.Purge(cmd.Context())
			if err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cache entries pruned")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired entries\n", removed)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cacheStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer ctx.close()
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries\n", removed)
			return nil
		},
	}
}

func cacheStore(ctx *commandContext, cmd *cobra.Command) (*memo.Store, error) {
	if _, err := ctx.ensureLogger(cmd); err != nil {
		return nil, err
	}
	store, err := ctx.ensureStore()
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}
