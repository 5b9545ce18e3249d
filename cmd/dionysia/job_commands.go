package main

import (
	"errors"

	"github.com/spf13/cobra"

	"dionysia/internal/jobs"
)

func newUpdateCollectionsCommand(ctx *commandContext) *cobra.Command {
	var (
		listNames []string
		trending  bool
		popular   bool
		library   string
		stage     bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "update-collections",
		Short: "Sync configured lists and Trakt charts into Plex collections",
		RunE: ctx.withDeps(func(cmd *cobra.Command, deps *jobs.Deps) error {
			summaries, runErr := jobs.Collections{
				Deps:      deps,
				ListNames: listNames,
				Trending:  trending,
				Popular:   popular,
				Library:   library,
				Stage:     stage,
			}.Run(cmd.Context())
			return finish(cmd, runErr, asJSON, printSummaries(cmd, "Collections", summaries, asJSON))
		}),
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&listNames, "list-names", "l", nil, "Collection list to update (repeatable; all when omitted)")
	flags.BoolVarP(&trending, "trending", "t", false, "Also sync the Trakt trending chart")
	flags.BoolVarP(&popular, "popular", "w", false, "Also sync the Trakt weekly watched chart")
	flags.StringVar(&library, "library", "", "Plex library name (defaults to plex.library)")
	flags.BoolVar(&stage, "stage", false, "Log the planned changes without editing Plex")
	flags.BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newUpdateRecentlyAddedCommand(ctx *commandContext) *cobra.Command {
	var (
		library string
		number  int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "update-recently-added",
		Short: "Surface high resolution trending movies in Plex recently added",
		RunE: ctx.withDeps(func(cmd *cobra.Command, deps *jobs.Deps) error {
			actions, runErr := jobs.RecentlyAdded{Deps: deps, Library: library, Number: number}.Run(cmd.Context())
			return finish(cmd, runErr, asJSON, printActions(cmd, "Recently added", actions, asJSON))
		}),
	}
	cmd.Flags().StringVar(&library, "library", "", "Plex library name (defaults to plex.library)")
	cmd.Flags().IntVarP(&number, "number", "n", 10, "Number of trending movies to consider")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newSearchMissingCommand(ctx *commandContext) *cobra.Command {
	var (
		oldest bool
		rating bool
		votes  bool
		cutoff float64
		stage  bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search-missing",
		Short: "Trigger Radarr searches for the most wanted missing movies",
		RunE: ctx.withDeps(func(cmd *cobra.Command, deps *jobs.Deps) error {
			actions, runErr := jobs.SearchMissing{
				Deps:   deps,
				Oldest: oldest,
				Rating: rating,
				Votes:  votes,
				Cutoff: cutoff,
				Stage:  stage,
			}.Run(cmd.Context())
			return finish(cmd, runErr, asJSON, printActions(cmd, "Search missing", actions, asJSON))
		}),
	}
	flags := cmd.Flags()
	flags.BoolVarP(&oldest, "oldest", "o", false, "Search the oldest missing movies")
	flags.BoolVarP(&rating, "rating", "r", false, "Search the highest rated missing movies")
	flags.BoolVarP(&votes, "votes", "v", false, "Search the most voted missing movies")
	flags.Float64Var(&cutoff, "cutoff", 99, "Percentage of the best value a movie must reach")
	flags.BoolVar(&stage, "stage", false, "Log the searches without triggering them")
	flags.BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newPurgeUnmonitoredCommand(ctx *commandContext) *cobra.Command {
	var (
		protectTag  string
		deleteFiles bool
		exclude     bool
		stage       bool
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "purge-unmonitored",
		Short: "Remove unmonitored movies that were never downloaded from Radarr",
		RunE: ctx.withDeps(func(cmd *cobra.Command, deps *jobs.Deps) error {
			actions, runErr := jobs.Purge{
				Deps:         deps,
				ProtectTag:   protectTag,
				DeleteFiles:  deleteFiles,
				AddExclusion: exclude,
				Stage:        stage,
			}.Run(cmd.Context())
			return finish(cmd, runErr, asJSON, printActions(cmd, "Purge unmonitored", actions, asJSON))
		}),
	}
	flags := cmd.Flags()
	flags.StringVarP(&protectTag, "tag-to-protect", "t", "watched", "Radarr tag that protects a movie from removal")
	flags.BoolVar(&deleteFiles, "delete-files", true, "Delete files on disk along with the movie")
	flags.BoolVar(&exclude, "exclude", false, "Add an import exclusion for removed movies")
	flags.BoolVar(&stage, "stage", true, "Log the removals without performing them (--stage=false to apply)")
	flags.BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newUpdateExternalListCommand(ctx *commandContext) *cobra.Command {
	var (
		listNames []string
		stage     bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "update-external-list",
		Short: "Mirror external JSON feeds into Trakt lists",
		RunE: ctx.withDeps(func(cmd *cobra.Command, deps *jobs.Deps) error {
			summaries, runErr := jobs.ExternalLists{Deps: deps, ListNames: listNames, Stage: stage}.Run(cmd.Context())
			return finish(cmd, runErr, asJSON, printSummaries(cmd, "External lists", summaries, asJSON))
		}),
	}
	cmd.Flags().StringArrayVarP(&listNames, "list-names", "l", nil, "External list to update (repeatable; all when omitted)")
	cmd.Flags().BoolVar(&stage, "stage", false, "Log the planned changes without editing Trakt")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// finish prints the outcome line and returns the job error so the process
// exits non-zero after the results were shown.
func finish(cmd *cobra.Command, runErr error, asJSON bool, printErr error) error {
	printOutcome(cmd, cmd.Name(), runErr, asJSON)
	return errors.Join(runErr, printErr)
}
