package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dionysia/internal/jobs"
)

func newOAuthAuthenticateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "oauth-authenticate",
		Short: "Authorize dionysia to edit your Trakt lists",
		RunE: ctx.withDeps(func(cmd *cobra.Command, deps *jobs.Deps) error {
			out := cmd.OutOrStdout()
			path, err := jobs.Authenticate{Deps: deps, In: cmd.InOrStdin(), Out: out}.Run(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Trakt", statusError, failureMessage(err), shouldColorize(out)))
				return err
			}
			fmt.Fprintln(out, renderStatusLine("Trakt", statusOK, "token saved to "+path, shouldColorize(out)))
			return nil
		}),
	}
}
