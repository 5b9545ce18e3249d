package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"dionysia/internal/jobs"
	"dionysia/internal/reconcile"
	"dionysia/internal/services"
)

type summaryView struct {
	Target    string `json:"target"`
	Mode      string `json:"mode"`
	Added     int    `json:"added"`
	Removed   int    `json:"removed"`
	Unchanged int    `json:"unchanged"`
	Error     string `json:"error,omitempty"`
}

type actionView struct {
	ID      int    `json:"id,omitempty"`
	Movie   string `json:"movie"`
	Detail  string `json:"detail,omitempty"`
	Outcome string `json:"outcome"`
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummaries(cmd *cobra.Command, title string, summaries []reconcile.Summary, asJSON bool) error {
	if asJSON {
		views := make([]summaryView, 0, len(summaries))
		for _, s := range summaries {
			view := summaryView{
				Target:    s.Name,
				Mode:      s.Mode.String(),
				Added:     s.Added,
				Removed:   s.Removed,
				Unchanged: s.Unchanged,
			}
			if s.Err != nil {
				view.Error = s.Err.Error()
			}
			views = append(views, view)
		}
		return writeJSON(cmd, views)
	}
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	writeSectionHeader(out, title, colorize)
	if len(summaries) == 0 {
		fmt.Fprintln(out, "Nothing to reconcile")
		return nil
	}
	fmt.Fprintln(out, reconcile.RenderSummaries(summaries))
	return nil
}

func printActions(cmd *cobra.Command, title string, actions []jobs.Action, asJSON bool) error {
	if asJSON {
		views := make([]actionView, 0, len(actions))
		for _, a := range actions {
			views = append(views, actionView(a))
		}
		return writeJSON(cmd, views)
	}
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	writeSectionHeader(out, title, colorize)
	if len(actions) == 0 {
		fmt.Fprintln(out, "No matching movies")
		return nil
	}
	fmt.Fprintln(out, renderActions(actions, colorize))
	return nil
}

// printOutcome writes the trailing status line for a job run. JSON output
// skips it so the document stays parseable.
func printOutcome(cmd *cobra.Command, label string, runErr error, asJSON bool) {
	if asJSON {
		return
	}
	out := cmd.OutOrStdout()
	kind, message := statusOK, "completed"
	if runErr != nil {
		kind, message = statusError, failureMessage(runErr)
	}
	fmt.Fprintln(out, renderStatusLine(label, kind, message, shouldColorize(out)))
}

func failureMessage(err error) string {
	msg := services.Kind(err)
	if hint := strings.TrimSpace(services.Hint(err)); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}
