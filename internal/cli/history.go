package cli

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cellref/internal/journal"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List journaled runs or show the steps of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := opts.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			if len(args) == 1 {
				return showRun(cmd, opts, j, args[0])
			}
			return listRuns(cmd, opts, j, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list (0 lists all)")
	return cmd
}

func listRuns(cmd *cobra.Command, opts *rootOptions, j *journal.Journal, limit int) error {
	runs, err := j.Runs(limit)
	if err != nil {
		return sysError(err)
	}

	if opts.jsonMode {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(runs)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Run", "Script", "Started", "Steps", "Failures")
	for _, r := range runs {
		row := []string{
			r.RunID,
			r.Script,
			r.StartedAt.Local().Format(time.DateTime),
			strconv.Itoa(r.Steps),
			strconv.Itoa(r.Failures),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func showRun(cmd *cobra.Command, opts *rootOptions, j *journal.Journal, runID string) error {
	steps, err := j.Steps(runID)
	if errors.Is(err, journal.ErrRunNotFound) {
		return err
	}
	if err != nil {
		return sysError(err)
	}

	if opts.jsonMode {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(steps)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Step", "Cell", "Op", "Result", "Expect", "OK")
	for _, s := range steps {
		row := []string{strconv.Itoa(s.Seq), s.Cell, s.Op, s.Result, s.Expect, strconv.FormatBool(s.OK)}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
