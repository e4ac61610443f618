package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cellref/internal/journal"
	"github.com/mesh-intelligence/cellref/internal/script"
)

// runOutput is one script's report plus the journal ID it was stored under.
type runOutput struct {
	RunID string `json:"run_id,omitempty"`
	*script.Report
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var noJournal bool

	cmd := &cobra.Command{
		Use:   "run <script.yaml>...",
		Short: "Run cell scripts",
		Long: `Run loads each script, applies its steps to freshly declared cells and
prints every step result. Steps with an expect value are checked; any
mismatch makes the command fail after all scripts have run.

Example script:

  name: counter
  cells:
    - {name: n, kind: int, value: 0}
    - {name: l, kind: list}
  steps:
    - {cell: n, op: add, arg: 3}
    - {cell: n, op: add, arg: 2, expect: 5}
    - {cell: l, op: push, arg: 1}
    - {cell: l, op: len, expect: 1}`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScripts(cmd, opts, args, !noJournal && opts.cfg.GetBool(cfgKeyJournal))
		},
	}
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "do not record runs in the journal")
	return cmd
}

func runScripts(cmd *cobra.Command, opts *rootOptions, paths []string, record bool) error {
	var j *journal.Journal
	if record {
		var err error
		if j, err = opts.openJournal(); err != nil {
			return err
		}
		defer j.Close()
	}

	runner := script.NewRunner(opts.log)
	outputs := make([]runOutput, 0, len(paths))
	failed := 0

	// In JSON mode, scripts that already ran (and were journaled) are
	// printed even when a later one fails to load or run.
	err := func() error {
		for _, path := range paths {
			s, err := script.Load(path)
			if err != nil {
				return err
			}
			report, err := runner.Run(s)
			if err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}

			out := runOutput{Report: report}
			if j != nil {
				id, err := j.Record(report)
				if err != nil {
					return sysError(fmt.Errorf("record run: %w", err))
				}
				out.RunID = id
			}
			if report.Failures > 0 {
				failed++
			}

			if opts.jsonMode {
				outputs = append(outputs, out)
				continue
			}
			if err := printReport(cmd.OutOrStdout(), out); err != nil {
				return err
			}
		}
		return nil
	}()

	if opts.jsonMode {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(outputs); encErr != nil && err == nil {
			err = encErr
		}
	}
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%w in %d of %d scripts", script.ErrExpectation, failed, len(paths))
	}
	return nil
}

// printReport writes a step table followed by the final cell values.
func printReport(w io.Writer, out runOutput) error {
	header := "script " + out.Script
	if out.RunID != "" {
		header += " (run " + out.RunID + ")"
	}
	fmt.Fprintln(w, header)

	table := tablewriter.NewWriter(w)
	table.Header("Step", "Cell", "Op", "Result", "Expect", "Status")
	for _, st := range out.Steps {
		status := "ok"
		if !st.OK {
			status = "FAIL"
		}
		row := []string{strconv.Itoa(st.Seq), st.Cell, string(st.Op), st.Result, st.Expect, status}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	names := make([]string, 0, len(out.Final))
	for name := range out.Final {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s = %s\n", name, out.Final[name])
	}
	fmt.Fprintf(w, "%d steps, %d failed\n", len(out.Steps), out.Failures)
	return nil
}
