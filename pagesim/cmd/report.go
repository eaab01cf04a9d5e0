package cmd

import (
	"fmt"
	"io"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/tracing"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report <recording.sqlite3>",
		Short: "Print the runs stored in a recording.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			algorithm, _ := cmd.Flags().GetString("algorithm")
			limit, _ := cmd.Flags().GetInt("limit")

			return report(cmd, cmd.OutOrStdout(), args[0], algorithm, limit)
		},
	}

	reportCmd.Flags().String("algorithm", "", "Only show runs of a policy.")
	reportCmd.Flags().Int("limit", 0, "Show at most this many runs.")

	return reportCmd
}

func report(
	cmd *cobra.Command,
	out io.Writer,
	path string,
	algorithm string,
	limit int,
) error {
	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(tracing.RunTableName, tracing.RunEntry{})

	params := datarecording.QueryParams{
		OrderBy: "rowid",
		Limit:   limit,
	}

	if algorithm != "" {
		params.Where = "Algorithm = ?"
		params.Args = []any{algorithm}
	}

	runs, total, err := reader.Query(cmd.Context(), tracing.RunTableName, params)
	if err != nil {
		return fmt.Errorf("reading runs: %w", err)
	}

	for _, r := range runs {
		run := r.(*tracing.RunEntry)
		fmt.Fprintf(out,
			"%s %s %s %s page=%dKB memory=%dKB events=%d "+
				"accesses=%d faults=%d dirty=%d\n",
			run.ID, run.Trace, run.Algorithm, run.TableType,
			run.PageSize>>10, run.MemorySize>>10, run.Events,
			run.TotalAccesses, run.PageFaults, run.DirtyPages)
	}

	if len(runs) < total {
		fmt.Fprintf(out, "%d of %d runs shown\n", len(runs), total)
	}

	return nil
}
