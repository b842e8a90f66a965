package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent ingestion runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd.Context(), a.cfg.Database)
			if err != nil {
				return err
			}
			defer st.close()

			runs, err := st.runs.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if a.output == "json" {
				return printJSON(cmd.OutOrStdout(), runs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "STARTED\tFILE\tSTATUS\tROWS\tINVALID\tERROR")
			for _, r := range runs {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					r.StartedAt.Local().Format(time.DateTime), r.FileName, r.Status,
					r.RowsProcessed, r.InvalidCells, r.ErrorMessage)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Runs to skip")
	return cmd
}
