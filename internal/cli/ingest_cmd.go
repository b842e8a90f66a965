package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rpattn/salesingest/internal/domain"
	"github.com/rpattn/salesingest/internal/fetch"
	"github.com/rpattn/salesingest/internal/ingestion"

	"github.com/spf13/cobra"
)

type ingestResult struct {
	RunID          string               `json:"runId"`
	FileName       string               `json:"fileName"`
	Status         domain.RunStatus     `json:"status"`
	Message        string               `json:"message"`
	RowsProcessed  int                  `json:"rowsProcessed"`
	Chunks         int                  `json:"chunks"`
	TotalStored    int64                `json:"totalStored"`
	RowNumber      *int                 `json:"rowNumber,omitempty"`
	ElapsedSeconds float64              `json:"elapsedSeconds"`
	InvalidValues  []domain.ColumnCount `json:"invalidValues"`
}

func newIngestCmd(a *app) *cobra.Command {
	var (
		remote   string
		localDir string
	)

	cmd := &cobra.Command{
		Use:   "ingest [FILE]",
		Short: "Ingest a local file, or one fetched from FTP with --ftp",
		Example: `  salesingest ingest ./exports/march.xlsx
  salesingest ingest --ftp /outbound/march.csv`,
		Args: func(cmd *cobra.Command, args []string) error {
			if remote != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var path string
			if remote != "" {
				client, err := fetch.Dial(ctx, a.cfg.FTP)
				if err != nil {
					return err
				}
				path, err = client.Download(remote, localDir)
				if closeErr := client.Close(); closeErr != nil {
					a.logger.Warn("ftp quit failed", "error", closeErr)
				}
				if err != nil {
					return err
				}
				a.logger.Info("fetched remote file", "remote", remote, "local", path)
			} else {
				path = args[0]
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open source file: %w", err)
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("stat source file: %w", err)
			}

			st, err := openStore(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer st.close()

			svc := ingestion.NewService(st.records, st.runs, a.logger, a.cfg.Ingestion.Options())
			out := svc.Ingest(ctx, ingestion.Upload{
				FileName: filepath.Base(path),
				Size:     info.Size(),
				Data:     f,
			})

			if err := writeOutcome(cmd.OutOrStdout(), a.output, out); err != nil {
				return err
			}
			if !out.Succeeded() {
				return errors.New(out.Message())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&remote, "ftp", "", "Remote path to download from the configured FTP server")
	cmd.Flags().StringVar(&localDir, "download-dir", os.TempDir(), "Local directory for FTP downloads")
	return cmd
}

func writeOutcome(w io.Writer, format string, out domain.Outcome) error {
	res := ingestResult{
		RunID:          out.RunID.String(),
		FileName:       out.FileName,
		Status:         out.Status,
		Message:        out.Message(),
		RowsProcessed:  out.RowsProcessed,
		Chunks:         out.Chunks,
		TotalStored:    out.TotalStored,
		RowNumber:      out.RowNumber,
		ElapsedSeconds: out.Elapsed.Seconds(),
		InvalidValues:  out.Ledger.Summary(),
	}
	if format == "json" {
		return printJSON(w, res)
	}

	_, _ = fmt.Fprintf(w, "%s: %s\n", res.Status, res.Message)
	if len(res.InvalidValues) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "COLUMN\tINVALID")
	for _, c := range res.InvalidValues {
		_, _ = fmt.Fprintf(tw, "%s\t%d\n", c.Column, c.Count)
	}
	return tw.Flush()
}
