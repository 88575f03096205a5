package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/h0rv/ghgantt/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		formatFlag string
		outFlag    string
	)

	cmd := &cobra.Command{
		Use:   "export owner/repository",
		Short: "Write a repository timeline as CSV, JSON or PNG",
		Long: `Build the timeline for a repository and write it to a file.

  csv   ID, Title, Start Date, End Date, Status table
  json  frappe-gantt tasks plus the unstarted issues
  png   rendered chart

Use --out - to write to standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := domain.ParseRepo(args[0])
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.closeLog()

			cred, err := e.credential()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			r, err := e.builder().Build(ctx, repo, cred)
			if err != nil {
				return err
			}
			if r.Empty() {
				e.log.Warn().Str("repo", repo.String()).Msg("repository has no issues")
			}

			in := export.Input{
				Repo:        r.Repo,
				GeneratedAt: r.GeneratedAt,
				Today:       r.Result.Today,
				Result:      r.Result,
			}

			if outFlag == "-" {
				return export.Write(cmd.OutOrStdout(), format, in)
			}

			path := outFlag
			if path == "" {
				path = export.FileName(repo, format)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create output dir: %w", err)
			}
			if err := export.WriteFile(path, format, in); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d issues (%d unstarted) to %s\n",
				len(r.Result.Timeline), len(r.Result.Unstarted), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(export.FormatCSV), "Output format: csv, json or png.")
	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output path. Defaults to owner-repository-timeline.<format>.")

	return cmd
}
