package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"autovideo/internal/deps"
	"autovideo/internal/preflight"
	"autovideo/internal/staging"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report external tools, directories and templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			depRows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				if !s.Available {
					state = "missing"
					if s.Optional {
						state = "missing (optional)"
					}
				}
				detail := s.Detail
				if detail == "" {
					detail = s.Description
				}
				depRows = append(depRows, []string{s.Name, s.Command, state, detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Tool", "Command", "Status", "Detail"}, depRows))

			results := preflight.RunAll(cfg)
			checkRows := make([][]string, 0, len(results))
			for _, r := range results {
				state := "ok"
				if !r.Passed {
					state = "fail"
					if r.Optional {
						state = "missing (optional)"
					}
				}
				checkRows = append(checkRows, []string{r.Name, state, r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, checkRows))

			scratch, err := staging.ListDirectories(cfg.Paths.CacheDir)
			if err != nil {
				return fmt.Errorf("list scratch directories: %w", err)
			}
			if len(scratch) > 0 {
				scratchRows := make([][]string, 0, len(scratch))
				for _, d := range scratch {
					scratchRows = append(scratchRows, []string{d.Name, humanize.Time(d.ModTime), humanize.Bytes(uint64(d.Size))})
				}
				fmt.Fprintln(out, renderTable([]string{"Scratch", "Modified", "Size"}, scratchRows))
			}

			if ctx.configPath != "" {
				fmt.Fprintf(out, "Config: %s\n", ctx.configPath)
			}
			missing := deps.MissingRequired(statuses)
			failed := preflight.Failed(results)
			if len(missing) > 0 || len(failed) > 0 {
				return fmt.Errorf("%d required tools missing, %d checks failed", len(missing), len(failed))
			}
			fmt.Fprintln(out, "Ready to convert")
			return nil
		},
	}
}
