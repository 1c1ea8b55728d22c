package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"autovideo/internal/identifier"
	"autovideo/internal/ledger"
	"autovideo/internal/pipeline"
	"autovideo/internal/script"
)

func newScriptCommand(ctx *commandContext) *cobra.Command {
	var modName string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "script --mod NAME",
		Short: "Regenerate the xEdit script for a converted mod",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mod, err := identifier.NewMod(modName)
			if err != nil {
				return err
			}
			store, err := ledger.Open(cmd.Context(), cfg.LedgerPath())
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			entries, err := store.ListByMod(cmd.Context(), mod.ID)
			if err != nil {
				return err
			}
			req, err := pipeline.ScriptRequestFromLedger(cfg.ScriptInfo(), entries)
			if err != nil {
				return fmt.Errorf("mod %s: %w", mod.Name, err)
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = filepath.Join(cfg.Paths.OutputDir, script.FileName)
			}
			if err := script.WriteFile(target, req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote script for %d videos to %s\n", len(req.Videos), target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&modName, "mod", "m", "", "Mod name (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Script path (default <output_dir>/script.txt)")
	_ = cmd.MarkFlagRequired("mod")
	return cmd
}
