package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"autovideo/internal/identifier"
	"autovideo/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var modName string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List converted videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cmd.Context(), cfg.LedgerPath())
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			var entries []ledger.Entry
			if modName != "" {
				mod, err := identifier.NewMod(modName)
				if err != nil {
					return err
				}
				entries, err = store.ListByMod(cmd.Context(), mod.ID)
				if err != nil {
					return err
				}
			} else if entries, err = store.List(cmd.Context(), limit); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No conversions recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				audio := e.AudioFile
				if audio == "" {
					audio = "none"
				}
				rows = append(rows, []string{
					e.ModName,
					e.VideoName,
					e.VideoID,
					strconv.Itoa(e.Atlases),
					fmt.Sprintf("%.1fs", e.HoldSeconds),
					fmt.Sprintf("%dpx @ %dfps", e.FrameSize, e.FPS),
					audio,
					yesNo(e.DriveIn),
					humanize.Time(e.CreatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Mod", "Video", "ID", "Grids", "Hold", "Frames", "Audio", "Drive-in", "Converted"},
				rows, 3, 4,
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show (0 for all)")
	cmd.Flags().StringVarP(&modName, "mod", "m", "", "Only show videos of this mod")
	return cmd
}
