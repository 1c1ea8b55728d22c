package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	root := &cobra.Command{
		Use:               "autovideo",
		Short:             "Convert videos into animated texture mods",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: ctx.preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")

	root.AddCommand(
		newConvertCommand(ctx),
		newCheckCommand(ctx),
		newHistoryCommand(ctx),
		newScriptCommand(ctx),
		newConfigCommand(ctx),
	)
	return root
}
