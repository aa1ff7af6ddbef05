package commands

import "github.com/spf13/cobra"

func (c *CLI) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [path]",
		Short: "Print link information and the last build of a package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Info(cmd.Context(), cmd.OutOrStdout(), pathArg(args))
		},
	}
}
