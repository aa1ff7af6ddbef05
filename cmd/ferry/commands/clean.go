package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ferry/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build directories and build records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources, _ := cmd.Flags().GetBool("sources")
			return c.app.Clean(cmd.Context(), app.CleanOptions{Sources: sources})
		},
	}
	cmd.Flags().BoolP("sources", "s", false, "Also remove the cached source trees")
	return cmd
}
