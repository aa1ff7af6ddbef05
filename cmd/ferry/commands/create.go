package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ferry/internal/app"
)

func (c *CLI) newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [path]",
		Short: "Fetch, build and package the library described at path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refresh, _ := cmd.Flags().GetBool("refresh")
			keep, _ := cmd.Flags().GetBool("keep-build")
			preset, _ := cmd.Flags().GetString("preset")
			output, _ := cmd.Flags().GetString("output")

			return c.app.Create(cmd.Context(), app.CreateOptions{
				Path:      pathArg(args),
				Refresh:   refresh,
				KeepBuild: keep,
				OutputDir: output,
				Preset:    preset,
			})
		},
	}
	cmd.Flags().BoolP("refresh", "r", false, "Update the cached source tree and replace it when it diverged")
	cmd.Flags().BoolP("keep-build", "k", false, "Keep the build and install directories after a successful run")
	cmd.Flags().StringP("preset", "p", "", "Toolchain preset to build with instead of the descriptor's")
	return cmd
}
