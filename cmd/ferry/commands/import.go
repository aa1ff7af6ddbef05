package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ferry/internal/app"
)

func (c *CLI) newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Copy the artifacts of required packages into a consumer tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, _ := cmd.Flags().GetString("dest")
			output, _ := cmd.Flags().GetString("output")

			return c.app.Import(cmd.Context(), app.ImportOptions{
				Path:      pathArg(args),
				Dest:      dest,
				OutputDir: output,
			})
		},
	}
	cmd.Flags().StringP("dest", "d", "", "Directory the artifacts are copied into")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}
