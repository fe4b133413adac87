package cmd

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bimalpaudels/kleinPDF-ghostscript-binary/pkg"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Removes artifacts left behind by previous runs",
	Long: `Removes the install prefix and the output directory of previous runs.
Useful after a run with --no-cleanup or after an aborted build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, err := cmd.Flags().GetString("prefix")
		if err != nil {
			return err
		}

		binDir, err := cmd.Flags().GetString("bin")
		if err != nil {
			return err
		}

		for _, dir := range []string{prefix, binDir} {
			_, err := os.Stat(dir)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return eris.Wrapf(err, "Failed to check %s", dir)
			}

			err = os.RemoveAll(dir)
			if err != nil {
				return eris.Wrapf(err, "Failed to remove %s", dir)
			}
			pkg.PrintSubtask("Removed " + dir)
		}

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().String("prefix", "build", "install prefix to remove")
	cleanCmd.Flags().String("bin", "bin", "output directory to remove")
}
