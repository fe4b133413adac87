package cmd

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bimalpaudels/kleinPDF-ghostscript-binary/pkg"
	"github.com/bimalpaudels/kleinPDF-ghostscript-binary/pkg/pipeline"
)

var checkToolsCmd = &cobra.Command{
	Use:   "check-tools",
	Short: "Verifies that the required build tools are installed",
	Long: `Checks PATH for the compiler toolchain the build shells out to (a C
compiler, make and autoconf) and prints install hints for anything missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg.PrintTask("Checking build tools")

		missing := 0
		for _, tool := range pipeline.RequiredTools() {
			path, found := pipeline.LookupTool(tool)
			if found {
				pkg.PrintSubtask(tool.Names[0] + ": " + path)
				continue
			}

			if tool.Required {
				missing++
				pkg.PrintError(tool.Names[0] + ": not found (" + tool.Hint + ")")
			} else {
				pkg.PrintSubtask(tool.Names[0] + ": not found (optional, " + strings.TrimSpace(tool.Hint) + ")")
			}
		}

		if missing > 0 {
			return eris.Errorf("%d required tools are missing", missing)
		}

		pkg.PrintTask("All required tools found")
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(checkToolsCmd)
}
