package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gsbuild",
	Short: "Builds a standalone Ghostscript binary",
	Long: `This command downloads a pinned Ghostscript source release, builds it with
its own configure/make toolchain and installs the resulting binary into
./bin/ghostscript.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
