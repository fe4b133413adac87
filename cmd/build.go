package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bimalpaudels/kleinPDF-ghostscript-binary/pkg"
	"github.com/bimalpaudels/kleinPDF-ghostscript-binary/pkg/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Downloads, builds and installs Ghostscript",
	Long: `Runs the whole pipeline: checks the local toolchain, downloads the pinned
source release, runs configure and make with static-link flags and copies the
produced binary to the output path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zerolog.New(NewConsoleWriter())
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		ctx = pipeline.WithLogger(ctx, &logger)

		opts := pipeline.DefaultOptions(ctx)

		cleanup, err := cmd.Flags().GetBool("cleanup")
		if err != nil {
			return err
		}
		noCleanup, err := cmd.Flags().GetBool("no-cleanup")
		if err != nil {
			return err
		}
		opts.Cleanup = cleanup && !noCleanup

		jobs, err := cmd.Flags().GetInt("jobs")
		if err != nil {
			return err
		}
		if jobs > 0 {
			opts.Jobs = jobs
		}

		opts.Output, err = cmd.Flags().GetString("output")
		if err != nil {
			return err
		}

		opts.Prefix, err = cmd.Flags().GetString("prefix")
		if err != nil {
			return err
		}

		recipePath, err := cmd.Flags().GetString("recipe")
		if err != nil {
			return err
		}
		if recipePath != "" {
			opts.Recipe, err = pipeline.LoadRecipe(recipePath)
			if err != nil {
				return err
			}
		}

		pkg.PrintTask("Building Ghostscript " + opts.Recipe.Version)
		err = pipeline.Run(ctx, opts)
		if err != nil {
			pkg.PrintError(err.Error())
			return err
		}

		absOutput, aErr := filepath.Abs(opts.Output)
		if aErr != nil {
			absOutput = opts.Output
		}
		pkg.PrintTask("Standalone Ghostscript binary created: " + absOutput)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Bool("cleanup", true, "remove the working directory and install prefix after the run")
	buildCmd.Flags().Bool("no-cleanup", false, "keep the working directory and install prefix after the run")
	buildCmd.MarkFlagsMutuallyExclusive("cleanup", "no-cleanup")
	buildCmd.Flags().IntP("jobs", "j", 0, "make parallelism (defaults to the logical CPU count, capped at 8)")
	buildCmd.Flags().String("recipe", "", "YAML recipe overriding the built-in pinned release")
	buildCmd.Flags().String("output", filepath.Join("bin", "ghostscript"), "path of the final binary")
	buildCmd.Flags().String("prefix", "build", "install prefix passed to configure")
}
