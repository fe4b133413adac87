package pipeline

import (
	"context"
	"os"
	"path/filepath"
)

// Options control a single pipeline run.
type Options struct {
	// Recipe describes the release to build.
	Recipe Recipe
	// Output is the final binary path. An existing file is overwritten.
	Output string
	// Prefix is the install prefix passed to configure.
	Prefix string
	// Jobs is the make parallelism.
	Jobs int
	// Cleanup removes the working directory and the install prefix once
	// the run is over.
	Cleanup bool
	// SkipToolCheck skips the PATH preflight. Only used by tests that
	// provide their own stub toolchain.
	SkipToolCheck bool
}

// DefaultOptions returns the options the CLI starts from.
func DefaultOptions(ctx context.Context) Options {
	return Options{
		Recipe:  DefaultRecipe(),
		Output:  filepath.Join("bin", "ghostscript"),
		Prefix:  "build",
		Jobs:    DefaultJobs(ctx),
		Cleanup: true,
	}
}

// Run executes the whole pipeline: toolchain preflight, fetch, extract,
// configure, build, install, cleanup. The first failing stage aborts the
// run; cleanup runs on every exit path and never changes the outcome.
func Run(ctx context.Context, opts Options) error {
	if !opts.SkipToolCheck {
		err := checkToolchain(ctx)
		if err != nil {
			return err
		}
	}

	prefix, err := filepath.Abs(opts.Prefix)
	if err != nil {
		return wrapError(KindToolchain, err, "Failed to resolve install prefix %s", opts.Prefix)
	}

	work, err := newWorkdir()
	if err != nil {
		return err
	}
	defer func() {
		if !opts.Cleanup {
			log(ctx).Info().Str("path", work.path).Msg("working directory retained")
			return
		}
		work.remove(ctx)
		removePrefix(ctx, prefix)
	}()

	archivePath, err := fetch(ctx, opts.Recipe, work.path)
	if err != nil {
		return err
	}

	sourceDir, err := extract(ctx, opts.Recipe, archivePath, work.path)
	if err != nil {
		return err
	}
	log(ctx).Info().Str("path", sourceDir).Msg("source directory found")

	err = configure(ctx, opts.Recipe, sourceDir, prefix)
	if err != nil {
		return err
	}

	err = build(ctx, opts.Recipe, sourceDir, prefix, opts.Jobs)
	if err != nil {
		return err
	}

	err = install(ctx, opts.Recipe, prefix, opts.Output)
	if err != nil {
		return err
	}

	smokeTest(ctx, opts.Output)
	return nil
}

// removePrefix deletes the install prefix. Like all cleanup this is best
// effort and only ever logged.
func removePrefix(ctx context.Context, prefix string) {
	_, err := os.Stat(prefix)
	if err != nil {
		return
	}

	err = os.RemoveAll(prefix)
	if err != nil {
		warn := wrapError(KindCleanup, err, "Failed to remove install prefix %s", prefix)
		log(ctx).Warn().Err(warn).Msg("cleanup incomplete")
	}
}
