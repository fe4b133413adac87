package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// install copies the built binary from the install prefix to the output
// path and marks it executable. An existing file at the output path is
// overwritten.
func install(ctx context.Context, recipe Recipe, prefix, output string) error {
	artifact := filepath.Join(prefix, recipe.Artifact)
	_, err := os.Stat(artifact)
	if err != nil {
		if os.IsNotExist(err) {
			return newErrorf(KindMissingArtifact, "Expected binary %s does not exist after the build, the recipe probably doesn't match this release", artifact)
		}
		return wrapError(KindMissingArtifact, err, "Failed to check %s", artifact)
	}

	err = os.MkdirAll(filepath.Dir(output), os.FileMode(0770))
	if err != nil {
		return wrapError(KindMissingArtifact, err, "Failed to create output directory %s", filepath.Dir(output))
	}

	err = copyFile(artifact, output)
	if err != nil {
		return err
	}

	if runtime.GOOS != "windows" {
		err = os.Chmod(output, os.FileMode(0755))
		if err != nil {
			return wrapError(KindMissingArtifact, err, "Failed to mark %s as executable", output)
		}
	}

	log(ctx).Info().Str("path", output).Msg("binary installed")
	return nil
}

func copyFile(src, dest string) error {
	srcHandle, err := os.Open(src)
	if err != nil {
		return wrapError(KindMissingArtifact, err, "Failed to open %s", src)
	}
	defer srcHandle.Close()

	destHandle, err := os.Create(dest)
	if err != nil {
		return wrapError(KindMissingArtifact, err, "Failed to create %s", dest)
	}
	defer destHandle.Close()

	_, err = io.Copy(destHandle, srcHandle)
	if err != nil {
		return wrapError(KindMissingArtifact, err, "Failed to copy %s to %s", src, dest)
	}

	return destHandle.Close()
}

// smokeTest runs the installed binary with --version. A failure here is
// suspicious but not fatal, the binary might still work for the caller.
func smokeTest(ctx context.Context, output string) {
	runner := newShellRunner(filepath.Dir(output))
	err := runner.run(ctx, "./"+filepath.Base(output)+" --version")
	if err != nil {
		log(ctx).Warn().Err(err).Msg("binary smoke test failed")
		return
	}

	log(ctx).Info().Msg("binary smoke test passed")
}
