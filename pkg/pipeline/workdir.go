package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aidarkhanov/nanoid"
)

// workdir is the transient directory holding the downloaded archive and
// the extracted source tree for one run. It is always removed when the
// run finishes, no matter how the run ended.
type workdir struct {
	path string
}

func newWorkdir() (*workdir, error) {
	path := filepath.Join(os.TempDir(), "gsbuild-"+nanoid.New())
	err := os.MkdirAll(path, os.FileMode(0770))
	if err != nil {
		return nil, wrapError(KindToolchain, err, "Failed to create working directory %s", path)
	}

	return &workdir{path: path}, nil
}

// remove deletes the working directory. Failures are logged, never fatal.
func (w *workdir) remove(ctx context.Context) {
	err := os.RemoveAll(w.path)
	if err != nil {
		warn := wrapError(KindCleanup, err, "Failed to remove working directory %s", w.path)
		log(ctx).Warn().Err(warn).Msg("cleanup incomplete")
	}
}
