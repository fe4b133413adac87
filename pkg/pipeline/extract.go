package pipeline

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/schollz/progressbar/v3"
	"github.com/ulikunitz/xz"
)

type archiveExtractor func(*os.File, *progressbar.ProgressBar, string) error

// extract unpacks the archive into destDir and returns the Ghostscript
// source directory found inside it.
func extract(ctx context.Context, recipe Recipe, archivePath, destDir string) (string, error) {
	log(ctx).Info().Str("archive", archivePath).Msg("extracting source archive")

	extractor, err := getExtractor(archivePath)
	if err != nil {
		return "", err
	}

	arHandle, err := os.Open(archivePath)
	if err != nil {
		return "", wrapError(KindArchive, err, "Failed to open %s", archivePath)
	}
	defer arHandle.Close()

	stat, err := arHandle.Stat()
	if err != nil {
		return "", wrapError(KindArchive, err, "Failed to stat %s", archivePath)
	}

	bar := getProgressBar(stat.Size(), "      extract")
	err = extractor(arHandle, bar, destDir)
	bar.Finish()
	if err != nil {
		return "", err
	}

	return findSourceDir(destDir, recipe.SourceDir)
}

// findSourceDir locates the single extracted directory whose name starts
// with the given prefix.
func findSourceDir(destDir, prefix string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", wrapError(KindArchive, err, "Failed to read %s", destDir)
	}

	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(destDir, entry.Name()), nil
		}
	}

	return "", newErrorf(KindArchive, "Archive did not contain a %s* source directory", prefix)
}

func openExtractorDest(destPath, item string) (*os.File, string, error) {
	dest := filepath.Join(destPath, filepath.Clean(item))
	if !strings.HasPrefix(dest, filepath.Clean(destPath)+string(os.PathSeparator)) {
		return nil, "", newErrorf(KindArchive, "Archive entry %s escapes the destination directory", item)
	}

	destParent := filepath.Dir(dest)
	err := os.MkdirAll(destParent, os.FileMode(0770))
	if err != nil {
		return nil, "", wrapError(KindArchive, err, "Failed to create directory %s", destParent)
	}

	destHandle, err := os.Create(dest)
	if err != nil {
		return nil, "", wrapError(KindArchive, err, "Failed to create file %s", dest)
	}

	return destHandle, dest, nil
}

func getExtractor(archivePath string) (archiveExtractor, error) {
	if strings.HasSuffix(archivePath, ".zip") {
		return extractZip, nil
	}

	if strings.HasSuffix(archivePath, ".tar.gz") || strings.HasSuffix(archivePath, ".tgz") {
		return func(f *os.File, bar *progressbar.ProgressBar, destDir string) error {
			reader, err := gzip.NewReader(f)
			if err != nil {
				return wrapError(KindArchive, err, "Failed to open gzip stream")
			}
			defer reader.Close()

			return extractTar(reader, f, bar, destDir)
		}, nil
	}

	if strings.HasSuffix(archivePath, ".tar.bz2") {
		return func(f *os.File, bar *progressbar.ProgressBar, destDir string) error {
			return extractTar(bzip2.NewReader(f), f, bar, destDir)
		}, nil
	}

	if strings.HasSuffix(archivePath, ".tar.xz") {
		return func(f *os.File, bar *progressbar.ProgressBar, destDir string) error {
			reader, err := xz.NewReader(f)
			if err != nil {
				return wrapError(KindArchive, err, "Failed to open xz stream")
			}

			return extractTar(reader, f, bar, destDir)
		}, nil
	}

	if strings.HasSuffix(archivePath, ".tar.br") {
		return func(f *os.File, bar *progressbar.ProgressBar, destDir string) error {
			return extractTar(brotli.NewReader(f), f, bar, destDir)
		}, nil
	}

	return nil, newErrorf(KindArchive, "Archive format of %s not supported", filepath.Base(archivePath))
}

func extractZip(f *os.File, bar *progressbar.ProgressBar, destDir string) error {
	stat, err := f.Stat()
	if err != nil {
		return wrapError(KindArchive, err, "Failed to stat archive")
	}

	archive, err := zip.NewReader(f, stat.Size())
	if err != nil {
		return wrapError(KindArchive, err, "Failed to open zip archive")
	}

	buf := make([]byte, 4096)
	for _, item := range archive.File {
		if strings.HasSuffix(item.Name, "/") {
			continue
		}

		destHandle, dest, err := openExtractorDest(destDir, item.Name)
		if err != nil {
			return err
		}

		itemHandle, err := item.Open()
		if err != nil {
			destHandle.Close()
			return wrapError(KindArchive, err, "Failed to open archive entry %s", item.Name)
		}

		err = copyEntry(destHandle, itemHandle, f, bar, buf, item.Name, dest)
		itemHandle.Close()
		destHandle.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func extractTar(r io.Reader, f *os.File, bar *progressbar.ProgressBar, destDir string) error {
	buf := make([]byte, 4096)
	archive := tar.NewReader(r)

	for {
		item, err := archive.Next()
		if err != nil {
			if err == io.EOF {
				break
			}

			return wrapError(KindArchive, err, "Failed to read archive entry")
		}

		fi := item.FileInfo()
		if fi.IsDir() {
			continue
		}

		destHandle, dest, err := openExtractorDest(destDir, item.Name)
		if err != nil {
			return err
		}

		if item.Typeflag&tar.TypeSymlink == tar.TypeSymlink {
			destHandle.Close()
			err = os.Remove(dest)
			if err != nil {
				return wrapError(KindArchive, err, "Failed to remove placeholder file %s", dest)
			}

			err = os.Symlink(item.Linkname, dest)
			if err != nil {
				return wrapError(KindArchive, err, "Failed to create symlink %s pointing to %s", dest, item.Linkname)
			}
			continue
		}

		os.Chmod(dest, fi.Mode())

		err = copyEntry(destHandle, archive, f, bar, buf, item.Name, dest)
		destHandle.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func copyEntry(destHandle *os.File, src io.Reader, f *os.File, bar *progressbar.ProgressBar, buf []byte, name, dest string) error {
	for {
		n, err := src.Read(buf)
		if err != nil && n < 1 {
			if err == io.EOF {
				return nil
			}
			return wrapError(KindArchive, err, "Failed to read archive entry %s", name)
		}

		_, err = destHandle.Write(buf[:n])
		if err != nil {
			return wrapError(KindArchive, err, "Failed to write extracted file %s", dest)
		}

		pos, err := f.Seek(0, io.SeekCurrent)
		if err == nil {
			bar.Set64(pos)
		}
	}
}
