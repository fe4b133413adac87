package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
)

const fetchTimeout = 30 * time.Minute

func getProgressBar(length int64, desc string) *progressbar.ProgressBar {
	if os.Getenv("CI") == "true" {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.DefaultBytes(length, desc)
}

// fetch downloads the recipe's tarball into the working directory and
// returns the archive path. The body is streamed through a sha256 hasher;
// if the recipe pins a digest, a mismatch fails the download.
func fetch(ctx context.Context, recipe Recipe, workdir string) (string, error) {
	url := recipe.DownloadURL()
	log(ctx).Info().Str("url", url).Msg("downloading source archive")

	client := &http.Client{
		Timeout: fetchTimeout,
	}

	archivePath := filepath.Join(workdir, filepath.Base(url))
	arHandle, err := os.Create(archivePath)
	if err != nil {
		return "", wrapError(KindNetwork, err, "Failed to create %s", archivePath)
	}
	defer arHandle.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", wrapError(KindNetwork, err, "Failed to build request for %s", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", wrapError(KindNetwork, err, "Failed to start download for %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newErrorf(KindNetwork, "Unexpected status %d for %s", resp.StatusCode, url)
	}

	hash := sha256.New()
	bar := getProgressBar(resp.ContentLength, "     download")
	buf := make([]byte, 4096)
	var written int64

	for {
		n, err := resp.Body.Read(buf)
		if err != nil && n < 1 {
			if err == io.EOF {
				break
			}
			return "", wrapError(KindNetwork, err, "Failed during download of %s", url)
		}

		_, err = hash.Write(buf[:n])
		if err != nil {
			return "", wrapError(KindNetwork, err, "Failed to calculate checksum for %s", url)
		}

		_, err = arHandle.Write(buf[:n])
		if err != nil {
			return "", wrapError(KindNetwork, err, "Failed to write download to %s", archivePath)
		}

		written += int64(n)
		bar.Write(buf[:n])
	}
	bar.Finish()

	if written == 0 {
		return "", newErrorf(KindNetwork, "Download of %s produced an empty file", url)
	}

	if recipe.Sha256 != "" {
		digest := hex.EncodeToString(hash.Sum(nil))
		if digest != recipe.Sha256 {
			return "", newErrorf(KindNetwork, "Checksum mismatch for %s: expected %s, got %s", url, recipe.Sha256, digest)
		}
	}

	err = arHandle.Close()
	if err != nil {
		return "", wrapError(KindNetwork, err, "Failed to finish writing %s", archivePath)
	}

	log(ctx).Info().Int64("bytes", written).Msg("download complete")
	return archivePath, nil
}
