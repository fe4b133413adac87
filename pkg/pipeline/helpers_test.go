package pipeline

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// testContext returns a context with a discarding logger attached.
func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.Nop()
	return WithLogger(context.Background(), &logger)
}

type tarEntry struct {
	name    string
	body    string
	mode    int64
	symlink string
}

// buildTarGz produces an in-memory .tar.gz archive from the given entries.
func buildTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)

	for _, entry := range entries {
		header := &tar.Header{
			Name: entry.name,
			Mode: entry.mode,
			Size: int64(len(entry.body)),
		}
		if entry.mode == 0 {
			header.Mode = 0644
		}
		if entry.symlink != "" {
			header.Typeflag = tar.TypeSymlink
			header.Linkname = entry.symlink
			header.Size = 0
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write tar header: %v", err)
		}
		if entry.symlink == "" {
			if _, err := tarWriter.Write([]byte(entry.body)); err != nil {
				t.Fatalf("failed to write tar body: %v", err)
			}
		}
	}

	if err := tarWriter.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}

	return buf.Bytes()
}

// writeScript drops an executable shell script into dir.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("failed to write script %s: %v", name, err)
	}
	return path
}
