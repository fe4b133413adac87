package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRecipeDownloadURL(t *testing.T) {
	recipe := DefaultRecipe()

	url := recipe.DownloadURL()
	want := "https://github.com/ArtifexSoftware/ghostpdl-downloads/releases/download/gs10051/ghostscript-10.05.1.tar.gz"
	if url != want {
		t.Errorf("DownloadURL() = %q, want %q", url, want)
	}
}

func TestRecipeBuildCommands(t *testing.T) {
	recipe := DefaultRecipe()
	recipe.Build = []string{"make -j{JOBS}", "make install PREFIX={PREFIX}"}

	cmds := recipe.buildCommands(4, "/tmp/prefix")
	if cmds[0] != "make -j4" {
		t.Errorf("unexpected build command: %q", cmds[0])
	}
	if cmds[1] != "make install PREFIX=/tmp/prefix" {
		t.Errorf("unexpected install command: %q", cmds[1])
	}
}

func TestExpandVarsUnknownPlaceholder(t *testing.T) {
	result := expandVars("x-{NOPE}-y", map[string]string{})
	if result != "x--y" {
		t.Errorf("expandVars() = %q", result)
	}
}

func TestLoadRecipeOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipe.yml")
	content := `
version: 9.56.1
sha256: deadbeef
configure:
  - --without-x
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write recipe: %v", err)
	}

	recipe, err := LoadRecipe(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if recipe.Version != "9.56.1" {
		t.Errorf("Version = %q, want 9.56.1", recipe.Version)
	}
	if recipe.Sha256 != "deadbeef" {
		t.Errorf("Sha256 = %q, want deadbeef", recipe.Sha256)
	}
	if len(recipe.Configure) != 1 || recipe.Configure[0] != "--without-x" {
		t.Errorf("Configure = %v", recipe.Configure)
	}

	// fields the file doesn't mention keep their defaults
	if recipe.Artifact != "bin/gs" {
		t.Errorf("Artifact = %q, want bin/gs", recipe.Artifact)
	}
	if !strings.Contains(recipe.DownloadURL(), "9.56.1") {
		t.Errorf("DownloadURL() = %q does not contain the overridden version", recipe.DownloadURL())
	}
}

func TestLoadRecipeMissingFile(t *testing.T) {
	_, err := LoadRecipe(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Error("expected error for missing recipe file")
	}
}
