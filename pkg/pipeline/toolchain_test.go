package pipeline

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestShellRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts need a POSIX shell")
	}

	dir := t.TempDir()

	t.Run("successful_command", func(t *testing.T) {
		runner := newShellRunner(dir)
		if err := runner.run(testContext(t), "true"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("failing_command", func(t *testing.T) {
		runner := newShellRunner(dir)
		if err := runner.run(testContext(t), "exit 3"); err == nil {
			t.Error("expected error for failing command")
		}
	})

	t.Run("runs_in_directory", func(t *testing.T) {
		runner := newShellRunner(dir)
		if err := runner.run(testContext(t), "echo marker > probe.txt"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "probe.txt")); err != nil {
			t.Errorf("command did not run in the runner directory: %v", err)
		}
	})

	t.Run("env_injection", func(t *testing.T) {
		runner := newShellRunner(dir)
		runner.env["PROBE_VALUE"] = "42"
		if err := runner.run(testContext(t), `test "$PROBE_VALUE" = 42`); err != nil {
			t.Errorf("environment variable not visible: %v", err)
		}
	})
}

func TestConfigure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts need a POSIX shell")
	}

	t.Run("first_attempt_succeeds", func(t *testing.T) {
		sourceDir := t.TempDir()
		writeScript(t, sourceDir, "configure", "exit 0")

		recipe := DefaultRecipe()
		err := configure(testContext(t), recipe, sourceDir, filepath.Join(sourceDir, "prefix"))
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("fallback_attempt_succeeds", func(t *testing.T) {
		sourceDir := t.TempDir()
		// fails unless the fallback flag set is present
		writeScript(t, sourceDir, "configure", `
for arg in "$@"; do
  if [ "$arg" = "--disable-cups" ]; then
    exit 0
  fi
done
exit 1`)

		recipe := DefaultRecipe()
		err := configure(testContext(t), recipe, sourceDir, filepath.Join(sourceDir, "prefix"))
		if err != nil {
			t.Errorf("fallback attempt should have succeeded: %v", err)
		}
	})

	t.Run("all_attempts_fail", func(t *testing.T) {
		sourceDir := t.TempDir()
		writeScript(t, sourceDir, "configure", "echo missing libfoo >&2\nexit 1")

		recipe := DefaultRecipe()
		err := configure(testContext(t), recipe, sourceDir, filepath.Join(sourceDir, "prefix"))
		if err == nil {
			t.Fatal("expected error when every attempt fails")
		}
		if KindOf(err) != KindToolchain {
			t.Errorf("KindOf() = %v, want %v", KindOf(err), KindToolchain)
		}
	})

	t.Run("no_attempts_configured", func(t *testing.T) {
		recipe := DefaultRecipe()
		recipe.Configure = nil

		err := configure(testContext(t), recipe, t.TempDir(), "prefix")
		if err == nil {
			t.Fatal("expected error for empty attempt list")
		}
		if KindOf(err) != KindToolchain {
			t.Errorf("KindOf() = %v, want %v", KindOf(err), KindToolchain)
		}
	})
}

func TestBuild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts need a POSIX shell")
	}

	t.Run("commands_run_in_order", func(t *testing.T) {
		sourceDir := t.TempDir()

		recipe := DefaultRecipe()
		recipe.Build = []string{"echo one >> order.txt", "echo two >> order.txt"}

		err := build(testContext(t), recipe, sourceDir, "prefix", 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(filepath.Join(sourceDir, "order.txt"))
		if err != nil {
			t.Fatalf("failed to read order file: %v", err)
		}
		if string(content) != "one\ntwo\n" {
			t.Errorf("unexpected command order: %q", string(content))
		}
	})

	t.Run("failing_command", func(t *testing.T) {
		recipe := DefaultRecipe()
		recipe.Build = []string{"exit 2"}

		err := build(testContext(t), recipe, t.TempDir(), "prefix", 2)
		if err == nil {
			t.Fatal("expected error for failing build command")
		}
		if KindOf(err) != KindBuild {
			t.Errorf("KindOf() = %v, want %v", KindOf(err), KindBuild)
		}
	})

	t.Run("jobs_placeholder_expanded", func(t *testing.T) {
		sourceDir := t.TempDir()

		recipe := DefaultRecipe()
		recipe.Build = []string{"echo {JOBS} > jobs.txt"}

		err := build(testContext(t), recipe, sourceDir, "prefix", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(filepath.Join(sourceDir, "jobs.txt"))
		if err != nil {
			t.Fatalf("failed to read jobs file: %v", err)
		}
		if string(content) != "5\n" {
			t.Errorf("jobs placeholder not expanded: %q", string(content))
		}
	})
}

func TestCheckToolchain(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts need a POSIX shell")
	}

	t.Run("all_tools_present", func(t *testing.T) {
		binDir := t.TempDir()
		for _, name := range []string{"gcc", "make", "autoconf"} {
			writeScript(t, binDir, name, "exit 0")
		}
		t.Setenv("PATH", binDir)

		if err := checkToolchain(testContext(t)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing_compiler", func(t *testing.T) {
		binDir := t.TempDir()
		writeScript(t, binDir, "make", "exit 0")
		t.Setenv("PATH", binDir)

		err := checkToolchain(testContext(t))
		if err == nil {
			t.Fatal("expected error when the compiler is missing")
		}
		if KindOf(err) != KindToolchain {
			t.Errorf("KindOf() = %v, want %v", KindOf(err), KindToolchain)
		}
	})

	t.Run("optional_tool_missing_is_fine", func(t *testing.T) {
		binDir := t.TempDir()
		writeScript(t, binDir, "cc", "exit 0")
		writeScript(t, binDir, "make", "exit 0")
		t.Setenv("PATH", binDir)

		if err := checkToolchain(testContext(t)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestLookupToolPreferenceOrder(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts need a POSIX shell")
	}

	binDir := t.TempDir()
	writeScript(t, binDir, "cc", "exit 0")
	t.Setenv("PATH", binDir)

	path, found := LookupTool(Tool{Names: []string{"gcc", "cc"}})
	if !found {
		t.Fatal("cc should have been found")
	}
	if filepath.Base(path) != "cc" {
		t.Errorf("unexpected tool path: %s", path)
	}
}

func TestTailLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"shorter_than_limit", "a\nb\n", 5, "a\nb"},
		{"longer_than_limit", "a\nb\nc\nd\n", 2, "c\nd"},
		{"empty", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tailLines(tt.input, tt.n); got != tt.want {
				t.Errorf("tailLines() = %q, want %q", got, tt.want)
			}
		})
	}
}
