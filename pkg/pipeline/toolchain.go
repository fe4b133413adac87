package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Tool describes one external build tool the pipeline shells out to.
type Tool struct {
	// Names lists the binaries that can satisfy this tool, in order of
	// preference.
	Names []string
	// Required tools abort the run when missing, the rest only log a
	// warning.
	Required bool
	// Hint tells the user how to install the tool.
	Hint string
}

// RequiredTools returns the toolchain the build depends on. The configure
// script ships with the tarball, so autoconf itself is optional.
func RequiredTools() []Tool {
	return []Tool{
		{Names: []string{"gcc", "cc", "clang"}, Required: true, Hint: installHint},
		{Names: []string{"make"}, Required: true, Hint: installHint},
		{Names: []string{"autoconf"}, Required: false, Hint: installHint},
	}
}

const installHint = "macOS: xcode-select --install / Debian & Ubuntu: sudo apt-get install build-essential autoconf"

// LookupTool resolves a tool against PATH and returns the binary that
// satisfies it.
func LookupTool(tool Tool) (string, bool) {
	for _, name := range tool.Names {
		path, err := exec.LookPath(name)
		if err == nil {
			return path, true
		}
	}
	return "", false
}

// checkToolchain verifies that the required build tools exist on PATH
// before anything is downloaded.
func checkToolchain(ctx context.Context) error {
	missing := make([]string, 0)
	for _, tool := range RequiredTools() {
		path, found := LookupTool(tool)
		if found {
			log(ctx).Debug().Str("tool", tool.Names[0]).Str("path", path).Msg("tool found")
			continue
		}

		if tool.Required {
			missing = append(missing, tool.Names[0])
		} else {
			log(ctx).Warn().Str("tool", tool.Names[0]).Msg("optional tool not found")
		}
	}

	if len(missing) > 0 {
		return newErrorf(KindToolchain, "Missing required tools: %s (%s)", strings.Join(missing, ", "), installHint)
	}

	return nil
}

// shellRunner executes recipe command lines through a POSIX shell runtime
// so the same recipes behave identically across platforms.
type shellRunner struct {
	dir    string
	env    map[string]string
	stdout io.Writer
	stderr io.Writer
}

func newShellRunner(dir string) *shellRunner {
	return &shellRunner{
		dir:    dir,
		env:    make(map[string]string),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func (s *shellRunner) environ() expand.Environ {
	envVars := os.Environ()
	for name, value := range s.env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", name, value))
	}

	return expand.ListEnviron(envVars...)
}

// run parses and executes a single command line. The runner behaves like
// `sh -e`: the first failing statement aborts the line.
func (s *shellRunner) run(ctx context.Context, line string) error {
	runner, err := interp.New(
		interp.Dir(s.dir),
		interp.Env(s.environ()),
		interp.StdIO(nil, s.stdout, s.stderr),
		interp.Params("-e"),
	)
	if err != nil {
		return wrapError(KindToolchain, err, "Failed to initialize shell runner")
	}

	parser := syntax.NewParser()
	file, err := parser.Parse(strings.NewReader(line), "recipe")
	if err != nil {
		return wrapError(KindToolchain, err, "Failed to parse command %s", line)
	}

	for _, stmt := range file.Stmts {
		err = runner.Run(ctx, stmt)
		if err != nil {
			return err
		}

		if runner.Exited() {
			return nil
		}
	}

	return nil
}

// configure runs the recipe's configure attempts inside the source
// directory. The first attempt that exits 0 wins; if every attempt fails
// the captured output of the last one is part of the returned error.
func configure(ctx context.Context, recipe Recipe, sourceDir, prefix string) error {
	var lastOutput string
	var lastErr error

	for idx, flags := range recipe.Configure {
		line := strings.TrimSpace(fmt.Sprintf("./configure %s --prefix=%s", flags, prefix))
		log(ctx).Info().Int("attempt", idx+1).Msg(line)

		output := bytes.Buffer{}
		runner := newShellRunner(sourceDir)
		runner.stdout = io.MultiWriter(os.Stdout, &output)
		runner.stderr = io.MultiWriter(os.Stderr, &output)

		err := runner.run(ctx, line)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return wrapError(KindToolchain, ctx.Err(), "Configure interrupted")
		}

		log(ctx).Warn().Int("attempt", idx+1).Msg("configure attempt failed, trying next")
		lastErr = err
		lastOutput = tailLines(output.String(), 20)
	}

	if lastErr == nil {
		return newError(KindToolchain, "Recipe contains no configure attempts")
	}

	return wrapError(KindToolchain, lastErr, "All configure attempts failed, last output:\n%s", lastOutput)
}

// build runs the recipe's build commands (make and make install by
// default) inside the source directory.
func build(ctx context.Context, recipe Recipe, sourceDir, prefix string, jobs int) error {
	runner := newShellRunner(sourceDir)

	for _, line := range recipe.buildCommands(jobs, prefix) {
		log(ctx).Info().Msg(line)

		err := runner.run(ctx, line)
		if err != nil {
			return wrapError(KindBuild, err, "Build command failed: %s", line)
		}
	}

	return nil
}

func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
