package pipeline

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Recipe pins a Ghostscript release and describes how to turn it into a
// standalone binary. The zero value is not usable, start from DefaultRecipe
// and override fields through a YAML file if needed.
type Recipe struct {
	// Version is the upstream release version, e.g. "10.05.1".
	Version string `yaml:"version"`
	// URL is the download location of the source tarball. The {VERSION}
	// and {TAG} placeholders are expanded before the download starts.
	URL string `yaml:"url"`
	// Sha256 is the expected digest of the tarball. Leave empty to skip
	// verification.
	Sha256 string `yaml:"sha256"`
	// SourceDir is the name prefix of the directory the tarball extracts
	// to. The pipeline picks the first directory matching it.
	SourceDir string `yaml:"sourceDir"`
	// Configure holds one flag set per configure attempt. Attempts run in
	// order, the first one that exits 0 wins. --prefix is appended by the
	// pipeline.
	Configure []string `yaml:"configure"`
	// Build holds the command lines that run after a successful configure.
	// {JOBS} and {PREFIX} placeholders are expanded.
	Build []string `yaml:"build"`
	// Artifact is the path of the produced binary relative to the install
	// prefix.
	Artifact string `yaml:"artifact"`
}

// DefaultRecipe returns the built-in pinned Ghostscript release.
func DefaultRecipe() Recipe {
	return Recipe{
		Version:   "10.05.1",
		URL:       "https://github.com/ArtifexSoftware/ghostpdl-downloads/releases/download/gs{TAG}/ghostscript-{VERSION}.tar.gz",
		SourceDir: "ghostscript",
		Configure: []string{
			"--disable-dynamic",
			"--disable-dynamic --disable-cups --without-x",
		},
		Build: []string{
			"make -j{JOBS}",
			"make install",
		},
		Artifact: "bin/gs",
	}
}

// LoadRecipe reads a YAML recipe file on top of the defaults. Fields that
// the file doesn't mention keep their default values.
func LoadRecipe(path string) (Recipe, error) {
	recipe := DefaultRecipe()

	data, err := os.ReadFile(path)
	if err != nil {
		return recipe, eris.Wrapf(err, "Could not open file %s.", path)
	}

	err = yaml.Unmarshal(data, &recipe)
	if err != nil {
		return recipe, eris.Wrapf(err, "Failed to parse %s.", path)
	}

	return recipe, nil
}

var varMatcher = regexp.MustCompile(`\{([A-Z0-9_]+)\}`)

func expandVars(value string, vars map[string]string) string {
	return varMatcher.ReplaceAllStringFunc(value, func(varName string) string {
		result, ok := vars[varName[1:len(varName)-1]]
		if ok {
			return result
		}
		return ""
	})
}

// releaseTag derives the GitHub release tag from the version, e.g.
// "10.05.1" becomes "10051".
func (r Recipe) releaseTag() string {
	return strings.ReplaceAll(r.Version, ".", "")
}

// DownloadURL returns the URL with all placeholders expanded.
func (r Recipe) DownloadURL() string {
	return expandVars(r.URL, map[string]string{
		"VERSION": r.Version,
		"TAG":     r.releaseTag(),
	})
}

func (r Recipe) buildCommands(jobs int, prefix string) []string {
	vars := map[string]string{
		"JOBS":    strconv.Itoa(jobs),
		"PREFIX":  prefix,
		"VERSION": r.Version,
	}

	result := make([]string, len(r.Build))
	for idx, line := range r.Build {
		result[idx] = expandVars(line, vars)
	}
	return result
}
