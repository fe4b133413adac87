package pipeline

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
)

// Kind classifies pipeline failures. Every fatal error returned by Run
// carries exactly one kind; CleanupWarning is only ever logged.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork covers unreachable URLs, non-200 responses, empty
	// downloads and checksum mismatches.
	KindNetwork
	// KindArchive covers corrupt or unsupported archives and archives
	// that don't contain the expected source tree.
	KindArchive
	// KindToolchain covers missing build tools and configure failures.
	KindToolchain
	// KindBuild covers non-zero exits from make.
	KindBuild
	// KindMissingArtifact means the build reported success but the
	// expected binary is not where the recipe says it should be.
	KindMissingArtifact
	// KindCleanup is never fatal, it only shows up in log output.
	KindCleanup
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindArchive:
		return "ArchiveError"
	case KindToolchain:
		return "ToolchainError"
	case KindBuild:
		return "BuildError"
	case KindMissingArtifact:
		return "MissingArtifactError"
	case KindCleanup:
		return "CleanupWarning"
	default:
		return "UnknownError"
	}
}

// Error is the single error type surfaced by the pipeline.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.cause.Error())
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As checks.
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, cause: eris.New(msg)}
}

func newErrorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, cause: eris.Errorf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, cause: eris.Wrapf(err, format, args...)}
}

// KindOf returns the kind of the first pipeline error in err's chain, or
// KindUnknown if there is none.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnknown
}
