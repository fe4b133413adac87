// Package pipeline implements the sequential build pipeline: fetch the
// pinned Ghostscript source release, extract it, run its configure/make
// toolchain through a portable shell runtime and install the produced
// binary. Every stage failure carries a Kind tag so callers can report
// what went wrong without retrying anything.
package pipeline
