// Package check implements the three-pass regf integrity checker: header
// validation, a sequential bin/cell scan, and a recursive tree walk.
package check

import (
	"github.com/wbaan/regfcheck/internal/source"
)

// Result carries the exit code the CLI should use (spec §6): 0 when the
// hive is well-formed, 1 when any pass reported a structural error
// (including a fatal Pass 1 failure, which aborts Pass 2/3 entirely). Exit
// codes 2 (open failure) and 3 (out-of-memory at startup) are the CLI's own
// concern and never originate here.
type Result struct {
	ExitCode int
}

// Run executes all three passes against src in order, writing every finding
// to sink. Pass 1 failing is fatal to the run: Pass 2 and Pass 3 both
// require a validated header (a root offset and a data size) to walk from,
// so neither runs when Pass 1 reports a hard error. Pass 2 and Pass 3
// otherwise always both run, regardless of what either finds.
func Run(src *source.Source, sink *Sink) Result {
	hdr, ok := ValidateHeader(src, sink)
	if !ok {
		sink.Summarize()
		return Result{ExitCode: 1}
	}

	ScanBins(src, hdr, sink)
	ValidateTree(src, hdr, sink)

	sink.Summarize()
	if sink.HasError() {
		return Result{ExitCode: 1}
	}
	return Result{ExitCode: 0}
}
