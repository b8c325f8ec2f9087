package check

import (
	"fmt"
	"io"
)

// Sink accumulates findings for one checker run, the way chkregf's own
// per-finding printf calls did, just routed through a typed severity
// instead of an ad-hoc string prefix. It never aborts a run itself; callers
// decide when a finding is fatal.
type Sink struct {
	w       io.Writer
	hasErr  bool
	nErrors int
	nWarn   int
}

// NewSink wraps w as a findings sink.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Errorf records a structural finding and sets the run's error flag.
func (s *Sink) Errorf(format string, args ...any) {
	s.hasErr = true
	s.nErrors++
	fmt.Fprintf(s.w, "Error: "+format+"\n", args...)
}

// Warningf records a non-fatal advisory. It never sets the error flag.
func (s *Sink) Warningf(format string, args ...any) {
	s.nWarn++
	fmt.Fprintf(s.w, "Warning: "+format+"\n", args...)
}

// Debugf records a debug-level trace line.
func (s *Sink) Debugf(format string, args ...any) {
	fmt.Fprintf(s.w, "DEBUG: "+format+"\n", args...)
}

// Banner writes a pass-separator line ("Pass 1:", "Pass 2:", "Pass 3:").
func (s *Sink) Banner(name string) {
	fmt.Fprintf(s.w, "%s:\n", name)
}

// HasError reports whether any Errorf call has occurred so far.
func (s *Sink) HasError() bool {
	return s.hasErr
}

// Summarize writes the run's closing line per spec §4.7/§6.
func (s *Sink) Summarize() {
	if s.hasErr {
		fmt.Fprintln(s.w, "Errors encountered")
		return
	}
	fmt.Fprintln(s.w, "Done checking, no errors found.")
}

// AbsOffset translates a data-space offset (relative to byte 0x1000) into
// an absolute file offset, the form every finding line reports.
func AbsOffset(dataSpaceOffset int64) int64 {
	return dataSpaceOffset + hiveDataBase
}
