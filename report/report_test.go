package report

import (
	"errors"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"silent", LogLevelSilent},
		{"error", LogLevelError},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"verbose", LogLevelVerbose},
		{"nonsense", LogLevelVerbose},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.name); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestReporterRecordsSilently(t *testing.T) {
	r := NewReporter(LogLevelSilent)
	r.ReportInfo("Loop", "loop %s has %d iterations", "l0", 4)
	r.ReportWarning("Config", "limit is large")
	r.ReportError("Schedule", errors.New("bad"))

	diags := r.Diagnostics()
	if len(diags) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(diags))
	}
	if diags[0].Severity != SevInfo || diags[0].Message != "loop l0 has 4 iterations" {
		t.Errorf("unexpected first diagnostic: %+v", diags[0])
	}
	if !r.AnyErrors() || r.ErrorCount() != 1 || r.WarningCount() != 1 {
		t.Errorf("unexpected counts: errors=%d warnings=%d", r.ErrorCount(), r.WarningCount())
	}
}

func raiseICE() (err error) {
	defer CatchErrors(&err)
	ICEAt("mux#3", "select %d out of range", 5)
	return nil
}

func raisePlain() (err error) {
	defer CatchErrors(&err)
	panic("boom")
}

func TestCatchErrors(t *testing.T) {
	err := raiseICE()
	var ierr *InternalError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected an internal error, got %v", err)
	}
	if ierr.Node != "mux#3" || !strings.Contains(err.Error(), "select 5 out of range") {
		t.Errorf("unexpected error: %v", err)
	}

	if err := raisePlain(); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected wrapped panic value, got %v", err)
	}
}

func TestPhaseHoldsInfoMessages(t *testing.T) {
	r := NewReporter(LogLevelVerbose)

	r.BeginPhase("Optimizing")
	r.ReportInfo("Loop", "loop %s unrolled", "l0")
	r.EndPhase(true)

	r.BeginPhase("Scheduling")
	r.EndPhase(false)
	r.EndPhase(true)

	if diags := r.Diagnostics(); len(diags) != 1 || diags[0].Message != "loop l0 unrolled" {
		t.Errorf("unexpected diagnostics: %+v", diags)
	}
}
