package storage

import (
	"testing"
)

func TestProgressReporterReportsTotals(t *testing.T) {
	var calls [][2]int64
	p := newProgressReporter(10, func(done, total int64) {
		calls = append(calls, [2]int64{done, total})
	})
	p.report(0)
	if _, err := p.Write(make([]byte, 10)); err != nil {
		t.Fatalf("write: %v", err)
	}
	p.flush()

	if len(calls) != 3 {
		t.Fatalf("expected 3 callbacks, got %d", len(calls))
	}
	if last := calls[len(calls)-1]; last != [2]int64{10, 10} {
		t.Fatalf("unexpected final progress %v", last)
	}
}

func TestProgressReporterNilWithoutCallback(t *testing.T) {
	if p := newProgressReporter(10, nil); p != nil {
		t.Fatalf("expected nil reporter")
	}
}
