package reload

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMonitor(t *testing.T) {
	p := filepath.Join(t.TempDir(), "counter.o")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	touch := func(at time.Time) {
		t.Helper()
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(p, at, at); err != nil {
			t.Fatal(err)
		}
	}
	m := NewMonitor(p, base)
	if m.Poll() {
		t.Fatal("signal for a missing artifact")
	}
	touch(base)
	if m.Poll() {
		t.Fatal("signal for an unchanged artifact")
	}
	next := base.Add(time.Second)
	touch(next)
	if !m.Poll() || !m.Poll() {
		t.Fatal("pending change must signal until acknowledged")
	}
	m.Acknowledge(next)
	for i := 0; i < 3; i++ {
		if m.Poll() {
			t.Fatalf("poll %d re-signalled an acknowledged change", i)
		}
	}
	m.Acknowledge(base)
	if !m.LastKnown().Equal(next) {
		t.Errorf("baseline moved back to %v", m.LastKnown())
	}
	// older timestamps, e.g. a restored artifact, never signal
	touch(base.Add(-time.Hour))
	if m.Poll() {
		t.Error("signal for an older artifact")
	}
}

func TestMonitorUnreadable(t *testing.T) {
	m := NewMonitor("unused", time.Time{})
	m.stat = func(string) (os.FileInfo, error) { return nil, os.ErrPermission }
	if m.Poll() {
		t.Error("unreadable artifact must not signal")
	}
}
