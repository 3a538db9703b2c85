package reload

import (
	"os"
	"time"
)

// Monitor reports when the artifact at Path is newer than the last acknowledged build.
//
// Poll never moves the baseline, only Acknowledge does, so an unacknowledged change keeps signalling.
type Monitor struct {
	Path      string
	lastKnown time.Time
	stat      func(string) (os.FileInfo, error)
}

// NewMonitor create a Monitor for path with baseline as last known modification time.
func NewMonitor(path string, baseline time.Time) *Monitor {
	return &Monitor{Path: path, lastKnown: baseline, stat: os.Stat}
}

// Poll reports whether a reload is needed. An unreadable artifact is treated as unchanged.
func (m *Monitor) Poll() bool {
	si, err := m.stat(m.Path)
	if err != nil {
		return false
	}
	return si.ModTime().After(m.lastKnown)
}

// Acknowledge records t as acted on. An older t never moves the baseline back.
func (m *Monitor) Acknowledge(t time.Time) {
	if t.After(m.lastKnown) {
		m.lastKnown = t
	}
}

// LastKnown returns the baseline.
func (m *Monitor) LastKnown() time.Time {
	return m.lastKnown
}
