package reload

import (
	"fmt"
	"sync"
)

// StaticImage serves entry points linked into the host executable.
type StaticImage struct {
	mu      sync.Mutex
	symbols map[string]any
	closed  bool
}

// NewStaticImage create an image exporting the given create and destroy entry points.
func NewStaticImage(symbols map[string]any) *StaticImage {
	m := make(map[string]any, len(symbols))
	for k, v := range symbols {
		m[k] = v
	}
	return &StaticImage{symbols: m}
}

func (s *StaticImage) Lookup(sym string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	v, ok := s.symbols[sym]
	return v, ok
}

func (s *StaticImage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("static image already closed")
	}
	s.closed = true
	return nil
}

// StaticOpener returns a fresh StaticImage over the same symbols for every artifact.
// The artifact file is still copied by the loader, so change detection works as usual.
type StaticOpener struct {
	Symbols   map[string]any
	Extension string
}

func (o StaticOpener) Ext() string {
	if o.Extension == "" {
		return HostExtension()
	}
	return o.Extension
}

func (o StaticOpener) Open(string, string) (Image, error) {
	return NewStaticImage(o.Symbols), nil
}
