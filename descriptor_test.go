package reload

import (
	"path/filepath"
	"testing"
	"time"
)

func TestPlatformExtension(t *testing.T) {
	for goos, want := range map[string]string{
		"windows": "dll",
		"darwin":  "dylib",
		"linux":   "so",
		"freebsd": "so",
	} {
		if got := PlatformExtension(goos); got != want {
			t.Errorf("PlatformExtension(%s) = %s, want %s", goos, got, want)
		}
	}
}

func TestNewDescriptor(t *testing.T) {
	d := NewDescriptor("target", Profile(true), "app_core", "so", "", "create_app", "app.destroy_app")
	if want := filepath.Join("target", "debug", "app_core.so"); d.Path != want {
		t.Errorf("path = %s, want %s", d.Path, want)
	}
	if d.Ext() != "so" {
		t.Errorf("ext = %s", d.Ext())
	}
	if got := d.Qualify(d.CreateSymbol); got != "main.create_app" {
		t.Errorf("qualified create = %s", got)
	}
	if got := d.Qualify(d.DestroySymbol); got != "app.destroy_app" {
		t.Errorf("qualified destroy = %s", got)
	}
	if Profile(false) != "release" {
		t.Errorf("release profile = %s", Profile(false))
	}
}

func TestVersionedPath(t *testing.T) {
	at := time.Date(2025, 12, 31, 23, 59, 58, 999, time.FixedZone("x", 3600))
	p := filepath.Join("target", "debug", "app_core.dll")
	tests := []struct {
		n    int
		want string
	}{
		{0, filepath.Join("target", "debug", "app_core_2025-12-31_22-59-58.dll")},
		{3, filepath.Join("target", "debug", "app_core_2025-12-31_22-59-58_3.dll")},
	}
	for _, tt := range tests {
		if got := VersionedPath(p, at, tt.n); got != tt.want {
			t.Errorf("VersionedPath(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
	if VersionedPath(p, at, 0) == VersionedPath(p, at.Add(time.Second), 0) {
		t.Error("different seconds share a versioned path")
	}
}
