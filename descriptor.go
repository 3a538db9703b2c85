package reload

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// VersionLayout formats the modification time of an artifact into a versioned copy suffix.
const VersionLayout = "2006-01-02_15-04-05"

// Descriptor is the static identity of a loadable module.
type Descriptor struct {
	Name          string //logical name, also the artifact base name
	Path          string //canonical build output
	Package       string //package path used to link the module and qualify its symbols
	CreateSymbol  string
	DestroySymbol string
}

// NewDescriptor describes module name built at <root>/<profile>/<name>.<ext>.
func NewDescriptor(root, profile, name, ext, pkg, create, destroy string) Descriptor {
	if pkg == "" {
		pkg = "main"
	}
	return Descriptor{
		Name:          name,
		Path:          ArtifactPath(root, profile, name, ext),
		Package:       pkg,
		CreateSymbol:  create,
		DestroySymbol: destroy,
	}
}

// Ext returns the artifact extension without the dot.
func (d Descriptor) Ext() string {
	return strings.TrimPrefix(filepath.Ext(d.Path), ".")
}

// Qualify returns the package qualified name of a symbol.
func (d Descriptor) Qualify(sym string) string {
	if strings.IndexByte(sym, '.') < 0 {
		pkg := d.Package
		if pkg == "" {
			pkg = "main"
		}
		return pkg + "." + sym
	}
	return sym
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%s)", d.Name, d.Path)
}

// ArtifactPath joins the build root, profile directory and the artifact file name.
func ArtifactPath(root, profile, name, ext string) string {
	return filepath.Join(root, profile, name+"."+ext)
}

// Profile returns the build profile directory name.
func Profile(debug bool) string {
	if debug {
		return "debug"
	}
	return "release"
}

// PlatformExtension returns the shared library extension for goos.
func PlatformExtension(goos string) string {
	switch goos {
	case "windows":
		return "dll"
	case "darwin", "ios":
		return "dylib"
	default:
		return "so"
	}
}

// HostExtension is PlatformExtension of the running OS.
func HostExtension() string {
	return PlatformExtension(runtime.GOOS)
}

// VersionedPath returns the path of the n-th copy of path made for an artifact modified at t.
// n == 0 produces the plain <name>_<timestamp>.<ext> form.
func VersionedPath(path string, t time.Time, n int) string {
	dir, file := filepath.Split(path)
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(file, ext)
	suffix := t.UTC().Format(VersionLayout)
	if n > 0 {
		suffix = fmt.Sprintf("%s_%d", suffix, n)
	}
	return filepath.Join(dir, base+"_"+suffix+ext)
}
