package reload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZenLiuCN/fn"
	"github.com/rs/zerolog/log"
)

// CopyVersioned copies src beside itself under the first unused versioned name for modified.
//
// The destination is created exclusively, so a name used by any earlier copy is never reused.
// Copies are left on disk after use.
func CopyVersioned(src string, modified time.Time, si fs.FileInfo) (dest string, err error) {
	for n := 0; ; n++ {
		dest = VersionedPath(src, modified, n)
		err = CopyFile(src, dest, si)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return
	}
}

// CopyFile from src to a not yet existing dest with optional src file info
func CopyFile(src string, dest string, si fs.FileInfo) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer fn.IgnoreClose(sf)
	if si == nil {
		if si, err = sf.Stat(); err != nil {
			return
		}
	}
	df, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, si.Mode().Perm())
	if err != nil {
		return err
	}
	_, err = io.Copy(df, sf)
	if cerr := df.Close(); err == nil {
		err = cerr
	}
	return
}

// CopyDir from src to a not yet existing dest with optional src file info
func CopyDir(src string, dest string, si fs.FileInfo) (err error) {
	if si == nil {
		if si, err = os.Stat(src); err != nil {
			return err
		}
	}
	if err = os.MkdirAll(dest, si.Mode().Perm()); err != nil {
		return err
	}
	return filepath.Walk(src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == src {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dp := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(dp, info.Mode().Perm())
		}
		return CopyFile(path, dp, info)
	})
}

// Compile go sources of package pkg into the object file out.
//
// The importcfg is generated next to out and removed afterward unless debug is set.
func Compile(debug bool, pkg, out string, sources []string) (err error) {
	if len(sources) == 0 {
		return fmt.Errorf("missing target sources list")
	}
	if _, err = exec.LookPath("go"); err != nil {
		return fmt.Errorf("missing go sdk: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return
	}
	cfg := out + ".importcfg"
	if err = Imports(debug, cfg, sources); err != nil {
		return fmt.Errorf("generate importcfg: %w", err)
	}
	// write beside the artifact then rename, so a polling host never sees a half written object
	tmp := out + ".tmp"
	cmd := exec.Command("go", append([]string{"tool", "compile", "-importcfg", cfg, "-p", pkg, "-o", tmp}, sources...)...)
	if debug {
		log.Debug().Strs("args", cmd.Args).Msg("execute")
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err = cmd.Run(); err != nil {
		return
	}
	if !debug {
		_ = os.Remove(cfg)
	}
	return os.Rename(tmp, out)
}

// Imports generate import cfg of the sources into file cfg.
func Imports(debug bool, cfg string, f []string) (err error) {
	if debug {
		log.Debug().Strs("sources", f).Msg("resolve imports")
	}
	var out *os.File
	if out, err = os.OpenFile(cfg, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644); err != nil {
		return
	}
	defer fn.IgnoreClose(out)
	cmd := exec.Command("go", append([]string{"list", "-export", "-f", "{{.Imports}}"}, f...)...)
	var bout []byte
	if bout, err = cmd.Output(); err != nil {
		return fmt.Errorf("inspect imports: %w%s", err, stderr(err))
	}
	deps := strings.TrimSpace(string(bout))
	deps = strings.TrimSuffix(strings.TrimPrefix(deps, "["), "]")
	in := strings.Fields(deps)
	if debug {
		log.Debug().Strs("deps", in).Msg("imports")
	}
	cmd = exec.Command("go", append([]string{"list", "-export", "-f", "{{if .Export}}packagefile {{.ImportPath}}={{.Export}}{{end}}", "std"}, in...)...)
	if bout, err = cmd.Output(); err != nil {
		return fmt.Errorf("inspect dependencies: %w%s", err, stderr(err))
	}
	_, err = out.Write(bout)
	return
}

func stderr(err error) string {
	var ee *exec.ExitError
	if errors.As(err, &ee) && len(ee.Stderr) > 0 {
		return "\n" + string(ee.Stderr)
	}
	return ""
}
