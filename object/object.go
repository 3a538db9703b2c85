// Package object is the reload backend linking relocatable go object files at runtime with [goloader].
//
// Unlike go plugins, a linked object can be unloaded, so every reload really releases the old code.
//
// # Requirements
//
//  1. The go sdk must be prepared with `reload prepare`, it copies $GOROOT/src/cmd/internal to
//     $GOROOT/src/cmd/objfile. Without it this package does not compile.
//  2. goloader builds on go1.23 only in this module: go.mod requires go1.23 and goloader excludes go1.24 and later.
//  3. The host executable must keep its symbol table. `go build` keeps it unless `-ldflags=-s` is given,
//     `go run` and `go test` strip it.
//  4. Every function and variable the module uses must be linked into the host.
//     Register the ones the host never references with [UseGlobalTypes].
//
// [goloader]: https://github.com/pkujhd/goloader
package object

import (
	"fmt"
	"os"
	"unsafe"

	. "github.com/ZenLiuCN/reload"
	"github.com/pkujhd/goloader"
	"github.com/rs/zerolog/log"
)

// Opener links Go relocatable object files (extension .o) or archives.
type Opener struct {
	Debug bool
	Sync  bool //sync stdout before unloading so buffered output of the module is not lost
}

func (o Opener) Ext() string {
	return "o"
}

func (o Opener) Open(path, pkg string) (Image, error) {
	sym, err := NewSymbols()
	if err != nil {
		return nil, fmt.Errorf("register host symbols: %w", err)
	}
	if pkg == "" {
		pkg = "main"
	}
	linker, err := goloader.ReadObj(path, pkg)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", path, err)
	}
	if o.Debug {
		log.Debug().Str("path", path).Str("pkg", pkg).Msg("create linker")
	}
	module, err := goloader.Load(linker, sym)
	if err != nil {
		if missing := goloader.UnresolvedSymbols(linker, sym); len(missing) > 0 {
			return nil, fmt.Errorf("link %s: %w (unresolved %v)", path, err, missing)
		}
		return nil, fmt.Errorf("link %s: %w", path, err)
	}
	if o.Debug {
		log.Debug().Str("path", path).Int("symbols", len(module.Syms)).Msg("create module")
	}
	return &object{path: path, module: module, sync: o.Sync, debug: o.Debug}, nil
}

type object struct {
	path    string
	module  *goloader.CodeModule
	entries []*uintptr
	sync    bool
	debug   bool
}

func (s *object) Lookup(sym string) (v any, ok bool) {
	if s.module == nil {
		return
	}
	var p uintptr
	p, ok = s.module.Syms[sym]
	if !ok {
		return
	}
	if s.debug {
		log.Debug().Str("symbol", sym).Msgf("found symbol: %x", p)
	}
	// the word must stay reachable while the func value built from it is in use
	w := new(uintptr)
	*w = p
	s.entries = append(s.entries, w)
	return Sym(unsafe.Pointer(w)), true
}

func (s *object) Close() error {
	if s.module == nil {
		return nil
	}
	if s.debug {
		log.Debug().Str("path", s.path).Msg("free module")
	}
	if s.sync {
		_ = os.Stdout.Sync()
	}
	s.module.Unload()
	s.module = nil
	s.entries = nil
	return nil
}

// Inspect display symbols inside an object file
func Inspect(file, pkg string) ([]string, error) {
	return goloader.Parse(file, pkg)
}
