package object

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"
	"time"

	. "github.com/ZenLiuCN/reload"
	"github.com/ZenLiuCN/fn"
	"github.com/pkujhd/goloader"
)

// ErrStripped the host executable has no symbol table, so its variables cannot be linked into a module.
var ErrStripped = errors.New("host executable has no symbol table")

var (
	gob     map[string]uintptr
	gobOnce sync.Once
	gobErr  error
)

// globals registers the symbols of the host executable once.
//
// Functions and types are found in the runtime module data, variables only in the symbol table
// of the executable file.
func globals() (map[string]uintptr, error) {
	gobOnce.Do(func() {
		gob = make(map[string]uintptr)
		if gobErr = goloader.RegSymbol(gob); gobErr != nil {
			return
		}
		if _, ok := gob[goloader.OsStdout]; !ok {
			exe, _ := os.Executable()
			gobErr = fmt.Errorf("%w: %s", ErrStripped, exe)
			return
		}
		// types crossing the module boundary must resolve to the host's type descriptors
		var (
			s State
			i Instance
			v View
			w Widget
			e Event
			c CreateFunc
			d DestroyFunc
		)
		goloader.RegTypes(gob, &s, &i, &v, &w, &e, &c, &d, time.Now, Text, Button)
	})
	return gob, gobErr
}

// Symbolized reports whether the host executable carries the symbol table the linker needs.
func Symbolized() bool {
	_, err := globals()
	return err == nil
}

// NewSymbols create a symbol table holding the host's global symbols.
// Every linked image gets its own table so symbols of old images never leak into new ones.
func NewSymbols() (map[string]uintptr, error) {
	g, err := globals()
	if err != nil {
		return nil, err
	}
	return maps.Clone(g), nil
}

// UseGlobalPath registers symbols of another executable or shared object into the global table.
func UseGlobalPath(p string) (err error) {
	var g map[string]uintptr
	if g, err = globals(); err != nil {
		return
	}
	return goloader.RegSymbolWithPath(g, p)
}

// UseGlobalTypes registers types and functions of values into the global table.
// Passing a function also keeps it linked into the host.
func UseGlobalTypes(p ...any) (err error) {
	var g map[string]uintptr
	if g, err = globals(); err != nil {
		return
	}
	goloader.RegTypes(g, p...)
	return
}

// Symbols dump the names of global symbols.
func Symbols() []string {
	g, err := globals()
	if err != nil {
		return nil
	}
	return fn.MapKeys(g)
}
