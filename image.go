package reload

import (
	"fmt"
	"unsafe"
)

type (
	// Sym is the address of a word holding the entry address of a linked function.
	//
	// A Sym is what a func value is at runtime, so [As] turns it into a callable func.
	Sym uintptr
	// Image is one loaded copy of a module artifact.
	//
	// Values returned by Lookup and everything derived from them are only valid until Close.
	Image interface {
		Lookup(sym string) (v any, ok bool) //v is either a Sym or a typed func value
		Close() error                       //release the image, no symbol may be used after
	}
	// Opener loads an artifact file as an Image.
	Opener interface {
		Open(path string, pkg string) (Image, error)
		Ext() string //artifact extension the opener understands
	}
)

// As convert fetched Sym to contract type, T must be a func type.
func As[T any](ptr Sym) (x T) {
	px := (*T)(unsafe.Pointer(&ptr))
	x = *px
	return
}

// resolve looks up sym in img as a T.
func resolve[T any](img Image, sym string) (x T, err error) {
	v, ok := img.Lookup(sym)
	if !ok {
		err = &SymbolNotFoundError{Name: sym}
		return
	}
	switch f := v.(type) {
	case T:
		x = f
	case Sym:
		if f == 0 {
			err = &SymbolNotFoundError{Name: sym, Reason: "nil address"}
			return
		}
		x = As[T](f)
	default:
		err = &SymbolNotFoundError{Name: sym, Reason: fmt.Sprintf("unexpected type %T", v)}
	}
	return
}
