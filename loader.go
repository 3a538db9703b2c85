package reload

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Module is a successfully created module instance and the image backing it.
//
// The image outlives the instance: release destroys the instance strictly before closing the image.
type Module struct {
	Path     string    //versioned copy the image was loaded from
	Modified time.Time //artifact modification time observed by the load
	image    Image
	instance *Instance
	destroy  DestroyFunc
	released bool
}

// Instance returns the capability table, nil after release.
func (m *Module) Instance() *Instance {
	if m.released {
		return nil
	}
	return m.instance
}

// release destroys the instance then closes the image. Only the first call has an effect.
func (m *Module) release() (err error) {
	if m.released {
		return nil
	}
	m.released = true
	derr := call(func() { m.destroy(m.instance) })
	m.instance = nil
	m.destroy = nil
	err = errors.Join(derr, m.image.Close())
	m.image = nil
	return
}

// Loader loads disposable versioned copies of a module artifact.
type Loader struct {
	Opener Opener
	stat   func(string) (os.FileInfo, error)
}

// NewLoader create a Loader using opener to load images.
func NewLoader(opener Opener) *Loader {
	return &Loader{Opener: opener, stat: os.Stat}
}

// Load copies the artifact of d, loads the copy, resolves both entry points and creates an instance
// from state. On failure nothing but the copied file is retained.
func (l *Loader) Load(d Descriptor, state State) (m *Module, err error) {
	fail := func(path string, modified time.Time, err error) (*Module, error) {
		return nil, &LoadError{Module: d.Name, Path: path, Modified: modified, Err: err}
	}
	si, err := l.stat(d.Path)
	if err != nil {
		return fail(d.Path, time.Time{}, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err))
	}
	modified := si.ModTime()
	if modified.IsZero() {
		return fail(d.Path, modified, ErrTimestampUnavailable)
	}
	dest, err := CopyVersioned(d.Path, modified, si)
	if err != nil {
		return fail(dest, modified, fmt.Errorf("%w: %w", ErrCopyFailed, err))
	}
	log.Trace().Str("from", d.Path).Str("to", dest).Msg("copy artifact")
	img, err := l.Opener.Open(dest, d.Package)
	if err != nil {
		return fail(dest, modified, fmt.Errorf("%w: %w", ErrLoadFailed, err))
	}
	create, err := resolve[CreateFunc](img, d.Qualify(d.CreateSymbol))
	if err == nil && create == nil {
		err = &SymbolNotFoundError{Name: d.Qualify(d.CreateSymbol), Reason: "nil func"}
	}
	if err != nil {
		closeImage(img, dest)
		return fail(dest, modified, err)
	}
	destroy, err := resolve[DestroyFunc](img, d.Qualify(d.DestroySymbol))
	if err == nil && destroy == nil {
		err = &SymbolNotFoundError{Name: d.Qualify(d.DestroySymbol), Reason: "nil func"}
	}
	if err != nil {
		closeImage(img, dest)
		return fail(dest, modified, err)
	}
	var instance *Instance
	if err = call(func() { instance = create(state) }); err != nil {
		closeImage(img, dest)
		return fail(dest, modified, fmt.Errorf("%w: %w", ErrConstructionFailed, err))
	}
	if instance == nil {
		closeImage(img, dest)
		return fail(dest, modified, ErrConstructionFailed)
	}
	if !instance.valid() {
		// a non-nil instance is owned by us, hand it back before dropping the image
		if derr := call(func() { destroy(instance) }); derr != nil {
			log.Warn().Err(derr).Str("path", dest).Msg("destroy rejected instance")
		}
		closeImage(img, dest)
		return fail(dest, modified, fmt.Errorf("%w: abi %d, want %d", ErrNullInstance, instance.ABI, ABIVersion))
	}
	return &Module{
		Path:     dest,
		Modified: modified,
		image:    img,
		instance: instance,
		destroy:  destroy,
	}, nil
}

// call runs module code, a panic becomes the returned error.
func call(f func()) (err error) {
	defer func() {
		switch r := recover().(type) {
		case nil:
		case error:
			err = fmt.Errorf("module panic: %w", r)
		default:
			err = fmt.Errorf("module panic: %v", r)
		}
	}()
	f()
	return
}

func closeImage(img Image, path string) {
	if err := img.Close(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("close image")
	}
}
