package reload_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/reload"
	"github.com/ZenLiuCN/reload/logging"
	"github.com/ZenLiuCN/reload/modules/counter"
)

const (
	buildGood      = "good build"
	buildNoDestroy = "build without destroy"
	buildNull      = "build returning nil"
	buildOldABI    = "build with old abi"
	buildGarbage   = "not an object file"
	buildPanic     = "build panicking on create"
	buildBadExit   = "build panicking on destroy"
)

var t0 = time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)

// journal records entry point calls and image releases in order.
type journal struct {
	calls     []string
	created   int
	destroyed int
	opened    []string
}

func (j *journal) record(format string, args ...any) {
	j.calls = append(j.calls, fmt.Sprintf(format, args...))
}

// builds opens artifacts according to their content, so rewriting the artifact file
// with another content simulates a rebuild.
type builds struct {
	j *journal
}

func (b builds) Ext() string {
	return "o"
}

func (b builds) Open(path, _ string) (reload.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	j := b.j
	j.opened = append(j.opened, path)
	gen := len(j.opened)
	create := reload.CreateFunc(func(s reload.State) *reload.Instance {
		j.created++
		j.record("create %d", gen)
		return counter.Create(s)
	})
	destroy := reload.DestroyFunc(func(i *reload.Instance) {
		j.destroyed++
		j.record("destroy %d", gen)
		counter.Destroy(i)
	})
	syms := map[string]any{}
	switch string(data) {
	case buildGood:
		syms["counter.Create"], syms["counter.Destroy"] = create, destroy
	case buildNoDestroy:
		syms["counter.Create"] = create
	case buildNull:
		syms["counter.Destroy"] = destroy
		syms["counter.Create"] = reload.CreateFunc(func(reload.State) *reload.Instance {
			j.record("create %d", gen)
			return nil
		})
	case buildOldABI:
		syms["counter.Destroy"] = destroy
		syms["counter.Create"] = reload.CreateFunc(func(s reload.State) *reload.Instance {
			i := create(s)
			i.ABI = 0
			return i
		})
	case buildPanic:
		syms["counter.Destroy"] = destroy
		syms["counter.Create"] = reload.CreateFunc(func(reload.State) *reload.Instance {
			j.record("create %d", gen)
			panic("module init bug")
		})
	case buildBadExit:
		syms["counter.Create"] = create
		syms["counter.Destroy"] = reload.DestroyFunc(func(i *reload.Instance) {
			destroy(i)
			panic(errors.New("module exit bug"))
		})
	default:
		return nil, fmt.Errorf("%s: not an object file", path)
	}
	return &trackedImage{StaticImage: reload.NewStaticImage(syms), j: j, gen: gen}, nil
}

type trackedImage struct {
	*reload.StaticImage
	j   *journal
	gen int
}

func (t *trackedImage) Close() error {
	t.j.record("close %d", t.gen)
	return t.StaticImage.Close()
}

type fixture struct {
	t    *testing.T
	root string
	desc reload.Descriptor
	j    *journal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logging.ConfigureTests()
	root := t.TempDir()
	fn.Panic(os.MkdirAll(filepath.Join(root, "debug"), 0o755))
	return &fixture{
		t:    t,
		root: root,
		desc: reload.NewDescriptor(root, "debug", "counter", "o", "counter", "Create", "Destroy"),
		j:    new(journal),
	}
}

func (f *fixture) loader() *reload.Loader {
	return reload.NewLoader(builds{f.j})
}

// build writes the artifact with content and sets its modification time to at.
func (f *fixture) build(content string, at time.Time) {
	f.t.Helper()
	if err := os.WriteFile(f.desc.Path, []byte(content), 0o644); err != nil {
		f.t.Fatal(err)
	}
	f.touch(at)
}

func (f *fixture) touch(at time.Time) {
	f.t.Helper()
	if err := os.Chtimes(f.desc.Path, at, at); err != nil {
		f.t.Fatal(err)
	}
}

func counterOf(v reload.View) string {
	for _, w := range v.Widgets {
		if w.Kind == reload.WidgetText {
			return w.Label
		}
	}
	return ""
}
