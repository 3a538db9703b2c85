package object_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/reload"
	"github.com/ZenLiuCN/reload/logging"
	"github.com/ZenLiuCN/reload/modules/counter"
	"github.com/ZenLiuCN/reload/object"
	"github.com/rs/zerolog/log"
)

// set in the environment of a test binary rebuilt with its symbol table
const symbolized = "RELOAD_TEST_SYMBOLIZED"

func TestMain(m *testing.M) {
	logging.ConfigureTests()
	if !object.Symbolized() && os.Getenv(symbolized) == "" {
		if code, ok := rerun(); ok {
			os.Exit(code)
		}
	}
	os.Exit(m.Run())
}

// rerun builds the tests with `go test -c`, which keeps the symbol table, and runs them with the same flags.
func rerun() (code int, ok bool) {
	if _, err := exec.LookPath("go"); err != nil {
		return
	}
	dir, err := os.MkdirTemp("", "reload-object")
	if err != nil {
		return
	}
	defer os.RemoveAll(dir)
	bin := filepath.Join(dir, "object.test")
	build := exec.Command("go", "test", "-c", "-o", bin, ".")
	build.Stdout = os.Stderr
	build.Stderr = os.Stderr
	if err = build.Run(); err != nil {
		log.Warn().Err(err).Msg("build test binary")
		return
	}
	var args []string
	for _, a := range os.Args[1:] {
		if !strings.HasPrefix(a, "-test.testlogfile") {
			args = append(args, a)
		}
	}
	cmd := exec.Command(bin, args...)
	cmd.Env = append(os.Environ(), symbolized+"=1")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err = cmd.Run()
	var ee *exec.ExitError
	switch {
	case err == nil:
		return 0, true
	case errors.As(err, &ee):
		return ee.ExitCode(), true
	}
	log.Warn().Err(err).Msg("run test binary")
	return
}

var t0 = time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)

type module struct {
	t    *testing.T
	desc reload.Descriptor
	src  []string
}

func newModule(t *testing.T) *module {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("missing go sdk")
	}
	// keep everything the counter module calls linked into this binary
	if err := object.UseGlobalTypes(counter.Create, counter.Destroy); err != nil {
		t.Fatal(err)
	}
	return &module{
		t:    t,
		desc: reload.NewDescriptor(t.TempDir(), "debug", "counter", "o", "counter", "Create", "Destroy"),
		src:  []string{filepath.Join("..", "modules", "counter", "counter.go")},
	}
}

func (m *module) build(at time.Time) {
	m.t.Helper()
	if err := reload.Compile(false, "counter", m.desc.Path, m.src); err != nil {
		m.t.Fatal(err)
	}
	if err := os.Chtimes(m.desc.Path, at, at); err != nil {
		m.t.Fatal(err)
	}
}

func settle(m *reload.Manager) {
	for ev := m.Update(reload.EventTick); ev != reload.EventNone; ev = m.Update(ev) {
	}
}

func TestInspect(t *testing.T) {
	m := newModule(t)
	m.build(t0)
	syms := fn.Panic1(object.Inspect(m.desc.Path, "counter"))
	for _, want := range []string{"counter.Create", "counter.Destroy"} {
		found := false
		for _, s := range syms {
			found = found || s == want
		}
		if !found {
			t.Errorf("%s not in %v", want, syms)
		}
	}
}

func TestReloadObject(t *testing.T) {
	m := newModule(t)
	m.build(t0)
	mgr, err := reload.NewManager(m.desc, reload.NewLoader(object.Opener{Sync: true}), reload.State{Counter: 5}, nil)
	if err != nil {
		t.Fatal(err)
	}
	mgr.Update(reload.EventIncrement)
	m.build(t0.Add(time.Second))
	settle(mgr)
	if err := mgr.LastError(); err != nil {
		t.Fatal(err)
	}
	if mgr.Generation() != 1 || mgr.State().Counter != 6 {
		t.Errorf("generation %d state %d", mgr.Generation(), mgr.State().Counter)
	}
	mgr.Update(reload.EventDecrement)
	if v := mgr.View(); len(v.Widgets) != 3 || v.Widgets[1].Label != "Counter: 5" {
		t.Errorf("view %+v", v)
	}
	fn.Panic(mgr.Close())
	for _, at := range []time.Time{t0, t0.Add(time.Second)} {
		if _, err := os.Stat(reload.VersionedPath(m.desc.Path, at, 0)); err != nil {
			t.Error(err)
		}
	}
}
