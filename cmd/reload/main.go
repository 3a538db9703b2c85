package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	. "github.com/ZenLiuCN/reload"
	"github.com/ZenLiuCN/reload/config"
	"github.com/ZenLiuCN/reload/host"
	"github.com/ZenLiuCN/reload/logging"
	"github.com/ZenLiuCN/reload/metrics"
	"github.com/ZenLiuCN/reload/modules/counter"
	"github.com/ZenLiuCN/reload/object"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "reload"
	app.Usage = "live reload host for independently compiled modules"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}},
		&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn, error or off"},
	}
	app.Before = func(ctx *cli.Context) error {
		cfg := logging.DefaultConfig(logging.ProfileRuntime)
		if ctx.Bool("debug") {
			cfg.Level, _ = logging.ParseLevel("debug")
		}
		if lvl, ok := logging.ParseLevel(ctx.String("log-level")); ok {
			cfg.Level = lvl
		}
		logging.ConfigureWith(cfg)
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:   "run",
			Action: run,
			Usage:  "run the host and reload the module whenever its artifact changes",
			Flags:  runFlags,
		},
		{
			Name:   "build",
			Action: build,
			Usage:  "compile go sources into a module object file. '.' compiles the go files of the working directory.",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "pkg", Aliases: []string{"k"}, Usage: "package path", Value: "main"},
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output object file", Required: true},
			},
			Args: true,
		},
		{
			Name:   "symbols",
			Action: symbols,
			Usage:  "display symbols of module object files",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "pkg", Aliases: []string{"k"}, Usage: "package path or default main"},
			},
			Args: true,
		},
		{
			Name:   "prepare",
			Action: prepare,
			Usage:  "copy internals of go sdk required by the object backend",
		},
		{
			Name:   "clean",
			Action: clean,
			Usage:  "remove copied internals of go sdk",
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failure")
	}
}

var runFlags = []cli.Flag{
	&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML config file"},
	&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "module name"},
	&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "build root directory"},
	&cli.StringFlag{Name: "profile", Usage: "build profile directory"},
	&cli.StringFlag{Name: "pkg", Aliases: []string{"k"}, Usage: "module package path"},
	&cli.StringFlag{Name: "backend", Aliases: []string{"b"}, Usage: "object, plugin or static"},
	&cli.DurationFlag{Name: "interval", Aliases: []string{"i"}, Usage: "artifact polling interval"},
	&cli.StringFlag{Name: "metrics-addr", Usage: "serve prometheus metrics at this address"},
}

// settings reads the config file, applies flags over it, then validates the result once.
func settings(ctx *cli.Context) (cfg config.Config, err error) {
	if cfg, err = config.Read(ctx.String("config")); err != nil {
		return
	}
	m := &cfg.Module
	for flag, dst := range map[string]*string{
		"name":         &m.Name,
		"root":         &m.BuildRoot,
		"profile":      &m.Profile,
		"pkg":          &m.Package,
		"backend":      &m.Backend,
		"metrics-addr": &cfg.MetricsAddr,
	} {
		if ctx.IsSet(flag) {
			*dst = ctx.String(flag)
		}
	}
	if ctx.IsSet("interval") {
		cfg.Interval.Duration = ctx.Duration("interval")
	}
	cfg.Debug = cfg.Debug || ctx.Bool("debug")
	err = config.Validate(cfg)
	return
}

func opener(cfg config.Config) Opener {
	switch cfg.Module.Backend {
	case config.BackendPlugin:
		return PluginOpener{}
	case config.BackendStatic:
		return StaticOpener{Symbols: counter.Symbols(), Extension: "o"}
	default:
		return object.Opener{Debug: cfg.Debug, Sync: true}
	}
}

func run(ctx *cli.Context) (err error) {
	var cfg config.Config
	if cfg, err = settings(ctx); err != nil {
		return
	}
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok && !ctx.IsSet("log-level") {
		zerolog.SetGlobalLevel(lvl)
	}
	op := opener(cfg)
	m := cfg.Module
	desc := NewDescriptor(m.BuildRoot, m.Profile, m.Name, op.Ext(), m.Package, m.CreateSymbol, m.DestroySymbol)
	obs := metrics.New(desc.Name)
	mgr, err := NewManager(desc, NewLoader(op), State{}, obs)
	if err != nil {
		return fmt.Errorf("failed to load initial module %s: %w", desc, err)
	}
	defer func() {
		if cerr := mgr.Close(); cerr != nil && !errors.Is(cerr, ErrUnloadUnsupported) {
			log.Warn().Err(cerr).Msg("close module")
		}
	}()

	c, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", obs.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
		defer srv.Shutdown(context.Background())
	}
	h := &host.Host{
		App: mgr,
		Renderer: &host.Renderer{
			Out:   os.Stdout,
			Clear: isatty.IsTerminal(os.Stdout.Fd()),
		},
		Interval: cfg.Interval.Duration,
	}
	log.Info().Stringer("module", desc).Str("backend", m.Backend).Msg("host started")
	return h.Run(c, os.Stdin)
}

func build(ctx *cli.Context) (err error) {
	d := ctx.Bool("debug")
	o := ctx.Args().Slice()
	if len(o) == 1 && o[0] == "." {
		if o, err = lookup(); err != nil {
			return
		}
		log.Info().Strs("sources", o).Msg("found go sources at working directory")
	}
	return Compile(d, ctx.String("pkg"), ctx.String("out"), o)
}

func lookup() (v []string, err error) {
	var e []os.DirEntry
	if e, err = os.ReadDir("."); err != nil {
		return
	}
	for _, entry := range e {
		n := entry.Name()
		if !entry.IsDir() && strings.HasSuffix(n, ".go") && !strings.HasSuffix(n, "_test.go") {
			v = append(v, n)
		}
	}
	return
}

func symbols(ctx *cli.Context) (err error) {
	for _, s := range ctx.Args().Slice() {
		var v []string
		if v, err = object.Inspect(s, ctx.String("pkg")); err != nil {
			return
		}
		fmt.Printf("%s:\n\t%s\n", s, strings.Join(v, "\n\t"))
	}
	return
}

func clean(ctx *cli.Context) (err error) {
	dir := os.ExpandEnv("$GOROOT/src/cmd/objfile")
	if _, err = os.Stat(dir); err == nil {
		err = os.RemoveAll(dir)
		log.Debug().Str("dir", dir).Msg("removed")
	} else {
		log.Debug().Str("dir", dir).Msg("did nothing")
		err = nil
	}
	return
}

func prepare(ctx *cli.Context) (err error) {
	src := os.ExpandEnv("$GOROOT/src/cmd/internal")
	dir := os.ExpandEnv("$GOROOT/src/cmd/objfile")
	if _, err = os.Stat(dir); err != nil && os.IsNotExist(err) {
		if err = CopyDir(src, dir, nil); err == nil {
			log.Debug().Str("from", src).Str("to", dir).Msg("copied")
		}
		return
	}
	log.Debug().Str("dir", filepath.Clean(dir)).Msg("did nothing")
	return nil
}
