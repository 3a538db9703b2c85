package reload

import (
	"plugin"
)

// PluginOpener opens go plugins built with -buildmode=plugin.
//
// The go runtime can never unload a plugin, so Close only reports [ErrUnloadUnsupported]; a reload
// also fails when the rebuilt plugin shares packages with one already opened in this process.
type PluginOpener struct{}

func (PluginOpener) Ext() string {
	return HostExtension()
}

func (PluginOpener) Open(path, _ string) (Image, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return goPlugin{p}, nil
}

type goPlugin struct {
	p *plugin.Plugin
}

// Lookup strips the package qualifier, plugins export by bare name.
func (g goPlugin) Lookup(sym string) (v any, ok bool) {
	for i := len(sym) - 1; i >= 0; i-- {
		if sym[i] == '.' {
			sym = sym[i+1:]
			break
		}
	}
	s, err := g.p.Lookup(sym)
	if err != nil {
		return nil, false
	}
	switch f := s.(type) {
	case *CreateFunc:
		return *f, true
	case *DestroyFunc:
		return *f, true
	}
	return s, true
}

func (goPlugin) Close() error {
	return ErrUnloadUnsupported
}
