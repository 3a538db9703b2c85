// Package counter is a sample reloadable module: a counter with two buttons.
//
// Build it into the artifact watched by the host with:
//
//	reload build -k counter -o target/debug/counter.o modules/counter/counter.go
package counter

import (
	"fmt"

	"github.com/ZenLiuCN/reload"
	"github.com/ZenLiuCN/reload/logging"
	"github.com/rs/zerolog/log"
)

type app struct {
	state reload.State
}

func (a *app) update(ev reload.Event) {
	switch ev {
	case reload.EventIncrement:
		log.Trace().Msg("increment")
		a.state.Counter++
	case reload.EventDecrement:
		log.Trace().Msg("decrement")
		a.state.Counter--
	case reload.EventReload, reload.EventTick:
		// handled by the host
	}
}

func (a *app) view() reload.View {
	return reload.View{Widgets: []reload.Widget{
		reload.Button("+", reload.EventIncrement),
		reload.Text(fmt.Sprintf("Counter: %d", a.state.Counter)),
		reload.Button("-", reload.EventDecrement),
	}}
}

func (a *app) current() reload.State {
	return a.state
}

// Create the counter instance with initial state.
func Create(state reload.State) *reload.Instance {
	logging.ConfigureRuntime()
	log.Trace().Int32("counter", state.Counter).Msg("create app")
	a := &app{state: state}
	return &reload.Instance{
		ABI:         reload.ABIVersion,
		HandleEvent: a.update,
		View:        a.view,
		State:       a.current,
	}
}

// Destroy releases an instance made by Create.
func Destroy(i *reload.Instance) {
	log.Trace().Msg("destroy app")
	if i == nil {
		return
	}
	i.HandleEvent = nil
	i.View = nil
	i.State = nil
}

// Symbols exports the entry points for a statically linked host.
func Symbols() map[string]any {
	return map[string]any{
		"counter.Create":  reload.CreateFunc(Create),
		"counter.Destroy": reload.DestroyFunc(Destroy),
	}
}
