package reload

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Phase of a Manager.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseFlushing
	PhaseReloading
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseFlushing:
		return "flushing"
	case PhaseReloading:
		return "reloading"
	default:
		return "unknown"
	}
}

// Observer is told about the outcome of every reload attempt.
type Observer interface {
	Reloaded(generation uint64, took time.Duration)
	ReloadFailed(err error, took time.Duration)
}

// Manager owns the active module and drives reloads.
//
// A Manager is not safe for concurrent use: it is driven by the host's single event loop.
type Manager struct {
	desc       Descriptor
	loader     *Loader
	monitor    *Monitor
	observer   Observer
	active     *Module
	phase      Phase
	generation uint64
	lastErr    error
}

// NewManager loads the first instance of d from initial.
// Failing here is fatal for a host, there is nothing to fall back to.
func NewManager(d Descriptor, loader *Loader, initial State, observer Observer) (*Manager, error) {
	log.Trace().Stringer("module", d).Msg("initial library load")
	m, err := loader.Load(d, Inject(initial))
	if err != nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}
	log.Debug().Str("path", m.Path).Msg("library loaded")
	return &Manager{
		desc:     d,
		loader:   loader,
		monitor:  NewMonitor(d.Path, m.Modified),
		observer: observer,
		active:   m,
	}, nil
}

// Update handles one event and returns the follow-up event the host must deliver next, or EventNone.
//
// EventTick polls the artifact; a change switches to the flushing phase and asks for EventReload.
// EventReload performs the reload once the flush frame was rendered, it is dropped in any other phase.
// Any other event goes to the active instance.
func (m *Manager) Update(ev Event) Event {
	if m.active == nil {
		return EventNone
	}
	switch ev {
	case EventNone:
	case EventTick:
		if m.phase == PhaseActive && m.monitor.Poll() {
			log.Trace().Str("path", m.desc.Path).Msg("change detected")
			m.phase = PhaseFlushing
			return EventReload
		}
		m.active.Instance().HandleEvent(ev)
	case EventReload:
		if m.phase != PhaseFlushing {
			log.Trace().Stringer("phase", m.phase).Msg("reload ignored, nothing flushed")
			break
		}
		m.reload()
	default:
		m.active.Instance().HandleEvent(ev)
	}
	return EventNone
}

// View returns what the host must render: the empty placeholder while flushing, else the active view.
func (m *Manager) View() View {
	if m.active == nil || m.phase != PhaseActive {
		return View{}
	}
	return m.active.Instance().View()
}

// reload swaps in a new instance carrying the current state. On failure the old one stays active.
// Either way the manager is back to PhaseActive.
func (m *Manager) reload() {
	defer func() { m.phase = PhaseActive }()
	m.phase = PhaseReloading
	start := time.Now()
	state := Extract(m.active)
	log.Trace().Int32("counter", state.Counter).Msg("reload library")
	next, err := m.loader.Load(m.desc, Inject(state))
	took := time.Since(start)
	if err != nil {
		// a broken build is not retried until the artifact changes again
		if t, ok := observed(err); ok {
			m.monitor.Acknowledge(t)
		}
		m.lastErr = err
		log.Error().Err(err).Msg("reload failed, keeping current module")
		if m.observer != nil {
			m.observer.ReloadFailed(err, took)
		}
		return
	}
	old := m.active
	m.active = next
	m.monitor.Acknowledge(next.Modified)
	m.generation++
	m.lastErr = nil
	if err = old.release(); err != nil {
		log.Warn().Err(err).Str("path", old.Path).Msg("release previous module")
	}
	log.Debug().Str("path", next.Path).Uint64("generation", m.generation).Dur("took", took).Msg("library reloaded")
	if m.observer != nil {
		m.observer.Reloaded(m.generation, took)
	}
}

// State returns a snapshot of the active instance state.
func (m *Manager) State() State {
	if m.active == nil {
		return State{}
	}
	return Extract(m.active)
}

// Phase returns the current phase.
func (m *Manager) Phase() Phase {
	return m.phase
}

// Generation counts successful reloads.
func (m *Manager) Generation() uint64 {
	return m.generation
}

// Active returns the active module, nil after Close.
func (m *Manager) Active() *Module {
	return m.active
}

// LastError returns the error of the last reload attempt, nil if it succeeded.
func (m *Manager) LastError() error {
	return m.lastErr
}

// Close destroys the active instance and releases its image.
func (m *Manager) Close() error {
	if m.active == nil {
		return ErrClosed
	}
	log.Trace().Msg("destroy the core")
	old := m.active
	m.active = nil
	return old.release()
}
