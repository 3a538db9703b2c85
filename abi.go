package reload

// ABIVersion is the layout version of Instance. A module built against another layout is rejected.
const ABIVersion uint32 = 1

type (
	// State is everything that survives a reload. It is a plain value: it must never hold
	// pointers, slices, maps or funcs that could reference memory of a loaded module.
	State struct {
		Counter int32
	}
	// Event is delivered by the host loop to the manager and forwarded to the active module.
	Event int
	// WidgetKind tags a Widget.
	WidgetKind int
	// Widget is one element of a View.
	Widget struct {
		Kind    WidgetKind
		Label   string
		OnPress Event //event emitted when a WidgetButton is activated
	}
	// View is the description a module produces for the host to render.
	// An empty View is the placeholder rendered while flushing.
	View struct {
		Widgets []Widget
	}
	// Instance is the capability table returned by a module's create entry point.
	//
	// The host never looks behind these function values. They point into the module image and are
	// only valid until the module's destroy entry point is called for this Instance.
	Instance struct {
		ABI         uint32
		HandleEvent func(Event)
		View        func() View
		State       func() State
	}
	// CreateFunc is the signature of the create entry point; nil signals failure.
	CreateFunc = func(State) *Instance
	// DestroyFunc is the signature of the destroy entry point.
	DestroyFunc = func(*Instance)
)

const (
	EventNone Event = iota
	EventTick
	EventIncrement
	EventDecrement
	EventReload
)

const (
	WidgetText WidgetKind = iota
	WidgetButton
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventTick:
		return "tick"
	case EventIncrement:
		return "increment"
	case EventDecrement:
		return "decrement"
	case EventReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Empty reports whether the view has nothing to render.
func (v View) Empty() bool {
	return len(v.Widgets) == 0
}

// Text creates a text widget.
func Text(label string) Widget {
	return Widget{Kind: WidgetText, Label: label}
}

// Button creates a button widget emitting ev when pressed.
func Button(label string, ev Event) Widget {
	return Widget{Kind: WidgetButton, Label: label, OnPress: ev}
}

// valid checks the capability table is complete and built against this ABI.
func (i *Instance) valid() bool {
	return i.ABI == ABIVersion && i.HandleEvent != nil && i.View != nil && i.State != nil
}
