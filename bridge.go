package reload

// Extract copies the state reported by the module's instance.
// State is a plain value, so the copy holds nothing of the module's memory.
func Extract(m *Module) State {
	return m.Instance().State()
}

// Inject turns a snapshot into the construction argument of the next instance.
func Inject(s State) State {
	return s
}
