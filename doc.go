/*
Package reload is a live reload engine: a long-running host keeps running while the behavior of the
application lives in an independently compiled module that is swapped whenever it is rebuilt.

# Lifecycle

 1. [Monitor] polls the modification time of the module artifact on every tick.
 2. On a change [Manager] enters the flushing phase and renders one empty [View], so the host drops
    everything it still holds from the current module.
 3. [Extract] copies the [State] of the active instance.
 4. [Loader] copies the artifact to a versioned file, opens it with an [Opener], resolves the create
    and destroy entry points and creates a new instance from the state.
 5. The new module becomes active, then the old instance is destroyed and only then its image is closed.

A failed reload keeps the previous module active and is retried only when the artifact changes again.
Only the first load is fatal.

# Modules

A module is a go package exporting two functions matching [CreateFunc] and [DestroyFunc]:

	func Create(state reload.State) *reload.Instance
	func Destroy(i *reload.Instance)

See package modules/counter for a sample.

# Backends

  - object.Opener in package object links relocatable object files with [goloader] and unloads them
    after use. Build a module with `reload build`. The go sdk must be prepared with `reload prepare`,
    only that package depends on it.
  - [PluginOpener] opens go plugins, which can never be unloaded.
  - [StaticOpener] uses entry points linked into the host.

# Notes

 1. Versioned copies are never removed, they accumulate beside the artifact.
 2. A [Manager] is driven by one goroutine, it has no locks.

[goloader]: https://github.com/pkujhd/goloader
*/
package reload
