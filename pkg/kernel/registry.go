package kernel

import (
	"sort"
	"sync"

	"github.com/chazu/ifcgeom/pkg/errors"
)

// Factory creates a fresh kernel instance.
type Factory func() (Kernel, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available by name. It panics if the name is
// registered twice.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("kernel: Register called twice for " + name)
	}
	registry[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, errors.WithHintf(
			errors.Mark(errors.Newf("unknown geometry kernel %q", name), errors.ErrInvalidConfig),
			"available kernels: %v", namesLocked())
	}
	return f, nil
}

// New creates an instance of the named backend.
func New(name string) (Kernel, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return f()
}

// Names lists the registered backends in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
