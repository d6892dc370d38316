package canvas

import (
	"fmt"
	"sort"
	"sync"
)

// Opener opens a Surface from a driver-specific DSN.
type Opener func(dsn string) (Surface, error)

var drivers = struct {
	mu      sync.RWMutex
	entries map[string]Opener
}{entries: make(map[string]Opener)}

func init() {
	Register("memory", func(string) (Surface, error) { return NewMemory(), nil })
	Register("sqlite", func(dsn string) (Surface, error) {
		if dsn == "" {
			dsn = ":memory:"
		}
		return NewSQLite(dsn)
	})
}

// Register adds or replaces a driver.
func Register(name string, open Opener) {
	if name == "" || open == nil {
		panic("canvas: Register requires a name and opener")
	}
	drivers.mu.Lock()
	defer drivers.mu.Unlock()
	drivers.entries[name] = open
}

// Open opens a surface with the named driver.
func Open(name, dsn string) (Surface, error) {
	drivers.mu.RLock()
	open, ok := drivers.entries[name]
	drivers.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}

	s, err := open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s canvas: %w", name, err)
	}
	return s, nil
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	drivers.mu.RLock()
	defer drivers.mu.RUnlock()
	names := make([]string, 0, len(drivers.entries))
	for name := range drivers.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
