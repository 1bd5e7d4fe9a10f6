// Package emit maps validated IR documents onto generated source text.
// Backends are stateless and perform no I/O; the registry is closed and
// checked once at package initialization rather than at first use.
package emit

import (
	"fmt"
	"sort"

	"github.com/kellegram/skematic/internal/ir"
)

// Backend is one named code generator.
type Backend interface {
	Name() string
	Emit(doc *ir.Document) (string, error)
}

var registry = buildRegistry(
	&zodBackend{},
	&firestoreBackend{},
)

func buildRegistry(backends ...Backend) map[string]Backend {
	m := make(map[string]Backend, len(backends))
	for _, b := range backends {
		if b.Name() == "" {
			panic("emit: backend with empty name")
		}
		if _, dup := m[b.Name()]; dup {
			panic(fmt.Sprintf("emit: duplicate backend name %q", b.Name()))
		}
		m[b.Name()] = b
	}
	return m
}

// Get resolves a backend by name. An unregistered name is a configuration
// error naming the requested target.
func Get(name string) (Backend, error) {
	b, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (registered: %v)", name, Names())
	}
	return b, nil
}

// Names lists the registered backends in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Emit resolves and runs a backend in one call.
func Emit(name string, doc *ir.Document) (string, error) {
	b, err := Get(name)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", fmt.Errorf("backend %q: nil document", name)
	}
	return b.Emit(doc)
}
