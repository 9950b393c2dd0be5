package registry

import (
	"fmt"
	"sort"
)

// Spawner builds one map object into the world W from its properties.
type Spawner[W any] func(w W, obj Object) error

// Object is a placed map object: a name selecting the spawner plus its
// rectangle in world pixels and free-form properties.
type Object struct {
	Name       string
	X, Y       float64
	W, H       float64
	Properties map[string]string
}

// Factories maps object names to spawners. Unlike the game registry it is a
// value, so each world type owns its own table and tests can build private
// ones.
type Factories[W any] struct {
	spawners map[string]Spawner[W]
}

// NewFactories creates an empty table.
func NewFactories[W any]() *Factories[W] {
	return &Factories[W]{spawners: make(map[string]Spawner[W])}
}

// Register binds name to s. Panics on duplicates, like Register.
func (f *Factories[W]) Register(name string, s Spawner[W]) {
	if _, exists := f.spawners[name]; exists {
		panic(fmt.Sprintf("registry: spawner %q already registered", name))
	}
	f.spawners[name] = s
}

// Has reports whether name has a spawner.
func (f *Factories[W]) Has(name string) bool {
	_, ok := f.spawners[name]
	return ok
}

// Names returns the registered object names in sorted order.
func (f *Factories[W]) Names() []string {
	names := make([]string, 0, len(f.spawners))
	for n := range f.spawners {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ErrUnknownObject is returned by Spawn for names without a spawner.
type ErrUnknownObject struct {
	Name string
}

func (e *ErrUnknownObject) Error() string {
	return fmt.Sprintf("registry: no spawner for object %q", e.Name)
}

// Spawn builds obj into w.
func (f *Factories[W]) Spawn(w W, obj Object) error {
	s, ok := f.spawners[obj.Name]
	if !ok {
		return &ErrUnknownObject{Name: obj.Name}
	}
	if err := s(w, obj); err != nil {
		return fmt.Errorf("registry: spawn %s: %w", obj.Name, err)
	}
	return nil
}
