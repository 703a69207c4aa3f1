// Package registry maps FRU area type names to their schemas.
package registry

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/ssargent/frugy/pkg/fru"
)

var (
	ErrUnknownType = errors.New("registry: unknown area type")
	ErrDuplicate   = errors.New("registry: area type already registered")
)

// Area is a registered area type.
type Area struct {
	Schema *fru.Schema
	Doc    string
}

// FieldInfo describes one field of an area type.
type FieldInfo struct {
	Name   string `json:"name" yaml:"name"`
	Layout string `json:"layout" yaml:"layout"`
	Doc    string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Registry holds area types by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	areas map[string]Area
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{areas: make(map[string]Area)}
}

// Register adds schema under its name.
func (r *Registry) Register(schema *fru.Schema, doc string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.areas[schema.Name()]; exists {
		return errors.Wrap(ErrDuplicate, schema.Name())
	}
	r.areas[schema.Name()] = Area{Schema: schema, Doc: doc}
	return nil
}

// Lookup returns the area type called name.
func (r *Registry) Lookup(name string) (Area, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.areas[name]
	if !ok {
		return Area{}, errors.Wrapf(ErrUnknownType, "%q", name)
	}
	return a, nil
}

// Names returns the registered area types in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.areas))
	for name := range r.areas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NewRecord instantiates a fresh record of area type name.
func (r *Registry) NewRecord(name string, initial map[string]fru.Value) (*fru.Record, error) {
	a, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return a.Schema.New(initial)
}

// Describe lists the fields of area type name in wire order.
func (r *Registry) Describe(name string) ([]FieldInfo, error) {
	a, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	entries := a.Schema.Entries()
	out := make([]FieldInfo, len(entries))
	for i, e := range entries {
		out[i] = FieldInfo{Name: e.Name, Layout: e.Proto.String(), Doc: e.Doc}
	}
	return out, nil
}

// Decode parses one area of type name from the front of buf.
func (r *Registry) Decode(name string, buf []byte) (*fru.Record, []byte, error) {
	rec, err := r.NewRecord(name, nil)
	if err != nil {
		return nil, nil, err
	}
	rest, err := rec.Deserialize(buf)
	if err != nil {
		return nil, nil, err
	}
	return rec, rest, nil
}
