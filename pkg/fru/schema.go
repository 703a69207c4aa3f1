package fru

import (
	"github.com/pkg/errors"
)

// Entry names one field of a schema. Proto is never handed to a Record; each
// Record works on its own clone.
type Entry struct {
	Name  string
	Proto Field
	Doc   string
}

// Schema is the ordered field layout of one area type.
type Schema struct {
	name    string
	entries []Entry
	index   map[string]int
}

// NewSchema declares an area layout. Field names must be unique and must not
// collide with format_version, which lives in the area prologue.
func NewSchema(name string, entries ...Entry) (*Schema, error) {
	s := &Schema{
		name:    name,
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		switch {
		case e.Name == "":
			return nil, errors.Wrapf(ErrSchema, "%s: empty field name", name)
		case e.Name == FormatVersion:
			return nil, errors.Wrapf(ErrSchema, "%s: %s is reserved", name, FormatVersion)
		case e.Proto == nil:
			return nil, errors.Wrapf(ErrSchema, "%s: field %s has no prototype", name, e.Name)
		}
		if _, dup := s.index[e.Name]; dup {
			return nil, errors.Wrapf(ErrSchema, "%s: duplicate field %s", name, e.Name)
		}
		s.index[e.Name] = len(s.entries)
		s.entries = append(s.entries, Entry{Name: e.Name, Proto: e.Proto.Clone(), Doc: e.Doc})
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(name string, entries ...Entry) *Schema {
	s, err := NewSchema(name, entries...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// Len returns the number of fields, not counting the prologue.
func (s *Schema) Len() int { return len(s.entries) }

// Has reports whether name is a field of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Entries returns the field declarations in order. The prototypes are copies.
func (s *Schema) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = Entry{Name: e.Name, Proto: e.Proto.Clone(), Doc: e.Doc}
	}
	return out
}

// New instantiates a Record with fresh fields and applies initial through
// Update.
func (s *Schema) New(initial map[string]Value) (*Record, error) {
	r := &Record{
		schema:  s,
		version: MustBitField(4, 4).WithDefault(Tuple{0, DefaultFormatVersion}),
		fields:  make([]Field, len(s.entries)),
	}
	for i, e := range s.entries {
		r.fields[i] = e.Proto.Clone()
	}
	if len(initial) > 0 {
		if err := r.Update(initial); err != nil {
			return nil, err
		}
	}
	return r, nil
}
