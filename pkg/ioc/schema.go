package ioc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-softioc/pkg/records"
)

// FieldDef binds a declared field name to its record instance inside a
// schema.
type FieldDef struct {
	name   string
	record *records.Record
}

// Field constructs a schema entry.
func Field(name string, record *records.Record) FieldDef {
	return FieldDef{name: name, record: record}
}

// Name returns the declared field name.
func (f FieldDef) Name() string { return f.name }

// Record returns the bound record instance.
func (f FieldDef) Record() *records.Record { return f.record }

// Schema is the immutable, ordered name→record table of a model type. It is
// declared once, through explicit registration, and shared by every Model
// built from it; per-device state (macros, process, handles, ready flag)
// lives on the Model.
type Schema struct {
	name   string
	fields []FieldDef
	index  map[string]*records.Record
}

// NewSchema builds a schema from ordered field definitions. The name becomes
// the database and script filename stem. Duplicate or empty field names and
// nil records are declaration errors.
func NewSchema(name string, defs ...FieldDef) (*Schema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("ioc: schema name is required")
	}

	s := &Schema{
		name:   name,
		fields: make([]FieldDef, 0, len(defs)),
		index:  make(map[string]*records.Record, len(defs)),
	}
	for _, def := range defs {
		if strings.TrimSpace(def.name) == "" {
			return nil, errors.New("ioc: field name is required")
		}
		if def.record == nil {
			return nil, fmt.Errorf("ioc: field %q has no record", def.name)
		}
		if _, exists := s.index[def.name]; exists {
			return nil, fmt.Errorf("ioc: duplicate field %q", def.name)
		}
		s.fields = append(s.fields, def)
		s.index[def.name] = def.record
	}
	return s, nil
}

// MustSchema panics on declaration errors. Useful for package-level schema
// tables.
func MustSchema(name string, defs ...FieldDef) *Schema {
	s, err := NewSchema(name, defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema (model type) name.
func (s *Schema) Name() string { return s.name }

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns the declarations in registration order.
func (s *Schema) Fields() []FieldDef {
	return append([]FieldDef(nil), s.fields...)
}

// Record looks up a record by declared field name.
func (s *Schema) Record(field string) (*records.Record, bool) {
	r, ok := s.index[field]
	return r, ok
}

// records returns the record instances in registration order.
func (s *Schema) recordList() []*records.Record {
	out := make([]*records.Record, len(s.fields))
	for i, def := range s.fields {
		out[i] = def.record
	}
	return out
}
