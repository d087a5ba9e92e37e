package records

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-softioc/internal/templates"
)

// ErrTooManyChoices reports an enumerated record declared with more choices
// than there are symbolic slots.
var ErrTooManyChoices = errors.New("records: more enumerated choices than symbolic slots")

// ErrMissingOptions reports a constructor called without one of its required
// options.
var ErrMissingOptions = errors.New("records: missing required options")

var engine = templates.New()

// Record is one named, declared instance of a record type: its resolved
// options plus an ordered instance field map. Instances are built once at
// declaration time; AddField and DelField exist for the constructor logic of
// specialized types and live for the process lifetime of the declaring
// model.
type Record struct {
	name    string
	kind    Kind
	options map[string]any
	keys    []string
	fields  map[string]string
}

// newRecord merges caller options over type defaults, validates required
// options and seeds the instance field map from the Spec.
func newRecord(spec Spec, name string, defaults map[string]any, opts []Option) (*Record, *settings, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, errors.New("records: record name is required")
	}

	s := newSettings()
	for key, value := range defaults {
		s.values[key] = value
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	options := make(map[string]any, len(s.values)+2)
	for key, value := range s.values {
		if value == nil {
			continue
		}
		options[key] = value
	}
	options["name"] = name

	r := &Record{
		name:    name,
		options: options,
		fields:  make(map[string]string, len(spec.Fields)),
	}
	r.setKind(spec.Kind)
	for _, f := range spec.Fields {
		r.AddField(f.Key, f.Template)
	}

	var missing []string
	for _, req := range spec.Required {
		if _, ok := options[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingOptions, strings.Join(missing, ", "))
	}
	return r, s, nil
}

// Name returns the declared record name.
func (r *Record) Name() string { return r.name }

// Kind returns the current record kind. String records switch kinds when
// their declared length crosses the inline threshold.
func (r *Record) Kind() Kind { return r.kind }

// Option returns a resolved option value.
func (r *Record) Option(key string) (any, bool) {
	v, ok := r.options[key]
	return v, ok
}

// FieldKeys returns the instance field keys in declaration order.
func (r *Record) FieldKeys() []string {
	return append([]string(nil), r.keys...)
}

// Field returns the template (or literal) bound to a field key.
func (r *Record) Field(key string) (string, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// AddField binds a field key to a template or literal value, appending to
// the field order when the key is new.
func (r *Record) AddField(key, value string) {
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = value
}

// DelField removes a field. Removing an absent field is a no-op.
func (r *Record) DelField(key string) {
	if _, ok := r.fields[key]; !ok {
		return
	}
	delete(r.fields, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// setKind stamps the kind onto the record and its option map so the rendered
// header and any template referencing the kind stay in sync.
func (r *Record) setKind(kind Kind) {
	r.kind = kind
	r.options["record"] = string(kind)
}

// setOption mutates a resolved option. Reserved for constructor logic.
func (r *Record) setOption(key string, value any) {
	r.options[key] = value
}

// Render produces the record's database block: a header naming the kind and
// the macro-qualified record name, one line per instance field in
// declaration order, and a closing brace. Unresolved template placeholders
// fail the render.
func (r *Record) Render() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "record(%s, \"$(device):%s\") {\n", r.kind, r.name)
	for _, key := range r.keys {
		value, err := engine.RenderStrict(r.fields[key], r.options)
		if err != nil {
			return "", fmt.Errorf("records: render %s field %s: %w", r.name, key, err)
		}
		fmt.Fprintf(&b, "  field(%s, \"%s\")\n", key, value)
	}
	b.WriteString("}\n")
	return b.String(), nil
}
