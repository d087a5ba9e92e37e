// Package modelfile loads declarative model files: YAML documents naming a
// model, its device namespace, macro substitutions and an ordered list of
// record declarations. Declarations build into an ioc.Schema through a
// registry of record-kind constructors, so generation tooling can work from
// files the same way applications work from Go declarations.
package modelfile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-softioc/pkg/database"
	"github.com/goliatone/go-softioc/pkg/ioc"
	"github.com/goliatone/go-softioc/pkg/records"
)

// Macro is one ordered macro declaration.
type Macro struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// RecordDecl declares one record: the model field it binds to, its kind, an
// optional record name (defaulting to the field name) and kind-specific
// options.
type RecordDecl struct {
	Field   string         `yaml:"field"`
	Kind    string         `yaml:"kind"`
	Name    string         `yaml:"name,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
}

// Document is a parsed model file.
type Document struct {
	Model   string       `yaml:"model"`
	Device  string       `yaml:"device,omitempty"`
	Macros  []Macro      `yaml:"macros,omitempty"`
	Records []RecordDecl `yaml:"records"`
}

// Load reads and parses a model file from disk.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("modelfile: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a model file payload.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("modelfile: parse: %w", err)
	}
	if strings.TrimSpace(doc.Model) == "" {
		return Document{}, fmt.Errorf("modelfile: model name is required")
	}
	return doc, nil
}

// DatabaseMacros returns the document's macros in declaration order,
// converted for the generator. The device macro is owned by the model and is
// not included here.
func (d Document) DatabaseMacros() []database.Macro {
	out := make([]database.Macro, 0, len(d.Macros))
	for _, m := range d.Macros {
		out = append(out, database.Macro{Key: m.Name, Value: m.Value})
	}
	return out
}

// Schema builds the document's record declarations into an ioc.Schema using
// the registry's constructors, preserving declaration order.
func (d Document) Schema(reg *Registry) (*ioc.Schema, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	defs := make([]ioc.FieldDef, 0, len(d.Records))
	for _, decl := range d.Records {
		if strings.TrimSpace(decl.Field) == "" {
			return nil, fmt.Errorf("modelfile: record declaration without a field name")
		}
		build, err := reg.Get(decl.Kind)
		if err != nil {
			return nil, err
		}

		name := decl.Name
		if name == "" {
			name = decl.Field
		}
		rec, err := build(name, declOptions(decl.Options)...)
		if err != nil {
			return nil, fmt.Errorf("modelfile: record %s: %w", decl.Field, err)
		}
		defs = append(defs, ioc.Field(decl.Field, rec))
	}
	return ioc.NewSchema(d.Model, defs...)
}

// declOptions converts the generic YAML option map into record options.
// Distinct keys commute, so map iteration order does not affect the result.
func declOptions(raw map[string]any) []records.Option {
	opts := make([]records.Option, 0, len(raw))
	for key, value := range raw {
		switch key {
		case "choices":
			opts = append(opts, records.Choices(stringList(value)...))
		case "truncate_choices":
			if b, ok := value.(bool); ok && b {
				opts = append(opts, records.TruncateChoices())
			}
		default:
			opts = append(opts, records.Set(key, value))
		}
	}
	return opts
}

func stringList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}
