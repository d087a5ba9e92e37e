package modelfile

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-softioc/pkg/records"
)

// Constructor builds a record instance from a name and resolved options.
// The records package constructors satisfy this directly.
type Constructor func(name string, opts ...records.Option) (*records.Record, error)

// Kind names accepted in model files.
const (
	KindEnum         = "enum"
	KindToggle       = "toggle"
	KindString       = "string"
	KindInteger      = "integer"
	KindFloat        = "float"
	KindCalc         = "calc"
	KindCalcOut      = "calcout"
	KindArray        = "array"
	KindBinaryInput  = "binary_input"
	KindBinaryOutput = "binary_output"
)

// Registry maps model-file kind names to record constructors. Registration
// is the extension point for server-specific record kinds.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry with every built-in record kind
// registered.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	builtins := map[string]Constructor{
		KindEnum:         records.NewEnum,
		KindToggle:       records.NewToggle,
		KindString:       records.NewString,
		KindInteger:      records.NewInteger,
		KindFloat:        records.NewFloat,
		KindCalc:         records.NewCalc,
		KindCalcOut:      records.NewCalcOut,
		KindArray:        records.NewArray,
		KindBinaryInput:  records.NewBinaryInput,
		KindBinaryOutput: records.NewBinaryOutput,
	}
	for kind, build := range builtins {
		reg.MustRegister(kind, build)
	}
	return reg
}

// Register adds a constructor for a kind name. Duplicate kinds return an
// error.
func (r *Registry) Register(kind string, build Constructor) error {
	if build == nil {
		return fmt.Errorf("modelfile: constructor is required")
	}
	if kind == "" {
		return fmt.Errorf("modelfile: kind name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[kind]; exists {
		return fmt.Errorf("modelfile: kind %q already registered", kind)
	}
	r.builders[kind] = build
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(kind string, build Constructor) {
	if err := r.Register(kind, build); err != nil {
		panic(err)
	}
}

// Get retrieves the constructor for a kind, naming the known kinds when the
// lookup misses.
func (r *Registry) Get(kind string) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	build, ok := r.builders[kind]
	if !ok {
		return nil, fmt.Errorf("modelfile: unknown record kind %q (known: %s)", kind, knownKinds(r.builders))
	}
	return build, nil
}

// List returns the registered kind names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func knownKinds(builders map[string]Constructor) string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
