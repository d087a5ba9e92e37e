// Package templates renders the inline placeholder strings used by record
// field templates and the generated startup script. Templates use pongo2
// syntax ({{ name }}) and resolve against a flat option map.
//
// pongo2 renders unknown variables as empty output, which would silently
// swallow a typo in a field template. RenderStrict therefore scans the
// template for placeholder identifiers first and refuses to render when any
// of them is missing from the data map.
package templates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// ErrUnresolvedPlaceholder reports a template placeholder with no matching
// entry in the data map.
var ErrUnresolvedPlaceholder = errors.New("templates: unresolved placeholder")

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Rendered output is database text, not HTML. Calc expressions and link
// specifications must pass through characters like & and > verbatim.
func init() {
	pongo2.SetAutoescape(false)
}

// Engine compiles and caches inline template strings. The zero value is not
// usable; construct with New.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

// New returns an Engine with an empty compilation cache.
func New() *Engine {
	return &Engine{cache: make(map[string]*pongo2.Template)}
}

// Placeholders returns the identifiers referenced by the template, in order
// of first appearance.
func Placeholders(tpl string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(tpl, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// RenderString renders the template against the data map without placeholder
// validation. Callers that need the strict contract use RenderStrict.
func (e *Engine) RenderString(tpl string, data map[string]any) (string, error) {
	compiled, err := e.compile(tpl)
	if err != nil {
		return "", err
	}
	out, err := compiled.Execute(toContext(data))
	if err != nil {
		return "", fmt.Errorf("templates: execute template: %w", err)
	}
	return out, nil
}

// RenderStrict renders the template, failing when any placeholder has no
// entry in the data map.
func (e *Engine) RenderStrict(tpl string, data map[string]any) (string, error) {
	for _, name := range Placeholders(tpl) {
		if _, ok := data[name]; !ok {
			return "", fmt.Errorf("%w: %q", ErrUnresolvedPlaceholder, name)
		}
	}
	return e.RenderString(tpl, data)
}

func (e *Engine) compile(tpl string) (*pongo2.Template, error) {
	e.mu.RLock()
	compiled, ok := e.cache[tpl]
	e.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if compiled, ok := e.cache[tpl]; ok {
		return compiled, nil
	}
	compiled, err := pongo2.FromString(tpl)
	if err != nil {
		return nil, fmt.Errorf("templates: parse template: %w", err)
	}
	e.cache[tpl] = compiled
	return compiled, nil
}

// toContext converts the data map into a pongo2 context, stringifying scalar
// values so rendered output is deterministic across types.
func toContext(data map[string]any) pongo2.Context {
	ctx := make(pongo2.Context, len(data))
	for key, value := range data {
		ctx[key] = Stringify(value)
	}
	return ctx
}

// Stringify formats a scalar option value for substitution into a field
// template. Strings pass through; numeric values use the shortest exact
// representation so templates never see locale or width artefacts.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
