package ioc

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-softioc/pkg/pv"
)

// Handler is an application change handler: it receives the handle that
// changed, the new value, and the model the record belongs to. Handlers are
// invoked from the PV client's execution context, including for changes
// caused by the application's own writes.
type Handler func(conn pv.Conn, value pv.Value, model *Model)

// HandlerProvider lets a callback provider hand out handlers explicitly
// instead of (or in addition to) the method naming convention. When
// HandlerFor declines a field, method resolution still runs.
type HandlerProvider interface {
	HandlerFor(field string) (Handler, bool)
}

// Bind resolves the handler for a declared field and attaches it to the
// field's connection handle. Fields without a handler are left unbound,
// silently. Rebinding is idempotent: any previously attached handler is
// detached first, so repeated binds never duplicate invocations.
func (m *Model) Bind(field string) error {
	conn, ok := m.PV(field)
	if !ok {
		return fmt.Errorf("ioc: unknown field %q", field)
	}

	handler, found := m.resolveHandler(field)
	if !found {
		return nil
	}

	m.Unbind(field)
	id, err := conn.Subscribe(func(c pv.Conn, v pv.Value) {
		handler(c, v, m)
	})
	if err != nil {
		return fmt.Errorf("ioc: bind %s: %w", field, err)
	}

	m.mu.Lock()
	m.subs[field] = id
	m.mu.Unlock()
	m.logger.Debug("ioc: handler bound", "field", field)
	return nil
}

// Unbind detaches the change handler attached to a field. Detaching a field
// that was never bound is a no-op.
func (m *Model) Unbind(field string) {
	m.mu.Lock()
	id, ok := m.subs[field]
	if ok {
		delete(m.subs, field)
	}
	conn := m.conns[field]
	m.mu.Unlock()

	if ok && conn != nil {
		conn.Unsubscribe(id)
	}
}

// resolveHandler finds the handler for a field on the configured provider:
// first through HandlerProvider, then by the do_<field> naming convention,
// matched case-insensitively against exported methods (DoToggle handles the
// field "toggle") with the Handler signature.
func (m *Model) resolveHandler(field string) (Handler, bool) {
	provider := m.provider
	if provider == nil {
		return nil, false
	}

	if hp, ok := provider.(HandlerProvider); ok {
		if h, ok := hp.HandlerFor(field); ok && h != nil {
			return h, true
		}
	}

	v := reflect.ValueOf(provider)
	if !v.IsValid() {
		return nil, false
	}
	want := normalizeHandlerName("do_" + field)
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if !method.IsExported() {
			continue
		}
		if normalizeHandlerName(method.Name) != want {
			continue
		}
		fn, ok := v.Method(i).Interface().(func(pv.Conn, pv.Value, *Model))
		if !ok {
			continue
		}
		return Handler(fn), true
	}
	return nil, false
}

func normalizeHandlerName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}
