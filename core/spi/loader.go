package spi

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Loader resolves named implementations of one extensible interface type T.
// Obtain one through LoaderFor; loaders live for the lifetime of their
// Registry and are safe for concurrent use.
type Loader[T any] struct {
	reg          *Registry
	typ          reflect.Type
	defaultValue string

	classMu     sync.RWMutex
	classes     map[string]implementation // nil until first successful computation
	defaultName string

	instMu    sync.RWMutex
	instances map[string]*slot
}

// slot is a single-instance holder for one service name. Population is
// serialized by mu; reads go through the atomic value so resolving name A
// never blocks a lookup of name B.
type slot struct {
	mu    sync.Mutex
	value atomic.Value
}

func (s *slot) get() any { return s.value.Load() }

func newLoader[T any](r *Registry, d declaration) *Loader[T] {
	return &Loader[T]{
		reg:          r,
		typ:          d.typ,
		defaultValue: d.defaultValue,
		instances:    make(map[string]*slot),
	}
}

// Get returns the singleton instance registered under name, instantiating it
// on first use. The class map is computed on the first call for this service
// type and memoized for the registry's lifetime.
func (l *Loader[T]) Get(name string) (T, error) {
	var zero T
	if strings.TrimSpace(name) == "" {
		return zero, ErrEmptyName
	}
	classes, err := l.classMap()
	if err != nil {
		return zero, err
	}
	// The slot is created for any asked-for name, even one the class map
	// does not know, so Loaded reflects every lookup attempt.
	s := l.slotFor(name)
	if v := s.get(); v != nil {
		return v.(T), nil
	}
	impl, ok := classes[name]
	if !ok {
		return zero, &NotFoundError{Service: l.typ, Name: name}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := s.get(); v != nil {
		return v.(T), nil
	}
	v, err := l.create(name, impl)
	if err != nil {
		return zero, err
	}
	s.value.Store(v)
	return v.(T), nil
}

// GetLoaded returns the instance registered under name only if it was
// already constructed. It never computes the class map or instantiates
// anything; an unpopulated or unknown name yields false.
func (l *Loader[T]) GetLoaded(name string) (T, bool, error) {
	var zero T
	if strings.TrimSpace(name) == "" {
		return zero, false, ErrEmptyName
	}
	s := l.slotFor(name)
	if v := s.get(); v != nil {
		return v.(T), true, nil
	}
	return zero, false, nil
}

// GetOrDefault behaves like Get when name is registered and falls back to
// the declared default otherwise. When no default is configured either, the
// original NotFoundError for name is returned.
func (l *Loader[T]) GetOrDefault(name string) (T, error) {
	var zero T
	classes, err := l.classMap()
	if err != nil {
		return zero, err
	}
	if _, ok := classes[name]; ok {
		return l.Get(name)
	}
	v, ok, err := l.GetDefault()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, &NotFoundError{Service: l.typ, Name: name}
	}
	return v, nil
}

// GetDefault resolves the default implementation declared for the service
// type. The second return value is false when no default is configured.
func (l *Loader[T]) GetDefault() (T, bool, error) {
	var zero T
	if _, err := l.classMap(); err != nil {
		return zero, false, err
	}
	l.classMu.RLock()
	def := l.defaultName
	l.classMu.RUnlock()
	if def == "" {
		return zero, false, nil
	}
	v, err := l.Get(def)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Supported returns every registered name in lexicographic order, forcing
// class map computation.
func (l *Loader[T]) Supported() ([]string, error) {
	classes, err := l.classMap()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Loaded returns, in lexicographic order, every name whose instance slot
// exists. A slot exists once the name has been asked for, even if a
// concurrent construction has not populated it yet. It never forces class
// map computation.
func (l *Loader[T]) Loaded() []string {
	l.instMu.RLock()
	names := make([]string, 0, len(l.instances))
	for name := range l.instances {
		names = append(names, name)
	}
	l.instMu.RUnlock()
	sort.Strings(names)
	return names
}

func (l *Loader[T]) slotFor(name string) *slot {
	l.instMu.RLock()
	s := l.instances[name]
	l.instMu.RUnlock()
	if s != nil {
		return s
	}
	l.instMu.Lock()
	defer l.instMu.Unlock()
	if s = l.instances[name]; s == nil {
		s = &slot{}
		l.instances[name] = s
	}
	return s
}

// classMap returns the memoized name to implementation mapping, computing it
// on first call. A failed computation is not memoized, so the error surfaces
// on every call until the configuration is corrected.
func (l *Loader[T]) classMap() (map[string]implementation, error) {
	l.classMu.RLock()
	m := l.classes
	l.classMu.RUnlock()
	if m != nil {
		return m, nil
	}
	l.classMu.Lock()
	defer l.classMu.Unlock()
	if l.classes != nil {
		return l.classes, nil
	}
	def, err := defaultName(l.typ, l.defaultValue)
	if err != nil {
		return nil, err
	}
	m, err = l.reg.scan(l.typ)
	if err != nil {
		return nil, err
	}
	l.defaultName = def
	l.classes = m
	return m, nil
}

// create returns the process-wide instance for the implementation bound to
// name, constructing it when this concrete type was never instantiated. Two
// names aliasing one concrete type share a single instance.
func (l *Loader[T]) create(name string, impl implementation) (any, error) {
	if v, ok := l.reg.sharedInstance(impl.typ); ok {
		return v, nil
	}
	v, err := construct(impl)
	if err != nil {
		return nil, &InstantiationError{Service: l.typ, Name: name, Cause: err}
	}
	return l.reg.shareInstance(impl.typ, v), nil
}

func construct(impl implementation) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("constructor panic: %v", p)
		}
	}()
	v, err = impl.factory()
	if err == nil && v == nil {
		err = fmt.Errorf("constructor returned nil")
	}
	return v, err
}

// defaultName validates and extracts the declared default from the raw
// marker value. At most one comma-separated token is allowed.
func defaultName(service reflect.Type, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	var names []string
	for _, tok := range strings.Split(value, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			names = append(names, tok)
		}
	}
	if len(names) > 1 {
		return "", &ConfigurationError{
			Service: service,
			Reason:  fmt.Sprintf("more than one default name declared: %v", names),
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}
