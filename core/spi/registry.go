package spi

import (
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/nativegroup/gospi/core/logger"
)

// DefaultDescriptorDir is the directory prefix, inside every resource root,
// under which descriptor resources are looked up by service type name.
const DefaultDescriptorDir = "native-services"

// Factory constructs one implementation instance. It corresponds to the
// zero-argument constructor of the descriptor model; factories must not
// depend on call order or count, as the registry invokes them at most once
// per concrete type outside of discarded race losers.
type Factory func() (any, error)

type implementation struct {
	typ     reflect.Type
	factory Factory
}

type declaration struct {
	typ          reflect.Type
	defaultValue string // raw marker value, validated at first class map computation
}

type root struct {
	fsys  fs.FS
	label string
}

// Registry owns every piece of shared state of the discovery mechanism: the
// extensible-type declarations, the implementation table resolving type
// references from descriptor lines, the per-service-type loaders and the
// process-wide concrete-type to instance table. Create one per program and
// pass it by reference; all methods are safe for concurrent use.
type Registry struct {
	log           logger.Logger
	descriptorDir string
	roots         []root

	mu      sync.RWMutex
	decls   map[reflect.Type]declaration
	impls   map[string]implementation
	loaders map[reflect.Type]any // *Loader[T], keyed by the interface type
	shared  map[reflect.Type]any // concrete type -> singleton instance
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for discovery diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithRoot adds a resource root. Roots are scanned in registration order;
// embed.FS values work as well as os.DirFS ones.
func WithRoot(fsys fs.FS) Option {
	return func(r *Registry) { r.roots = append(r.roots, root{fsys: fsys, label: "fs"}) }
}

// WithRootDir adds a filesystem directory as a resource root.
func WithRootDir(dir string) Option {
	return func(r *Registry) { r.roots = append(r.roots, root{fsys: os.DirFS(dir), label: dir}) }
}

// WithDescriptorDir overrides the descriptor directory prefix.
func WithDescriptorDir(dir string) Option {
	return func(r *Registry) { r.descriptorDir = dir }
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		log:           logger.NopLogger{},
		descriptorDir: DefaultDescriptorDir,
		decls:         make(map[reflect.Type]declaration),
		impls:         make(map[string]implementation),
		loaders:       make(map[reflect.Type]any),
		shared:        make(map[reflect.Type]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DeclareOption configures an extensible type declaration.
type DeclareOption func(*declaration)

// WithDefault sets the default implementation name for the declared type.
// The value is validated when the type's class map is first computed; a
// comma-separated value with more than one token is a configuration error.
func WithDefault(name string) DeclareOption {
	return func(d *declaration) { d.defaultValue = name }
}

// Declare marks interface type T as extensible, the equivalent of the
// original marker annotation. It fails when T is not an interface or was
// already declared.
func Declare[T any](r *Registry, opts ...DeclareOption) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		return &InvalidServiceTypeError{Type: t, Reason: "not an interface"}
	}
	d := declaration{typ: t}
	for _, opt := range opts {
		opt(&d)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decls[t]; exists {
		return fmt.Errorf("spi: service type %s already declared", typeName(t))
	}
	r.decls[t] = d
	return nil
}

// Provide registers concrete type C in the implementation table under the
// given qualified name, with a zero-value constructor. Descriptor lines
// referencing the name resolve to *C.
func Provide[C any](r *Registry, qualifiedName string) error {
	t := reflect.TypeOf((*C)(nil))
	return r.ProvideFactory(qualifiedName, t, func() (any, error) { return new(C), nil })
}

// ProvideFactory registers an implementation type with a custom factory.
// typ must be the concrete type the factory returns.
func (r *Registry) ProvideFactory(qualifiedName string, typ reflect.Type, fn Factory) error {
	if strings.TrimSpace(qualifiedName) == "" {
		return fmt.Errorf("spi: implementation type name is blank")
	}
	if typ == nil || fn == nil {
		return fmt.Errorf("spi: implementation %s: nil type or factory", qualifiedName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.impls[qualifiedName]; exists {
		return fmt.Errorf("spi: implementation type %s already provided", qualifiedName)
	}
	r.impls[qualifiedName] = implementation{typ: typ, factory: fn}
	return nil
}

// LoaderFor returns the singleton loader for service type T, creating it on
// first use. Concurrent first callers may each build a candidate; only one
// is published and the losers adopt it.
func LoaderFor[T any](r *Registry) (*Loader[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		return nil, &InvalidServiceTypeError{Type: t, Reason: "not an interface"}
	}
	r.mu.RLock()
	decl, declared := r.decls[t]
	existing := r.loaders[t]
	r.mu.RUnlock()
	if !declared {
		return nil, &InvalidServiceTypeError{Type: t, Reason: "not declared extensible"}
	}
	if existing != nil {
		return existing.(*Loader[T]), nil
	}
	candidate := newLoader[T](r, decl)
	r.mu.Lock()
	if prior := r.loaders[t]; prior != nil {
		r.mu.Unlock()
		return prior.(*Loader[T]), nil
	}
	r.loaders[t] = candidate
	r.mu.Unlock()
	return candidate, nil
}

func (r *Registry) resolveImpl(ref string) (implementation, bool) {
	r.mu.RLock()
	impl, ok := r.impls[ref]
	r.mu.RUnlock()
	return impl, ok
}

func (r *Registry) sharedInstance(t reflect.Type) (any, bool) {
	r.mu.RLock()
	v, ok := r.shared[t]
	r.mu.RUnlock()
	return v, ok
}

// shareInstance publishes v for concrete type t unless another instance won
// the race first, in which case v is discarded and the winner returned.
func (r *Registry) shareInstance(t reflect.Type, v any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prior, ok := r.shared[t]; ok {
		return prior
	}
	r.shared[t] = v
	return v
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
