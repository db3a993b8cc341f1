package spi

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"reflect"
)

// DescriptorPath returns the resource key of the descriptor for the given
// qualified service type name under dir.
func DescriptorPath(dir, serviceName string) string {
	return path.Join(dir, serviceName)
}

// scan aggregates the descriptor resources for one service type across all
// roots. Failures locating or reading a single resource are logged and that
// contributor yields nothing; contract violations and conflicting bindings
// abort the pass.
func (r *Registry) scan(service reflect.Type) (map[string]implementation, error) {
	key := DescriptorPath(r.descriptorDir, typeName(service))
	out := make(map[string]implementation)
	for _, rt := range r.roots {
		entries, err := readDescriptor(rt.fsys, key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			r.log.Errorf("spi: reading descriptor %s from root %s: %v", key, rt.label, err)
			continue
		}
		for _, e := range entries {
			if err := r.merge(out, service, rt.label, e); err != nil {
				return nil, err
			}
		}
	}
	r.log.Debugw("descriptor scan complete", map[string]any{
		"service": typeName(service),
		"names":   len(out),
	})
	return out, nil
}

func readDescriptor(fsys fs.FS, key string) ([]Entry, error) {
	f, err := fsys.Open(key)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDescriptor(f)
}

// merge inserts one descriptor entry into the aggregate map. Unresolvable
// type references are logged and skipped so one bad line cannot suppress the
// rest of the resource.
func (r *Registry) merge(out map[string]implementation, service reflect.Type, label string, e Entry) error {
	impl, ok := r.resolveImpl(e.TypeRef)
	if !ok {
		r.log.Warnf("spi: service %s: unknown implementation type %q in root %s, skipping",
			typeName(service), e.TypeRef, label)
		return nil
	}
	if !impl.typ.AssignableTo(service) {
		return &ConfigurationError{
			Service: service,
			Reason:  fmt.Sprintf("implementation %s (%q) does not satisfy the interface", typeName(impl.typ), e.TypeRef),
		}
	}
	if prev, exists := out[e.Name]; exists {
		if prev.typ == impl.typ {
			return nil
		}
		return &DuplicateNameError{Service: service, Name: e.Name, First: prev.typ, Second: impl.typ}
	}
	out[e.Name] = impl
	return nil
}
