package spi

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrEmptyName is returned by lookup operations given a blank service name.
var ErrEmptyName = errors.New("spi: service name is empty")

// InvalidServiceTypeError reports a type that cannot act as a service type:
// it is not an interface, or it was never declared extensible.
type InvalidServiceTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *InvalidServiceTypeError) Error() string {
	return fmt.Sprintf("spi: invalid service type %s: %s", typeName(e.Type), e.Reason)
}

// ConfigurationError reports a structural problem found while computing a
// service type's class map: more than one default name declared, or a
// descriptor entry whose implementation does not satisfy the contract.
type ConfigurationError struct {
	Service reflect.Type
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("spi: service %s: %s", typeName(e.Service), e.Reason)
}

// DuplicateNameError reports one name bound to two distinct implementation
// types across descriptor resources of the same service type.
type DuplicateNameError struct {
	Service reflect.Type
	Name    string
	First   reflect.Type
	Second  reflect.Type
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("spi: service %s: duplicate name %q bound to both %s and %s",
		typeName(e.Service), e.Name, typeName(e.First), typeName(e.Second))
}

// NotFoundError reports a name absent from a service type's class map.
type NotFoundError struct {
	Service reflect.Type
	Name    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("spi: no service %s registered under name %q", typeName(e.Service), e.Name)
}

// InstantiationError wraps a failure to construct an implementation,
// including panics escaping its factory.
type InstantiationError struct {
	Service reflect.Type
	Name    string
	Cause   error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("spi: service %s name %q could not be instantiated: %v",
		typeName(e.Service), e.Name, e.Cause)
}

// Unwrap returns the underlying construction failure.
func (e *InstantiationError) Unwrap() error { return e.Cause }
