// Package factory builds page object graphs from declarative type metadata.
//
// A page type is a plain struct whose fields carry locator metadata in
// `locate` and `find` tags. The factory inspects the type once, derives a
// construction plan (which constructor to call, how each property is
// classified and located) and caches it, so repeated construction of the
// same page type skips re-derivation. Building a page wires every element
// field to a lazily resolving wrapper and recurses into nested fragment
// types; no manual find or bind code is needed.
package factory

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"pagefactory/domain/interfaces"
)

// PageFactory derives and caches construction plans and assembles page
// instances from them.
type PageFactory struct {
	registry *Registry
	logger   *logrus.Logger

	mu    sync.RWMutex
	plans map[reflect.Type]*plan
}

// New - creates page factory backed by the given registry
func New(registry *Registry, logger *logrus.Logger) *PageFactory {
	if logger == nil {
		logger = logrus.New()
	}
	return &PageFactory{
		registry: registry,
		logger:   logger,
		plans:    make(map[reflect.Type]*plan),
	}
}

// BuildOption configures a single build call.
type BuildOption func(*buildOptions)

type buildOptions struct {
	onBuilt func(any)
}

// OnBuilt registers a completion callback invoked once per built page
// object (pages and nested fragments), after the object is fully populated.
func OnBuilt(fn func(page any)) BuildOption {
	return func(o *buildOptions) { o.onBuilt = fn }
}

// Build constructs an instance of the given target type inside a scope. The
// scope doubles as the tracked root context for nested constructors that
// need the page root rather than their immediate parent.
func (f *PageFactory) Build(target reflect.Type, scope interfaces.SearchContext, opts ...BuildOption) (any, error) {
	if scope == nil {
		return nil, fmt.Errorf("factory: nil scope for %s", target)
	}
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	p, err := f.planFor(target, make(map[reflect.Type]bool))
	if err != nil {
		return nil, fmt.Errorf("deriving plan for %s: %w", target, err)
	}

	rootExpr := scopeExpr{value: reflect.ValueOf(scope), static: searchContextType}
	inst, err := f.assemble(p, rootExpr, rootExpr, o.onBuilt)
	if err != nil {
		return nil, err
	}
	return inst.Interface(), nil
}

// Create builds a page of type T inside a scope.
func Create[T any](f *PageFactory, scope interfaces.SearchContext, opts ...BuildOption) (*T, error) {
	built, err := f.Build(reflect.TypeOf((*T)(nil)), scope, opts...)
	if err != nil {
		return nil, err
	}
	page, ok := built.(*T)
	if !ok {
		return nil, fmt.Errorf("factory: built %T, expected %T", built, (*T)(nil))
	}
	return page, nil
}
