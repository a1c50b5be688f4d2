package factory

import (
	"fmt"
	"reflect"

	"pagefactory/domain/entities"
)

// classification of a page property by its declared type.
type classification int

const (
	singleElement classification = iota
	elementCollection
	nestedPage
)

func (c classification) String() string {
	switch c {
	case singleElement:
		return "single-element"
	case elementCollection:
		return "element-collection"
	default:
		return "nested-page"
	}
}

// plan is the cached construction plan of one page type: the chosen
// constructor plus one entry per settable property. Immutable once derived.
type plan struct {
	target reflect.Type
	ctor   chosen
	props  []propertyPlan
}

// propertyPlan describes how one property is populated.
type propertyPlan struct {
	name     string
	index    int
	kind     classification
	declared reflect.Type

	// merged locator set, for single-element and collection properties
	strategies []entities.Strategy
	// constructor of the concrete wrapper, for single-element and
	// collection properties
	wrapper chosen

	// nested plan, for nested-page properties
	nested *plan
}

// derivePlan walks a page type and produces its construction plan. deriving
// tracks in-progress types to reject recursive page graphs.
func (f *PageFactory) derivePlan(target reflect.Type, deriving map[reflect.Type]bool) (*plan, error) {
	if deriving[target] {
		return nil, fmt.Errorf("recursive page type %s", target)
	}
	deriving[target] = true
	defer delete(deriving, target)

	ctor, err := f.registry.selectConstructor(target)
	if err != nil {
		return nil, err
	}

	walk := ctor.produces
	for walk.Kind() == reflect.Pointer {
		walk = walk.Elem()
	}
	if walk.Kind() != reflect.Struct {
		return nil, fmt.Errorf("page type %s is not a struct", walk)
	}

	p := &plan{target: target, ctor: ctor}
	for i := 0; i < walk.NumField(); i++ {
		field := walk.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Tag.Get(entities.LocateTag) == "-" {
			continue
		}

		entry, err := f.deriveProperty(field, i, deriving)
		if err != nil {
			return nil, fmt.Errorf("property %s.%s: %w", walk.Name(), field.Name, err)
		}
		p.props = append(p.props, entry)
	}

	f.logger.Debugf("derived construction plan for %s (%d properties)", walk, len(p.props))
	return p, nil
}

func (f *PageFactory) deriveProperty(field reflect.StructField, index int, deriving map[reflect.Type]bool) (propertyPlan, error) {
	entry := propertyPlan{name: field.Name, index: index, declared: field.Type}

	switch {
	case f.isCollection(field.Type):
		entry.kind = elementCollection

	case f.isElement(field.Type):
		entry.kind = singleElement

	case isPageType(field.Type) || field.Type.Kind() == reflect.Interface:
		entry.kind = nestedPage
		nested, err := f.planFor(field.Type, deriving)
		if err != nil {
			return propertyPlan{}, err
		}
		entry.nested = nested
		return entry, nil

	default:
		return propertyPlan{}, fmt.Errorf("unsupported property type %s", field.Type)
	}

	strategies, err := mergedStrategies(field)
	if err != nil {
		return propertyPlan{}, err
	}
	entry.strategies = strategies

	wrapper, err := f.wrapperFor(entry.kind, field.Type)
	if err != nil {
		return propertyPlan{}, err
	}
	entry.wrapper = wrapper
	return entry, nil
}

// mergedStrategies resolves the field's locate metadata and merges the
// automation-native find metadata into it.
func mergedStrategies(field reflect.StructField) ([]entities.Strategy, error) {
	var resolved []entities.Strategy
	if tag, ok := field.Tag.Lookup(entities.LocateTag); ok {
		spec, err := entities.ParseLocate(tag)
		if err != nil {
			return nil, err
		}
		resolved = spec.Strategies()
	}

	var natives []entities.NativeFind
	if tag, ok := field.Tag.Lookup(entities.FindTag); ok {
		parsed, err := entities.ParseFind(tag)
		if err != nil {
			return nil, err
		}
		natives = parsed
	}

	return entities.MergeNative(resolved, natives), nil
}

// wrapperFor selects the constructor of the concrete element or collection
// wrapper, applying the capability substitution: a property declared as the
// capability interface is instantiated as the registered concrete type.
func (f *PageFactory) wrapperFor(kind classification, declared reflect.Type) (chosen, error) {
	concrete := declared
	if declared.Kind() == reflect.Interface {
		switch kind {
		case singleElement:
			concrete = f.registry.elementImpl
		case elementCollection:
			concrete = f.registry.collectionImpl
		}
		if concrete == nil {
			return chosen{}, fmt.Errorf("no concrete wrapper registered for capability %s", declared)
		}
	}
	return f.registry.selectConstructor(concrete)
}

func (f *PageFactory) isElement(t reflect.Type) bool {
	if t == elementType {
		return true
	}
	return t.Kind() != reflect.Interface && t.Implements(elementType)
}

func (f *PageFactory) isCollection(t reflect.Type) bool {
	if t == collectionType {
		return true
	}
	return t.Kind() != reflect.Interface && t.Implements(collectionType)
}

func isPageType(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// planFor returns the cached plan for a type, deriving it on first use.
// Concurrent first use is safe: the first stored plan wins and a redundant
// derivation is discarded.
func (f *PageFactory) planFor(target reflect.Type, deriving map[reflect.Type]bool) (*plan, error) {
	f.mu.RLock()
	cached, ok := f.plans[target]
	f.mu.RUnlock()
	if ok {
		return cached, nil
	}

	derived, err := f.derivePlan(target, deriving)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if cached, ok := f.plans[target]; ok {
		return cached, nil
	}
	f.plans[target] = derived
	return derived, nil
}
