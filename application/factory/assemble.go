package factory

import (
	"fmt"
	"reflect"

	"pagefactory/domain/entities"
	"pagefactory/domain/interfaces"
)

// assemble allocates the plan's target, populates every property and fires
// the completion callback once the instance is fully built. Nested pages are
// assembled recursively with the current instance as the new parent
// expression, so their constructors see either the enclosing fragment's
// scope or the tracked root.
func (f *PageFactory) assemble(p *plan, parent, root scopeExpr, onBuilt func(any)) (reflect.Value, error) {
	inst, err := p.ctor.invoke(parent, root)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("constructing %s: %w", p.target, err)
	}

	strukt := inst
	for strukt.Kind() == reflect.Pointer {
		strukt = strukt.Elem()
	}

	scope := f.scopeOf(inst, parent, root)

	for i := range p.props {
		prop := &p.props[i]
		field := strukt.Field(prop.index)

		switch prop.kind {
		case singleElement, elementCollection:
			wrapper, err := prop.wrapper.invoke(scope, root)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("property %s: %w", prop.name, err)
			}
			if named, ok := wrapper.Interface().(interfaces.FieldAware); ok {
				named.SetFieldName(prop.name)
			}
			if composed := entities.Compose(prop.strategies); len(composed) > 0 {
				wrapper.Interface().(assignable).Assign(composed...)
			}
			field.Set(wrapper)

		case nestedPage:
			nestedParent := scopeExpr{value: inst, static: p.ctor.produces}
			if s, ok := inst.Interface().(interfaces.Scoped); ok {
				if sc := s.Scope(); sc != nil {
					nestedParent = scopeExpr{
						value:  reflect.ValueOf(sc),
						static: searchContextType,
					}
				}
			}
			nested, err := f.assemble(prop.nested, nestedParent, root, onBuilt)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("property %s: %w", prop.name, err)
			}
			if !nested.Type().AssignableTo(field.Type()) && nested.Kind() == reflect.Pointer {
				nested = nested.Elem()
			}
			field.Set(nested)
		}
	}

	if onBuilt != nil {
		onBuilt(inst.Interface())
	}
	return inst, nil
}

// assignable is the shared locator-assignment capability of element and
// collection wrappers.
type assignable interface {
	Assign(strategies ...entities.Strategy)
}

// scopeOf decides which scope the instance's own properties resolve in: the
// instance's exposed scope when it has one, otherwise the scope it was
// built in.
func (f *PageFactory) scopeOf(inst reflect.Value, parent, root scopeExpr) scopeExpr {
	if s, ok := inst.Interface().(interfaces.Scoped); ok {
		if sc := s.Scope(); sc != nil {
			return scopeExpr{value: reflect.ValueOf(sc), static: searchContextType}
		}
	}
	return chooseArg(parent, root)
}
