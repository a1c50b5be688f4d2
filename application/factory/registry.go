package factory

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"pagefactory/domain/interfaces"
)

var (
	searchContextType = reflect.TypeOf((*interfaces.SearchContext)(nil)).Elem()
	elementType       = reflect.TypeOf((*interfaces.Element)(nil)).Elem()
	collectionType    = reflect.TypeOf((*interfaces.ElementCollection)(nil)).Elem()
	scopeAwareType    = reflect.TypeOf((*interfaces.ScopeAware)(nil)).Elem()
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
)

// Registry maps page, element and collection types to the factory functions
// that construct them. It is populated once at startup; the backend adapter
// registers its concrete element and collection types here.
type Registry struct {
	factories map[reflect.Type][]ctor

	// concrete wrapper types substituted for the capability interfaces
	elementImpl    reflect.Type
	collectionImpl reflect.Type

	logger *logrus.Logger
}

// ctor is one construction candidate for a type. A nil arg means a
// zero-argument candidate.
type ctor struct {
	fn       reflect.Value
	arg      reflect.Type
	produces reflect.Type
}

// NewRegistry - creates empty factory registry
func NewRegistry(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		factories: make(map[reflect.Type][]ctor),
		logger:    logger,
	}
}

// Register registers a factory function for a page or fragment type. The
// function must be `func() *T`, `func(scope) *T` or the same with a trailing
// error result, where the scope parameter satisfies the SearchContext
// capability. Multiple registrations for one type are kept in order; the
// selector prefers the first scope-accepting one.
func (r *Registry) Register(fn any) {
	c := r.mustCtor(fn)
	r.logger.Debugf("registering factory for %s", c.produces)
	r.factories[c.produces] = append(r.factories[c.produces], c)
}

// RegisterElement registers the concrete single-element wrapper constructed
// for properties declared with the Element capability.
func (r *Registry) RegisterElement(fn any) {
	c := r.mustCtor(fn)
	if !c.produces.Implements(elementType) {
		panic(fmt.Sprintf("factory: %s does not implement the Element capability", c.produces))
	}
	r.logger.Debugf("registering element wrapper %s", c.produces)
	r.elementImpl = c.produces
	r.factories[c.produces] = append(r.factories[c.produces], c)
}

// RegisterCollection registers the concrete collection wrapper constructed
// for properties declared with the ElementCollection capability.
func (r *Registry) RegisterCollection(fn any) {
	c := r.mustCtor(fn)
	if !c.produces.Implements(collectionType) {
		panic(fmt.Sprintf("factory: %s does not implement the ElementCollection capability", c.produces))
	}
	r.logger.Debugf("registering collection wrapper %s", c.produces)
	r.collectionImpl = c.produces
	r.factories[c.produces] = append(r.factories[c.produces], c)
}

func (r *Registry) mustCtor(fn any) ctor {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		panic(fmt.Sprintf("factory: Register expects a function, got %s", t))
	}
	if t.NumOut() < 1 || t.NumOut() > 2 {
		panic(fmt.Sprintf("factory: %s must return the instance and optionally an error", t))
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(errorType) {
		panic(fmt.Sprintf("factory: second result of %s must be error", t))
	}
	c := ctor{fn: v, produces: t.Out(0)}
	if c.produces.Kind() == reflect.Interface {
		panic(fmt.Sprintf("factory: %s must return a concrete type, not %s", t, c.produces))
	}
	switch t.NumIn() {
	case 0:
	case 1:
		arg := t.In(0)
		if !satisfiesSearchContext(arg) {
			panic(fmt.Sprintf("factory: parameter of %s must accept a search context", t))
		}
		c.arg = arg
	default:
		panic(fmt.Sprintf("factory: %s must take at most one argument", t))
	}
	return c
}

// satisfiesSearchContext checks capability, not exact type: the parameter
// qualifies when a SearchContext (or anything broader, like Driver) can be
// passed to it.
func satisfiesSearchContext(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return searchContextType.Implements(t) || t.Implements(searchContextType)
	}
	return t.Implements(searchContextType)
}

// scopeExpr is a context argument candidate: the value to pass plus the
// static type it was seen as, which drives the root-vs-parent choice.
type scopeExpr struct {
	value  reflect.Value
	static reflect.Type
}

func (e scopeExpr) valid() bool {
	return e.static != nil && e.value.IsValid()
}

func (e scopeExpr) searchCompatible() bool {
	return e.static != nil && satisfiesSearchContext(e.static)
}

// chosen is a constructor selection result bound to plan derivation time.
type chosen struct {
	ctor     ctor
	produces reflect.Type

	// implicitScope marks the ScopeAware convention: allocate, then hand
	// the scope over through SetScope.
	implicitScope bool
	// implicitZero marks plain allocation of a struct type.
	implicitZero bool
}

// selectConstructor picks the construction candidate for a target type.
// Registered factories are considered in registration order; a
// scope-accepting candidate wins over a zero-argument one. The ScopeAware
// convention counts as a scope-accepting constructor and plain allocation of
// a struct kind as the zero-argument fallback. An interface type with no
// registration is unresolvable.
func (r *Registry) selectConstructor(target reflect.Type) (chosen, error) {
	candidates := r.factories[target]
	if len(candidates) == 0 && target.Kind() == reflect.Struct {
		// Fields may declare the value type while the factory returns a
		// pointer; the assembler dereferences on assignment.
		candidates = r.factories[reflect.PointerTo(target)]
	}

	for _, c := range candidates {
		if c.arg != nil {
			return chosen{ctor: c, produces: c.produces}, nil
		}
	}

	alloc := target
	if alloc.Kind() == reflect.Pointer {
		alloc = alloc.Elem()
	}
	if alloc.Kind() == reflect.Struct {
		if reflect.PointerTo(alloc).Implements(scopeAwareType) {
			return chosen{produces: reflect.PointerTo(alloc), implicitScope: true}, nil
		}
	}

	for _, c := range candidates {
		if c.arg == nil {
			return chosen{ctor: c, produces: c.produces}, nil
		}
	}

	if alloc.Kind() == reflect.Struct {
		return chosen{produces: reflect.PointerTo(alloc), implicitZero: true}, nil
	}

	return chosen{}, fmt.Errorf("no usable constructor for %s", target)
}

// chooseArg applies the root-vs-parent rule: pass the immediate parent
// unless a root context is available and the parent expression's static type
// is not itself search-context-compatible.
func chooseArg(parent, root scopeExpr) scopeExpr {
	if root.valid() && !parent.searchCompatible() {
		return root
	}
	return parent
}

// invoke runs the chosen constructor with the selected context argument.
func (c chosen) invoke(parent, root scopeExpr) (reflect.Value, error) {
	switch {
	case c.implicitZero:
		return reflect.New(c.produces.Elem()), nil

	case c.implicitScope:
		inst := reflect.New(c.produces.Elem())
		arg := chooseArg(parent, root)
		scope, ok := arg.value.Interface().(interfaces.SearchContext)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%s context is not a search context", c.produces)
		}
		inst.Interface().(interfaces.ScopeAware).SetScope(scope)
		return inst, nil

	case c.ctor.arg != nil:
		arg := chooseArg(parent, root)
		if !arg.valid() {
			return reflect.Value{}, fmt.Errorf("no context available to construct %s", c.produces)
		}
		val := arg.value
		if !val.Type().AssignableTo(c.ctor.arg) {
			return reflect.Value{}, fmt.Errorf("context %s is not assignable to %s parameter %s",
				val.Type(), c.produces, c.ctor.arg)
		}
		return c.callResult(c.ctor.fn.Call([]reflect.Value{val}))

	default:
		return c.callResult(c.ctor.fn.Call(nil))
	}
}

func (c chosen) callResult(out []reflect.Value) (reflect.Value, error) {
	if len(out) == 2 && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}
	return out[0], nil
}
