package browser

import (
	"fmt"

	"pagefactory/domain/entities"
	"pagefactory/domain/interfaces"
)

// Element is a lazy proxy for a single UI element. It holds a scope and the
// locator strategies assigned at page construction; no lookup happens until
// an interaction resolves the handle.
type Element struct {
	scope      interfaces.SearchContext
	strategies []entities.Strategy
	fieldName  string
}

// NewElement - creates lazy element proxy bound to a scope
func NewElement(scope interfaces.SearchContext) *Element {
	return &Element{scope: scope}
}

// Assign configures lazy resolution; it never queries the browser.
func (e *Element) Assign(strategies ...entities.Strategy) {
	e.strategies = strategies
}

// SetFieldName records the page field this proxy was built for, feeding the
// default lookup when no locators were assigned.
func (e *Element) SetFieldName(name string) {
	e.fieldName = name
}

// Selector describes the effective lookup, mainly for error messages.
func (e *Element) Selector() string {
	s, err := e.effective()
	if err != nil {
		return "<unlocated>"
	}
	return s.String()
}

func (e *Element) effective() (entities.Strategy, error) {
	return effectiveStrategy(e.strategies, e.fieldName)
}

// Resolve performs the deferred lookup.
func (e *Element) Resolve() (interfaces.Handle, error) {
	s, err := e.effective()
	if err != nil {
		return nil, err
	}
	h, err := resolveIn(e.scope, s)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", s, err)
	}
	return h, nil
}

// Click - resolves the element and clicks it
func (e *Element) Click() error {
	h, err := e.Resolve()
	if err != nil {
		return err
	}
	return h.Click()
}

// Fill - resolves the element, clears it and types text
func (e *Element) Fill(text string) error {
	h, err := e.Resolve()
	if err != nil {
		return err
	}
	return h.Fill(text)
}

// Text - resolves the element and returns its visible text
func (e *Element) Text() (string, error) {
	h, err := e.Resolve()
	if err != nil {
		return "", err
	}
	return h.Text()
}

// Visible - resolves the element and checks if it is displayed
func (e *Element) Visible() (bool, error) {
	h, err := e.Resolve()
	if err != nil {
		return false, err
	}
	return h.Visible()
}

// Attr - resolves the element and reads an attribute
func (e *Element) Attr(name string) (string, error) {
	h, err := e.Resolve()
	if err != nil {
		return "", err
	}
	return h.Attr(name)
}

// FindHandle makes a resolved element act as a sub-scope.
func (e *Element) FindHandle(strategy entities.Strategy) (interfaces.Handle, error) {
	h, err := e.Resolve()
	if err != nil {
		return nil, err
	}
	return resolveIn(h, strategy)
}

// FindHandles enumerates matches inside the resolved element.
func (e *Element) FindHandles(strategy entities.Strategy) ([]interfaces.Handle, error) {
	h, err := e.Resolve()
	if err != nil {
		return nil, err
	}
	return resolveAllIn(h, strategy)
}

// List is a lazy wrapper for a collection of elements, enumerating matches
// at access time.
type List struct {
	scope      interfaces.SearchContext
	strategies []entities.Strategy
	fieldName  string
}

// NewList - creates lazy element collection bound to a scope
func NewList(scope interfaces.SearchContext) *List {
	return &List{scope: scope}
}

// Assign configures lazy resolution; it never queries the browser.
func (l *List) Assign(strategies ...entities.Strategy) {
	l.strategies = strategies
}

// SetFieldName records the page field this collection was built for.
func (l *List) SetFieldName(name string) {
	l.fieldName = name
}

// All enumerates the matching elements.
func (l *List) All() ([]interfaces.Handle, error) {
	s, err := effectiveStrategy(l.strategies, l.fieldName)
	if err != nil {
		return nil, err
	}
	return resolveAllIn(l.scope, s)
}

// Count returns the number of matching elements.
func (l *List) Count() (int, error) {
	handles, err := l.All()
	if err != nil {
		return 0, err
	}
	return len(handles), nil
}

// effectiveStrategy collapses an assigned strategy set into the single
// lookup to perform: many strategies chain, one stays as is and an empty
// set falls back to the field-name default lookup.
func effectiveStrategy(strategies []entities.Strategy, fieldName string) (entities.Strategy, error) {
	switch len(strategies) {
	case 0:
		if fieldName == "" {
			return entities.Strategy{}, fmt.Errorf("no locators assigned")
		}
		return entities.DefaultLookup(fieldName), nil
	case 1:
		return strategies[0], nil
	default:
		return entities.Chain(strategies...), nil
	}
}

// resolveIn finds the first match for a strategy inside a scope. Chained
// strategies are folded left to right, each part resolving inside the
// previous match.
func resolveIn(scope interfaces.SearchContext, s entities.Strategy) (interfaces.Handle, error) {
	if s.By != entities.ByChained {
		return scope.FindHandle(s)
	}
	var h interfaces.Handle
	for _, part := range s.Parts {
		found, err := scope.FindHandle(part)
		if err != nil {
			return nil, err
		}
		h = found
		scope = found
	}
	if h == nil {
		return nil, fmt.Errorf("empty chained strategy")
	}
	return h, nil
}

// resolveAllIn finds all matches for a strategy inside a scope. For chained
// strategies every part but the last narrows the scope to a single match
// and the last part enumerates.
func resolveAllIn(scope interfaces.SearchContext, s entities.Strategy) ([]interfaces.Handle, error) {
	if s.By != entities.ByChained {
		return scope.FindHandles(s)
	}
	if len(s.Parts) == 0 {
		return nil, fmt.Errorf("empty chained strategy")
	}
	for _, part := range s.Parts[:len(s.Parts)-1] {
		found, err := scope.FindHandle(part)
		if err != nil {
			return nil, err
		}
		scope = found
	}
	return scope.FindHandles(s.Parts[len(s.Parts)-1])
}
