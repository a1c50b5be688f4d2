package interfaces

import (
	"context"

	"pagefactory/domain/entities"
)

// SearchContext is a scope within which elements can be found: a whole
// browser session or an element acting as a sub-scope.
type SearchContext interface {
	// FindHandle finds the first element matching the strategy.
	FindHandle(strategy entities.Strategy) (Handle, error)

	// FindHandles finds all elements matching the strategy.
	FindHandles(strategy entities.Strategy) ([]Handle, error)
}

// Driver is the full browser session capability. It is a SearchContext plus
// the page-level operations construction glue needs.
type Driver interface {
	SearchContext

	// Navigate navigates to a URL
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the current page URL
	CurrentURL(ctx context.Context) (string, error)

	// PageTitle returns the current page title
	PageTitle(ctx context.Context) (string, error)

	// Close closes the browser session
	Close() error
}

// Handle is a resolved element. A handle is itself a SearchContext so
// chained strategies can resolve inside it.
type Handle interface {
	SearchContext

	// Click clicks the element
	Click() error

	// Fill clears the element and types text into it
	Fill(text string) error

	// Text returns the visible text of the element
	Text() (string, error)

	// Visible checks if the element is displayed
	Visible() (bool, error)

	// Attr returns the value of an attribute
	Attr(name string) (string, error)
}

// Element is the lazy single-element capability a page property is bound to.
// Lookup is deferred until an interaction resolves the handle.
type Element interface {
	// Assign configures lazy resolution with the given locator strategies
	// without querying the underlying system.
	Assign(strategies ...entities.Strategy)

	// Resolve performs the deferred lookup
	Resolve() (Handle, error)

	Click() error
	Fill(text string) error
	Text() (string, error)
	Visible() (bool, error)
	Attr(name string) (string, error)
}

// ElementCollection is the lazy element-collection capability, enumerating
// matches at access time.
type ElementCollection interface {
	// Assign configures lazy resolution with the given locator strategies
	Assign(strategies ...entities.Strategy)

	// All enumerates the matching elements
	All() ([]Handle, error)

	// Count returns the number of matching elements
	Count() (int, error)
}

// ScopeAware is implemented by page types that accept the scope they were
// built in. It stands in for a single-argument search-context constructor.
type ScopeAware interface {
	SetScope(scope SearchContext)
}

// Scoped is implemented by page types that expose their own scope, used as
// the parent context when their nested members are built.
type Scoped interface {
	Scope() SearchContext
}

// FieldAware receives the name of the field a wrapper was built for, which
// feeds the default lookup when no locators were assigned.
type FieldAware interface {
	SetFieldName(name string)
}
