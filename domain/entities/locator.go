package entities

import (
	"fmt"
	"strings"
)

// Lookup strategy identifiers. The values match the WebDriver wire protocol
// strings so the Selenium adapter can pass them through unchanged.
const (
	ByID       = "id"
	ByName     = "name"
	ByTagName  = "tag name"
	ByClass    = "class name"
	ByLinkText = "link text"
	ByCSS      = "css selector"
	ByXPath    = "xpath"
	ByChained  = "chained"
)

// Strategy describes how to find an element. It is a descriptor only: no
// lookup happens until a scope adapter resolves it.
type Strategy struct {
	By    string
	Value string

	// Parts is set only for ByChained. Parts are evaluated left to right,
	// each one scoped inside the previous match.
	Parts []Strategy
}

// Key identifies a strategy by value, for de-duplication.
func (s Strategy) Key() string {
	return s.By + "\x00" + s.Value
}

func (s Strategy) String() string {
	if s.By == ByChained {
		parts := make([]string, len(s.Parts))
		for i, p := range s.Parts {
			parts[i] = p.String()
		}
		return strings.Join(parts, " -> ")
	}
	return fmt.Sprintf("%s=%s", s.By, s.Value)
}

// Chain wraps strategies into a single chained strategy.
func Chain(parts ...Strategy) Strategy {
	joined := make([]string, len(parts))
	for i, p := range parts {
		joined[i] = p.Key()
	}
	return Strategy{
		By:    ByChained,
		Value: strings.Join(joined, "|"),
		Parts: parts,
	}
}

// Compose collapses a merged locator set into the form a property receives:
// more than one strategy becomes a single chained strategy preserving order,
// exactly one stays unwrapped, zero stays empty.
func Compose(strategies []Strategy) []Strategy {
	if len(strategies) > 1 {
		return []Strategy{Chain(strategies...)}
	}
	return strategies
}

// DefaultLookup is the fallback used by element proxies that were given no
// explicit locators: match by id or name equal to the field name.
func DefaultLookup(fieldName string) Strategy {
	return Strategy{
		By:    ByCSS,
		Value: fmt.Sprintf(`[id=%q], [name=%q]`, fieldName, fieldName),
	}
}
