package entities

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Struct tag keys recognized on page type fields.
const (
	LocateTag = "locate"
	FindTag   = "find"
)

// LocatorSpec carries the per-field locator metadata of the `locate` tag.
// Every field is optional; each present field yields one strategy.
type LocatorSpec struct {
	ID       string
	Name     string
	TagName  string
	Class    string
	LinkText string
}

// IsZero reports whether no field is populated.
func (l LocatorSpec) IsZero() bool {
	return l == LocatorSpec{}
}

// Strategies resolves the spec into an ordered strategy list. The field
// order is fixed: id, name, tag, class, link text.
func (l LocatorSpec) Strategies() []Strategy {
	var out []Strategy
	if l.ID != "" {
		out = append(out, Strategy{By: ByID, Value: l.ID})
	}
	if l.Name != "" {
		out = append(out, Strategy{By: ByName, Value: l.Name})
	}
	if l.TagName != "" {
		out = append(out, Strategy{By: ByTagName, Value: l.TagName})
	}
	if l.Class != "" {
		out = append(out, Strategy{By: ByClass, Value: l.Class})
	}
	if l.LinkText != "" {
		out = append(out, Strategy{By: ByLinkText, Value: l.LinkText})
	}
	return out
}

// ParseLocate parses a `locate` tag value. Entries are separated by ';',
// each one `key=value` with keys id, name, tag, class, text. The value "-"
// is handled by the caller (field skip) and never reaches here.
func ParseLocate(tag string) (LocatorSpec, error) {
	var spec LocatorSpec
	for _, entry := range splitEntries(tag) {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			return LocatorSpec{}, fmt.Errorf("malformed locate entry %q: missing '='", entry)
		}
		switch key {
		case "id":
			spec.ID = value
		case "name":
			spec.Name = value
		case "tag":
			spec.TagName = value
		case "class":
			spec.Class = value
		case "text":
			spec.LinkText = value
		default:
			return LocatorSpec{}, fmt.Errorf("unknown locate key %q", key)
		}
	}
	return spec, nil
}

// NativeFind is one automation-native locator entry from the `find` tag.
// Lower priority values are evaluated first.
type NativeFind struct {
	How      string
	Using    string
	Priority int
}

var nativeHow = map[string]string{
	"id":    ByID,
	"name":  ByName,
	"tag":   ByTagName,
	"class": ByClass,
	"text":  ByLinkText,
	"css":   ByCSS,
	"xpath": ByXPath,
}

// ParseFind parses a `find` tag value. Entries are separated by ';', each
// optionally prefixed "N:" for priority, body "how=value".
func ParseFind(tag string) ([]NativeFind, error) {
	var out []NativeFind
	for _, entry := range splitEntries(tag) {
		priority := 0
		if prefix, rest, ok := strings.Cut(entry, ":"); ok {
			if n, err := strconv.Atoi(prefix); err == nil {
				priority = n
				entry = rest
			}
		}
		how, using, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("malformed find entry %q: missing '='", entry)
		}
		if _, known := nativeHow[how]; !known {
			return nil, fmt.Errorf("unknown find strategy %q", how)
		}
		out = append(out, NativeFind{How: how, Using: using, Priority: priority})
	}
	return out, nil
}

// Strategy translates the native entry into the internal representation.
func (n NativeFind) Strategy() Strategy {
	return Strategy{By: nativeHow[n.How], Value: n.Using}
}

// MergeNative merges automation-native locators into an already resolved
// strategy list. Natives without a value are discarded, the rest are ordered
// by ascending priority and appended unless an equal strategy (by value) is
// already present. The resolved entries stay authoritative and first.
func MergeNative(resolved []Strategy, natives []NativeFind) []Strategy {
	merged := make([]Strategy, len(resolved))
	copy(merged, resolved)

	seen := mapset.NewThreadUnsafeSet[string]()
	for _, s := range merged {
		seen.Add(s.Key())
	}

	usable := make([]NativeFind, 0, len(natives))
	for _, n := range natives {
		if n.Using != "" {
			usable = append(usable, n)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Priority < usable[j].Priority
	})

	for _, n := range usable {
		s := n.Strategy()
		if seen.Add(s.Key()) {
			merged = append(merged, s)
		}
	}
	return merged
}

func splitEntries(tag string) []string {
	var out []string
	for _, entry := range strings.Split(tag, ";") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
