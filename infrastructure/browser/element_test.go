package browser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagefactory/domain/entities"
	"pagefactory/domain/interfaces"
)

var (
	_ interfaces.Element           = (*Element)(nil)
	_ interfaces.ElementCollection = (*List)(nil)
	_ interfaces.SearchContext     = (*Element)(nil)
	_ interfaces.Driver            = (*SeleniumDriver)(nil)
	_ interfaces.Driver            = (*PlaywrightDriver)(nil)
)

// stubHandle is a recording Handle; children maps strategy keys to the
// handle a lookup inside this one yields.
type stubHandle struct {
	id       string
	children map[string]*stubHandle
	leaves   []interfaces.Handle
	attrs    map[string]string
	clicked  bool
}

func (h *stubHandle) FindHandle(s entities.Strategy) (interfaces.Handle, error) {
	if child, ok := h.children[s.Key()]; ok {
		return child, nil
	}
	return nil, fmt.Errorf("no element for %s", s)
}

func (h *stubHandle) FindHandles(s entities.Strategy) ([]interfaces.Handle, error) {
	return h.leaves, nil
}

func (h *stubHandle) Click() error                     { h.clicked = true; return nil }
func (h *stubHandle) Fill(string) error                { return nil }
func (h *stubHandle) Text() (string, error)            { return h.id, nil }
func (h *stubHandle) Visible() (bool, error)           { return true, nil }
func (h *stubHandle) Attr(name string) (string, error) { return h.attrs[name], nil }

// stubScope records the strategies it was asked to resolve.
type stubScope struct {
	children map[string]*stubHandle
	leaves   []interfaces.Handle
	asked    []entities.Strategy
}

func (s *stubScope) FindHandle(strategy entities.Strategy) (interfaces.Handle, error) {
	s.asked = append(s.asked, strategy)
	if child, ok := s.children[strategy.Key()]; ok {
		return child, nil
	}
	return nil, fmt.Errorf("no element for %s", strategy)
}

func (s *stubScope) FindHandles(strategy entities.Strategy) ([]interfaces.Handle, error) {
	s.asked = append(s.asked, strategy)
	return s.leaves, nil
}

func TestElementResolvesLazily(t *testing.T) {
	target := &stubHandle{id: "button"}
	scope := &stubScope{children: map[string]*stubHandle{
		entities.Strategy{By: entities.ByID, Value: "go"}.Key(): target,
	}}

	el := NewElement(scope)
	el.Assign(entities.Strategy{By: entities.ByID, Value: "go"})
	assert.Empty(t, scope.asked, "assignment must not query the browser")

	require.NoError(t, el.Click())
	assert.True(t, target.clicked)
	assert.Len(t, scope.asked, 1)
}

func TestElementChainedResolution(t *testing.T) {
	inner := &stubHandle{id: "inner"}
	outer := &stubHandle{id: "outer", children: map[string]*stubHandle{
		entities.Strategy{By: entities.ByClass, Value: "row"}.Key(): inner,
	}}
	scope := &stubScope{children: map[string]*stubHandle{
		entities.Strategy{By: entities.ByID, Value: "table"}.Key(): outer,
	}}

	el := NewElement(scope)
	el.Assign(entities.Chain(
		entities.Strategy{By: entities.ByID, Value: "table"},
		entities.Strategy{By: entities.ByClass, Value: "row"},
	))

	h, err := el.Resolve()
	require.NoError(t, err)
	text, _ := h.Text()
	assert.Equal(t, "inner", text, "chained parts must resolve left to right, each inside the previous")
}

func TestElementDefaultLookup(t *testing.T) {
	scope := &stubScope{}

	el := NewElement(scope)
	el.SetFieldName("Email")
	_, err := el.Resolve()
	require.Error(t, err, "stub has no matching element")

	require.Len(t, scope.asked, 1)
	assert.Equal(t, entities.DefaultLookup("Email"), scope.asked[0])
}

func TestElementAttrReadsLazily(t *testing.T) {
	target := &stubHandle{attrs: map[string]string{"href": "/account"}}
	scope := &stubScope{children: map[string]*stubHandle{
		entities.Strategy{By: entities.ByID, Value: "profile"}.Key(): target,
	}}

	el := NewElement(scope)
	el.Assign(entities.Strategy{By: entities.ByID, Value: "profile"})
	assert.Empty(t, scope.asked, "assignment must not query the browser")

	got, err := el.Attr("href")
	require.NoError(t, err)
	assert.Equal(t, "/account", got)
	assert.Len(t, scope.asked, 1)
}

func TestElementWithoutLocators(t *testing.T) {
	el := NewElement(&stubScope{})
	_, err := el.Resolve()
	assert.ErrorContains(t, err, "no locators")
}

func TestListEnumeratesLazily(t *testing.T) {
	scope := &stubScope{leaves: []interfaces.Handle{&stubHandle{}, &stubHandle{}}}

	list := NewList(scope)
	list.Assign(entities.Strategy{By: entities.ByClass, Value: "row"})
	assert.Empty(t, scope.asked)

	n, err := list.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListDefaultLookup(t *testing.T) {
	scope := &stubScope{leaves: []interfaces.Handle{&stubHandle{}}}

	list := NewList(scope)
	list.SetFieldName("Rows")

	handles, err := list.All()
	require.NoError(t, err)
	assert.Len(t, handles, 1)
	require.Len(t, scope.asked, 1)
	assert.Equal(t, entities.DefaultLookup("Rows"), scope.asked[0],
		"the collection falls back to the same field-name lookup as the single element")
}

func TestListChainedNarrowsThenEnumerates(t *testing.T) {
	table := &stubHandle{id: "table", leaves: []interfaces.Handle{&stubHandle{}, &stubHandle{}, &stubHandle{}}}
	scope := &stubScope{children: map[string]*stubHandle{
		entities.Strategy{By: entities.ByID, Value: "table"}.Key(): table,
	}}

	list := NewList(scope)
	list.Assign(
		entities.Strategy{By: entities.ByID, Value: "table"},
		entities.Strategy{By: entities.ByTagName, Value: "tr"},
	)

	handles, err := list.All()
	require.NoError(t, err)
	assert.Len(t, handles, 3)
}

func TestPlaywrightSelector(t *testing.T) {
	cases := []struct {
		name     string
		strategy entities.Strategy
		want     string
	}{
		{"id", entities.Strategy{By: entities.ByID, Value: "login"}, "id=login"},
		{"name", entities.Strategy{By: entities.ByName, Value: "user"}, `css=[name="user"]`},
		{"tag", entities.Strategy{By: entities.ByTagName, Value: "input"}, "css=input"},
		{"class", entities.Strategy{By: entities.ByClass, Value: "btn"}, "css=.btn"},
		{"link text", entities.Strategy{By: entities.ByLinkText, Value: "Sign in"}, `text="Sign in"`},
		{"css", entities.Strategy{By: entities.ByCSS, Value: "div > a"}, "css=div > a"},
		{"xpath", entities.Strategy{By: entities.ByXPath, Value: "//div"}, "xpath=//div"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, playwrightSelector(tc.strategy))
		})
	}

	t.Run("chained joins with descendant operator", func(t *testing.T) {
		chained := entities.Chain(
			entities.Strategy{By: entities.ByID, Value: "table"},
			entities.Strategy{By: entities.ByTagName, Value: "tr"},
		)
		assert.Equal(t, "id=table >> css=tr", playwrightSelector(chained))
	})
}

func TestElementSelectorDescription(t *testing.T) {
	el := NewElement(&stubScope{})
	assert.Equal(t, "<unlocated>", el.Selector())

	el.Assign(entities.Strategy{By: entities.ByID, Value: "go"})
	assert.Equal(t, "id=go", el.Selector())
}
