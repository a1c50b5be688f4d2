package scenario

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagefactory/application/factory"
	"pagefactory/domain/entities"
	"pagefactory/domain/interfaces"
)

// fakeDriver satisfies the Driver capability without a browser.
type fakeDriver struct {
	visited []string
	closed  bool
}

func (d *fakeDriver) FindHandle(entities.Strategy) (interfaces.Handle, error) {
	return nil, nil
}

func (d *fakeDriver) FindHandles(entities.Strategy) ([]interfaces.Handle, error) {
	return nil, nil
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.visited = append(d.visited, url)
	return nil
}

func (d *fakeDriver) CurrentURL(context.Context) (string, error) { return "", nil }
func (d *fakeDriver) PageTitle(context.Context) (string, error)  { return "", nil }
func (d *fakeDriver) Close() error                               { d.closed = true; return nil }

type fakeElement struct {
	assigned []entities.Strategy
}

func (f *fakeElement) Assign(strategies ...entities.Strategy) { f.assigned = strategies }
func (f *fakeElement) Resolve() (interfaces.Handle, error)    { return nil, nil }
func (f *fakeElement) Click() error                           { return nil }
func (f *fakeElement) Fill(string) error                      { return nil }
func (f *fakeElement) Text() (string, error)                  { return "", nil }
func (f *fakeElement) Visible() (bool, error)                 { return false, nil }
func (f *fakeElement) Attr(string) (string, error)            { return "", nil }

type landingPage struct {
	Headline interfaces.Element `locate:"tag=h1"`
}

func newScenario(driver *fakeDriver, opts ...Option) *Scenario {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	registry := factory.NewRegistry(logger)
	registry.RegisterElement(func(sc interfaces.SearchContext) *fakeElement {
		return &fakeElement{}
	})
	return New(driver, factory.New(registry, logger), logger, opts...)
}

func TestOpenNavigatesAndBuilds(t *testing.T) {
	driver := &fakeDriver{}
	s := newScenario(driver)

	page, err := Open[landingPage](context.Background(), s, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, driver.visited)

	el := page.Headline.(*fakeElement)
	require.Len(t, el.assigned, 1)
	assert.Equal(t, entities.Strategy{By: entities.ByTagName, Value: "h1"}, el.assigned[0])
}

func TestFreshInstancePerBuild(t *testing.T) {
	s := newScenario(&fakeDriver{})

	first, err := CurrentPage[landingPage](s)
	require.NoError(t, err)
	second, err := CurrentPage[landingPage](s)
	require.NoError(t, err)
	assert.NotSame(t, first, second, "page instances are never cached across builds")
}

func TestPageHookObservesBuilds(t *testing.T) {
	var seen int
	s := newScenario(&fakeDriver{}, WithPageHook(func(any) { seen++ }))

	_, err := CurrentPage[landingPage](s)
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

func TestCloseShutsDriverDown(t *testing.T) {
	driver := &fakeDriver{}
	s := newScenario(driver)

	require.NoError(t, s.Close())
	assert.True(t, driver.closed)
}
