// Package scenario is the glue between test execution and page
// construction: one Scenario owns a browser session and a page factory for
// the duration of a test scenario. Page instances are built on demand and
// never reused across scenarios.
package scenario

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"pagefactory/application/factory"
	"pagefactory/domain/interfaces"
)

// Scenario binds one browser session to one test scenario.
type Scenario struct {
	driver  interfaces.Driver
	factory *factory.PageFactory
	logger  *logrus.Logger

	onBuilt func(page any)
}

// Option configures a scenario.
type Option func(*Scenario)

// WithPageHook registers a hook observing every fully built page object,
// for activation logic like waiting out page load.
func WithPageHook(fn func(page any)) Option {
	return func(s *Scenario) { s.onBuilt = fn }
}

// New - creates scenario bound to a driver and a page factory
func New(driver interfaces.Driver, pageFactory *factory.PageFactory, logger *logrus.Logger, opts ...Option) *Scenario {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Scenario{
		driver:  driver,
		factory: pageFactory,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Driver exposes the underlying browser session.
func (s *Scenario) Driver() interfaces.Driver {
	return s.driver
}

// Open navigates the scenario's browser to a URL and builds a fresh page
// instance of type T rooted at the session.
func Open[T any](ctx context.Context, s *Scenario, url string) (*T, error) {
	if err := s.driver.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", url, err)
	}
	return CurrentPage[T](s)
}

// CurrentPage builds a fresh page instance of type T against whatever page
// the browser is currently on.
func CurrentPage[T any](s *Scenario) (*T, error) {
	var opts []factory.BuildOption
	if s.onBuilt != nil {
		opts = append(opts, factory.OnBuilt(s.onBuilt))
	}
	page, err := factory.Create[T](s.factory, s.driver, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build page %T: %w", (*T)(nil), err)
	}
	return page, nil
}

// Close - ends the scenario and shuts the browser session down
func (s *Scenario) Close() error {
	s.logger.Info("Closing scenario")
	return s.driver.Close()
}
