package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"pagefactory/domain/entities"
	"pagefactory/domain/interfaces"
)

// PlaywrightDriver drives a Chromium session through Playwright and exposes
// it as the Driver capability.
type PlaywrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logrus.Logger
	store   interfaces.SessionStore
}

// NewPlaywrightDriver - creates new Playwright-backed driver instance
func NewPlaywrightDriver(logger *logrus.Logger, store interfaces.SessionStore) (*PlaywrightDriver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	headless := os.Getenv("HEADLESS") != "false"
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	}

	if store != nil {
		if data, err := store.LoadSession(); err == nil && data != nil {
			var storageState playwright.StorageState
			if err := json.Unmarshal(data, &storageState); err == nil {
				contextOptions.StorageState = storageState.ToOptionalStorageState()
			} else {
				logger.Warnf("Ignoring corrupt session state: %v", err)
			}
		}
	}

	browserContext, err := browser.NewContext(contextOptions)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		dialog.Accept()
	})

	return &PlaywrightDriver{
		pw:      pw,
		browser: browser,
		context: browserContext,
		page:    page,
		logger:  logger,
		store:   store,
	}, nil
}

// Navigate - navigates to the specified URL
func (p *PlaywrightDriver) Navigate(ctx context.Context, url string) error {
	p.logger.Infof("Navigating to: %s", url)
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(30000),
	})
	return err
}

// CurrentURL - returns current page URL
func (p *PlaywrightDriver) CurrentURL(ctx context.Context) (string, error) {
	return p.page.URL(), nil
}

// PageTitle - returns current page title
func (p *PlaywrightDriver) PageTitle(ctx context.Context) (string, error) {
	return p.page.Title()
}

// SaveSession - persists the context storage state
func (p *PlaywrightDriver) SaveSession() error {
	if p.store == nil {
		return nil
	}
	state, err := p.context.StorageState()
	if err != nil {
		return fmt.Errorf("failed to read storage state: %w", err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return p.store.SaveSession(data)
}

// Close - saves the session and shuts the browser down
func (p *PlaywrightDriver) Close() error {
	if err := p.SaveSession(); err != nil {
		p.logger.Warnf("Failed to save session: %v", err)
	}
	if err := p.browser.Close(); err != nil {
		p.pw.Stop()
		return err
	}
	return p.pw.Stop()
}

// FindHandle - finds first element matching the strategy
func (p *PlaywrightDriver) FindHandle(strategy entities.Strategy) (interfaces.Handle, error) {
	return &playwrightHandle{loc: p.page.Locator(playwrightSelector(strategy))}, nil
}

// FindHandles - finds all elements matching the strategy
func (p *PlaywrightDriver) FindHandles(strategy entities.Strategy) ([]interfaces.Handle, error) {
	return allHandles(p.page.Locator(playwrightSelector(strategy)))
}

// playwrightSelector translates a strategy into a Playwright selector-engine
// expression. Chained strategies become the `>>` form, which resolves each
// part inside the previous match.
func playwrightSelector(s entities.Strategy) string {
	switch s.By {
	case entities.ByChained:
		parts := make([]string, len(s.Parts))
		for i, p := range s.Parts {
			parts[i] = playwrightSelector(p)
		}
		return strings.Join(parts, " >> ")
	case entities.ByID:
		return "id=" + s.Value
	case entities.ByName:
		return fmt.Sprintf(`css=[name=%q]`, s.Value)
	case entities.ByTagName:
		return "css=" + s.Value
	case entities.ByClass:
		return "css=." + s.Value
	case entities.ByLinkText:
		return fmt.Sprintf("text=%q", s.Value)
	case entities.ByXPath:
		return "xpath=" + s.Value
	default:
		return "css=" + s.Value
	}
}

func allHandles(loc playwright.Locator) ([]interfaces.Handle, error) {
	locators, err := loc.All()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate elements: %w", err)
	}
	handles := make([]interfaces.Handle, len(locators))
	for i, l := range locators {
		handles[i] = &playwrightHandle{loc: l}
	}
	return handles, nil
}

// playwrightHandle wraps a Playwright locator, which is itself lazy: the
// actual DOM query happens on interaction.
type playwrightHandle struct {
	loc playwright.Locator
}

func (h *playwrightHandle) FindHandle(strategy entities.Strategy) (interfaces.Handle, error) {
	return &playwrightHandle{loc: h.loc.Locator(playwrightSelector(strategy))}, nil
}

func (h *playwrightHandle) FindHandles(strategy entities.Strategy) ([]interfaces.Handle, error) {
	return allHandles(h.loc.Locator(playwrightSelector(strategy)))
}

func (h *playwrightHandle) Click() error {
	err := h.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		return fmt.Errorf("element not found or not visible: %w", err)
	}
	return h.loc.Click()
}

func (h *playwrightHandle) Fill(text string) error {
	if err := h.loc.Clear(); err != nil {
		return fmt.Errorf("failed to clear element: %w", err)
	}
	return h.loc.Fill(text)
}

func (h *playwrightHandle) Text() (string, error) {
	return h.loc.TextContent()
}

func (h *playwrightHandle) Visible() (bool, error) {
	return h.loc.IsVisible()
}

func (h *playwrightHandle) Attr(name string) (string, error) {
	return h.loc.GetAttribute(name)
}
