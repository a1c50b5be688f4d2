package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"pagefactory/domain/entities"
	"pagefactory/domain/interfaces"
)

const chromeDriverPort = 9515

// SeleniumDriver drives a Chrome session through chromedriver and exposes
// it as the Driver capability.
type SeleniumDriver struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  *logrus.Logger
	store   interfaces.SessionStore
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver() (string, error) {
	if path := os.Getenv("BROWSER_DRIVER_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary() string {
	if path := os.Getenv("CHROME_BINARY_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
	}
	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// NewSeleniumDriver - creates new Selenium-backed driver instance
func NewSeleniumDriver(logger *logrus.Logger, store interfaces.SessionStore) (*SeleniumDriver, error) {
	driverPath, err := findChromeDriver()
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	service, err := selenium.NewChromeDriverService(driverPath, chromeDriverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	caps := selenium.Capabilities{
		"browserName": "chrome",
	}
	chromeCaps := chrome.Capabilities{
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if binary := findChromeBinary(); binary != "" {
		logger.Infof("Using Chrome binary at: %s", binary)
		chromeCaps.Path = binary
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", chromeDriverPort))
	if err != nil {
		service.Stop()
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumDriver{
		wd:      wd,
		service: service,
		logger:  logger,
		store:   store,
	}, nil
}

// Navigate - navigates browser to specified URL
func (s *SeleniumDriver) Navigate(ctx context.Context, url string) error {
	s.logger.Infof("Navigating to: %s", url)
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// CurrentURL - returns current page URL
func (s *SeleniumDriver) CurrentURL(ctx context.Context) (string, error) {
	return s.wd.CurrentURL()
}

// PageTitle - returns current page title
func (s *SeleniumDriver) PageTitle(ctx context.Context) (string, error) {
	return s.wd.Title()
}

// RestoreSession - restores cookies persisted by a previous run. The
// browser must already be on the cookies' domain.
func (s *SeleniumDriver) RestoreSession() error {
	if s.store == nil {
		return nil
	}
	data, err := s.store.LoadSession()
	if err != nil || data == nil {
		return err
	}
	var cookies []selenium.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("failed to decode session cookies: %w", err)
	}
	for i := range cookies {
		if err := s.wd.AddCookie(&cookies[i]); err != nil {
			s.logger.Warnf("Failed to restore cookie %s: %v", cookies[i].Name, err)
		}
	}
	return nil
}

// SaveSession - persists the current cookies
func (s *SeleniumDriver) SaveSession() error {
	if s.store == nil {
		return nil
	}
	cookies, err := s.wd.GetCookies()
	if err != nil {
		return fmt.Errorf("failed to read cookies: %w", err)
	}
	data, err := json.Marshal(cookies)
	if err != nil {
		return err
	}
	return s.store.SaveSession(data)
}

// Close - saves the session and shuts the browser down
func (s *SeleniumDriver) Close() error {
	if err := s.SaveSession(); err != nil {
		s.logger.Warnf("Failed to save session: %v", err)
	}
	if err := s.wd.Quit(); err != nil {
		s.service.Stop()
		return err
	}
	return s.service.Stop()
}

// FindHandle - finds first element matching the strategy
func (s *SeleniumDriver) FindHandle(strategy entities.Strategy) (interfaces.Handle, error) {
	return seleniumScope{s.wd}.FindHandle(strategy)
}

// FindHandles - finds all elements matching the strategy
func (s *SeleniumDriver) FindHandles(strategy entities.Strategy) ([]interfaces.Handle, error) {
	return seleniumScope{s.wd}.FindHandles(strategy)
}

// seleniumFinder is what WebDriver and WebElement share: the find calls.
type seleniumFinder interface {
	FindElement(by, value string) (selenium.WebElement, error)
	FindElements(by, value string) ([]selenium.WebElement, error)
}

// seleniumScope adapts a WebDriver or WebElement to the SearchContext
// capability. The strategy By strings are WebDriver wire strings, so they
// pass through unchanged.
type seleniumScope struct {
	finder seleniumFinder
}

func (s seleniumScope) FindHandle(strategy entities.Strategy) (interfaces.Handle, error) {
	if strategy.By == entities.ByChained {
		return resolveIn(s, strategy)
	}
	el, err := s.finder.FindElement(strategy.By, strategy.Value)
	if err != nil {
		return nil, fmt.Errorf("element not found by %s: %w", strategy, err)
	}
	return &seleniumHandle{el: el}, nil
}

func (s seleniumScope) FindHandles(strategy entities.Strategy) ([]interfaces.Handle, error) {
	if strategy.By == entities.ByChained {
		return resolveAllIn(s, strategy)
	}
	els, err := s.finder.FindElements(strategy.By, strategy.Value)
	if err != nil {
		return nil, fmt.Errorf("elements not found by %s: %w", strategy, err)
	}
	handles := make([]interfaces.Handle, len(els))
	for i, el := range els {
		handles[i] = &seleniumHandle{el: el}
	}
	return handles, nil
}

// seleniumHandle is a resolved Selenium element.
type seleniumHandle struct {
	el selenium.WebElement
}

func (h *seleniumHandle) FindHandle(strategy entities.Strategy) (interfaces.Handle, error) {
	return seleniumScope{h.el}.FindHandle(strategy)
}

func (h *seleniumHandle) FindHandles(strategy entities.Strategy) ([]interfaces.Handle, error) {
	return seleniumScope{h.el}.FindHandles(strategy)
}

func (h *seleniumHandle) Click() error {
	return h.el.Click()
}

func (h *seleniumHandle) Fill(text string) error {
	if err := h.el.Clear(); err != nil {
		return fmt.Errorf("failed to clear element: %w", err)
	}
	return h.el.SendKeys(text)
}

func (h *seleniumHandle) Text() (string, error) {
	return h.el.Text()
}

func (h *seleniumHandle) Visible() (bool, error) {
	return h.el.IsDisplayed()
}

func (h *seleniumHandle) Attr(name string) (string, error) {
	value, err := h.el.GetAttribute(name)
	if err != nil {
		return "", err
	}
	return value, nil
}
