package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"workflow_automation/domain/interfaces"
	"workflow_automation/infrastructure/config"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

type SeleniumController struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  *logrus.Logger

	closeOnce sync.Once
	closeErr  error
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("chromedriver not found at %s", configured)
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
func findChromeBinary(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
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

// chromeArgs - builds Chrome command line flags from config
func chromeArgs(cfg *config.Config) []string {
	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--no-sandbox",
	}
	if cfg.Headless {
		args = append(args, "--headless=new")
	}
	if cfg.ProfileDir != "" {
		args = append(args, fmt.Sprintf("--user-data-dir=%s", cfg.ProfileDir))
	}
	return args
}

// NewSeleniumController - creates new Selenium browser controller instance.
// It attaches to a running WebDriver endpoint, or starts chromedriver when
// BROWSER_DRIVER_PATH is set.
func NewSeleniumController(cfg *config.Config, logger *logrus.Logger) (*SeleniumController, error) {
	var service *selenium.Service
	remoteURL := cfg.RemoteURL()

	if remoteURL == "" {
		driverPath, err := findChromeDriver(cfg.DriverPath)
		if err != nil {
			return nil, fmt.Errorf("failed to find chromedriver: %w", err)
		}
		logger.Infof("Using ChromeDriver at: %s", driverPath)

		service, err = selenium.NewChromeDriverService(driverPath, cfg.DriverPort)
		if err != nil {
			return nil, fmt.Errorf("failed to start chromedriver: %w", err)
		}
		remoteURL = fmt.Sprintf("http://localhost:%d/wd/hub", cfg.DriverPort)
	} else {
		logger.Infof("Attaching to WebDriver at: %s", remoteURL)
	}

	if cfg.ProfileDir != "" {
		if err := os.MkdirAll(cfg.ProfileDir, 0755); err != nil {
			stopService(service)
			return nil, fmt.Errorf("failed to create user data directory: %w", err)
		}
		logger.Infof("Using user data directory: %s (sessions will be preserved)", cfg.ProfileDir)
	}

	caps := selenium.Capabilities{
		"browserName": "chrome",
	}

	chromeCaps := chrome.Capabilities{
		Args: chromeArgs(cfg),
	}
	if chromeBinary := findChromeBinary(cfg.ChromeBinary); chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
		chromeCaps.Path = chromeBinary
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, remoteURL)
	if err != nil {
		stopService(service)
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumController{
		wd:      wd,
		service: service,
		logger:  logger,
	}, nil
}

func stopService(service *selenium.Service) {
	if service != nil {
		service.Stop()
	}
}

// Navigate - navigates browser to specified URL
func (s *SeleniumController) Navigate(ctx context.Context, url string) error {
	s.logger.Infof("Navigating to: %s", url)
	return s.wd.Get(url)
}

// Find - looks up an element by XPath or CSS selector. A miss is not an error.
func (s *SeleniumController) Find(ctx context.Context, selector string) (interfaces.Element, bool) {
	by, value := seleniumSelector(selector)

	element, err := s.wd.FindElement(by, value)
	if err != nil {
		s.logger.Debugf("Find %s (%s) missed: %v", selector, by, err)
		return nil, false
	}
	return element, true
}

// SendText - sends keystrokes to a located element
func (s *SeleniumController) SendText(ctx context.Context, element interfaces.Element, text string) error {
	el, err := webElement(element)
	if err != nil {
		return err
	}
	return el.SendKeys(text)
}

// Click - clicks a located element
func (s *SeleniumController) Click(ctx context.Context, element interfaces.Element) error {
	el, err := webElement(element)
	if err != nil {
		return err
	}

	// Scroll element into view using JavaScript for better reliability
	script := `
	(function() {
		var element = arguments[0];
		element.scrollIntoView({ behavior: 'smooth', block: 'center' });
		return true;
	})();
	`
	if _, err := s.wd.ExecuteScript(script, []interface{}{el}); err != nil {
		s.logger.Warnf("Failed to scroll to element: %v", err)
		// Try alternative method
		if err := el.MoveTo(0, 0); err != nil {
			s.logger.Warnf("Failed to move to element: %v", err)
		}
	}

	time.Sleep(300 * time.Millisecond)
	return el.Click()
}

// Close - closes browser and stops ChromeDriver service. Safe to call twice.
func (s *SeleniumController) Close() error {
	s.closeOnce.Do(func() {
		if s.wd != nil {
			if err := s.wd.Quit(); err != nil {
				s.closeErr = fmt.Errorf("failed to quit webdriver session: %w", err)
			}
		}
		if s.service != nil {
			if err := s.service.Stop(); err != nil && s.closeErr == nil {
				s.closeErr = fmt.Errorf("failed to stop chromedriver: %w", err)
			}
		}
	})
	return s.closeErr
}

func webElement(element interfaces.Element) (selenium.WebElement, error) {
	el, ok := element.(selenium.WebElement)
	if !ok || el == nil {
		return nil, fmt.Errorf("element %T was not located by selenium", element)
	}
	return el, nil
}

var _ interfaces.BrowserSession = (*SeleniumController)(nil)
