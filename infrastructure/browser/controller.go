package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"workflow_automation/domain/interfaces"
	"workflow_automation/infrastructure/config"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

type PlaywrightController struct {
	pw          *playwright.Playwright
	browser     playwright.Browser
	page        playwright.Page
	context     playwright.BrowserContext
	storagePath string
	pages       []playwright.Page
	pagesMutex  sync.Mutex
	logger      *logrus.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewPlaywrightController - creates new playwright browser controller
func NewPlaywrightController(cfg *config.Config, logger *logrus.Logger) (*PlaywrightController, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},

		JavaScriptEnabled: playwright.Bool(true),

		IgnoreHttpsErrors: playwright.Bool(true),

		AcceptDownloads: playwright.Bool(true),
	}

	if cfg.StatePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0755); err != nil {
			pw.Stop()
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		if _, err := os.Stat(cfg.StatePath); err == nil {
			logger.Infof("Restoring browser state from: %s", cfg.StatePath)
			contextOptions.StorageStatePath = playwright.String(cfg.StatePath)
		}
	}

	launchOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(100),
		Args: []string{
			"--disable-popup-blocking",
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-infobars",
			"--disable-notifications",
		},
	}
	if cfg.ChromeBinary != "" {
		launchOptions.ExecutablePath = playwright.String(cfg.ChromeBinary)
	}

	browser, err := pw.Chromium.Launch(launchOptions)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
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

	controller := &PlaywrightController{
		pw:          pw,
		browser:     browser,
		page:        page,
		context:     browserContext,
		storagePath: cfg.StatePath,
		pages:       []playwright.Page{page},
		logger:      logger,
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		dialog.Accept()
	})

	// popups opened by a click become the current page
	browserContext.OnPage(func(newPage playwright.Page) {
		controller.pagesMutex.Lock()
		defer controller.pagesMutex.Unlock()

		controller.pages = append(controller.pages, newPage)
		controller.page = newPage

		newPage.OnDialog(func(dialog playwright.Dialog) {
			dialog.Accept()
		})

		newPage.OnClose(func(closedPage playwright.Page) {
			controller.pagesMutex.Lock()
			defer controller.pagesMutex.Unlock()

			for i, p := range controller.pages {
				if p == closedPage {
					controller.pages = append(controller.pages[:i], controller.pages[i+1:]...)
					break
				}
			}

			if controller.page == closedPage && len(controller.pages) > 0 {
				controller.page = controller.pages[0]
			}
		})
	})

	return controller, nil
}

func (b *PlaywrightController) currentPage() playwright.Page {
	b.pagesMutex.Lock()
	defer b.pagesMutex.Unlock()
	return b.page
}

// Navigate - navigates to the specified URL
func (b *PlaywrightController) Navigate(ctx context.Context, url string) error {
	b.logger.Infof("Navigating to: %s", url)
	_, err := b.currentPage().Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(30000),
	})
	return err
}

// Find - resolves a selector to an element handle on the current page.
// A miss is not an error.
func (b *PlaywrightController) Find(ctx context.Context, selector string) (interfaces.Element, bool) {
	handle, err := b.currentPage().QuerySelector(playwrightSelector(selector))
	if err != nil {
		b.logger.Debugf("Find %s failed: %v", selector, err)
		return nil, false
	}
	if handle == nil {
		return nil, false
	}
	return handle, true
}

// SendText - types text into a located element
func (b *PlaywrightController) SendText(ctx context.Context, element interfaces.Element, text string) error {
	handle, err := elementHandle(element)
	if err != nil {
		return err
	}
	return handle.Type(text)
}

// Click - clicks a located element
func (b *PlaywrightController) Click(ctx context.Context, element interfaces.Element) error {
	handle, err := elementHandle(element)
	if err != nil {
		return err
	}
	if err := handle.ScrollIntoViewIfNeeded(); err != nil {
		b.logger.Warnf("Failed to scroll to element: %v", err)
	}
	return handle.Click()
}

// SaveState - saves cookies and local storage so the next run starts logged in
func (b *PlaywrightController) SaveState() error {
	if b.context == nil || b.storagePath == "" {
		return nil
	}

	if _, err := b.context.StorageState(b.storagePath); err != nil {
		if isClosedError(err) {
			return nil
		}
		return fmt.Errorf("failed to save browser state: %w", err)
	}

	return nil
}

// Close - saves state and closes the browser. Safe to call twice.
func (b *PlaywrightController) Close() error {
	b.closeOnce.Do(func() {
		var errs []error

		if err := b.SaveState(); err != nil {
			errs = append(errs, err)
		}

		if b.context != nil {
			if err := b.context.Close(); err != nil && !isClosedError(err) {
				errs = append(errs, fmt.Errorf("failed to close context: %w", err))
			}
		}

		if b.browser != nil {
			if err := b.browser.Close(); err != nil && !isClosedError(err) {
				errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
			}
		}

		if b.pw != nil {
			if err := b.pw.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
			}
		}

		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}

func elementHandle(element interfaces.Element) (playwright.ElementHandle, error) {
	handle, ok := element.(playwright.ElementHandle)
	if !ok || handle == nil {
		return nil, fmt.Errorf("element %T was not located by playwright", element)
	}
	return handle, nil
}

func isClosedError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

var _ interfaces.BrowserSession = (*PlaywrightController)(nil)
