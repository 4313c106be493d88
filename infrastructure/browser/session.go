package browser

import (
	"context"
	"errors"
	"fmt"

	"workflow_automation/domain/interfaces"
	"workflow_automation/infrastructure/config"

	"github.com/sirupsen/logrus"
)

// NewSession - opens a browser session with the configured driver and, when
// a start URL is set, navigates to it
func NewSession(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (interfaces.BrowserSession, error) {
	var (
		session interfaces.BrowserSession
		err     error
	)

	switch cfg.Driver {
	case config.DriverSelenium:
		session, err = NewSeleniumController(cfg, logger)
	case config.DriverPlaywright:
		session, err = NewPlaywrightController(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported browser driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	if err := openStartURL(ctx, session, cfg.StartURL); err != nil {
		return nil, err
	}
	return session, nil
}

// openStartURL navigates to url when set. On failure the session is closed
// and any close error is joined to the navigation error.
func openStartURL(ctx context.Context, session interfaces.BrowserSession, url string) error {
	if url == "" {
		return nil
	}
	if err := session.Navigate(ctx, url); err != nil {
		navErr := fmt.Errorf("failed to open %s: %w", url, err)
		if closeErr := session.Close(); closeErr != nil {
			return errors.Join(navErr, fmt.Errorf("failed to close browser: %w", closeErr))
		}
		return navErr
	}
	return nil
}
