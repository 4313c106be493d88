package browser

import (
	"strings"

	"github.com/tebeka/selenium"
)

const (
	xpathPrefix = "xpath="
	cssPrefix   = "css="
)

// isXPath reports whether a selector is an XPath expression rather than CSS
func isXPath(selector string) bool {
	s := strings.TrimSpace(selector)
	return strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "(") ||
		strings.HasPrefix(s, "./") ||
		strings.HasPrefix(s, "..") ||
		strings.HasPrefix(s, xpathPrefix)
}

// seleniumSelector splits a workflow selector into a WebDriver locator
// strategy and the bare expression, dropping any xpath= or css= engine prefix
func seleniumSelector(selector string) (by, value string) {
	s := strings.TrimSpace(selector)
	switch {
	case strings.HasPrefix(s, xpathPrefix):
		return selenium.ByXPATH, strings.TrimPrefix(s, xpathPrefix)
	case strings.HasPrefix(s, cssPrefix):
		return selenium.ByCSSSelector, strings.TrimPrefix(s, cssPrefix)
	case isXPath(s):
		return selenium.ByXPATH, s
	}
	return selenium.ByCSSSelector, s
}

// playwrightSelector maps a workflow selector onto playwright's selector engines
func playwrightSelector(selector string) string {
	s := strings.TrimSpace(selector)
	if strings.HasPrefix(s, xpathPrefix) || strings.HasPrefix(s, cssPrefix) {
		return s
	}
	if isXPath(s) {
		return xpathPrefix + s
	}
	return s
}
