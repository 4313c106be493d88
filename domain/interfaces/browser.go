package interfaces

import "context"

// Element is an opaque handle to a located page element. The BrowserControl
// that returned it owns its lifecycle.
type Element interface{}

// BrowserControl defines the capabilities the workflow engine drives
type BrowserControl interface {
	// Find looks up an element by selector. A miss returns false and is not an error.
	Find(ctx context.Context, selector string) (Element, bool)

	// SendText types text into an element
	SendText(ctx context.Context, element Element, text string) error

	// Click clicks an element
	Click(ctx context.Context, element Element) error

	// Close releases the browser session. Calling it more than once is safe.
	Close() error
}

// BrowserSession is a BrowserControl that can also be pointed at a page
type BrowserSession interface {
	BrowserControl

	// Navigate opens a URL in the current page
	Navigate(ctx context.Context, url string) error
}
