package utils

import (
	"fmt"
	"net/url"
)

// OpenBrowser opens an http(s) link in the default browser
func OpenBrowser(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", link)
	}
	if err := browserCommand(u.String()).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
