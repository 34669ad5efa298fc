package summary

import (
	"fmt"
	"net/url"
	"strings"
)

// BasicDescription derives a description from the URL alone.
//
//	https://example.com          -> "Homepage of example.com"
//	https://example.com/foo-bar  -> "Page about foo bar on example.com"
func BasicDescription(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Web page content"
	}
	host := u.Hostname()

	if u.Path == "" || u.Path == "/" {
		return fmt.Sprintf("Homepage of %s", host)
	}

	var last string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			last = seg
		}
	}
	if last == "" {
		return fmt.Sprintf("Page on %s", host)
	}

	topic := strings.NewReplacer("-", " ", "_", " ").Replace(last)
	return fmt.Sprintf("Page about %s on %s", topic, host)
}
