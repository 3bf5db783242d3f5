package helpers

import (
	"net/http"
	"strings"
)

// AbsoluteURL prefixes a root-relative path with the scheme and host the
// request arrived on. A non-empty publicURL takes precedence over the request.
func AbsoluteURL(r *http.Request, publicURL, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/") + path
	}
	if r == nil {
		return path
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + r.Host + path
}
