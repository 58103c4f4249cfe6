// Package helpers holds small URL utilities shared by the fetch layer.
package helpers

import (
	"errors"
	"net/url"
	"path"
	"sort"
	"strings"
)

// trackingParams are analytics query parameters stripped during
// canonicalisation so the same page never counts twice.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"gclid":        {},
	"dclid":        {},
	"fbclid":       {},
	"msclkid":      {},
	"igshid":       {},
}

// CanonicalURL normalizes a URL for deduplication: scheme and host are
// lowercased, default ports, fragments and tracking parameters dropped,
// the path cleaned and the remaining query sorted. Schemeless input is
// treated as https.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" && u.Host == "" {
		// Schemeless forms like example.com/path or //example.com/path.
		prefix := "https://"
		if strings.HasPrefix(raw, "//") {
			prefix = "https:"
		}
		u, err = url.Parse(prefix + raw)
		if err != nil {
			return "", err
		}
	}

	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Scheme = strings.ToLower(u.Scheme)

	host := strings.ToLower(u.Host)
	if host == "" {
		return "", errors.New("url missing host")
	}
	switch u.Scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}
	u.Host = host

	u.Path = cleanPath(u.Path)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if _, drop := trackingParams[strings.ToLower(key)]; drop {
			q.Del(key)
		}
	}
	for _, values := range q {
		sort.Strings(values)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	out := path.Clean(p)
	if out == "." {
		out = "/"
	}
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	// path.Clean drops an explicit trailing slash; put it back.
	if out != "/" && strings.HasSuffix(p, "/") {
		out += "/"
	}
	return out
}
