package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL    = errors.New("empty url")
	ErrMissingHost = errors.New("missing host")
)

// Common tracking params dropped during normalization.
var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
}

// NormalizeHost lowercases host, strips the port and converts IDN to punycode.
func NormalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		return puny
	}
	return host
}

// HostOf returns the normalized host of raw, or "" for relative or invalid URLs.
func HostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return NormalizeHost(u.Host)
}

// NormalizeURL resolves raw against base (when base is non-empty) and returns
// a deterministic absolute form: lowercase scheme and punycode host, default
// ports, credentials, fragment and tracking params dropped, path cleaned
// without trailing slash, query keys sorted.
//
// Examples:
//
//	NormalizeURL("HTTP://Example.COM:80/a/../b/?z=1&utm_source=x#top", "") -> "http://example.com/b?z=1"
//	NormalizeURL("../node/7", "https://news.example/blog/post")             -> "https://news.example/node/7"
func NormalizeURL(raw, base string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("couldn't parse url %s: %w", raw, err)
	}
	if base != "" {
		b, err := url.Parse(strings.TrimSpace(base))
		if err != nil {
			return "", fmt.Errorf("couldn't parse base url %s: %w", base, err)
		}
		u = b.ResolveReference(u)
	}
	if u.Host == "" {
		return "", ErrMissingHost
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := NormalizeHost(u.Host)
	port := u.Port()
	if port != "" && !(u.Scheme == "http" && port == "80") && !(u.Scheme == "https" && port == "443") {
		host = net.JoinHostPort(host, port)
	}
	u.Host = host
	u.User = nil
	u.Fragment = ""

	p := path.Clean("/" + u.Path)
	if p == "/" {
		p = ""
	}
	u.Path = p
	u.RawPath = ""

	q := u.Query()
	for k := range q {
		if _, ok := trackingParams[strings.ToLower(k)]; ok {
			q.Del(k)
		}
	}
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := url.Values{}
	for _, k := range keys {
		vs := q[k]
		sort.Strings(vs)
		for _, v := range vs {
			ordered.Add(k, v)
		}
	}
	u.RawQuery = ordered.Encode()
	return u.String(), nil
}

// PathOf returns the cleaned path of raw without trailing slash. Relative
// references are returned cleaned as-is.
func PathOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	p := path.Clean("/" + u.Path)
	if p == "/" {
		return ""
	}
	return p
}

// IsPlaceholderHref reports hrefs that lead nowhere: empty, a bare "#" or a
// javascript: pseudo-URL.
func IsPlaceholderHref(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return h == "" || h == "#" || strings.HasPrefix(h, "javascript:")
}

// IsHTTP reports whether raw is an absolute http(s) URL.
func IsHTTP(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return (s == "http" || s == "https") && u.Host != ""
}
