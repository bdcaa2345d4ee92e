package domain

import (
	"net/url"
	"strings"
)

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ValidationError("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, ValidationError("invalid url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ValidationError("invalid url scheme %q: only http and https are supported", u.Scheme)
	}
	if u.Host == "" {
		return nil, ValidationError("invalid url %q: missing host", raw)
	}
	return u, nil
}

// ParseMindMapType maps the request value onto a MindMapType. Empty means all.
func ParseMindMapType(s string) (MindMapType, error) {
	switch t := MindMapType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return MindMapAll, nil
	case MindMapVisual, MindMapNetwork, MindMapHierarchical, MindMapAll:
		return t, nil
	default:
		return "", ValidationError("unsupported mindmap type %q", s)
	}
}
