// Package asset resolves stored media references to public URLs.
package asset

import (
	"net/url"
	"strings"

	"github.com/streamhub/engagement-hub/internal/domain/content"
)

// BaseURLResolver prefixes references with a CDN or static base URL.
// References that are already absolute URLs are returned unchanged.
type BaseURLResolver struct {
	base string
}

var _ content.AssetResolver = (*BaseURLResolver)(nil)

// NewBaseURLResolver creates a resolver for base, e.g. "https://cdn.example.com/media".
func NewBaseURLResolver(base string) *BaseURLResolver {
	return &BaseURLResolver{base: strings.TrimRight(base, "/")}
}

// ResolveURL implements content.AssetResolver. An empty ref yields "".
func (r *BaseURLResolver) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	if r.base == "" {
		return ref
	}
	return r.base + "/" + strings.TrimLeft(ref, "/")
}
