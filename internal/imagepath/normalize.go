// Package imagepath turns stored plant image references into absolute,
// directly fetchable URLs.
//
// A stored reference is either an absolute http(s) URL (seeded data, or an
// upload URL saved verbatim) or a server-relative path, possibly carrying
// the on-disk storage layout (for example "uploads/plantImages/x.jpg" or a
// Windows path). Relative paths are rebased onto the static mount that
// serves uploads.
package imagepath

import (
	"net/url"
	"strings"
)

// Normalize returns raw unchanged when it is an absolute http or https URL.
// Otherwise it converts separators to "/", cuts everything before the
// storage segment named by mount (so "C:\srv\uploads\plantImages\a.jpg"
// becomes "/plantImages/a.jpg"), ensures exactly one leading slash and
// prefixes baseURL (scheme and host of the current request).
//
// Normalize is idempotent: its output is an absolute URL, which a second
// call returns as is.
func Normalize(raw, baseURL, mount string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if IsAbsoluteURL(raw) {
		return raw
	}

	p := strings.ReplaceAll(raw, `\`, "/")
	if seg := strings.Trim(mount, "/"); seg != "" {
		marker := "/" + seg + "/"
		if i := strings.LastIndex("/"+p, marker); i >= 0 {
			p = ("/" + p)[i:]
		}
	}
	p = "/" + strings.TrimLeft(p, "/")

	return strings.TrimRight(baseURL, "/") + p
}

// IsAbsoluteURL reports whether s parses as a URL with an http or https
// scheme and a host.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
