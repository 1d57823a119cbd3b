package cv

import (
	"net/url"
	"strings"
)

// fragmentPrefix is the URL-fragment key used for node deep links, e.g.
// "#node=work-acme".
const fragmentPrefix = "node="

// FormatNodeFragment returns the URL fragment that deep-links to a node,
// including the leading "#". An empty id returns an empty string.
func FormatNodeFragment(id string) string {
	if id == "" {
		return ""
	}
	return "#" + fragmentPrefix + url.QueryEscape(id)
}

// ParseNodeFragment extracts the node id from a URL fragment. The leading
// "#" is optional. Returns "" when the fragment carries no node link or the
// id fails to unescape.
func ParseNodeFragment(fragment string) string {
	fragment = strings.TrimPrefix(fragment, "#")
	if !strings.HasPrefix(fragment, fragmentPrefix) {
		return ""
	}
	id, err := url.QueryUnescape(strings.TrimPrefix(fragment, fragmentPrefix))
	if err != nil {
		return ""
	}
	return id
}
