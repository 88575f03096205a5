package gh

import (
	"regexp"
	"strings"
)

var linkSegment = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// ParseLinkHeader parses an RFC 8288 style Link header into rel -> URL.
// Segments that do not match `<url>; rel="name"` are skipped.
func ParseLinkHeader(header string) map[string]string {
	links := make(map[string]string)
	if header == "" {
		return links
	}
	for _, part := range strings.Split(header, ",") {
		match := linkSegment.FindStringSubmatch(part)
		if match == nil {
			continue
		}
		links[match[2]] = match[1]
	}
	return links
}

// NextLink returns the "next" relation of a Link header, if any.
func NextLink(header string) (string, bool) {
	next, ok := ParseLinkHeader(header)["next"]
	return next, ok && next != ""
}
