package github

import (
	"net/url"
	"strconv"
	"strings"
)

// totalPagesFromLink derives the total page count of a search from the Link
// response header: the "last" relation carries it directly; on the final page
// the server omits "last", so "prev" plus one is the total; no header at all
// means a single page.
func totalPagesFromLink(header string) int {
	links := parseLinkHeader(header)

	if page := pageParam(links["last"]); page > 0 {
		return page
	}
	if page := pageParam(links["prev"]); page > 0 {
		return page + 1
	}
	return 1
}

// parseLinkHeader splits an RFC 5988 Link header into a rel -> URL map.
// Entries without a rel parameter are dropped.
func parseLinkHeader(header string) map[string]string {
	links := make(map[string]string)

	for _, entry := range strings.Split(header, ",") {
		parts := strings.Split(entry, ";")
		if len(parts) < 2 {
			continue
		}

		target := strings.Trim(strings.TrimSpace(parts[0]), "<>")
		if target == "" {
			continue
		}

		for _, param := range parts[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || key != "rel" {
				continue
			}
			links[strings.Trim(value, `"`)] = target
		}
	}

	return links
}

// pageParam extracts the page query parameter from a pagination URL.
func pageParam(rawURL string) int {
	if rawURL == "" {
		return 0
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	page, err := strconv.Atoi(parsed.Query().Get("page"))
	if err != nil {
		return 0
	}
	return page
}
