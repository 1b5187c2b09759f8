package httputil

import (
	"net/url"
	"strconv"
	"strings"
)

// LastPage extracts the page number of the rel="last" relation from a Link
// response header.
//
// It returns -1 when the header carries no rel="last" relation, which means
// the result set fits on a single page (or the endpoint sent no pagination
// metadata at all). Callers exploit this with per_page=1 requests: the last
// page number then equals the total item count.
func LastPage(linkHeader string) int {
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="last"`) {
			continue
		}
		raw := strings.Trim(strings.SplitN(part, ";", 2)[0], "<> ")
		u, err := url.Parse(raw)
		if err != nil {
			return -1
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil {
			return -1
		}
		return page
	}
	return -1
}
