package api

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips all HTML from user-supplied text fields before they are
// stored and later rendered in lists.
var textPolicy = bluemonday.StrictPolicy()

func sanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}
