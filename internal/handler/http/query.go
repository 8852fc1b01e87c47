package http

import (
	"strings"
)

// Ordering whitelists per endpoint. Requests may prefix a field with "-"
// for descending order; anything outside the whitelist falls back to the
// endpoint default rather than erroring.
var (
	categoryOrderFields = map[string]bool{
		"name":       true,
		"created_at": true,
	}
	productOrderFields = map[string]bool{
		"name":       true,
		"price":      true,
		"stock":      true,
		"created_at": true,
	}
	publicProductOrderFields = map[string]bool{
		"price":      true,
		"created_at": true,
	}
)

func parseOrdering(value string, allowed map[string]bool, defaultField string, defaultDesc bool) (string, bool) {
	field := strings.TrimSpace(value)
	desc := false
	if strings.HasPrefix(field, "-") {
		desc = true
		field = field[1:]
	}
	if field == "" || !allowed[field] {
		return defaultField, defaultDesc
	}
	return field, desc
}
