package loc

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"locimages/pkg/errors"
)

const (
	// Host is the loc.gov API host
	Host = "www.loc.gov"

	// DefaultPageSize is the default number of results requested per page
	DefaultPageSize = 100

	// Query parameters the API needs to return a machine-readable,
	// paginated result set with full records.
	formatParam    = "fo"
	formatValue    = "json"
	countParam     = "c"
	attributeParam = "at"
	// Restricting the response to results and pagination keeps the payload
	// small and makes the nested image descriptors of each record present.
	attributeValue = "results,pagination"
)

// NormalizeURL translates a collection or search URL, as copied from a
// browser, into the API query URL for page 1. It forces the JSON format,
// page size, and record attributes the crawler needs, leaving the rest of
// the query (search terms, filters, dates) untouched.
//
// Normalization is pure and idempotent: normalizing an already normalized
// URL returns it unchanged.
func NormalizeURL(raw string, pageSize int) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", &errors.Error{
			Type:    errors.ErrorTypeInvalidURL,
			Message: fmt.Sprintf("not a valid URL: %v", err),
		}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &errors.Error{
			Type:    errors.ErrorTypeInvalidURL,
			Message: fmt.Sprintf("unsupported scheme %q, expected http or https", u.Scheme),
		}
	}

	if !isLibraryHost(u.Hostname()) {
		return "", &errors.Error{
			Type:    errors.ErrorTypeInvalidURL,
			Message: fmt.Sprintf("host %q is not loc.gov", u.Hostname()),
		}
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	q := u.Query()
	q.Set(formatParam, formatValue)
	q.Set(countParam, strconv.Itoa(pageSize))
	q.Set(attributeParam, attributeValue)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// isLibraryHost reports whether host is loc.gov or one of its subdomains
func isLibraryHost(host string) bool {
	host = strings.ToLower(host)
	return host == "loc.gov" || strings.HasSuffix(host, ".loc.gov")
}
