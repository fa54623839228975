package utils

import (
	"fmt"
	"net/url"
	"strings"
)

func ParseSecureURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.Scheme != "https" {
		return nil, fmt.Errorf("insecure URL rejected: %s", raw)
	}
	return parsed, nil
}

// DirURL appends segments to base as path components and keeps the trailing
// slash the contents API uses for directories.
func DirURL(base string, segments ...string) string {
	u := strings.TrimRight(base, "/") + "/"
	for _, s := range segments {
		u += url.PathEscape(s) + "/"
	}
	return u
}
