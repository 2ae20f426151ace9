package helpers

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText strips diacritics and lowercases a string so that
// "Besançon" and "besancon" compare equal. Group matching is substring
// containment over this normalized form.
func NormalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		// Transform failures are limited to malformed UTF-8; fall back
		// to lowercasing the raw input.
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// NameVariants returns the normalized name plus its hyphen/space
// variants. City names appear both ways in keyword text ("saint martin"
// vs "saint-martin"), so every variant is a valid match pattern.
func NameVariants(name string) []string {
	base := NormalizeText(strings.TrimSpace(name))
	if base == "" {
		return nil
	}

	variants := []string{base}
	if strings.Contains(base, "-") {
		variants = append(variants, strings.ReplaceAll(base, "-", " "))
	}
	if strings.Contains(base, " ") {
		variants = append(variants, strings.ReplaceAll(base, " ", "-"))
	}
	return variants
}

// NormalizeURLPath reduces a URL to its comparable path: query and
// fragment dropped, lowercased, trailing slash removed (the root path
// stays "/"). Returns "" for unparseable or empty input.
func NormalizeURLPath(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}

	path := strings.ToLower(u.Path)
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
