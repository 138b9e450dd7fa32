package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugSeparate = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsSlug reports whether s is lower-case words joined by single hyphens.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Slugify turns a title into a slug, dropping accents and punctuation.
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(title) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	slug := strings.Trim(slugSeparate.ReplaceAllString(b.String(), "-"), "-")
	if len(slug) > 180 {
		slug = strings.TrimRight(slug[:180], "-")
	}
	if slug == "" {
		slug = "course"
	}
	return slug
}
