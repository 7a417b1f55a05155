package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
	slugValid    = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Slugify lower-cases s, folds it to ASCII and joins words with hyphens.
// "Crème Brûlée" becomes "creme-brulee".
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)

	ascii = slugStrip.ReplaceAllString(strings.ToLower(ascii), "")
	ascii = slugCollapse.ReplaceAllString(strings.TrimSpace(ascii), "-")
	return strings.Trim(ascii, "-_")
}

// ValidSlug reports whether s only holds letters, digits, underscores or hyphens
func ValidSlug(s string) bool {
	return slugValid.MatchString(s)
}
