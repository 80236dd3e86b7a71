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
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugDashes  = regexp.MustCompile(`[\s_-]+`)
)

// Slugify converts a display name into a URL slug.
// Accented letters are folded to ASCII ("Café Noir" -> "cafe-noir").
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	folded = slugInvalid.ReplaceAllString(folded, "")
	folded = slugDashes.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}
