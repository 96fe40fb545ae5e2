// Package idgen generates identifiers for forms, fields and responses, and
// the public slugs forms are shared under.
package idgen

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/gofrs/uuid"
	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/oklog/ulid/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SuffixAlphabet is the character set of the random slug suffix.
var SuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// SuffixLength is the number of random characters appended to a slug.
var SuffixLength = 8

// FallbackSlug is used when a title has no characters a slug can keep.
const FallbackSlug = "form"

var reNonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// NewID returns a random uuid, used for forms and fields.
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// NewResponseID returns a ulid, so responses sort by submission time.
func NewResponseID() string {
	return ulid.Make().String()
}

// Slug derives a public slug from title and appends a random suffix, so two
// forms with the same title get different slugs without a lookup.
func Slug(title string) (string, error) {
	suffix, err := nanoid.Generate(SuffixAlphabet, SuffixLength)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return Slugify(title) + "-" + suffix, nil
}

// Slugify lowercases title, folds accents and collapses every run of
// whitespace or punctuation into a single hyphen.
func Slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	s := reNonSlug.ReplaceAllLiteralString(strings.ToLower(folded), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return FallbackSlug
	}
	return s
}
