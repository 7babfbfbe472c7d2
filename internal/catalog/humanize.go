package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HumanizeSlug turns a route file slug into a group label:
// "product_tag" becomes "Product Tag". Only the first letter of each token is
// changed.
func HumanizeSlug(slug string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	tokens := strings.Split(slug, "_")
	for i, tok := range tokens {
		tokens[i] = caser.String(tok)
	}
	return strings.Join(tokens, " ")
}
