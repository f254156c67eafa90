// Package i18n holds the user-facing message catalogs for domain error codes.
package i18n

import (
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Catalog maps error codes to user-facing message templates for one locale.
type Catalog struct {
	locale   string
	messages map[string]string
}

var catalogs = []*Catalog{enUSCatalog}

var matcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish,
})

// GetCatalog returns the best catalog for the requested locale,
// falling back to en-US when no catalog matches.
func GetCatalog(locale string) *Catalog {
	tag, err := language.Parse(locale)
	if err != nil {
		return enUSCatalog
	}
	_, index, _ := matcher.Match(tag)
	if index < 0 || index >= len(catalogs) {
		return enUSCatalog
	}
	return catalogs[index]
}

// Locale returns the catalog's locale identifier.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template for a code with the given metadata.
// Unknown codes render as the code itself so callers always get a message.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	msg, ok := c.messages[code]
	if !ok {
		return code
	}
	if len(metadata) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	tmpl, err := template.New(code).Parse(msg)
	if err != nil {
		return msg
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, metadata); err != nil {
		return msg
	}
	return sb.String()
}
