// Package androidres generates Android XML string resources from a
// parsed twine catalog.
//
// Each locale becomes one values-<locale>/<stem>.xml file containing
// <string> entries and <plurals> blocks, in catalog order.
package androidres

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appkode/utas/twinefile"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// GenResult maps each locale to its formatted resource lines, in
// first-seen locale order. Built once by Generate and immutable
// afterwards; consumed by Write.
type GenResult struct {
	lines *orderedmap.OrderedMap[string, []string]
}

// Locales returns the locales present in the result, in first-seen order.
func (r *GenResult) Locales() []string {
	var locales []string
	for pair := r.lines.Oldest(); pair != nil; pair = pair.Next() {
		locales = append(locales, pair.Key)
	}
	return locales
}

// Lines returns the formatted resource lines for a locale.
func (r *GenResult) Lines(locale string) []string {
	lines, _ := r.lines.Get(locale)
	return lines
}

// Generate builds per-locale resource lines from one catalog.
// A catalog with no sections is an error; more than one section is an
// unsupported catalog structure and panics.
func Generate(src *twinefile.File) (*GenResult, error) {
	if len(src.Sections) > 1 {
		panic("twine catalogs with more than one section are not supported")
	}
	if len(src.Sections) == 0 {
		return nil, errors.New("at least one section expected")
	}

	result := &GenResult{lines: orderedmap.New[string, []string]()}
	for _, key := range src.Sections[0].Keys {
		for _, loc := range key.Localizations {
			cur, _ := result.lines.Get(loc.LanguageCode)
			switch loc.Value.Kind {
			case twinefile.KindSingle:
				cur = append(cur, stringLine(key.Name, loc.Value.Text))
			case twinefile.KindPlural:
				cur = append(cur, pluralLines(key.Name, loc.Value.Quantities)...)
			}
			result.lines.Set(loc.LanguageCode, cur)
		}
	}
	return result, nil
}

func stringLine(name, text string) string {
	return fmt.Sprintf(`<string name="%s">%s</string>`, name, text)
}

// pluralLines renders a <plurals> block; quantity items keep catalog
// encounter order. The items carry the block-internal indent; Write adds
// the uniform resource indent on top.
func pluralLines(name string, quantities []twinefile.PluralValue) []string {
	lines := make([]string, 0, len(quantities)+2)
	lines = append(lines, fmt.Sprintf(`<plurals name="%s">`, name))
	for _, q := range quantities {
		lines = append(lines, fmt.Sprintf(`  <item quantity="%s">%s</item>`, q.Quantity, q.Text))
	}
	return append(lines, "</plurals>")
}

// Write writes one values-<locale>/<stem>.xml resource file per locale
// under dir.
func (r *GenResult) Write(dir, stem string) error {
	for pair := r.lines.Oldest(); pair != nil; pair = pair.Next() {
		subdir := filepath.Join(dir, "values-"+pair.Key)
		if err := os.MkdirAll(subdir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", subdir, err)
		}

		var b strings.Builder
		b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
		b.WriteString("\n")
		b.WriteString("<resources>\n")
		for _, line := range pair.Value {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("</resources>\n")

		path := filepath.Join(subdir, stem+".xml")
		if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
