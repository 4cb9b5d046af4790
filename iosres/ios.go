// Package iosres generates iOS string resources from parsed twine
// catalogs.
//
// Each locale becomes a <locale>.lproj/ directory with a .strings file
// for single values and a .stringsdict property list for plurals. Lines
// from multiple catalogs are concatenated in input order, and missing
// keys can be back-filled from a default locale so no resource is left
// unresolved.
package iosres

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appkode/utas/twinefile"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Line is one resource entry for a locale. Identity for the fallback
// fill is the resource name only; values are not compared.
type Line struct {
	Name  string
	Value twinefile.StringValue
}

// GenResult maps each locale to its merged resource entries, in
// first-seen locale order. Built once by Generate and immutable
// afterwards; consumed by Write.
type GenResult struct {
	lines *orderedmap.OrderedMap[string, []Line]
}

// Locales returns the locales present in the result, in first-seen order.
func (r *GenResult) Locales() []string {
	var locales []string
	for pair := r.lines.Oldest(); pair != nil; pair = pair.Next() {
		locales = append(locales, pair.Key)
	}
	return locales
}

// Lines returns the merged entries for a locale.
func (r *GenResult) Lines(locale string) []Line {
	lines, _ := r.lines.Get(locale)
	return lines
}

// Generate merges per-locale entries across all catalogs in input order,
// then back-fills untranslated keys from defaultLocale (no fallback when
// empty). Fails when sources is empty or any catalog has no sections.
func Generate(sources []*twinefile.File, defaultLocale string) (*GenResult, error) {
	if len(sources) == 0 {
		return nil, errors.New("at least one parsed catalog expected")
	}

	merged := orderedmap.New[string, []Line]()
	for _, src := range sources {
		perLocale, err := generateForFile(src)
		if err != nil {
			return nil, err
		}
		for pair := perLocale.Oldest(); pair != nil; pair = pair.Next() {
			cur, _ := merged.Get(pair.Key)
			merged.Set(pair.Key, append(cur, pair.Value...))
		}
	}

	fillAbsentTranslations(merged, defaultLocale)
	return &GenResult{lines: merged}, nil
}

func generateForFile(src *twinefile.File) (*orderedmap.OrderedMap[string, []Line], error) {
	if len(src.Sections) > 1 {
		panic("twine catalogs with more than one section are not supported")
	}
	if len(src.Sections) == 0 {
		return nil, errors.New("at least one section expected")
	}

	result := orderedmap.New[string, []Line]()
	for _, key := range src.Sections[0].Keys {
		for _, loc := range key.Localizations {
			cur, _ := result.Get(loc.LanguageCode)
			result.Set(loc.LanguageCode, append(cur, Line{Name: key.Name, Value: loc.Value}))
		}
	}
	return result, nil
}

// fillAbsentTranslations appends the default locale's entries for every
// key a locale is missing, in default-list order. The copied entries
// keep the default locale's text. Running the fill twice adds nothing.
func fillAbsentTranslations(m *orderedmap.OrderedMap[string, []Line], defaultLocale string) {
	if defaultLocale == "" {
		return
	}
	def, ok := m.Get(defaultLocale)
	if !ok {
		return
	}

	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == defaultLocale {
			continue
		}
		have := make(map[string]bool, len(pair.Value))
		for _, line := range pair.Value {
			have[line.Name] = true
		}
		var missing []Line
		for _, line := range def {
			if !have[line.Name] {
				missing = append(missing, line)
			}
		}
		if len(missing) > 0 {
			m.Set(pair.Key, append(pair.Value, missing...))
		}
	}
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Write writes one <locale>.lproj directory per locale under dir, each
// holding <stem>.strings and <stem>.stringsdict.
func (r *GenResult) Write(dir, stem string) error {
	for pair := r.lines.Oldest(); pair != nil; pair = pair.Next() {
		subdir := filepath.Join(dir, pair.Key+".lproj")
		if err := os.MkdirAll(subdir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", subdir, err)
		}

		var strs strings.Builder
		var dict strings.Builder
		dict.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
		dict.WriteString("<!DOCTYPE plist PUBLIC \"-//Apple//DTD PLIST 1.0//EN\" \"http://www.apple.com/DTDs/PropertyList-1.0.dtd\">\n")
		dict.WriteString("<plist version=\"1.0\">\n")
		dict.WriteString("  <dict>\n")

		for _, line := range pair.Value {
			switch line.Value.Kind {
			case twinefile.KindSingle:
				fmt.Fprintf(&strs, "\"%s\" = \"%s\";\n\n", line.Name, line.Value.Text)
			case twinefile.KindPlural:
				for _, l := range pluralFragment(line.Name, line.Value.Quantities) {
					dict.WriteString(l)
					dict.WriteByte('\n')
				}
			}
		}

		dict.WriteString("  </dict>\n")
		dict.WriteString("</plist>\n")

		stringsPath := filepath.Join(subdir, stem+".strings")
		if err := os.WriteFile(stringsPath, []byte(strs.String()), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", stringsPath, err)
		}
		dictPath := filepath.Join(subdir, stem+".stringsdict")
		if err := os.WriteFile(dictPath, []byte(dict.String()), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", dictPath, err)
		}
	}
	return nil
}

// pluralFragment renders one stringsdict entry. The format key always
// substitutes a single numeric "value" variable.
func pluralFragment(name string, quantities []twinefile.PluralValue) []string {
	lines := make([]string, 0, 2*len(quantities)+10)
	lines = append(lines,
		fmt.Sprintf("    <key>%s</key>", name),
		"    <dict>",
		"      <key>NSStringLocalizedFormatKey</key>",
		"      <string>%#@value@</string>",
		"      <key>value</key>",
		"      <dict>",
		"        <key>NSStringFormatSpecTypeKey</key>",
		"        <string>NSStringPluralRuleType</string>",
		"        <key>NSStringFormatValueTypeKey</key>",
		"        <string>d</string>",
	)
	for _, q := range quantities {
		lines = append(lines,
			fmt.Sprintf("        <key>%s</key>", q.Quantity),
			fmt.Sprintf("        <string>%s</string>", q.Text),
		)
	}
	return append(lines, "      </dict>", "    </dict>")
}
