// Package twinefile implements reading of twine localization catalogs.
//
// A catalog is a flat INI-like file where every [section] is a string
// resource key and every key inside it is a locale identifier mapped to
// the translated text:
//
//	[login_screen_title]
//	  en = Login
//	  ru = Логин
//	[songs]
//	  en:one = %d song
//	  en:other = %d songs
//
// Locale identifiers with a :quantity suffix mark the resource as plural;
// the suffix is a CLDR plural category (zero/one/two/few/many/other).
// Values are normalized on load: markup-aware escaping, literal-percent
// doubling, %@ conversion and positional argument numbering (see value.go).
package twinefile

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/ini.v1"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// ValueKind identifies the shape of a localized value.
type ValueKind int

const (
	// KindSingle is a plain translated string.
	KindSingle ValueKind = iota
	// KindPlural is a set of quantity-keyed plural forms.
	KindPlural
)

// PluralValue is one plural form of a resource.
type PluralValue struct {
	// Quantity is the CLDR plural category (zero/one/two/few/many/other).
	Quantity string
	// Text is the normalized translated text for this quantity.
	Text string
}

// StringValue is either a single string or an ordered list of plural forms.
type StringValue struct {
	// Kind selects which of the fields below is populated.
	Kind ValueKind
	// Text is the translated text (KindSingle).
	Text string
	// Quantities holds the plural forms in encounter order (KindPlural).
	Quantities []PluralValue
}

// Single builds a KindSingle value.
func Single(text string) StringValue {
	return StringValue{Kind: KindSingle, Text: text}
}

// Plural builds a KindPlural value.
func Plural(quantities []PluralValue) StringValue {
	return StringValue{Kind: KindPlural, Quantities: quantities}
}

// LocalizedString is the value of a resource key for one locale. A given
// (key, locale) pair holds exactly one StringValue: a resource is either
// single or plural for a locale, never both.
type LocalizedString struct {
	// LanguageCode is the locale identifier (e.g. "en", "ru", "mn").
	LanguageCode string
	// Value is the normalized value.
	Value StringValue
}

// Key is one string resource with all its localizations in
// source-encounter order.
type Key struct {
	Name          string
	Localizations []LocalizedString
}

// Section is an ordered list of resource keys. Twine reserves [[...]]
// markers for grouping keys into multiple sections, but only a single
// section is supported; group markers are ignored on load.
type Section struct {
	Keys []Key
}

// File is a fully parsed catalog. Built once by Parse and immutable
// afterwards.
type File struct {
	Sections []Section
}

// DiagFunc receives non-fatal diagnostics emitted while building the
// model, such as entries skipped for having no text. A nil DiagFunc
// silences them.
type DiagFunc func(format string, args ...any)

func diagf(diag DiagFunc, format string, args ...any) {
	if diag != nil {
		diag(format, args...)
	}
}

// Reserved locale identifiers carrying catalog metadata, never treated
// as translations.
const (
	identComment = "comment"
	identTags    = "tags"
)

// dedupSuffix survives the flat-map loading stage only; it is appended to
// repeated section headers before loading and stripped from key names
// after.
const dedupSuffix = "_dedup"

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a twine catalog file.
func ParseFile(path string, diag DiagFunc) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data, diag)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse parses twine catalog data.
//
// The INI loader collapses same-named sections into one, so repeated
// headers are disambiguated first (dedupHeaders) and the loader-only
// suffix is stripped from key names afterwards.
func Parse(data []byte, diag DiagFunc) (*File, error) {
	cfg := ini.Empty(ini.LoadOptions{
		KeyValueDelimiters:  "=",
		IgnoreInlineComment: true,
	})
	if err := cfg.Append(dedupHeaders(data)); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	section := Section{}
	for _, s := range cfg.Sections() {
		if s.Name() == ini.DefaultSection {
			continue
		}
		section.Keys = append(section.Keys, keyFromSection(s, diag))
	}
	return &File{Sections: []Section{section}}, nil
}

// dedupHeaders rewrites repeated [name] headers to [name_dedup] so the
// flat-map loader keeps them apart, and drops reserved [[...]] group
// marker lines. All other lines pass through unchanged.
func dedupHeaders(data []byte) []byte {
	var out bytes.Buffer
	seen := make(map[string]bool)

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[[") {
			continue
		}
		if isHeader(trimmed) {
			name := trimmed[1 : len(trimmed)-1]
			for seen[name] {
				name += dedupSuffix
			}
			seen[name] = true
			line = "[" + name + "]"
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.Bytes()
}

func isHeader(trimmed string) bool {
	return len(trimmed) >= 2 && trimmed[0] == '[' && trimmed[len(trimmed)-1] == ']'
}

func stripDedup(name string) string {
	for strings.HasSuffix(name, dedupSuffix) {
		name = strings.TrimSuffix(name, dedupSuffix)
	}
	return name
}

// keyFromSection builds one resource key from a loaded INI section.
// The key is plural when any locale identifier carries a :quantity
// suffix. Entries with no text are skipped: the translation is
// interpreted as intentionally absent.
func keyFromSection(s *ini.Section, diag DiagFunc) Key {
	key := Key{Name: stripDedup(s.Name())}

	plural := false
	for _, k := range s.Keys() {
		if strings.Contains(k.Name(), ":") {
			plural = true
			break
		}
	}

	if plural {
		key.Localizations = pluralLocalizations(s, diag)
		return key
	}

	for _, k := range s.Keys() {
		ident := k.Name()
		if ident == identComment || ident == identTags {
			continue
		}
		text := k.Value()
		if text == "" {
			diagf(diag, "skipped key %q because it's empty", ident)
			continue
		}
		key.Localizations = append(key.Localizations, LocalizedString{
			LanguageCode: ident,
			Value:        Single(transformValue(text)),
		})
	}
	return key
}

// pluralLocalizations groups a section's quantity entries by locale in
// first-seen order. An identifier with no :quantity suffix contributes
// the "other" form: some locales supply a single fallback plural only.
func pluralLocalizations(s *ini.Section, diag DiagFunc) []LocalizedString {
	groups := orderedmap.New[string, []PluralValue]()
	for _, k := range s.Keys() {
		ident := k.Name()
		if ident == identComment || ident == identTags {
			continue
		}
		text := k.Value()
		if text == "" {
			diagf(diag, "skipped key %q because it's empty", ident)
			continue
		}
		locale, quantity := ident, "other"
		if i := strings.Index(ident, ":"); i >= 0 {
			locale, quantity = ident[:i], ident[i+1:]
		}
		forms, _ := groups.Get(locale)
		groups.Set(locale, append(forms, PluralValue{
			Quantity: quantity,
			Text:     transformPluralValue(text),
		}))
	}

	var locs []LocalizedString
	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		locs = append(locs, LocalizedString{
			LanguageCode: pair.Key,
			Value:        Plural(pair.Value),
		})
	}
	return locs
}
