package twinefile

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// markupTags lists the inline markup tags the target platforms render
// natively. Text inside a region opened by one of these tags is copied
// verbatim by escapeValue; everything else is escaped.
var markupTags = []string{
	"a", "b", "big", "blockquote", "br", "cite", "dfn", "div", "em",
	"font", "i", "li", "ol", "p", "small", "span", "strong", "sub",
	"sup", "tt", "u", "ul",
}

// Placeholder grammar: % + optional N$ index + optional flag + optional
// width + optional .precision + optional length modifier + conversion
// type. Shared by percent doubling, %@ conversion and positional
// numbering.
const (
	placeholderFlagsWidthPrecisionLength = `([-+0#,])?(\d+|\*)?(\.(\d+|\*))?(hh?|ll?|L|z|j|t|q)?`
	placeholderTypes                     = `[diufFeEgGxXoscpaA@]`
)

var (
	placeholderRe        = regexp.MustCompile(`%(\d+\$)?` + placeholderFlagsWidthPrecisionLength + placeholderTypes)
	placeholderAtStartRe = regexp.MustCompile(`^%(\d+\$)?` + placeholderFlagsWidthPrecisionLength + placeholderTypes)
)

// transformValue normalizes one raw catalog value: escaping, percent
// doubling, %@ conversion and positional numbering, in that fixed order.
// Total function; text without placeholders passes through the last two
// steps unchanged.
func transformValue(raw string) string {
	return transform(raw, false)
}

// transformPluralValue is transformValue for plural quantity strings.
// Quantity strings always carry explicit positional indices, even with a
// single placeholder.
func transformPluralValue(raw string) string {
	return transform(raw, true)
}

func transform(raw string, forceNumbering bool) string {
	v := escapeValue(raw)
	v = doublePercents(v)
	if !placeholderRe.MatchString(v) {
		return v
	}
	v = convertObjectPlaceholders(v)
	return numberPlaceholders(v, forceNumbering)
}

// ---------------------------------------------------------------------------
// Step 1: markup-aware escaping
// ---------------------------------------------------------------------------

var valueEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	"'", `\'`,
	`"`, `\"`,
)

// escapeValue escapes & < ' " outside markup tag regions. Regions are
// copied verbatim so that legitimate tag attributes keep their quotes
// and ampersands.
func escapeValue(s string) string {
	if !strings.ContainsAny(s, `&<'"`) {
		return s
	}
	regions := tagRegions(s)
	if len(regions) == 0 {
		return valueEscaper.Replace(s)
	}

	var b strings.Builder
	cur := 0
	for _, r := range regions {
		start, end := r[0], r[1]
		if end <= cur {
			continue
		}
		if start < cur {
			start = cur
		}
		b.WriteString(valueEscaper.Replace(s[cur:start]))
		b.WriteString(s[start:end])
		cur = end
	}
	b.WriteString(valueEscaper.Replace(s[cur:]))
	return b.String()
}

// tagRegions locates markup regions: each starts at a literal <tagname
// occurrence and ends after the next literal tagname> occurrence, which
// is the matching close tag for an open tag with attributes, or the
// region's own closing bracket otherwise. An open token with no
// following close token yields no region. Regions are returned sorted by
// start offset.
func tagRegions(s string) [][2]int {
	var regions [][2]int
	for _, tag := range markupTags {
		open := "<" + tag
		closing := tag + ">"
		from := 0
		for {
			i := strings.Index(s[from:], open)
			if i < 0 {
				break
			}
			i += from
			j := strings.Index(s[i+len(open):], closing)
			if j < 0 {
				break
			}
			end := i + len(open) + j + len(closing)
			regions = append(regions, [2]int{i, end})
			from = end
		}
	}
	sort.Slice(regions, func(a, b int) bool { return regions[a][0] < regions[b][0] })
	return regions
}

// ---------------------------------------------------------------------------
// Step 2: literal-percent doubling
// ---------------------------------------------------------------------------

// doublePercents doubles every % that is not the start of a placeholder.
// An existing %% pair is copied as-is, never re-doubled.
func doublePercents(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '%' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			b.WriteString("%%")
			i += 2
			continue
		}
		if m := placeholderAtStartRe.FindString(s[i:]); m != "" {
			b.WriteString(m)
			i += len(m)
			continue
		}
		b.WriteString("%%")
		i++
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Step 3: Objective-C object specifier conversion
// ---------------------------------------------------------------------------

// convertObjectPlaceholders rewrites %...@ placeholders to %...s, keeping
// index, flags, width, precision and length modifier intact.
func convertObjectPlaceholders(s string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasSuffix(m, "@") {
			return m[:len(m)-1] + "s"
		}
		return m
	})
}

// ---------------------------------------------------------------------------
// Step 4: positional-argument numbering
// ---------------------------------------------------------------------------

// numberPlaceholders assigns 1-based positional indices to placeholders
// that have none, left to right. Placeholders with an explicit index are
// neither counted nor renumbered. With a single non-positional
// placeholder the text is left unchanged unless force is set.
func numberPlaceholders(s string, force bool) string {
	count := 0
	for _, m := range placeholderRe.FindAllString(s, -1) {
		if !hasPositionalIndex(m) {
			count++
		}
	}
	if count == 0 || (count <= 1 && !force) {
		return s
	}

	n := 0
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		if hasPositionalIndex(m) {
			return m
		}
		n++
		return fmt.Sprintf("%%%d$%s", n, m[1:])
	})
}

// hasPositionalIndex reports whether a placeholder match starts with an
// explicit N$ argument index.
func hasPositionalIndex(m string) bool {
	i := 1
	for i < len(m) && m[i] >= '0' && m[i] <= '9' {
		i++
	}
	return i > 1 && i < len(m) && m[i] == '$'
}
