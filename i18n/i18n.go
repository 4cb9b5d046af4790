// Package i18n translates utas's own user-facing messages.
//
// It wraps the gotext library behind T() and N(). Translations are
// embedded into the binary via //go:embed and loaded once by Init();
// before Init (or for languages with no catalog) both functions pass
// the original string through, the standard gettext behavior.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the translation catalogs, one per language:
// locales/{lang}/LC_MESSAGES/utas.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for utas.
const domain = "utas"

var po *gotext.Locale

// Init loads the message catalog for lang. An empty lang auto-detects
// from LANGUAGE, LC_ALL, LC_MESSAGES and LANG, in GNU gettext priority
// order. Call once at program startup.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a message, returning it unchanged when no translation
// exists.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms, selecting the form for n
// by the target language's plural formula.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage picks the user's language from the environment,
// following GNU gettext conventions.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE may be a colon-separated preference list; take the first.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// Strip the encoding suffix ("ru_RU.UTF-8" -> "ru_RU").
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		// "C" and "POSIX" mean no translation.
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
