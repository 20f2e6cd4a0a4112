// Package locale renders the localized pieces of notification text.
// Only the strings this engine actually emits are translated here, the
// wider UI keeps its own translation pipeline.
package locale

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultLocale is used when a user has no locale set or the set locale
// cannot be parsed.
const DefaultLocale = "en"

const repliesKey = "%d replies"

var translations = catalog.NewBuilder(catalog.Fallback(language.English))

func init() {
	translations.Set(language.English, repliesKey,
		plural.Selectf(1, "",
			plural.One, "%d reply",
			plural.Other, "%d replies"))
	translations.Set(language.Spanish, repliesKey,
		plural.Selectf(1, "",
			plural.One, "%d respuesta",
			plural.Other, "%d respuestas"))
	translations.Set(language.French, repliesKey,
		plural.Selectf(1, "",
			plural.One, "%d réponse",
			plural.Other, "%d réponses"))
	translations.Set(language.German, repliesKey,
		plural.Selectf(1, "",
			plural.One, "%d Antwort",
			plural.Other, "%d Antworten"))
	translations.Set(language.SimplifiedChinese, repliesKey,
		plural.Selectf(1, "",
			plural.Other, "%d 个回复"))
}

// Replies renders the collapsed reply-count label ("N replies") in the
// given locale, falling back to the default locale when the locale is
// empty or unknown.
func Replies(locale string, count int) string {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag, message.Catalog(translations))
	return p.Sprintf(repliesKey, count)
}
