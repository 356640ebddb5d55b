package finance

import (
	"time"

	"golang.org/x/text/language"
)

// The first language is the fallback for unsupported locales.
var supported = []language.Tag{language.English, language.Portuguese}

var monthNames = map[language.Tag][12]string{
	language.English:    {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	language.Portuguese: {"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"},
}

var matcher = language.NewMatcher(supported)

// MonthLabels are the short month names of a language.
type MonthLabels struct {
	tag   language.Tag
	names [12]string
}

// LabelsFor returns the month labels for the language that best matches
// locale, e.g. "pt-BR" or "en".
func LabelsFor(locale string) MonthLabels {
	requested, err := language.Parse(locale)
	if err != nil {
		requested = language.Und
	}

	_, i, _ := matcher.Match(requested)
	tag := supported[i]

	return MonthLabels{tag: tag, names: monthNames[tag]}
}

// Label returns the label of a month.
func (l MonthLabels) Label(m time.Month) string {
	if l.names[0] == "" {
		l = LabelsFor("")
	}

	return l.names[m-1]
}

// Language returns the BCP 47 tag of the labels.
func (l MonthLabels) Language() string {
	if l.names[0] == "" {
		return supported[0].String()
	}

	return l.tag.String()
}
