// Package lang defines the supported game languages.
package lang

import (
	"fmt"
	"strings"
)

// Language is a supported language code.
type Language string

const (
	English Language = "en"
	Spanish Language = "es"
	French  Language = "fr"
	Russian Language = "ru"
	German  Language = "de"
)

// Default is used when no valid selection exists.
const Default = English

var all = []Language{English, Spanish, French, Russian, German}

var locales = map[Language]string{
	English: "en-US",
	Spanish: "es-ES",
	French:  "fr-FR",
	Russian: "ru-RU",
	German:  "de-DE",
}

var names = map[Language]string{
	English: "English",
	Spanish: "Español",
	French:  "Français",
	Russian: "Русский",
	German:  "Deutsch",
}

// All returns the supported languages in display order.
func All() []Language {
	return append([]Language(nil), all...)
}

// Parse validates a language code.
func Parse(code string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := locales[l]; !ok {
		return "", fmt.Errorf("unknown language %q (available: %s)", code, strings.Join(Codes(), ", "))
	}
	return l, nil
}

// ParseOrDefault returns the language for code, or Default when code is not supported.
func ParseOrDefault(code string) Language {
	l, err := Parse(code)
	if err != nil {
		return Default
	}
	return l
}

// Codes returns the supported language codes.
func Codes() []string {
	out := make([]string, len(all))
	for i, l := range all {
		out[i] = string(l)
	}
	return out
}

// Locale returns the speech locale tag, e.g. "fr-FR".
func (l Language) Locale() string {
	if loc, ok := locales[l]; ok {
		return loc
	}
	return locales[Default]
}

// Name returns the native display name.
func (l Language) Name() string {
	if n, ok := names[l]; ok {
		return n
	}
	return string(l)
}

// Next returns the language after l, wrapping around.
func (l Language) Next() Language {
	for i, cur := range all {
		if cur == l {
			return all[(i+1)%len(all)]
		}
	}
	return Default
}
