// Package naming cleans OKATO place titles and builds their locative form
// ("в Москве") from the nominative title.
package naming

import (
	"strings"
	"unicode/utf8"
)

// Names holds both derived forms of a raw registry title.
type Names struct {
	Raw        string `json:"raw"`
	Title      string `json:"title"`
	Pronounced string `json:"title_with_pronunciation"`
}

// Transform strips the raw title and builds its locative form.
func Transform(raw string) Names {
	title := StripTitle(raw)
	return Names{Raw: raw, Title: title, Pronounced: Pronounce(title)}
}

// settlementPrefixes are checked in order; only the first match is removed.
var settlementPrefixes = []string{"п ", "д ", "с ", "г ", "ст "}

// specialTitles maps the federal city headers to the bare city name.
var specialTitles = []struct {
	contains string
	title    string
}{
	{"Город Москва столица Российской Федерации", "Москва"},
	{"Санкт-Петербург город федерального значения", "Санкт-Петербург"},
	{"Город федерального значения Севастопол", "Севастополь"},
}

// StripTitle removes a settlement-type abbreviation ("п ", "г ", ...) or
// rewrites a federal city header to the city name. Other titles are returned
// unchanged.
func StripTitle(title string) string {
	for _, p := range settlementPrefixes {
		if strings.HasPrefix(title, p) {
			return strings.Replace(title, p, "", 1)
		}
	}
	for _, s := range specialTitles {
		if strings.Contains(title, s.contains) {
			return s.title
		}
	}
	return title
}

// Pronounce builds the locative phrase for a stripped title: every word is
// inflected independently and the result is prefixed with "в ".
func Pronounce(title string) string {
	words := strings.Split(title, " ")
	for i, w := range words {
		words[i] = InflectWord(w)
	}
	return PreciseTitle("в " + strings.Join(words, " "))
}

// indeclinable words keep their nominative form.
var indeclinable = map[string]bool{
	"км":        true,
	"им":        true,
	"Им":        true,
	"Коми":      true,
	"Марий":     true,
	"Эл":        true,
	"Ингушетия": true,
	"Мордовия":  true,
	"Крым":      true,
	"Адыгея":    true,
	"Бурятия":   true,
	"Алтай":     true,
	"Калмыкия":  true,
	"Хакасия":   true,
	"Чувашия":   true,
	"Карелия":   true,
	"Центорой":  true,
}

type suffixRule struct {
	suffix      string
	replacement string
}

// suffixRules is evaluated top to bottom, first match wins.
var suffixRules = []suffixRule{
	{"ая", "ой"},
	{"ий", "ом"},
	{"ия", "ии"},
	{"ай", "ае"},
	{"ый", "ом"},
	{"ое", "ом"},
	{"ой", "ом"},
	{"ья", "ье"},
	{"ль", "ле"},
	{"ь", "и"},
	{"а", "е"},
	{"и", "ах"},
	{"ы", "ах"},
}

// consonants take a trailing "е" when no suffix rule applies.
const consonants = "бвгджзклмнпрстфхцчшщ"

// InflectWord puts a single word into the prepositional case.
func InflectWord(word string) string {
	if word == "" || indeclinable[word] {
		return word
	}
	for _, r := range suffixRules {
		if strings.HasSuffix(word, r.suffix) {
			return replaceLast(word, r.suffix, r.replacement)
		}
	}
	last, _ := utf8.DecodeLastRuneInString(word)
	if strings.ContainsRune(consonants, last) {
		return word + "е"
	}
	return word
}

// replaceLast rewrites s from the last occurrence of old to its end.
func replaceLast(s, old, replacement string) string {
	i := strings.LastIndex(s, old)
	if i < 0 {
		return s
	}
	return s[:i] + replacement
}

// corrections are applied in order over the whole phrase.
var corrections = [][2]string{
	{"в Владимире", "во Владимире"},
	{"ск-на-", "ске-на-"},
	{"в Республике Северной Осетия-Алании", "в Республике Северная Осетия-Алания"},
}

// PreciseTitle fixes the few phrases the suffix rules get wrong.
func PreciseTitle(title string) string {
	for _, c := range corrections {
		title = strings.ReplaceAll(title, c[0], c[1])
	}
	return title
}
