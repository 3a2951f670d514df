// Package i18n holds the ru/ky string tables, name localisation and price
// formatting used by the HTTP layer.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Lang is a supported interface language.
type Lang string

const (
	RU Lang = "ru"
	KY Lang = "ky"

	Default = RU
)

// nameSeparator splits bilingual names such as "Иван / Ivan".
const nameSeparator = " / "

//go:embed locales/*.yaml
var localeFS embed.FS

var supported = []language.Tag{
	language.Russian,
	language.Make("ky"),
}

// Translator resolves UI keys to localized strings.
type Translator struct {
	tables   map[Lang]map[string]string
	fallback Lang
	matcher  language.Matcher
}

// New loads the embedded tables. fallback is used when a request names no
// supported language; an unknown fallback becomes ru.
func New(fallback string) (*Translator, error) {
	tr := &Translator{
		tables:   make(map[Lang]map[string]string, 2),
		fallback: Default,
		matcher:  language.NewMatcher(supported),
	}
	for _, l := range []Lang{RU, KY} {
		raw, err := localeFS.ReadFile("locales/" + string(l) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", l, err)
		}
		table := make(map[string]string)
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", l, err)
		}
		tr.tables[l] = table
	}
	if l, ok := ParseLanguage(fallback); ok {
		tr.fallback = l
	}
	return tr, nil
}

// MustNew is New for package initialisation and tests.
func MustNew(fallback string) *Translator {
	tr, err := New(fallback)
	if err != nil {
		panic(err)
	}
	return tr
}

// T returns the string for key in lang. Missing keys fall back to the key.
func (tr *Translator) T(lang Lang, key string) string {
	if v, ok := tr.tables[lang][key]; ok && v != "" {
		return v
	}
	return key
}

// Format is T with {name} placeholders replaced from args.
func (tr *Translator) Format(lang Lang, key string, args map[string]string) string {
	text := tr.T(lang, key)
	if len(args) == 0 {
		return text
	}
	pairs := make([]string, 0, 2*len(args))
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Fallback is the language used when nothing else matches.
func (tr *Translator) Fallback() Lang { return tr.fallback }

// Match picks a supported language from an Accept-Language header value.
func (tr *Translator) Match(acceptLanguage string) Lang {
	if strings.TrimSpace(acceptLanguage) == "" {
		return tr.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return tr.fallback
	}
	_, idx, conf := tr.matcher.Match(tags...)
	if conf == language.No {
		return tr.fallback
	}
	if idx == 1 {
		return KY
	}
	return RU
}

// ParseLanguage accepts "ru" or "ky" in any case.
func ParseLanguage(s string) (Lang, bool) {
	switch Lang(strings.ToLower(strings.TrimSpace(s))) {
	case RU:
		return RU, true
	case KY:
		return KY, true
	}
	return "", false
}

// FormatName picks the ru or ky half of a bilingual "Ru / Ky" name.
// Names without the separator are returned unchanged.
func FormatName(lang Lang, name string) string {
	ru, ky, ok := strings.Cut(name, nameSeparator)
	if !ok {
		return name
	}
	if lang == KY {
		return ky
	}
	return ru
}
