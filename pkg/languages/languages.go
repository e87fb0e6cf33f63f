// Package languages maps the short language codes used across meetings to
// recognizer locales and display values.
package languages

import (
	"sort"
	"strings"
)

type language struct {
	locale string
	name   string
	// english is used for prompts sent to translation models
	english string
	flag    string
}

var known = map[string]language{
	"ko": {locale: "ko-KR", name: "한국어", english: "Korean", flag: "🇰🇷"},
	"en": {locale: "en-US", name: "English", english: "English", flag: "🇺🇸"},
	"ja": {locale: "ja-JP", name: "日本語", english: "Japanese", flag: "🇯🇵"},
	"zh": {locale: "zh-CN", name: "中文", english: "Chinese", flag: "🇨🇳"},
	"es": {locale: "es-ES", name: "Español", english: "Spanish", flag: "🇪🇸"},
	"fr": {locale: "fr-FR", name: "Français", english: "French", flag: "🇫🇷"},
	"de": {locale: "de-DE", name: "Deutsch", english: "German", flag: "🇩🇪"},
	"pt": {locale: "pt-BR", name: "Português", english: "Portuguese", flag: "🇧🇷"},
	"ru": {locale: "ru-RU", name: "Русский", english: "Russian", flag: "🇷🇺"},
	"ar": {locale: "ar-SA", name: "العربية", english: "Arabic", flag: "🇸🇦"},
}

// Locale returns the recognizer locale for a short code. Unknown codes are
// returned unchanged so a caller may pass a full locale directly.
func Locale(code string) string {
	if l, ok := known[code]; ok {
		return l.locale
	}
	return code
}

// Name returns the native display name, or the upper-cased code.
func Name(code string) string {
	if l, ok := known[code]; ok {
		return l.name
	}
	return strings.ToUpper(code)
}

// PromptName returns a name suitable for a model prompt, e.g. "한국어 (Korean)".
func PromptName(code string) string {
	l, ok := known[code]
	switch {
	case !ok:
		return code
	case l.name == l.english:
		return l.english
	}
	return l.name + " (" + l.english + ")"
}

func Flag(code string) string {
	if l, ok := known[code]; ok {
		return l.flag
	}
	return "🌐"
}

func IsSupported(code string) bool {
	_, ok := known[code]
	return ok
}

// Codes lists the supported short codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(known))
	for c := range known {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Normalize lower-cases a code and reduces a locale such as "ko-KR" to its
// short code when that code is known.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		if _, ok := known[code[:i]]; ok {
			return code[:i]
		}
	}
	return code
}
