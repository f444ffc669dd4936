package model

import (
	"strings"

	"golang.org/x/text/language"
)

type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageSpanish    Language = "es"
	LanguageFrench     Language = "fr"
	LanguageGerman     Language = "de"
	LanguageRussian    Language = "ru"
	LanguagePortuguese Language = "pt"

	DefaultLanguage = LanguageEnglish
)

var supportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.German,
	language.Russian,
	language.Portuguese,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// ParseLanguage normalizes a BCP 47 tag to a supported base language.
// Anything unrecognized resolves to DefaultLanguage.
func ParseLanguage(raw string) Language {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := supportedLanguages[idx].Base()
	return Language(base.String())
}

// Name is the English display name, used in prompts.
func (l Language) Name() string {
	switch l {
	case LanguageSpanish:
		return "Spanish"
	case LanguageFrench:
		return "French"
	case LanguageGerman:
		return "German"
	case LanguageRussian:
		return "Russian"
	case LanguagePortuguese:
		return "Portuguese"
	default:
		return "English"
	}
}

func SupportedLanguages() []Language {
	out := make([]Language, 0, len(supportedLanguages))
	for _, tag := range supportedLanguages {
		base, _ := tag.Base()
		out = append(out, Language(base.String()))
	}
	return out
}
