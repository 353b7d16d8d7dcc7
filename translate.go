package template_installer

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/cloudfoundry/jibber_jabber"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

// DefaultLanguage is used whenever the system locale has no language file, and for
// every string missing from the current language.
const DefaultLanguage string = "en"

var languageFileName = regexp.MustCompile(`(?:.*/)?([^/]+)\.ya?ml$`)

// Translator looks up localized message strings, and expands config variables in them.
type Translator struct {
	language    string
	langStrings map[string]StringMap
	Variables   StringMap
}

// NewTranslator returns a Translator with a variable lookup. It scans for yaml files
// inside the languages folder in the resources box, and picks the language matching
// the system locale.
func NewTranslator(variables StringMap) (*Translator, error) {
	languageFiles, err := GetResourceFiltered("languages", languageFileName)
	if err != nil {
		return nil, err
	}
	languages := make(map[string]StringMap)
	for filename, content := range languageFiles {
		languageTag := languageFileName.ReplaceAllString(filename, "$1")
		langStrings := make(StringMap)
		if err := yaml.Unmarshal([]byte(content), langStrings); err != nil {
			log.Warn().Err(err).Str("file", filename).Msg("Unable to parse language file")
			continue
		}
		languages[languageTag] = langStrings
	}
	return NewTranslatorFromStrings(languages, variables)
}

// NewTranslatorFromStrings returns a Translator for already loaded language strings,
// keyed by language code.
func NewTranslatorFromStrings(
	languages map[string]StringMap, variables StringMap,
) (*Translator, error) {
	if _, ok := languages[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("no strings for default language '%s'", DefaultLanguage)
	}
	t := &Translator{langStrings: languages, Variables: variables}
	if err := t.SetLanguage(t.getLocale()); err != nil {
		t.language = DefaultLanguage
	}
	return t, nil
}

// Get returns the localized string for a given string key.
//
// The strings may contain template references to variables, which in turn may contain
// template references back to message strings. Only one round-trip of string ->
// variable -> string lookup is performed.
func (t *Translator) Get(key string) string {
	return t.Expand(t.getRaw(key, t.language))
}

// GetLanguage returns the identifier (e.g. "en") for the current language.
func (t *Translator) GetLanguage() string { return t.language }

// GetLanguages returns a list of identifiers for all available languages. The default
// language will be the first in the list, the rest is sorted alphabetically.
func (t *Translator) GetLanguages() []string {
	languages := []string{}
	for lang := range t.langStrings {
		if lang != DefaultLanguage {
			languages = append(languages, lang)
		}
	}
	sort.Strings(languages)
	return append([]string{DefaultLanguage}, languages...)
}

// SetLanguage given a language code string (e.g.: "en"), sets the translator's
// language.
func (t *Translator) SetLanguage(language string) error {
	if _, ok := t.langStrings[language]; !ok {
		return fmt.Errorf("no language '%s'", language)
	}
	t.language = language
	return nil
}

// Expand expands template variables in the given str with the translator's variables,
// which are themselves expanded with the current language's strings first.
func (t *Translator) Expand(str string) string {
	variables := make(StringMap, len(t.Variables))
	for key, value := range t.Variables {
		variables[key] = ExpandVariables(value, t.langStrings[t.language])
	}
	return ExpandVariables(str, variables)
}

// getLocale returns the current system locale, as a language code string (e.g.: "en"),
// matched against the available languages.
func (t *Translator) getLocale() string {
	languageTags := []language.Tag{language.Raw.Make(DefaultLanguage)}
	for _, languageTag := range t.GetLanguages()[1:] {
		languageTags = append(languageTags, language.Raw.Make(languageTag))
	}
	locale, err := jibber_jabber.DetectIETF()
	if err != nil {
		return DefaultLanguage
	}
	_, index, _ := language.NewMatcher(languageTags).Match(language.Make(locale))
	return t.GetLanguages()[index]
}

// getRaw returns a localized string for a given string key in a given language, without
// template expansion. If the language doesn't have the string, then the default
// language is tried. If that fails as well, the key itself is returned.
func (t *Translator) getRaw(key, language string) string {
	if value, ok := t.langStrings[language][key]; ok {
		return value
	}
	if value, ok := t.langStrings[DefaultLanguage][key]; ok {
		return value
	}
	return key
}
