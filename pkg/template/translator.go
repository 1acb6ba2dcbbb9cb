package template

import (
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// builtinPhrases are the default phrasings used when no stored translation
// exists for a key in any language. They keep the subsystem usable with an
// empty translation store.
var builtinPhrases = map[string]string{
	"digest.title.daily":  "📬 Daily summary — %d notifications",
	"digest.title.weekly": "📬 Weekly summary — %d notifications",
	"digest.body.header":  "While you were away:",
	"digest.body.line":    "• %d × %s",
	"group.label":         "%d %s",
}

// Translator resolves per-user languages against the set of loaded
// translation bundles and renders phrases with fallback: requested language,
// then the default language, then built-in phrasings, then the key itself.
type Translator struct {
	mu           sync.RWMutex
	translations map[string]map[string]string // lang -> key -> phrase
	defaultLang  string
	matcher      language.Matcher
	tags         []language.Tag
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithFallbackLanguage sets the language used when the requested one has no
// bundle. Defaults to "en".
func WithFallbackLanguage(lang string) TranslatorOption {
	return func(t *Translator) {
		if lang != "" {
			t.defaultLang = lang
		}
	}
}

// NewTranslator creates a translator with no bundles loaded; every lookup
// falls through to the built-in phrasings until bundles are added.
func NewTranslator(opts ...TranslatorOption) *Translator {
	t := &Translator{
		translations: make(map[string]map[string]string),
		defaultLang:  DefaultLanguage,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.rebuildMatcher()
	return t
}

// LoadYAML merges a YAML translation bundle of the form:
//
//	en:
//	  digest.title.daily: "Daily summary — %d notifications"
//	de:
//	  digest.title.daily: "Tägliche Übersicht — %d Benachrichtigungen"
func (t *Translator) LoadYAML(data []byte) error {
	var bundle map[string]map[string]string
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return fmt.Errorf("parse translation bundle: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for lang, phrases := range bundle {
		if lang == "" {
			return ErrEmptyLanguage
		}
		if t.translations[lang] == nil {
			t.translations[lang] = make(map[string]string, len(phrases))
		}
		for key, phrase := range phrases {
			t.translations[lang][key] = phrase
		}
	}

	t.rebuildMatcher()
	return nil
}

// rebuildMatcher recomputes the language matcher. The default language goes
// first: the matcher falls back to the first tag on no match.
func (t *Translator) rebuildMatcher() {
	tags := []language.Tag{language.Make(t.defaultLang)}
	for lang := range t.translations {
		if lang == t.defaultLang {
			continue
		}
		if tag := language.Make(lang); tag != language.Und {
			tags = append(tags, tag)
		}
	}
	t.tags = tags
	t.matcher = language.NewMatcher(tags)
}

// Resolve returns the best supported language for the user's preferences,
// falling back to the default language.
func (t *Translator) Resolve(preferred ...string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(preferred) == 0 {
		return t.defaultLang
	}

	want := make([]language.Tag, 0, len(preferred))
	for _, p := range preferred {
		if p == "" {
			continue
		}
		if tag := language.Make(p); tag != language.Und {
			want = append(want, tag)
		}
	}
	if len(want) == 0 {
		return t.defaultLang
	}

	_, idx, conf := t.matcher.Match(want...)
	if conf == language.No {
		return t.defaultLang
	}
	base, _ := t.tags[idx].Base()
	return base.String()
}

// T renders the phrase for key in the given language, formatting args with
// the Sprintf verbs embedded in the phrase.
func (t *Translator) T(lang, key string, args ...any) string {
	t.mu.RLock()
	phrase, ok := t.lookup(lang, key)
	t.mu.RUnlock()

	if !ok {
		if builtin, exists := builtinPhrases[key]; exists {
			phrase = builtin
		} else {
			phrase = key
		}
	}

	if len(args) == 0 {
		return phrase
	}
	return fmt.Sprintf(phrase, args...)
}

func (t *Translator) lookup(lang, key string) (string, bool) {
	if phrases, ok := t.translations[lang]; ok {
		if phrase, ok := phrases[key]; ok {
			return phrase, true
		}
	}
	if lang != t.defaultLang {
		if phrases, ok := t.translations[t.defaultLang]; ok {
			if phrase, ok := phrases[key]; ok {
				return phrase, true
			}
		}
	}
	return "", false
}
