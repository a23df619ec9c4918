package server

import (
	"embed"
	"fmt"
	"path"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed locales
var assetFS embed.FS

const defaultLanguage = "en"

// locales holds the translations of server messages. Messages are written in
// English, which needs no catalog.
type locales struct {
	tags     []language.Tag
	names    []string
	catalogs map[string]*gotext.Po
	matcher  language.Matcher
}

func loadLocales() (*locales, error) {
	l := &locales{
		tags:     []language.Tag{language.English},
		names:    []string{defaultLanguage},
		catalogs: make(map[string]*gotext.Po),
	}

	entries, err := assetFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()

		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %s: %w", name, err)
		}

		b, err := assetFS.ReadFile(path.Join("locales", name, name+".po"))
		if err != nil {
			return nil, err
		}
		po := gotext.NewPo()
		po.Parse(b)

		l.tags = append(l.tags, tag)
		l.names = append(l.names, name)
		l.catalogs[name] = po
	}
	l.matcher = language.NewMatcher(l.tags)
	return l, nil
}

// match returns the supported language closest to the provided identifier.
func (l *locales) match(identifier string) string {
	if identifier == "" {
		return defaultLanguage
	}
	tag, err := language.Parse(identifier)
	if err != nil {
		return defaultLanguage
	}
	_, index, confidence := l.matcher.Match(tag)
	if confidence == language.No {
		return defaultLanguage
	}
	return l.names[index]
}

func (l *locales) get(lang string, message string, vars ...interface{}) string {
	po := l.catalogs[lang]
	if po == nil {
		if len(vars) == 0 {
			return message
		}
		return fmt.Sprintf(message, vars...)
	}
	return po.Get(message, vars...)
}
