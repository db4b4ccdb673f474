// Package translate formats user visible messages for the current locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	mutex   sync.RWMutex
	tag     language.Tag
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("cpuedu: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	setTag(message.MatchLanguage(locales...))
}

func setTag(t language.Tag) {
	mutex.Lock()
	defer mutex.Unlock()

	tag = t
	printer = message.NewPrinter(t)
}

// SetLanguage overrides the locale detected from the environment.
func SetLanguage(name string) (err error) {
	t, err := language.Parse(name)
	if err != nil {
		return
	}

	setTag(message.MatchLanguage(t.String()))
	return
}

// Language returns the BCP 47 tag of the active locale.
func Language() string {
	mutex.RLock()
	defer mutex.RUnlock()

	return tag.String()
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	mutex.RLock()
	defer mutex.RUnlock()

	return printer.Sprintf(key, args...)
}
