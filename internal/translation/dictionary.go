package translation

import (
	"context"
	"strings"
	"sync"
)

type dictKey struct {
	source, target, text string
}

// Dictionary is an exact-match phrase table keyed by language pair and
// normalized text (trimmed, lowercased).
type Dictionary struct {
	mu      sync.RWMutex
	entries map[dictKey]string
}

// DictionaryEntry is one phrase pair for AddBulk.
type DictionaryEntry struct {
	Source      string
	Target      string
	Text        string
	Translation string
}

var defaultEntries = []DictionaryEntry{
	{"en", "ko", "hello", "안녕하세요"},
	{"en", "es", "hello", "hola"},
	{"ko", "en", "안녕하세요", "hello"},
	{"es", "en", "hola", "hello"},
	{"en", "ko", "thank you", "감사합니다"},
	{"en", "es", "thank you", "gracias"},
	{"es", "ko", "gracias", "감사합니다"},
	{"ko", "es", "감사합니다", "gracias"},
}

// NewDictionary returns a dictionary preloaded with the common greetings.
func NewDictionary() *Dictionary {
	d := &Dictionary{entries: make(map[dictKey]string, len(defaultEntries))}
	d.AddBulk(defaultEntries)
	return d
}

func normalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func (d *Dictionary) key(source, target, text string) dictKey {
	return dictKey{NormalizeLanguage(source), NormalizeLanguage(target), normalizeText(text)}
}

// Add registers a single phrase, replacing any existing entry.
func (d *Dictionary) Add(source, target, text, translation string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[d.key(source, target, text)] = translation
}

// AddBulk registers many phrases at once.
func (d *Dictionary) AddBulk(entries []DictionaryEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range entries {
		d.entries[d.key(e.Source, e.Target, e.Text)] = e.Translation
	}
}

// Len reports the number of entries.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

func (d *Dictionary) Name() string { return "dictionary" }

// Translate looks up the phrase. Partial and fuzzy matches are not attempted.
func (d *Dictionary) Translate(_ context.Context, text, source, target string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out, ok := d.entries[d.key(source, target, text)]
	return out, ok
}
