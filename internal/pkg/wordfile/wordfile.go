// Package wordfile reads word lists from YAML files. Words are trimmed and
// NFC-normalised; decode input goes through Normalize so both sides compare
// in the same form.
package wordfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/samirrijal/geogrids/internal/core/domain"
)

// ErrNoWords is returned for files without a words list.
var ErrNoWords = errors.New("wordfile has no words")

// File is the on-disk shape of a word list.
type File struct {
	Name        string   `yaml:"name"`
	Version     int      `yaml:"version,omitempty"`
	Separator   *string  `yaml:"separator,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Words       []string `yaml:"words"`
}

// DefaultSeparator joins words when a file does not name a separator.
const DefaultSeparator = " "

// Parse decodes one word list. A missing name falls back to fallbackName.
func Parse(data []byte, fallbackName string) (*domain.Wordlist, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode wordfile: %w", err)
	}
	if len(f.Words) == 0 {
		return nil, ErrNoWords
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = fallbackName
	}
	sep := DefaultSeparator
	if f.Separator != nil {
		sep = *f.Separator
	}

	words := NormalizeWords(f.Words)

	return &domain.Wordlist{
		Name:        name,
		Version:     f.Version,
		Separator:   sep,
		Words:       words,
		Size:        len(words),
		Description: f.Description,
	}, nil
}

// Normalize returns text in Unicode NFC form.
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// NormalizeWords returns the words trimmed and in NFC form.
func NormalizeWords(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Normalize(strings.TrimSpace(w))
	}
	return out
}

// Load reads a single word-list file. The file name without extension is the
// fallback list name.
func Load(path string) (*domain.Wordlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	wl, err := Parse(data, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wl, nil
}

// LoadDir reads every .yaml and .yml file in dir, ordered by file name.
func LoadDir(dir string) ([]*domain.Wordlist, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	lists := make([]*domain.Wordlist, 0, len(names))
	for _, n := range names {
		wl, err := Load(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		lists = append(lists, wl)
	}
	return lists, nil
}
