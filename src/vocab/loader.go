// Package vocab supplies the nouns, possessive stems and vocabulary entries
// the quizzes draw from.
package vocab

import (
	"embed"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"deutsch/src/config"
	apperrors "deutsch/src/errors"
	"deutsch/src/grammar"

	"github.com/BurntSushi/toml"
)

//go:embed data/*.toml
var embeddedData embed.FS

const (
	NounsFile       = "nouns.toml"
	PossessivesFile = "possessives.toml"
	VocabularyFile  = "vocabulary.toml"
)

// Noun is a noun lemma with its grammatical gender.
type Noun struct {
	Lemma   string         `toml:"lemma"`
	Gender  grammar.Gender `toml:"gender"`
	English string         `toml:"english,omitempty"`
}

// Possessive is a possessive determiner stem.
type Possessive struct {
	Stem    string `toml:"stem"`
	English string `toml:"english"`
}

// Entry is a vocabulary quiz item.
type Entry struct {
	Category string `toml:"category"`
	German   string `toml:"german"`
	English  string `toml:"english"`
}

type nounFile struct {
	Nouns []Noun `toml:"noun"`
}

type possessiveFile struct {
	Possessives []Possessive `toml:"possessive"`
}

type vocabularyFile struct {
	Entries []Entry `toml:"entry"`
}

// Library is the read-only word material for one quiz run.
type Library struct {
	Nouns       []Noun
	Possessives []Possessive
	Vocabulary  []Entry
}

var (
	libraryCache     *Library
	libraryCacheLock sync.RWMutex
)

// LoadLibrary loads the library once per process, preferring files in the
// user's config directory over the embedded defaults.
func LoadLibrary() (*Library, error) {
	libraryCacheLock.RLock()
	if libraryCache != nil {
		defer libraryCacheLock.RUnlock()
		return libraryCache, nil
	}
	libraryCacheLock.RUnlock()

	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}

	lib, err := LoadLibraryFrom(configDir)
	if err != nil {
		return nil, err
	}

	libraryCacheLock.Lock()
	libraryCache = lib
	libraryCacheLock.Unlock()
	return lib, nil
}

// LoadLibraryFrom loads each data file from dir if present, falling back to
// the embedded copy otherwise. dir may be empty.
func LoadLibraryFrom(dir string) (*Library, error) {
	var nouns nounFile
	if err := decode(dir, NounsFile, &nouns); err != nil {
		return nil, err
	}
	for i := range nouns.Nouns {
		nouns.Nouns[i].Gender = grammar.ParseGender(string(nouns.Nouns[i].Gender))
	}

	var possessives possessiveFile
	if err := decode(dir, PossessivesFile, &possessives); err != nil {
		return nil, err
	}

	var vocabulary vocabularyFile
	if err := decode(dir, VocabularyFile, &vocabulary); err != nil {
		return nil, err
	}

	return &Library{
		Nouns:       nouns.Nouns,
		Possessives: possessives.Possessives,
		Vocabulary:  vocabulary.Entries,
	}, nil
}

func decode(dir, name string, v interface{}) error {
	data, err := readUserFile(dir, name)
	if err != nil {
		data, err = embeddedData.ReadFile("data/" + name)
		if err != nil {
			return fmt.Errorf("no %s available: %w", name, err)
		}
	}

	if _, err := toml.Decode(string(data), v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func readUserFile(dir, name string) ([]byte, error) {
	if dir == "" {
		return nil, fs.ErrNotExist
	}
	return os.ReadFile(filepath.Join(dir, name))
}

// RandomNoun picks a noun uniformly.
func (l *Library) RandomNoun(r *rand.Rand) (Noun, error) {
	if len(l.Nouns) == 0 {
		return Noun{}, apperrors.ErrNoNouns
	}
	return l.Nouns[r.IntN(len(l.Nouns))], nil
}

// RandomStem picks a possessive stem uniformly.
func (l *Library) RandomStem(r *rand.Rand) (Possessive, error) {
	if len(l.Possessives) == 0 {
		return Possessive{}, apperrors.ErrNoStems
	}
	return l.Possessives[r.IntN(len(l.Possessives))], nil
}

// RandomEntry picks a vocabulary entry, optionally restricted to a category.
func (l *Library) RandomEntry(r *rand.Rand, category string) (Entry, error) {
	pool := l.Vocabulary
	if category != "" {
		pool = l.EntriesIn(category)
	}
	if len(pool) == 0 {
		return Entry{}, apperrors.ErrNoVocabulary
	}
	return pool[r.IntN(len(pool))], nil
}

// EntriesIn returns the vocabulary entries of one category.
func (l *Library) EntriesIn(category string) []Entry {
	var out []Entry
	for _, e := range l.Vocabulary {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Categories returns the vocabulary categories in first-seen order.
func (l *Library) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range l.Vocabulary {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}

// SaveNouns writes nouns as a TOML noun file, replacing any existing file.
func SaveNouns(path string, nouns []Noun) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := toml.NewEncoder(f).Encode(nounFile{Nouns: nouns}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode nouns: %w", err)
	}
	return f.Close()
}

// MergeNouns appends the nouns in add whose lemma is not already present.
func MergeNouns(existing, add []Noun) (merged []Noun, added int) {
	seen := make(map[string]bool, len(existing))
	merged = append(merged, existing...)
	for _, n := range existing {
		seen[n.Lemma] = true
	}
	for _, n := range add {
		if seen[n.Lemma] {
			continue
		}
		seen[n.Lemma] = true
		merged = append(merged, n)
		added++
	}
	return merged, added
}
