// Package prefs holds the user's UI preferences: display language and theme.
package prefs

import (
	"fmt"
	"sync"
)

// Storage keys.
const (
	keyLanguage = "language"
	keyTheme    = "theme"
)

// Supported languages.
const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Storage is the key-value store preferences persist to. Declared here so
// any string store (including session.FileStorage) satisfies it.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Store holds the current preferences and mirrors them into Storage.
type Store struct {
	mu       sync.RWMutex
	storage  Storage
	language string
	theme    string
}

// NewStore creates a preference store backed by the given storage, loading
// any persisted values. Defaults are English and the light theme.
func NewStore(storage Storage) *Store {
	s := &Store{
		storage:  storage,
		language: LangEnglish,
		theme:    ThemeLight,
	}

	if lang, err := storage.Get(keyLanguage); err == nil {
		if lang == LangEnglish || lang == LangArabic {
			s.language = lang
		}
	}
	if theme, err := storage.Get(keyTheme); err == nil {
		if theme == ThemeLight || theme == ThemeDark {
			s.theme = theme
		}
	}
	return s
}

// Language returns the active language code.
func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// Dir returns the text direction for the active language.
func (s *Store) Dir() string {
	if s.Language() == LangArabic {
		return "rtl"
	}
	return "ltr"
}

// SetLanguage switches the display language.
func (s *Store) SetLanguage(lang string) error {
	if lang != LangEnglish && lang != LangArabic {
		return fmt.Errorf("unsupported language %q", lang)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(keyLanguage, lang); err != nil {
		return fmt.Errorf("persisting language: %w", err)
	}
	s.language = lang
	return nil
}

// Theme returns the active theme.
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// ToggleTheme flips between the light and dark themes and returns the new one.
func (s *Store) ToggleTheme() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := ThemeLight
	if s.theme == ThemeLight {
		next = ThemeDark
	}
	if err := s.storage.Set(keyTheme, next); err != nil {
		return s.theme, fmt.Errorf("persisting theme: %w", err)
	}
	s.theme = next
	return s.theme, nil
}
