package store

import (
	"time"
)

// Fixed keys for the application's persisted records.
const (
	keyRecent    = "recent"
	keySettings  = "settings"
	keyLastDoc   = "lastdoc"
	keyEditor    = "editor"
	keyFavorites = "favorites"
)

// RecentFile is one entry in the recently viewed list. Content is truncated
// on insert, so recents stay cheap regardless of document size.
type RecentFile struct {
	Name     string    `json:"name"`
	Content  string    `json:"content"`
	Size     int       `json:"size"` // original size in bytes
	ViewedAt time.Time `json:"viewed_at"`
}

// Favorite is a pinned document; unlike recents it keeps full content.
type Favorite struct {
	Name    string    `json:"name"`
	Content string    `json:"content"`
	SavedAt time.Time `json:"saved_at"`
}

// Settings are the viewer preferences.
type Settings struct {
	Theme    string `json:"theme"`
	FontSize string `json:"font_size"`
	Width    string `json:"width"`
}

// LastDocument is the last-rendered markdown plus its title.
type LastDocument struct {
	Markdown string    `json:"markdown"`
	Title    string    `json:"title"`
	SavedAt  time.Time `json:"saved_at"`
}

// EditorState is the persisted editor buffer.
type EditorState struct {
	Content string    `json:"content"`
	SavedAt time.Time `json:"saved_at"`
}

// StateStore wraps a Store with the application's typed records and the
// recents bookkeeping rules.
type StateStore struct {
	Store
	RecentLimit    int
	RecentTruncate int
}

func NewStateStore(s Store, recentLimit, recentTruncate int) *StateStore {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	if recentTruncate <= 0 {
		recentTruncate = 1000
	}
	return &StateStore{Store: s, RecentLimit: recentLimit, RecentTruncate: recentTruncate}
}

// Recents returns the recently viewed list, newest first.
func (s *StateStore) Recents() ([]RecentFile, error) {
	var list []RecentFile
	if _, err := s.Get(keyRecent, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddRecent records a viewed document: newest first, de-duplicated by name,
// capped at RecentLimit entries with content truncated to RecentTruncate
// characters.
func (s *StateStore) AddRecent(name, content string) error {
	list, err := s.Recents()
	if err != nil {
		return err
	}

	entry := RecentFile{
		Name:     name,
		Content:  truncate(content, s.RecentTruncate),
		Size:     len(content),
		ViewedAt: time.Now(),
	}

	out := []RecentFile{entry}
	for _, r := range list {
		if r.Name == entry.Name {
			continue
		}
		out = append(out, r)
		if len(out) == s.RecentLimit {
			break
		}
	}
	return s.Set(keyRecent, out)
}

// Favorites returns all pinned documents sorted by save order (the stored
// slice order).
func (s *StateStore) Favorites() ([]Favorite, error) {
	var list []Favorite
	if _, err := s.Get(keyFavorites, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddFavorite pins a document with full content, replacing any favorite of
// the same name.
func (s *StateStore) AddFavorite(name, content string) error {
	list, err := s.Favorites()
	if err != nil {
		return err
	}
	out := []Favorite{{Name: name, Content: content, SavedAt: time.Now()}}
	for _, f := range list {
		if f.Name == name {
			continue
		}
		out = append(out, f)
	}
	return s.Set(keyFavorites, out)
}

// RemoveFavorite unpins a document. Removing an unknown name is a no-op.
func (s *StateStore) RemoveFavorite(name string) error {
	list, err := s.Favorites()
	if err != nil {
		return err
	}
	out := list[:0]
	for _, f := range list {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return s.Set(keyFavorites, out)
}

// GetSettings returns persisted settings, or defaults when none exist.
func (s *StateStore) GetSettings(defaultTheme string) (Settings, error) {
	settings := Settings{Theme: defaultTheme, FontSize: "medium", Width: "normal"}
	if _, err := s.Get(keySettings, &settings); err != nil {
		return settings, err
	}
	if settings.Theme == "" {
		settings.Theme = defaultTheme
	}
	return settings, nil
}

func (s *StateStore) SetSettings(settings Settings) error {
	return s.Set(keySettings, settings)
}

// LastDoc returns the last-rendered document, found=false when none.
func (s *StateStore) LastDoc() (LastDocument, bool, error) {
	var doc LastDocument
	found, err := s.Get(keyLastDoc, &doc)
	return doc, found, err
}

func (s *StateStore) SetLastDoc(markdown, title string) error {
	return s.Set(keyLastDoc, LastDocument{
		Markdown: markdown,
		Title:    title,
		SavedAt:  time.Now(),
	})
}

// EditorBuffer returns the persisted editor state, found=false when none.
func (s *StateStore) EditorBuffer() (EditorState, bool, error) {
	var state EditorState
	found, err := s.Get(keyEditor, &state)
	return state, found, err
}

func (s *StateStore) SetEditorBuffer(content string) error {
	return s.Set(keyEditor, EditorState{Content: content, SavedAt: time.Now()})
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
