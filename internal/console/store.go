package console

import (
	"sync"

	"github.com/mrshanahan/notes-console/internal/forms"
	"github.com/mrshanahan/notes-console/internal/notes"
)

// Store is the console's UI state: the note cache with its filter and
// keyword, the last load failure and the note open in the edit overlay.
type Store struct {
	Cache *notes.Cache

	mu        sync.RWMutex
	loadErr   error
	loading   bool
	editID    string
	editInput forms.Input
}

func NewStore() *Store {
	return &Store{Cache: notes.NewCache()}
}

func (s *Store) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// Loading reports whether the first refresh is still running.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// OpenEdit makes id the current edit target with the form pre-filled by in.
func (s *Store) OpenEdit(id string, in forms.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editID = id
	s.editInput = in
}

// CloseEdit clears the edit target. It never touches the backend.
func (s *Store) CloseEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editID = ""
	s.editInput = forms.Input{}
}

// Edit returns the current edit target, or false when the overlay is closed.
func (s *Store) Edit() (string, forms.Input, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editID, s.editInput, s.editID != ""
}

// Reset drops everything derived from the backend, as after forgetting the
// token.
func (s *Store) Reset() {
	s.Cache.Replace(nil)
	s.Cache.SetFilter(notes.FilterAll)
	s.SetLoadError(nil)
	s.SetLoading(false)
	s.CloseEdit()
}
