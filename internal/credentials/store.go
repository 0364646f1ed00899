package credentials

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	credentialsdb "github.com/mrshanahan/notes-console/pkg/credentials-db"
)

// TokenKey is the fixed name the API token is persisted under.
const TokenKey = "apiToken"

var ErrEmptyToken = errors.New("please enter the API token")

// Store holds the single bearer token used for backend calls. It is
// unauthenticated until Load finds a persisted token or Save stores one.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	token string
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load reads the persisted token, if any, and reports whether one was found.
func (s *Store) Load(ctx context.Context) (bool, error) {
	entry, err := credentialsdb.GetCredential(ctx, s.db, TokenKey)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry == nil || entry.Value == "" {
		s.token = ""
		return false, nil
	}
	s.token = entry.Value
	return true, nil
}

func (s *Store) Save(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := credentialsdb.SetCredential(ctx, s.db, TokenKey, token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := credentialsdb.DeleteCredential(ctx, s.db, TokenKey); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Authenticated() bool {
	return s.Token() != ""
}
