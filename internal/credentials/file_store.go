package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore reads and writes capability tokens in a JSON file on disk.
// The file maps platform keys to tokens and is kept at mode 0600.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore builds a FileStore rooted at the provided path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get resolves the token for a platform. A missing file or platform entry
// resolves to ErrNotFound.
func (s *FileStore) Get(_ context.Context, platform string) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return Token{}, err
	}
	token, ok := tokens[normalizeKey(platform)]
	if !ok || token.IsZero() {
		return Token{}, ErrNotFound
	}
	return token, nil
}

// Set stores or replaces the token for a platform.
func (s *FileStore) Set(platform string, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return err
	}
	tokens[normalizeKey(platform)] = token
	return s.save(tokens)
}

// Delete removes the token for a platform. Deleting an absent entry is a no-op.
func (s *FileStore) Delete(platform string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return err
	}
	delete(tokens, normalizeKey(platform))
	return s.save(tokens)
}

// Platforms lists the platform keys with stored tokens.
func (s *FileStore) Platforms() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(tokens))
	for key := range tokens {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *FileStore) load() (map[string]Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Token{}, nil
		}
		return nil, fmt.Errorf("read credential store: %w", err)
	}

	tokens := map[string]Token{}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode credential store: %w", err)
	}
	return tokens, nil
}

func (s *FileStore) save(tokens map[string]Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure credential directory: %w", err)
	}

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credential store: %w", err)
	}
	return nil
}

func normalizeKey(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
