// Package credentials implements the process-private credential store
// (spec §6.4): a config file under the user's home directory, values
// base64-obfuscated and the file restricted to owner-only access.
package credentials

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/architect-platform/architect-engine/internal/errs"
)

// Store is a small key-value file: provider name -> obfuscated token.
// It is consulted by remote plugin sources (pluginsource.RemoteReleaseSource)
// and mutated only through the auth HTTP surface (spec §6.2).
type Store struct {
	mu   sync.RWMutex
	path string
	// tokens maps a provider name to its base64-encoded token, exactly
	// as persisted on disk.
	tokens map[string]string
}

type fileFormat struct {
	Tokens map[string]string `yaml:"tokens"`
}

// Open loads the store from path, creating an empty one if the file
// does not yet exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path, tokens: make(map[string]string)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, err, "failed to read credential store %q", path)
	}

	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, errs.Wrap(errs.ConfigInvalid, err, "credential store %q is not valid YAML", path)
	}
	if ff.Tokens != nil {
		s.tokens = ff.Tokens
	}
	return s, nil
}

// Set obfuscates and persists a token for provider.
func (s *Store) Set(provider, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[provider] = base64.StdEncoding.EncodeToString([]byte(token))
	return s.persist()
}

// Delete removes a provider's token.
func (s *Store) Delete(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, provider)
	return s.persist()
}

// Status reports whether a token is configured for provider, without
// revealing its value.
func (s *Store) Status(provider string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.tokens[provider]
	return ok
}

// Token decodes and returns the stored token for provider, if any.
// Satisfies pluginsource.CredentialLookup.
func (s *Store) Token(provider string) (string, bool) {
	s.mu.RLock()
	encoded, ok := s.tokens[provider]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

// persist must be called with s.mu held.
func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errs.Wrap(errs.ConfigInvalid, err, "failed to create credential store directory")
	}

	data, err := yaml.Marshal(fileFormat{Tokens: s.tokens})
	if err != nil {
		return errs.Wrap(errs.ConfigInvalid, err, "failed to encode credential store")
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errs.Wrap(errs.ConfigInvalid, err, "failed to write credential store %q", s.path)
	}
	// os.WriteFile's mode is subject to umask on creation; re-assert
	// owner-only permissions explicitly. A no-op on platforms without
	// POSIX permission bits.
	_ = os.Chmod(s.path, 0o600)
	return nil
}
