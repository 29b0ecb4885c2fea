/*
Package identity manages the two opaque identity strings a chat client owns:
a randomly generated, durable device identifier and an optional user-chosen
display name.

This file implements the file-backed store holding them between sessions.
The session layer treats both strings as immutable inputs; only this package
writes them.
*/
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ramblur/internal/pkg/randx"
)

// Identity is the persisted client identity.
type Identity struct {
	// DeviceID is the durable random identifier of this installation.
	DeviceID string `json:"deviceId"`

	// Username is the registered display name, empty until chosen.
	Username string `json:"username,omitempty"`
}

// Store loads and persists the Identity at a fixed file path.
type Store struct {
	path string
}

// NewStore returns a Store reading and writing path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the stored identity, creating and persisting a fresh device
// id on first use or when the stored one is missing.
func (s *Store) Load() (Identity, error) {
	var id Identity

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &id); err != nil {
			return Identity{}, fmt.Errorf("corrupt identity file %s: %w", s.path, err)
		}
	case os.IsNotExist(err):
		// First run; fall through with an empty identity.
	default:
		return Identity{}, fmt.Errorf("failed to read identity file: %w", err)
	}

	if id.DeviceID == "" {
		id.DeviceID = randx.DeviceID()
		if err := s.save(id); err != nil {
			return Identity{}, err
		}
	}

	return id, nil
}

// SaveUsername persists a newly registered display name alongside the
// existing device id.
func (s *Store) SaveUsername(name string) error {
	id, err := s.Load()
	if err != nil {
		return err
	}

	id.Username = name
	return s.save(id)
}

func (s *Store) save(id Identity) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}

	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}

	return nil
}
