package storage

import (
	"os"
	"path/filepath"

	"pagefactory/domain/interfaces"
)

type sessionStore struct {
	path string
}

// NewSessionStore - creates session state storage under the user home dir
func NewSessionStore(name string) interfaces.SessionStore {
	homeDir, _ := os.UserHomeDir()
	stateDir := filepath.Join(homeDir, ".pagefactory")
	os.MkdirAll(stateDir, 0755)

	return &sessionStore{
		path: filepath.Join(stateDir, name+".json"),
	}
}

// NewSessionStoreAt - creates session state storage at an explicit path
func NewSessionStoreAt(path string) interfaces.SessionStore {
	return &sessionStore{path: path}
}

// SaveSession - saves serialized session state to file
func (s *sessionStore) SaveSession(data []byte) error {
	return os.WriteFile(s.path, data, 0644)
}

// LoadSession - loads serialized session state from file
func (s *sessionStore) LoadSession() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
