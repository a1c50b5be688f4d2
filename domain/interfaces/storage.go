package interfaces

// SessionStore persists browser session state (cookies, storage state)
// between runs.
type SessionStore interface {
	// SaveSession saves serialized session state
	SaveSession(data []byte) error

	// LoadSession loads serialized session state; a missing session yields
	// nil data and no error
	LoadSession() ([]byte, error)
}
