package session

import "errors"

// Keys for the persisted session material. Each key is independently
// readable and writable; an absent access-token key means logged out.
const (
	KeyAccessToken  = "access-token"
	KeyRefreshToken = "refresh-token"
	KeyRole         = "role"
)

// ErrKeyNotFound indicates the requested key has no persisted value
var ErrKeyNotFound = errors.New("key not found")

// Storage persists individual session values across process restarts.
// A missing key is reported as ErrKeyNotFound, never as an empty value.
// Deleting a missing key is not an error. Only the Store's mutation
// operations write to Storage; other components read through the Store.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
