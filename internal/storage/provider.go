// Package storage defines the key/value port the goal collection is
// persisted through, plus its backends.
package storage

// Provider stores opaque values under string keys. Every Write replaces
// the whole value. Reading a missing key returns an error that matches
// os.ErrNotExist under errors.Is.
type Provider interface {
	// Read returns the value stored under key.
	Read(key string) ([]byte, error)
	// Write atomically replaces the value under key.
	Write(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Locator is implemented by backends whose values live in a file that can
// be watched for changes made by other processes.
type Locator interface {
	Location(key string) (string, error)
}
